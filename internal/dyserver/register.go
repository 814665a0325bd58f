// Package dyserver registers the Douyin MCP tools: link resolution (no
// credential needed), full text extraction (needs an STT provider credential),
// id lookup, transcript history, and the usage guide.
package dyserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all Douyin tools on the given MCP server.
func RegisterTools(server *mcp.Server) {
	registerDownloadLink(server)
	registerVideoInfo(server)
	registerVideoByID(server)
	registerExtractText(server)
	registerHistoryList(server)
	registerUsageGuide(server)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 6
