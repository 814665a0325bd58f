package dyserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yeyou612/douyin-mcp-server/internal/engine"
	"github.com/yeyou612/douyin-mcp-server/internal/toolutil"
)

type HistoryListInput struct {
	VideoID   string `json:"video_id,omitempty" jsonschema:"Filter by Douyin video id"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Max entries to return (default 20, max 100)"`
	AuthToken string `json:"auth_token,omitempty" jsonschema:"Access token; required when the server has MCP_AUTH_TOKEN set"`
}

type HistoryListOutput struct {
	Entries []engine.TranscriptRecord `json:"entries"`
	Total   int                       `json:"total"`
}

func registerHistoryList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "douyin_history_list",
		Description: "List previously extracted transcripts from the local history store, newest first. Requires HISTORY_DB to be configured.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input HistoryListInput) (*mcp.CallToolResult, HistoryListOutput, error) {
		if err := toolutil.CheckAuth(input.AuthToken); err != nil {
			return nil, HistoryListOutput{}, err
		}

		limit := input.Limit
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		store, err := engine.HistoryStore()
		if err != nil {
			return nil, HistoryListOutput{}, fmt.Errorf("history list: %w", err)
		}

		entries, err := store.List(ctx, input.VideoID, limit)
		if err != nil {
			return nil, HistoryListOutput{}, fmt.Errorf("history list: %w", err)
		}

		return nil, HistoryListOutput{Entries: entries, Total: len(entries)}, nil
	})
}
