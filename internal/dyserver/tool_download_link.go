package dyserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yeyou612/douyin-mcp-server/internal/engine"
	"github.com/yeyou612/douyin-mcp-server/internal/toolutil"
)

type DownloadLinkInput struct {
	ShareLink string `json:"share_link" jsonschema:"Douyin share link, or any text containing one"`
	AuthToken string `json:"auth_token,omitempty" jsonschema:"Access token; required when the server has MCP_AUTH_TOKEN set"`
}

type DownloadLinkOutput struct {
	Status      string `json:"status"`
	VideoID     string `json:"video_id,omitempty"`
	Title       string `json:"title,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Description string `json:"description,omitempty"`
	UsageTip    string `json:"usage_tip,omitempty"`
	Error       string `json:"error,omitempty"`
}

func registerDownloadLink(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_douyin_download_link",
		Description: "Get the watermark-free download link for a Douyin video from a share link or share text. No API key required. Returns structured JSON with video_id, title, and download_url.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input DownloadLinkInput) (*mcp.CallToolResult, DownloadLinkOutput, error) {
		if err := toolutil.CheckAuth(input.AuthToken); err != nil {
			return nil, DownloadLinkOutput{}, err
		}
		if input.ShareLink == "" {
			return nil, DownloadLinkOutput{}, fmt.Errorf("share_link is required")
		}

		// Link-only operation: internal failures become a structured error
		// payload, never a protocol error.
		item, err := engine.ResolveShareText(ctx, input.ShareLink)
		if err != nil {
			slog.Warn("get_douyin_download_link failed", slog.Any("error", err))
			return nil, DownloadLinkOutput{
				Status: "error",
				Error:  fmt.Sprintf("failed to get download link: %v", err),
			}, nil
		}

		return nil, DownloadLinkOutput{
			Status:      "success",
			VideoID:     item.VideoID,
			Title:       item.Title,
			DownloadURL: item.PlayURL,
			Description: "video title: " + item.Title,
			UsageTip:    "use this link to download the watermark-free video directly",
		}, nil
	})
}
