package dyserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yeyou612/douyin-mcp-server/internal/engine"
	"github.com/yeyou612/douyin-mcp-server/internal/toolutil"
)

type VideoInfoInput struct {
	ShareLink string `json:"share_link" jsonschema:"Douyin share link, or any text containing one"`
	AuthToken string `json:"auth_token,omitempty" jsonschema:"Access token; required when the server has MCP_AUTH_TOKEN set"`
}

type VideoInfoOutput struct {
	Status      string          `json:"status"`
	VideoID     string          `json:"video_id,omitempty"`
	Title       string          `json:"title,omitempty"`
	DownloadURL string          `json:"download_url,omitempty"`
	Kind        engine.ItemKind `json:"kind,omitempty"`
	Error       string          `json:"error,omitempty"`
}

func registerVideoInfo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_douyin_video_info",
		Description: "Parse a Douyin share link and return basic video info (video_id, title, watermark-free download URL, post kind). No API key required.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input VideoInfoInput) (*mcp.CallToolResult, VideoInfoOutput, error) {
		if err := toolutil.CheckAuth(input.AuthToken); err != nil {
			return nil, VideoInfoOutput{}, err
		}
		if input.ShareLink == "" {
			return nil, VideoInfoOutput{}, fmt.Errorf("share_link is required")
		}

		item, err := engine.ResolveShareText(ctx, input.ShareLink)
		if err != nil {
			slog.Warn("parse_douyin_video_info failed", slog.Any("error", err))
			return nil, VideoInfoOutput{Status: "error", Error: err.Error()}, nil
		}

		return nil, VideoInfoOutput{
			Status:      "success",
			VideoID:     item.VideoID,
			Title:       item.Title,
			DownloadURL: item.PlayURL,
			Kind:        item.Kind,
		}, nil
	})
}
