package dyserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yeyou612/douyin-mcp-server/internal/engine"
	"github.com/yeyou612/douyin-mcp-server/internal/toolutil"
)

type VideoByIDInput struct {
	VideoID   string `json:"video_id" jsonschema:"Douyin video id, e.g. from a douyin://video/{id} reference"`
	AuthToken string `json:"auth_token,omitempty" jsonschema:"Access token; required when the server has MCP_AUTH_TOKEN set"`
}

func registerVideoByID(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_douyin_video_by_id",
		Description: "Resolve detailed video info from a known Douyin video id. Reconstructs the canonical share URL and scrapes it directly, skipping the short-link hop.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input VideoByIDInput) (*mcp.CallToolResult, VideoInfoOutput, error) {
		if err := toolutil.CheckAuth(input.AuthToken); err != nil {
			return nil, VideoInfoOutput{}, err
		}
		if input.VideoID == "" {
			return nil, VideoInfoOutput{}, fmt.Errorf("video_id is required")
		}

		item, err := engine.ResolveVideoID(ctx, input.VideoID)
		if err != nil {
			slog.Warn("get_douyin_video_by_id failed", slog.String("video_id", input.VideoID), slog.Any("error", err))
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
