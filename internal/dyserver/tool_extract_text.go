package dyserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yeyou612/douyin-mcp-server/internal/engine"
	"github.com/yeyou612/douyin-mcp-server/internal/engine/stt"
	"github.com/yeyou612/douyin-mcp-server/internal/toolutil"
)

type ExtractTextInput struct {
	ShareLink string `json:"share_link" jsonschema:"Douyin share link, or any text containing one"`
	Model     string `json:"model,omitempty" jsonschema:"Speech recognition model (defaults per provider: paraformer-v2 for dashscope, whisper-large-v3-turbo for groq)"`
	Provider  string `json:"provider,omitempty" jsonschema:"STT provider override: dashscope or groq (default from STT_PROVIDER)"`
	AuthToken string `json:"auth_token,omitempty" jsonschema:"Access token; required when the server has MCP_AUTH_TOKEN set"`
}

type ExtractTextOutput struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Text     string `json:"text"`
}

func registerExtractText(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_douyin_text",
		Description: "Extract the spoken text from a Douyin video. Resolves the share link, then transcribes via DashScope (remote URL, async) or Groq (download + ffmpeg audio extraction + whisper upload). Requires DASHSCOPE_API_KEY or GROQ_API_KEY depending on provider.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ExtractTextInput) (*mcp.CallToolResult, ExtractTextOutput, error) {
		if err := toolutil.CheckAuth(input.AuthToken); err != nil {
			return nil, ExtractTextOutput{}, err
		}
		if input.ShareLink == "" {
			return nil, ExtractTextOutput{}, fmt.Errorf("share_link is required")
		}

		providerName := input.Provider
		if providerName == "" {
			providerName = engine.Cfg.Provider
		}

		sink := newLogSink()

		// Provider selection is validated before any network activity.
		orch, err := engine.NewOrchestrator(providerName, input.Model, toolutil.CredentialFor(providerName), nil, sink)
		if err != nil {
			return nil, ExtractTextOutput{}, err
		}

		sink.Info("resolving douyin share link")
		item, err := engine.ResolveShareText(ctx, input.ShareLink)
		if err != nil {
			sink.Info("share link resolution failed: " + err.Error())
			return nil, ExtractTextOutput{}, fmt.Errorf("extract douyin text: %w", err)
		}

		text, err := orch.ExtractText(ctx, item)
		if err != nil {
			sink.Info("text extraction failed: " + err.Error())
			return nil, ExtractTextOutput{}, fmt.Errorf("extract douyin text: %w", err)
		}
		sink.Info("text extraction complete")

		recordHistory(ctx, item, orch.Provider(), text)

		return nil, ExtractTextOutput{
			VideoID:  item.VideoID,
			Title:    item.Title,
			Provider: orch.Provider().Name(),
			Model:    orch.Provider().Model(),
			Text:     text,
		}, nil
	})
}

// recordHistory stores the transcript, best effort. History being disabled or
// broken never fails the extraction.
func recordHistory(ctx context.Context, item *engine.ResolvedItem, p stt.Provider, text string) {
	store, err := engine.HistoryStore()
	if err != nil {
		if !errors.Is(err, engine.ErrHistoryDisabled) {
			slog.Warn("transcript history unavailable", slog.Any("error", err))
		}
		return
	}
	if _, err := store.Record(ctx, engine.TranscriptRecord{
		VideoID:  item.VideoID,
		Title:    item.Title,
		Provider: p.Name(),
		Model:    p.Model(),
		Text:     text,
	}); err != nil {
		slog.Warn("transcript history write failed", slog.Any("error", err))
	}
}
