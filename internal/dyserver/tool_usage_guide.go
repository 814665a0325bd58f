package dyserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type UsageGuideInput struct{}

type UsageGuideOutput struct {
	Guide string `json:"guide"`
}

const usageGuide = `# Douyin text extraction guide

## What this server does
Resolves Douyin share links to watermark-free download URLs and extracts the
spoken text from videos through a speech-to-text provider.

## Configuration (environment)
- STT_PROVIDER: "dashscope" (default) or "groq"
- DASHSCOPE_API_KEY: required when provider is dashscope
- DASHSCOPE_STT_MODEL: optional, default "paraformer-v2"
- GROQ_API_KEY: required when provider is groq
- GROQ_STT_MODEL: optional, default "whisper-large-v3-turbo"
- MCP_AUTH_TOKEN: optional; when set, every tool call must pass a matching auth_token
- HISTORY_DB: optional SQLite path; enables douyin_history_list
- REDIS_URL: optional; enables the L2 resolution cache

## Tools
- extract_douyin_text: full pipeline (needs the provider API key)
- get_douyin_download_link: watermark-free link only (no API key)
- parse_douyin_video_info: basic info only (no API key)
- get_douyin_video_by_id: resolve from a known video id
- douyin_history_list: previously extracted transcripts

## Notes
- Credentials are checked per request, not at startup.
- When MCP_AUTH_TOKEN is set, calls without a matching auth_token are rejected
  before any work happens.`

func registerUsageGuide(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "douyin_usage_guide",
		Description: "Return the usage and configuration guide for this server.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input UsageGuideInput) (*mcp.CallToolResult, UsageGuideOutput, error) {
		return nil, UsageGuideOutput{Guide: usageGuide}, nil
	})
}
