// douyin-mcp-server — watermark-free Douyin link resolution and video text
// extraction as an MCP server.
//
// Exposes six MCP tools: extract_douyin_text, get_douyin_download_link,
// parse_douyin_video_info, get_douyin_video_by_id, douyin_history_list,
// douyin_usage_guide. Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yeyou612/douyin-mcp-server/internal/dyserver"
	"github.com/yeyou612/douyin-mcp-server/internal/engine"
	"github.com/yeyou612/douyin-mcp-server/internal/engine/stt"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8890")
)

func main() {
	initEngine()

	slog.Info("starting douyin-mcp-server",
		slog.String("port", mcpPort),
		slog.String("provider", engine.Cfg.Provider),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "douyin-mcp-server",
		Version: version,
	}, nil)

	dyserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", dyserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "douyin-mcp-server",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		Provider:             env.Str("STT_PROVIDER", stt.DefaultProvider),
		DashScopeAPIKey:      env.Str("DASHSCOPE_API_KEY", ""),
		GroqAPIKey:           env.Str("GROQ_API_KEY", ""),
		DashScopeModel:       env.Str("DASHSCOPE_STT_MODEL", stt.DefaultDashScopeModel),
		GroqModel:            env.Str("GROQ_STT_MODEL", stt.DefaultGroqModel),
		AuthToken:            env.Str("MCP_AUTH_TOKEN", ""),
		FFmpegPath:           env.Str("FFMPEG_PATH", "ffmpeg"),
		HistoryDB:            env.Str("HISTORY_DB", ""),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 30*time.Second),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if !stt.Valid(c.Provider) {
		slog.Warn("unrecognized STT_PROVIDER, tools will reject extraction requests",
			slog.String("provider", c.Provider))
	}

	bc, err := engine.NewBrowserClient()
	if err != nil {
		slog.Warn("browser client init failed, falling back to plain http", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("browser client initialized")
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
