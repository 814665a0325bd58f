package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main. Nothing in the
// pipeline reads ambient process state after Init; caller overrides (model,
// provider) are resolved once per request on top of these values.
type Config struct {
	ShareBaseURL         string // canonical share host, default https://www.iesdouyin.com
	Provider             string // default STT provider: "dashscope" or "groq"
	DashScopeAPIKey      string
	GroqAPIKey           string
	DashScopeModel       string
	GroqModel            string
	AuthToken            string // optional; empty disables the auth check
	FFmpegPath           string // audio extraction binary, default "ffmpeg" on PATH
	HistoryDB            string // transcript history SQLite path; empty disables history
	FetchTimeout         time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = plain net/http page fetches
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages and tool handlers.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.ShareBaseURL == "" {
		c.ShareBaseURL = defaultShareBase
	}
	cfg = c
	Cfg = &cfg
}
