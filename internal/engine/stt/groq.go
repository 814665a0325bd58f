package stt

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Groq implements FileTranscriber against Groq's OpenAI-compatible audio
// transcription endpoint (whisper models). Groq has no remote-URL intake, so
// the orchestrator downloads the media and uploads the extracted audio.
type Groq struct {
	client openai.Client
	model  string
}

// GroqOption is a functional option for Groq.
type GroqOption func(*groqConfig)

type groqConfig struct {
	baseURL    string
	httpClient *http.Client
}

// WithGroqBaseURL overrides the API base URL.
func WithGroqBaseURL(url string) GroqOption {
	return func(c *groqConfig) { c.baseURL = url }
}

// WithGroqHTTPClient overrides the HTTP client.
func WithGroqHTTPClient(hc *http.Client) GroqOption {
	return func(c *groqConfig) { c.httpClient = hc }
}

// NewGroq builds a Groq provider for the given key and model.
func NewGroq(apiKey, model string, opts ...GroqOption) *Groq {
	cfg := &groqConfig{
		baseURL:    groqBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, o := range opts {
		o(cfg)
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(cfg.baseURL),
		option.WithHTTPClient(cfg.httpClient),
	)
	return &Groq{client: client, model: model}
}

func (g *Groq) Name() string  { return ProviderGroq }
func (g *Groq) Model() string { return g.model }

// TranscribeFile uploads the audio bytes for synchronous transcription with
// zero-temperature decoding. An empty text field yields NoSpeechFallback.
func (g *Groq) TranscribeFile(ctx context.Context, filename string, audio []byte) (string, error) {
	resp, err := g.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:           openai.File(bytes.NewReader(audio), filename, "audio/mpeg"),
		Model:          openai.AudioModel(g.model),
		ResponseFormat: openai.AudioResponseFormatJSON,
		Temperature:    openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	if resp.Text == "" {
		return NoSpeechFallback, nil
	}
	return resp.Text, nil
}
