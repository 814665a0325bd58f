// Package stt abstracts the speech-to-text backends behind a capability
// interface. Two shapes exist: backends that accept a remote media URL and
// transcribe it server-side (DashScope), and backends that need the audio
// bytes uploaded (Groq). The orchestrator dispatches on the capability; callers
// only ever see a provider name and a transcript string.
package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Recognized provider names.
const (
	ProviderDashScope = "dashscope"
	ProviderGroq      = "groq"

	// DefaultProvider is used when neither the caller nor the environment
	// selects one.
	DefaultProvider = ProviderDashScope

	DefaultDashScopeModel = "paraformer-v2"
	DefaultGroqModel      = "whisper-large-v3-turbo"
)

// NoSpeechFallback is returned instead of an error when a backend reports an
// empty transcript: the media simply has no recognizable speech.
const NoSpeechFallback = "未识别到文本内容"

var (
	// ErrInvalidProvider means the provider name is not dashscope or groq.
	// Raised at construction time, before any network activity.
	ErrInvalidProvider = errors.New(`invalid stt provider, must be "dashscope" or "groq"`)

	// ErrMissingCredential means the selected provider has no API key configured.
	ErrMissingCredential = errors.New("missing stt provider credential")

	// ErrTranscriptionFailed means the backend accepted the request but could
	// not produce a transcript.
	ErrTranscriptionFailed = errors.New("transcription failed")
)

// Provider is a speech-to-text backend. Concrete providers additionally
// implement exactly one of URLTranscriber or FileTranscriber.
type Provider interface {
	Name() string
	Model() string
}

// URLTranscriber transcribes media the service downloads itself from a remote
// URL, asynchronously. TranscribeURL blocks until the server-side task reaches
// a terminal state.
type URLTranscriber interface {
	Provider
	TranscribeURL(ctx context.Context, mediaURL string) (string, error)
}

// FileTranscriber transcribes audio uploaded as bytes, synchronously.
type FileTranscriber interface {
	Provider
	TranscribeFile(ctx context.Context, filename string, audio []byte) (string, error)
}

// New builds a provider from a name, model override, and credential.
// An empty name selects DefaultProvider; an empty model selects the
// provider-specific default. Unknown names fail before any network I/O.
func New(name, model, apiKey string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderDashScope:
		if apiKey == "" {
			return nil, fmt.Errorf("%w: DASHSCOPE_API_KEY not set", ErrMissingCredential)
		}
		if model == "" {
			model = DefaultDashScopeModel
		}
		return NewDashScope(apiKey, model), nil
	case ProviderGroq:
		if apiKey == "" {
			return nil, fmt.Errorf("%w: GROQ_API_KEY not set", ErrMissingCredential)
		}
		if model == "" {
			model = DefaultGroqModel
		}
		return NewGroq(apiKey, model), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidProvider, name)
	}
}

// Valid reports whether name is a recognized provider (empty = default, valid).
func Valid(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderDashScope, ProviderGroq:
		return true
	}
	return false
}

// DefaultModel returns the default model for a provider name, or "" for an
// unrecognized one.
func DefaultModel(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderDashScope:
		return DefaultDashScopeModel
	case ProviderGroq:
		return DefaultGroqModel
	}
	return ""
}
