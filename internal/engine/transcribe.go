package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yeyou612/douyin-mcp-server/internal/engine/stt"
)

// Orchestrator drives one transcription request end to end. Each instance
// owns its own scratch directory for the request's lifetime; instances are
// never shared between concurrent requests.
type Orchestrator struct {
	provider  stt.Provider
	extractor AudioExtractor
	sink      ProgressSink

	// scratchBase overrides os.TempDir as the parent for scratch directories.
	scratchBase string
}

// NewOrchestrator validates the provider selection and builds an orchestrator.
// An unrecognized provider name or missing credential fails here, before any
// network activity. A nil extractor defaults to ffmpeg on PATH; a nil sink
// discards progress.
func NewOrchestrator(providerName, model, apiKey string, extractor AudioExtractor, sink ProgressSink) (*Orchestrator, error) {
	provider, err := stt.New(providerName, model, apiKey)
	if err != nil {
		return nil, err
	}
	if extractor == nil {
		extractor = FFmpegExtractor{Path: Cfg.FFmpegPath}
	}
	if sink == nil {
		sink = noopSink{}
	}
	return &Orchestrator{provider: provider, extractor: extractor, sink: sink}, nil
}

// Provider reports the selected backend.
func (o *Orchestrator) Provider() stt.Provider { return o.provider }

// ExtractText produces a transcript for a resolved item, dispatching on the
// provider's capability: remote-URL backends get the playback URL submitted
// directly; file-upload backends get download → audio extraction → upload.
// All scratch files are gone by the time this returns, on every path.
func (o *Orchestrator) ExtractText(ctx context.Context, item *ResolvedItem) (string, error) {
	IncrTranscribeRequests()

	text, err := o.extractText(ctx, item)
	if err != nil {
		IncrTranscribeErrors()
		return "", err
	}
	return text, nil
}

func (o *Orchestrator) extractText(ctx context.Context, item *ResolvedItem) (string, error) {
	switch p := o.provider.(type) {
	case stt.URLTranscriber:
		o.sink.Info("submitting media url for transcription: " + item.VideoID)
		return p.TranscribeURL(ctx, item.PlayURL)

	case stt.FileTranscriber:
		return o.downloadAndTranscribe(ctx, item, p)

	default:
		// stt.New only hands out the two capabilities above.
		return "", stt.ErrInvalidProvider
	}
}

func (o *Orchestrator) downloadAndTranscribe(ctx context.Context, item *ResolvedItem, p stt.FileTranscriber) (string, error) {
	scratch, err := os.MkdirTemp(o.scratchBase, "douyin-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	// The whole scratch area goes away on every exit path, so a failure half
	// way through a download or transcode leaves nothing behind.
	defer os.RemoveAll(scratch)

	mediaPath := filepath.Join(scratch, item.VideoID+".mp4")
	o.sink.Info("downloading media: " + item.Title)
	if err := DownloadMedia(ctx, item.PlayURL, mediaPath, o.sink); err != nil {
		return "", err
	}

	audioPath, err := o.extractor.Extract(ctx, mediaPath)
	if err != nil {
		return "", err
	}
	// The media file has served its purpose once the audio exists.
	cleanupFiles(mediaPath)

	o.sink.Info("transcribing audio: " + item.VideoID)
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	cleanupFiles(audioPath)

	return p.TranscribeFile(ctx, filepath.Base(audioPath), audio)
}

// cleanupFiles removes scratch files, best effort. Missing files are fine.
func cleanupFiles(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = os.Remove(p)
	}
}
