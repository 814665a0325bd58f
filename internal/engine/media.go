package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// AudioExtractor produces a standalone audio file from a downloaded media file.
// The transcoder is a black box to the pipeline; implementations report where
// the audio landed.
type AudioExtractor interface {
	Extract(ctx context.Context, mediaPath string) (audioPath string, err error)
}

// FFmpegExtractor shells out to ffmpeg to extract an mp3 track at maximum
// quality (libmp3lame, -q:a 0, matching what the transcription backends expect).
type FFmpegExtractor struct {
	// Path is the ffmpeg binary; empty means "ffmpeg" on PATH.
	Path string
}

// Extract writes <media>.mp3 next to the media file and returns its path.
// exec.CommandContext kills a runaway transcode when the request is cancelled.
func (e FFmpegExtractor) Extract(ctx context.Context, mediaPath string) (string, error) {
	audioPath := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ".mp3"

	bin := e.Path
	if bin == "" {
		bin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-y",
		"-i", mediaPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "0",
		audioPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s", ErrAudioExtractionFailed, lastLine(msg))
	}
	return audioPath, nil
}

// lastLine keeps error payloads readable: ffmpeg writes its banner and full
// stream mapping to stderr, the actual failure is the final line.
func lastLine(s string) string {
	if i := strings.LastIndexByte(strings.TrimRight(s, "\n"), '\n'); i >= 0 {
		return strings.TrimRight(s, "\n")[i+1:]
	}
	return s
}
