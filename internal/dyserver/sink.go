package dyserver

import (
	"log/slog"
	"time"
)

// logSink reports pipeline progress through slog. Byte ticks arrive per chunk
// during downloads, so they are throttled to one line per second; info
// messages pass straight through. Never fails, as the engine requires.
type logSink struct {
	lastTick time.Time
}

func newLogSink() *logSink {
	return &logSink{}
}

func (s *logSink) Info(msg string) {
	slog.Info(msg)
}

func (s *logSink) Progress(current, total int64) {
	if time.Since(s.lastTick) < time.Second && current != total {
		return
	}
	s.lastTick = time.Now()
	if total > 0 {
		slog.Info("download progress",
			slog.Int64("bytes", current),
			slog.Int64("total", total),
		)
		return
	}
	slog.Info("download progress", slog.Int64("bytes", current))
}
