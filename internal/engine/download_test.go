package engine

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// captureSink records every progress tick for assertion.
type captureSink struct {
	infos []string
	ticks [][2]int64
}

func (s *captureSink) Info(msg string) { s.infos = append(s.infos, msg) }
func (s *captureSink) Progress(current, total int64) {
	s.ticks = append(s.ticks, [2]int64{current, total})
}

func TestDownloadMedia(t *testing.T) {
	payload := bytes.Repeat([]byte("abcd"), 50*1024) // 200 KiB, several chunks
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != UserAgentMobile {
			t.Errorf("unexpected User-Agent %q", ua)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "media.mp4")
	sink := &captureSink{}

	if err := DownloadMedia(context.Background(), srv.URL, dest, sink); err != nil {
		t.Fatalf("DownloadMedia error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("downloaded %d bytes, want %d", len(got), len(payload))
	}

	if len(sink.ticks) == 0 {
		t.Fatal("expected progress ticks")
	}
	last := sink.ticks[len(sink.ticks)-1]
	if last[0] != int64(len(payload)) || last[1] != int64(len(payload)) {
		t.Errorf("final tick = %v, want [%d %d]", last, len(payload), len(payload))
	}
	// Cumulative bytes never decrease.
	for i := 1; i < len(sink.ticks); i++ {
		if sink.ticks[i][0] < sink.ticks[i-1][0] {
			t.Errorf("tick %d went backwards: %v after %v", i, sink.ticks[i], sink.ticks[i-1])
		}
	}
}

func TestDownloadMedia_UnknownLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("part1"))
		w.(http.Flusher).Flush() // forces chunked encoding, no Content-Length
		w.Write([]byte("part2"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "media.mp4")
	sink := &captureSink{}

	if err := DownloadMedia(context.Background(), srv.URL, dest, sink); err != nil {
		t.Fatalf("DownloadMedia error: %v", err)
	}
	if len(sink.ticks) == 0 {
		t.Fatal("expected progress ticks even without a declared length")
	}
	for _, tick := range sink.ticks {
		if tick[1] != 0 {
			t.Errorf("tick total = %d, want 0 for unknown length", tick[1])
		}
	}
}

func TestDownloadMedia_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "media.mp4")
	err := DownloadMedia(context.Background(), srv.URL, dest, nil)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("partial file left behind after failure")
	}
}

func TestDownloadMedia_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 1024))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "media.mp4")
	err := DownloadMedia(ctx, srv.URL, dest, nil)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("expected ErrDownloadFailed on cancelled ctx, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("partial file left behind after cancellation")
	}
}
