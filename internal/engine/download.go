package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// downloadChunkSize is the copy buffer size for streaming media transfers.
const downloadChunkSize = 32 * 1024

// DownloadMedia streams the media at rawURL into dest, reporting cumulative
// bytes against the declared content length through sink. Total is 0 when the
// server does not declare a length; ticks still fire. The transfer checks ctx
// between chunks so a cancelled request stops without draining the stream.
// On failure the partial file is removed.
func DownloadMedia(ctx context.Context, rawURL, dest string, sink ProgressSink) error {
	if sink == nil {
		sink = noopSink{}
	}
	if err := fetchLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	metrics.Downloads.Add(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		metrics.DownloadErrors.Add(1)
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", UserAgentMobile)

	// No overall client timeout: media can take minutes. The per-chunk ctx
	// check plus transport idle timeouts bound a stalled transfer.
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:          5,
			IdleConnTimeout:       30 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		metrics.DownloadErrors.Add(1)
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.DownloadErrors.Add(1)
		return fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	f, err := os.Create(dest)
	if err != nil {
		metrics.DownloadErrors.Add(1)
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	var done int64
	buf := make([]byte, downloadChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			f.Close()
			os.Remove(dest)
			metrics.DownloadErrors.Add(1)
			return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
		}
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				f.Close()
				os.Remove(dest)
				metrics.DownloadErrors.Add(1)
				return fmt.Errorf("%w: %v", ErrDownloadFailed, writeErr)
			}
			done += int64(n)
			sink.Progress(done, total)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			f.Close()
			os.Remove(dest)
			metrics.DownloadErrors.Add(1)
			return fmt.Errorf("%w: %v", ErrDownloadFailed, readErr)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(dest)
		metrics.DownloadErrors.Add(1)
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return nil
}
