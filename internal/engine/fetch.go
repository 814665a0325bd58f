package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// UserAgentMobile is the iOS Safari User-Agent sent on every Douyin request.
// The share endpoints return the mobile page (with the embedded router blob)
// only for mobile browsers.
const UserAgentMobile = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) EdgiOS/121.0.2277.107 Version/17.0 Mobile/15E148 Safari/604.1"

// fetchLimiter paces outbound Douyin requests. Short bursts are fine; a
// sustained hammer gets the server IP captcha-walled.
var fetchLimiter = rate.NewLimiter(rate.Every(250*time.Millisecond), 2)

// newFetchClient creates an HTTP client with proper settings for page fetches.
func newFetchClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

func fetchClient() *http.Client {
	if Cfg.HTTPClient != nil {
		return Cfg.HTTPClient
	}
	return newFetchClient(Cfg.FetchTimeout)
}

// fetchFinalURL performs one GET and reports the final URL after the client's
// native redirect following. The body is discarded. Single attempt, no retry.
func fetchFinalURL(ctx context.Context, rawURL string) (string, int, error) {
	if err := fetchLimiter.Wait(ctx); err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", UserAgentMobile)

	resp, err := fetchClient().Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return finalURL, resp.StatusCode, nil
}

// fetchPage fetches an HTML page, preferring the browser-fingerprint client
// when one is configured. Douyin fingerprints TLS on the share pages, so
// BrowserClient is strongly preferred; plain net/http is the fallback.
func fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	if err := fetchLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	metrics.PageFetches.Add(1)

	if Cfg.BrowserClient != nil {
		body, status, _, err := Cfg.BrowserClient.Get(pageURL, MobileHeaders())
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}
		if err == nil {
			err = fmt.Errorf("status %d", status)
		}
		metrics.PageFetchErrors.Add(1)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgentMobile)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := fetchClient().Do(req)
	if err != nil {
		metrics.PageFetchErrors.Add(1)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.PageFetchErrors.Add(1)
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		metrics.PageFetchErrors.Add(1)
		return nil, err
	}
	return body, nil
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return io.ReadAll(resp.Body)
}
