package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	dashscopeSubmitURL = "https://dashscope.aliyuncs.com/api/v1/services/audio/asr/transcription"
	dashscopeTaskURL   = "https://dashscope.aliyuncs.com/api/v1/tasks/"

	taskSucceeded = "SUCCEEDED"
	taskFailed    = "FAILED"
)

// DashScope implements URLTranscriber against the DashScope (阿里云百炼)
// paraformer file-transcription service: submit the media URL as an async
// task, poll the task until it is terminal, then fetch the transcription JSON
// each result points at.
type DashScope struct {
	apiKey       string
	model        string
	httpClient   *http.Client
	submitURL    string
	taskURL      string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// DashScopeOption is a functional option for DashScope.
type DashScopeOption func(*DashScope)

// WithDashScopeHTTPClient overrides the HTTP client.
func WithDashScopeHTTPClient(c *http.Client) DashScopeOption {
	return func(d *DashScope) { d.httpClient = c }
}

// WithDashScopeEndpoints overrides the service endpoints.
func WithDashScopeEndpoints(submitURL, taskURL string) DashScopeOption {
	return func(d *DashScope) {
		d.submitURL = submitURL
		d.taskURL = taskURL
	}
}

// WithDashScopePollInterval sets the task poll cadence.
func WithDashScopePollInterval(interval time.Duration) DashScopeOption {
	return func(d *DashScope) { d.pollInterval = interval }
}

// NewDashScope builds a DashScope provider for the given key and model.
func NewDashScope(apiKey, model string, opts ...DashScopeOption) *DashScope {
	d := &DashScope{
		apiKey:       apiKey,
		model:        model,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		submitURL:    dashscopeSubmitURL,
		taskURL:      dashscopeTaskURL,
		pollInterval: 2 * time.Second,
		pollTimeout:  10 * time.Minute,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *DashScope) Name() string  { return ProviderDashScope }
func (d *DashScope) Model() string { return d.model }

type dashscopeSubmitRequest struct {
	Model string `json:"model"`
	Input struct {
		FileURLs []string `json:"file_urls"`
	} `json:"input"`
	Parameters struct {
		LanguageHints []string `json:"language_hints,omitempty"`
	} `json:"parameters"`
}

type dashscopeTaskResponse struct {
	RequestID string `json:"request_id"`
	Output    struct {
		TaskID     string `json:"task_id"`
		TaskStatus string `json:"task_status"`
		Code       string `json:"code"`
		Message    string `json:"message"`
		Results    []struct {
			SubtaskStatus    string `json:"subtask_status"`
			TranscriptionURL string `json:"transcription_url"`
		} `json:"results"`
	} `json:"output"`
}

type dashscopeTranscription struct {
	Transcripts []struct {
		Text string `json:"text"`
	} `json:"transcripts"`
}

// TranscribeURL submits mediaURL for server-side transcription and blocks
// until the task is terminal. An empty transcript list yields
// NoSpeechFallback, not an error.
func (d *DashScope) TranscribeURL(ctx context.Context, mediaURL string) (string, error) {
	taskID, err := d.submit(ctx, mediaURL)
	if err != nil {
		return "", err
	}

	task, err := d.wait(ctx, taskID)
	if err != nil {
		return "", err
	}

	if len(task.Output.Results) == 0 {
		return NoSpeechFallback, nil
	}
	// Only the first result is used; one URL in, one result out.
	return d.fetchTranscript(ctx, task.Output.Results[0].TranscriptionURL)
}

func (d *DashScope) submit(ctx context.Context, mediaURL string) (string, error) {
	var body dashscopeSubmitRequest
	body.Model = d.model
	body.Input.FileURLs = []string{mediaURL}
	body.Parameters.LanguageHints = []string{"zh", "en"}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.submitURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-DashScope-Async", "enable")

	var resp dashscopeTaskResponse
	if err := d.do(req, &resp); err != nil {
		return "", err
	}
	if resp.Output.TaskID == "" {
		return "", fmt.Errorf("%w: submit returned no task id (%s)", ErrTranscriptionFailed, resp.Output.Message)
	}
	return resp.Output.TaskID, nil
}

// wait polls the task until SUCCEEDED or FAILED. A fixed cadence suffices; the
// service manages its own queueing and the call sites accept a blocking wait.
func (d *DashScope) wait(ctx context.Context, taskID string) (*dashscopeTaskResponse, error) {
	deadline := time.Now().Add(d.pollTimeout)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.taskURL+taskID, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
		}
		req.Header.Set("Authorization", "Bearer "+d.apiKey)

		var resp dashscopeTaskResponse
		if err := d.do(req, &resp); err != nil {
			return nil, err
		}

		switch resp.Output.TaskStatus {
		case taskSucceeded:
			return &resp, nil
		case taskFailed:
			return nil, fmt.Errorf("%w: %s", ErrTranscriptionFailed, resp.Output.Message)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: task %s not terminal after %s", ErrTranscriptionFailed, taskID, d.pollTimeout)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, ctx.Err())
		case <-time.After(d.pollInterval):
		}
	}
}

// fetchTranscript downloads the result JSON the task points at and returns
// its first transcript text.
func (d *DashScope) fetchTranscript(ctx context.Context, transcriptionURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, transcriptionURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	var result dashscopeTranscription
	if err := d.do(req, &result); err != nil {
		return "", err
	}

	if len(result.Transcripts) == 0 || result.Transcripts[0].Text == "" {
		return NoSpeechFallback, nil
	}
	return result.Transcripts[0].Text, nil
}

func (d *DashScope) do(req *http.Request, out any) error {
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrTranscriptionFailed, resp.StatusCode, bytes.TrimSpace(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrTranscriptionFailed, err)
	}
	return nil
}
