package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// dashscopeStub fakes the async transcription service: one submit endpoint,
// one task endpoint that stays PENDING for pendingPolls rounds, and a result
// document endpoint.
type dashscopeStub struct {
	srv          *httptest.Server
	polls        atomic.Int64
	pendingPolls int64
	finalStatus  string
	failMessage  string
	results      []map[string]string
	transcripts  []map[string]string
}

func newDashscopeStub(t *testing.T, stub *dashscopeStub) *dashscopeStub {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "enable", r.Header.Get("X-DashScope-Async"))

		var body dashscopeSubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Input.FileURLs, 1)

		json.NewEncoder(w).Encode(map[string]any{
			"output": map[string]any{"task_id": "task-1", "task_status": "PENDING"},
		})
	})
	mux.HandleFunc("/tasks/task-1", func(w http.ResponseWriter, r *http.Request) {
		n := stub.polls.Add(1)
		status := stub.finalStatus
		if n <= stub.pendingPolls {
			status = "PENDING"
		}
		out := map[string]any{"task_id": "task-1", "task_status": status}
		if status == "FAILED" {
			out["message"] = stub.failMessage
		}
		if status == "SUCCEEDED" {
			results := stub.results
			for i := range results {
				if results[i]["transcription_url"] == "RESULT_URL" {
					results[i]["transcription_url"] = stub.srv.URL + "/result"
				}
			}
			out["results"] = results
		}
		json.NewEncoder(w).Encode(map[string]any{"output": out})
	})
	mux.HandleFunc("/result", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"transcripts": stub.transcripts})
	})

	stub.srv = httptest.NewServer(mux)
	t.Cleanup(stub.srv.Close)
	return stub
}

func newStubDashScope(stub *dashscopeStub) *DashScope {
	return NewDashScope("test-key", DefaultDashScopeModel,
		WithDashScopeEndpoints(stub.srv.URL+"/submit", stub.srv.URL+"/tasks/"),
		WithDashScopePollInterval(10*time.Millisecond),
		WithDashScopeHTTPClient(stub.srv.Client()),
	)
}

func TestDashScopeTranscribeURL(t *testing.T) {
	stub := newDashscopeStub(t, &dashscopeStub{
		pendingPolls: 2,
		finalStatus:  "SUCCEEDED",
		results:      []map[string]string{{"transcription_url": "RESULT_URL"}},
		transcripts:  []map[string]string{{"text": "大家好，今天分享三个技巧"}},
	})

	text, err := newStubDashScope(stub).TranscribeURL(context.Background(), "https://cdn/play/1")
	require.NoError(t, err)
	require.Equal(t, "大家好，今天分享三个技巧", text)
	require.GreaterOrEqual(t, stub.polls.Load(), int64(3), "task must be polled past the pending rounds")
}

func TestDashScopeTranscribeURL_TaskFailed(t *testing.T) {
	stub := newDashscopeStub(t, &dashscopeStub{
		finalStatus: "FAILED",
		failMessage: "file format not supported",
	})

	_, err := newStubDashScope(stub).TranscribeURL(context.Background(), "https://cdn/play/1")
	require.ErrorIs(t, err, ErrTranscriptionFailed)
	require.ErrorContains(t, err, "file format not supported")
}

func TestDashScopeTranscribeURL_NoResults(t *testing.T) {
	stub := newDashscopeStub(t, &dashscopeStub{finalStatus: "SUCCEEDED"})

	text, err := newStubDashScope(stub).TranscribeURL(context.Background(), "https://cdn/play/1")
	require.NoError(t, err)
	require.Equal(t, NoSpeechFallback, text)
}

func TestDashScopeTranscribeURL_EmptyTranscript(t *testing.T) {
	stub := newDashscopeStub(t, &dashscopeStub{
		finalStatus: "SUCCEEDED",
		results:     []map[string]string{{"transcription_url": "RESULT_URL"}},
		transcripts: []map[string]string{},
	})

	text, err := newStubDashScope(stub).TranscribeURL(context.Background(), "https://cdn/play/1")
	require.NoError(t, err)
	require.Equal(t, NoSpeechFallback, text)
}

func TestDashScopeSubmit_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"InvalidApiKey"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	d := NewDashScope("bad-key", DefaultDashScopeModel,
		WithDashScopeEndpoints(srv.URL+"/submit", srv.URL+"/tasks/"),
		WithDashScopeHTTPClient(srv.Client()),
	)
	_, err := d.TranscribeURL(context.Background(), "https://cdn/play/1")
	require.ErrorIs(t, err, ErrTranscriptionFailed)
	require.ErrorContains(t, err, fmt.Sprint(http.StatusUnauthorized))
}

func TestDashScopeTranscribeURL_ContextCancelled(t *testing.T) {
	stub := newDashscopeStub(t, &dashscopeStub{
		pendingPolls: 1 << 30, // never terminal
		finalStatus:  "SUCCEEDED",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newStubDashScope(stub).TranscribeURL(ctx, "https://cdn/play/1")
	require.ErrorIs(t, err, ErrTranscriptionFailed)
}
