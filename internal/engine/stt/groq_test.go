package stt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newGroqStub(t *testing.T, text string) (*Groq, *string) {
	t.Helper()
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(10<<20))
		gotModel = r.FormValue("model")

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		require.NotEmpty(t, content)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": text})
	}))
	t.Cleanup(srv.Close)

	g := NewGroq("test-key", DefaultGroqModel,
		WithGroqBaseURL(srv.URL),
		WithGroqHTTPClient(srv.Client()),
	)
	return g, &gotModel
}

func TestGroqTranscribeFile(t *testing.T) {
	g, gotModel := newGroqStub(t, "hello from whisper")

	text, err := g.TranscribeFile(context.Background(), "7421.mp3", []byte("AUDIO-BYTES"))
	require.NoError(t, err)
	require.Equal(t, "hello from whisper", text)
	require.Equal(t, DefaultGroqModel, *gotModel)
}

func TestGroqTranscribeFile_EmptyText(t *testing.T) {
	g, _ := newGroqStub(t, "")

	text, err := g.TranscribeFile(context.Background(), "silent.mp3", []byte("AUDIO-BYTES"))
	require.NoError(t, err)
	require.Equal(t, NoSpeechFallback, text)
}

func TestGroqTranscribeFile_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewGroq("bad-key", DefaultGroqModel,
		WithGroqBaseURL(srv.URL),
		WithGroqHTTPClient(srv.Client()),
	)
	_, err := g.TranscribeFile(context.Background(), "a.mp3", []byte("AUDIO"))
	require.ErrorIs(t, err, ErrTranscriptionFailed)
}
