package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history", "transcripts.db"))
	if err != nil {
		t.Fatalf("OpenHistory error: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistoryRecordAndList(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	id1, err := h.Record(ctx, TranscriptRecord{
		VideoID: "7421", Title: "第一条", Provider: "dashscope", Model: "paraformer-v2", Text: "文本一",
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if id1 <= 0 {
		t.Errorf("expected positive id, got %d", id1)
	}

	id2, err := h.Record(ctx, TranscriptRecord{
		VideoID: "9999", Title: "第二条", Provider: "groq", Model: "whisper-large-v3-turbo", Text: "文本二",
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if id2 <= id1 {
		t.Errorf("ids not increasing: %d then %d", id1, id2)
	}

	records, err := h.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Newest first.
	if records[0].VideoID != "9999" || records[1].VideoID != "7421" {
		t.Errorf("unexpected order: %q then %q", records[0].VideoID, records[1].VideoID)
	}
	if records[0].CreatedAt == "" {
		t.Error("CreatedAt not defaulted")
	}
}

func TestHistoryListFiltered(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	for _, vid := range []string{"a", "b", "a"} {
		if _, err := h.Record(ctx, TranscriptRecord{VideoID: vid, Title: "t", Provider: "p", Model: "m", Text: "x"}); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	records, err := h.List(ctx, "a", 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records for video a, want 2", len(records))
	}
	for _, rec := range records {
		if rec.VideoID != "a" {
			t.Errorf("filter leaked record for %q", rec.VideoID)
		}
	}

	limited, err := h.List(ctx, "", 1)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d records", len(limited))
	}
}

func TestHistoryStore_Disabled(t *testing.T) {
	Init(Config{HistoryDB: ""})
	// Reset the singleton.
	history = nil
	historyErr = nil
	historyOnce = sync.Once{}

	if _, err := HistoryStore(); err != ErrHistoryDisabled {
		t.Errorf("expected ErrHistoryDisabled, got %v", err)
	}
}
