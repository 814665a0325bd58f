package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrHistoryDisabled means no history database path is configured.
var ErrHistoryDisabled = errors.New("transcript history disabled")

// TranscriptRecord is one stored transcription run.
type TranscriptRecord struct {
	ID        int64  `json:"id"`
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// History stores transcription results in a local SQLite database, replacing
// the scratch-file diagnostics the transcription backends would otherwise
// leave behind.
type History struct {
	db *sql.DB
}

var (
	history     *History
	historyOnce sync.Once
	historyErr  error
)

// HistoryStore returns the process-wide history store, opening it on first
// use from Cfg.HistoryDB. Returns ErrHistoryDisabled when no path is set.
func HistoryStore() (*History, error) {
	historyOnce.Do(func() {
		if Cfg.HistoryDB == "" {
			historyErr = ErrHistoryDisabled
			return
		}
		history, historyErr = OpenHistory(Cfg.HistoryDB)
	})
	return history, historyErr
}

// OpenHistory opens (or creates) a history database at path.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("history: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS transcripts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id   TEXT NOT NULL,
		title      TEXT NOT NULL,
		provider   TEXT NOT NULL,
		model      TEXT NOT NULL,
		text       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &History{db: db}, nil
}

// Close releases the underlying database.
func (h *History) Close() error { return h.db.Close() }

// Record stores one transcription result.
func (h *History) Record(ctx context.Context, rec TranscriptRecord) (int64, error) {
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO transcripts (video_id, title, provider, model, text, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.VideoID, rec.Title, rec.Provider, rec.Model, rec.Text, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	return res.LastInsertId()
}

// List returns stored transcripts, newest first, optionally filtered by video id.
func (h *History) List(ctx context.Context, videoID string, limit int) ([]TranscriptRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, video_id, title, provider, model, text, created_at FROM transcripts`
	args := []any{}
	if videoID != "" {
		query += ` WHERE video_id = ?`
		args = append(args, videoID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var records []TranscriptRecord
	for rows.Next() {
		var rec TranscriptRecord
		if err := rows.Scan(&rec.ID, &rec.VideoID, &rec.Title, &rec.Provider, &rec.Model, &rec.Text, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
