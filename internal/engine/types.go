package engine

// ItemKind tags which loaderData route a resolved item came from.
type ItemKind string

const (
	// KindVideo is a regular video post (video_(id)/page route).
	KindVideo ItemKind = "video"
	// KindGallery is a note/gallery post (note_(id)/page route). Only the first
	// item of a gallery is resolved.
	KindGallery ItemKind = "gallery"
)

// ResolvedItem is the result of link resolution: a stable item identifier and a
// direct, watermark-free media URL. Immutable once returned.
type ResolvedItem struct {
	VideoID string   `json:"video_id"`
	Title   string   `json:"title"`
	PlayURL string   `json:"play_url"`
	Kind    ItemKind `json:"kind"`
}

// ProgressSink receives informational messages and byte-level progress ticks
// from long-running engine operations. Implementations must never fail; the
// engine treats every call as fire-and-forget.
type ProgressSink interface {
	Info(msg string)
	Progress(current, total int64)
}

type noopSink struct{}

func (noopSink) Info(string)           {}
func (noopSink) Progress(int64, int64) {}
