package engine

import "errors"

// Pipeline errors. Every stage is single-attempt: the first failure aborts the
// whole request and surfaces one of these, wrapped with the original cause.
var (
	// ErrNoLinkFound means the share text contained no http(s) URL.
	ErrNoLinkFound = errors.New("no share link found in text")

	// ErrResolutionFailed means the short share URL could not be resolved to a
	// canonical item URL (network error, bad status, or no usable path segment).
	ErrResolutionFailed = errors.New("share link resolution failed")

	// ErrPageFetchFailed means the canonical share page returned a non-success status.
	ErrPageFetchFailed = errors.New("share page fetch failed")

	// ErrEmbeddedDataNotFound means the window._ROUTER_DATA marker was absent.
	ErrEmbeddedDataNotFound = errors.New("embedded route data not found in page")

	// ErrMalformedPageData means the embedded blob was present but not valid JSON.
	ErrMalformedPageData = errors.New("embedded route data is not valid JSON")

	// ErrUnrecognizedSchema means the page used a loaderData route this server
	// does not know. Douyin added a third page kind; extend routeTable.
	ErrUnrecognizedSchema = errors.New("unrecognized share page schema")

	// ErrMissingPlaybackURL means the item descriptor carried no playable address.
	ErrMissingPlaybackURL = errors.New("item has no playback url")

	// ErrDownloadFailed means the media stream could not be fetched to disk.
	ErrDownloadFailed = errors.New("media download failed")

	// ErrAudioExtractionFailed means ffmpeg could not produce an audio track
	// from the downloaded media.
	ErrAudioExtractionFailed = errors.New("audio extraction failed")
)
