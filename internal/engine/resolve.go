package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const defaultShareBase = "https://www.iesdouyin.com"

// routerDataRe captures the JSON blob Douyin embeds in the share page.
// Greedy across line breaks: the blob spans the whole script element.
var routerDataRe = regexp.MustCompile(`(?s)window\._ROUTER_DATA\s*=\s*(.*?)</script>`)

// routeTable maps loaderData route keys to item kinds, tried in priority
// order. This is the single update point when Douyin ships a new page kind;
// append a route here instead of branching in the navigator.
var routeTable = []struct {
	key  string
	kind ItemKind
}{
	{"video_(id)/page", KindVideo},
	{"note_(id)/page", KindGallery},
}

// routerData is the embedded page state, keyed by route name.
type routerData struct {
	LoaderData map[string]routePage `json:"loaderData"`
}

type routePage struct {
	VideoInfoRes struct {
		ItemList []itemDescriptor `json:"item_list"`
	} `json:"videoInfoRes"`
}

type itemDescriptor struct {
	Desc  string `json:"desc"`
	Video struct {
		PlayAddr struct {
			URLList []string `json:"url_list"`
		} `json:"play_addr"`
	} `json:"video"`
}

// ResolveShareText turns an arbitrary share message into a ResolvedItem:
// extract the first URL, follow the short link to its canonical form, then
// scrape the canonical share page.
func ResolveShareText(ctx context.Context, shareText string) (*ResolvedItem, error) {
	metrics.ResolveRequests.Add(1)

	shareURL, err := ExtractShareURL(shareText)
	if err != nil {
		metrics.ResolveErrors.Add(1)
		return nil, err
	}

	finalURL, status, err := fetchFinalURL(ctx, shareURL)
	if err != nil {
		metrics.ResolveErrors.Add(1)
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	if status < 200 || status >= 400 {
		metrics.ResolveErrors.Add(1)
		return nil, fmt.Errorf("%w: status %d", ErrResolutionFailed, status)
	}

	videoID := lastPathSegment(finalURL)
	if videoID == "" {
		metrics.ResolveErrors.Add(1)
		return nil, fmt.Errorf("%w: no item id in %s", ErrResolutionFailed, finalURL)
	}

	return ResolveVideoID(ctx, videoID)
}

// ResolveVideoID resolves an item from its stable identifier, skipping the
// short-link hop: the canonical share URL is reconstructed and scraped directly.
func ResolveVideoID(ctx context.Context, videoID string) (*ResolvedItem, error) {
	shareURL := Cfg.ShareBaseURL + "/share/video/" + videoID

	cacheKey := CacheKey("resolve", shareURL)
	if item, ok := CacheGetItem(ctx, cacheKey); ok {
		return &item, nil
	}

	body, err := fetchPage(ctx, shareURL)
	if err != nil {
		metrics.ResolveErrors.Add(1)
		return nil, fmt.Errorf("%w: %v", ErrPageFetchFailed, err)
	}

	item, err := parseSharePage(body, videoID)
	if err != nil {
		metrics.ResolveErrors.Add(1)
		return nil, err
	}

	CacheSetItem(ctx, cacheKey, *item)
	return item, nil
}

// parseSharePage extracts the embedded router blob from the share page HTML
// and navigates it to the first playable item.
func parseSharePage(body []byte, videoID string) (*ResolvedItem, error) {
	m := routerDataRe.FindSubmatch(body)
	if m == nil || len(strings.TrimSpace(string(m[1]))) == 0 {
		return nil, ErrEmbeddedDataNotFound
	}
	blob := strings.TrimSpace(string(m[1]))

	var data routerData
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPageData, err)
	}

	page, kind, err := navigateRoutes(data)
	if err != nil {
		return nil, err
	}

	if len(page.VideoInfoRes.ItemList) == 0 {
		return nil, fmt.Errorf("%w: empty item list", ErrUnrecognizedSchema)
	}
	// Multi-item posts: only the first item is used.
	first := page.VideoInfoRes.ItemList[0]

	if len(first.Video.PlayAddr.URLList) == 0 || first.Video.PlayAddr.URLList[0] == "" {
		return nil, ErrMissingPlaybackURL
	}
	playURL := RemoveWatermark(first.Video.PlayAddr.URLList[0])

	title := strings.TrimSpace(first.Desc)
	if title == "" {
		title = "douyin_" + videoID
	}
	title = SanitizeTitle(title)

	return &ResolvedItem{
		VideoID: videoID,
		Title:   title,
		PlayURL: playURL,
		Kind:    kind,
	}, nil
}

// navigateRoutes tries the known loaderData routes in priority order.
func navigateRoutes(data routerData) (routePage, ItemKind, error) {
	for _, route := range routeTable {
		if page, ok := data.LoaderData[route.key]; ok {
			return page, route.kind, nil
		}
	}
	keys := make([]string, 0, len(data.LoaderData))
	for k := range data.LoaderData {
		keys = append(keys, k)
	}
	return routePage{}, "", fmt.Errorf("%w: routes %v", ErrUnrecognizedSchema, keys)
}

// RemoveWatermark rewrites a playback URL to its watermark-free form: the
// playwm CDN path flag overlays the watermark, play serves the clean stream.
// Total and idempotent.
func RemoveWatermark(playURL string) string {
	return strings.ReplaceAll(playURL, "playwm", "play")
}

// lastPathSegment extracts the trailing path segment of a URL, stripping the
// query string and any trailing slash. Douyin resolves short links to
// .../video/<id>/?region=… so the segment is the stable item id.
func lastPathSegment(rawURL string) string {
	s := rawURL
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
