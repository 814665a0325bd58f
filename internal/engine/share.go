package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// shareURLRe matches a generic http(s) URL inside free-form share text:
// letters, digits, a fixed punctuation set, and percent-encoded triplets.
var shareURLRe = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

// ExtractShareURL returns the first URL found in free-form share text.
// Share messages wrap the link in decorative text and emoji; only the first
// match is used, any further links are ignored.
func ExtractShareURL(text string) (string, error) {
	match := shareURLRe.FindString(text)
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrNoLinkFound, Truncate(text, 80))
	}
	return match, nil
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// titleSanitizer replaces every character that is unsafe in a filename.
var titleSanitizer = strings.NewReplacer(
	`\`, "_", "/", "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeTitle rewrites a display title into a filesystem-safe string.
// Idempotent: sanitizing an already-sanitized title is a no-op.
func SanitizeTitle(title string) string {
	return titleSanitizer.Replace(title)
}
