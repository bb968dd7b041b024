package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	cdxTimestampLayout = "20060102150405"
	captureTimeLayout  = "2006-01-02 15:04:05"

	// maxExtensionLen bounds what counts as a file extension; longer
	// dot-suffixes are almost always version strings or garbage.
	maxExtensionLen = 6
)

// NormalizeDomain converts user input like "https://example.com/" or
// "example.com/path" into a bare host name suitable for a CDX query.
func NormalizeDomain(domain string) (string, error) {
	d := strings.TrimSpace(domain)
	if d == "" {
		return "", fmt.Errorf("empty domain")
	}

	if !strings.HasPrefix(d, "http://") && !strings.HasPrefix(d, "https://") {
		d = "http://" + d
	}

	u, err := url.Parse(d)
	if err != nil {
		return "", fmt.Errorf("invalid domain %q: %w", domain, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid domain %q: no host", domain)
	}
	return u.Host, nil
}

// ExtensionOf returns the lowercased file extension of the URL path, or ""
// when the path has no usable extension. Only short alphanumeric suffixes
// qualify, matching what shows up as real file types in archive listings.
func ExtensionOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	path := u.Path
	idx := strings.LastIndex(path, ".")
	if idx < 0 || idx == len(path)-1 {
		return ""
	}

	ext := strings.ToLower(path[idx+1:])
	if len(ext) >= maxExtensionLen {
		return ""
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// ArchiveLink builds the Wayback Machine replay URL for a capture.
func ArchiveLink(timestamp, rawURL string) string {
	return fmt.Sprintf("http://web.archive.org/web/%s/%s", timestamp, rawURL)
}

// FormatCaptureTime renders a 14-digit CDX timestamp as a human-readable
// date, e.g. "20210102150405" -> "2021-01-02 15:04:05".
func FormatCaptureTime(timestamp string) (string, error) {
	t, err := time.Parse(cdxTimestampLayout, timestamp)
	if err != nil {
		return "", fmt.Errorf("bad capture timestamp %q: %w", timestamp, err)
	}
	return t.Format(captureTimeLayout), nil
}
