package models

// Capture is a single raw CDX record: the originally archived URL plus the
// 14-digit capture timestamp (YYYYMMDDhhmmss).
type Capture struct {
	URL       string
	Timestamp string
}

// Entry is a deduplicated capture with presentation fields resolved.
type Entry struct {
	URL          string
	FirstCapture string
	ArchiveLink  string
}
