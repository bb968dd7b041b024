package dedupe

import (
	"context"
	"strings"

	"github.com/Shac0x/WebPastMachine/internal/models"
	"go.uber.org/zap"
)

// Deduplicator filters captures by extension and keeps the first capture
// seen for each distinct URL. CDX rows arrive ordered by URL key and
// timestamp, so the first row for a URL is also its earliest capture.
type Deduplicator struct {
	extension string
}

// New creates a Deduplicator. extension may be empty to disable filtering.
func New(extension string) *Deduplicator {
	return &Deduplicator{
		extension: strings.ToLower(strings.TrimPrefix(extension, ".")),
	}
}

// Execute reads models.Capture values from input and emits one models.Entry
// per distinct URL on output.
func (d *Deduplicator) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	seen := make(map[string]struct{})
	kept := 0

	for item := range input {
		select {
		case <-ctx.Done():
			logger.Warn("deduplication interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		default:
		}

		capture, ok := item.(models.Capture)
		if !ok {
			logger.Warn("invalid input type, expected Capture", zap.Any("item", item))
			continue
		}

		if d.extension != "" &&
			!strings.HasSuffix(strings.ToLower(capture.URL), "."+d.extension) {
			continue
		}

		if _, dup := seen[capture.URL]; dup {
			continue
		}

		firstCapture, err := models.FormatCaptureTime(capture.Timestamp)
		if err != nil {
			logger.Debug("dropping capture with unparseable timestamp",
				zap.String("url", capture.URL),
				zap.String("timestamp", capture.Timestamp))
			continue
		}

		seen[capture.URL] = struct{}{}
		output <- models.Entry{
			URL:          capture.URL,
			FirstCapture: firstCapture,
			ArchiveLink:  models.ArchiveLink(capture.Timestamp, capture.URL),
		}
		kept++
	}

	logger.Info("deduplication finished",
		zap.Int("unique_urls", kept),
		zap.String("extension_filter", d.extension))
	return nil
}
