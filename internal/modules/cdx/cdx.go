package cdx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Shac0x/WebPastMachine/internal/models"
	"go.uber.org/zap"
)

const defaultAPIBase = "https://web.archive.org/cdx/search/cdx"

// DefaultTimeout bounds the single CDX request; large domains can take a
// while to index server-side.
const DefaultTimeout = 30 * time.Second

// Fetcher is the source stage of the pipeline. It issues one CDX query for
// the configured domain and emits a models.Capture per response row.
type Fetcher struct {
	domain  string
	apiBase string
	client  *http.Client
}

// New creates a Fetcher for the given domain.
func New(domain string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		domain:  domain,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: timeout},
	}
}

// Execute performs the CDX query. The input channel is ignored (this is the
// first stage); captures are sent on the output channel.
func (f *Fetcher) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	host, err := models.NormalizeDomain(f.domain)
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("url", host+"/*")
	query.Set("output", "json")
	query.Set("collapse", "timestamp:4")
	requestURL := f.apiBase + "?" + query.Encode()

	logger.Info("searching archived URLs", zap.String("domain", host))
	logger.Debug("querying CDX API", zap.String("url", requestURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("build CDX request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch CDX data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("CDX API returned status %d", resp.StatusCode)
	}

	// The CDX JSON output is an array of arrays; the first row names the
	// fields of every following row.
	var rows [][]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return fmt.Errorf("decode CDX response: %w", err)
	}

	if len(rows) <= 1 {
		logger.Info("no archived URLs found", zap.String("domain", host))
		return nil
	}

	urlIdx, tsIdx := fieldIndexes(rows[0])
	if urlIdx < 0 || tsIdx < 0 {
		return fmt.Errorf("CDX response missing original/timestamp fields: %v", rows[0])
	}

	emitted := 0
	for _, row := range rows[1:] {
		select {
		case <-ctx.Done():
			logger.Warn("CDX processing interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		default:
		}

		if len(row) <= urlIdx || len(row) <= tsIdx {
			logger.Debug("skipping short CDX row", zap.Strings("row", row))
			continue
		}
		output <- models.Capture{URL: row[urlIdx], Timestamp: row[tsIdx]}
		emitted++
	}

	logger.Info("finished reading captures", zap.Int("total_captures", emitted))
	return nil
}

// fieldIndexes locates the "original" and "timestamp" columns in the CDX
// header row. The API documents their presence but not their position.
func fieldIndexes(header []string) (urlIdx, tsIdx int) {
	urlIdx, tsIdx = -1, -1
	for i, name := range header {
		switch name {
		case "original":
			urlIdx = i
		case "timestamp":
			tsIdx = i
		}
	}
	return urlIdx, tsIdx
}
