package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Shac0x/WebPastMachine/internal/models"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const (
	analysisRule = 50
	entryRule    = 100
)

// Reporter is the final pipeline stage. It aggregates entries, prints the
// extension analysis and total to the console, and then either lists the
// entries on stdout or exports them to a file.
type Reporter struct {
	outputFile string
	out        io.Writer
}

// New creates a Reporter. outputFile may be empty to render entries to the
// console instead of a file.
func New(outputFile string) *Reporter {
	return &Reporter{
		outputFile: outputFile,
		out:        os.Stdout,
	}
}

// Execute collects every entry from input and renders the run's results.
// The output channel is unused: reporting is the final stage.
func (r *Reporter) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	var entries []models.Entry

	for item := range input {
		select {
		case <-ctx.Done():
			logger.Warn("reporting interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		default:
		}

		entry, ok := item.(models.Entry)
		if !ok {
			logger.Warn("invalid input type, expected Entry", zap.Any("item", item))
			continue
		}
		entries = append(entries, entry)
	}

	// An upstream failure cancels the pipeline; rendering a summary for a
	// broken run would be misleading.
	if err := ctx.Err(); err != nil {
		logger.Warn("reporting skipped", zap.Error(err))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(r.out, "No archived URLs found for this domain.")
		return nil
	}

	r.printAnalysis(entries)
	fmt.Fprintf(r.out, "\nTotal unique URLs found: %d\n", len(entries))

	if r.outputFile == "" {
		r.printEntries(entries)
		return nil
	}

	if err := r.export(entries); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\nResults exported to: %s\n", r.outputFile)
	logger.Info("results exported",
		zap.String("file", r.outputFile),
		zap.Int("entries", len(entries)))
	return nil
}

// printAnalysis renders the count-by-extension summary, most frequent first,
// ties broken alphabetically.
func (r *Reporter) printAnalysis(entries []models.Entry) {
	counts := make(map[string]int)
	for _, entry := range entries {
		if ext := models.ExtensionOf(entry.URL); ext != "" {
			counts[ext]++
		}
	}

	fmt.Fprintln(r.out, "\nAnalysis of file types found:")
	fmt.Fprintln(r.out, strings.Repeat("-", analysisRule))

	if len(counts) == 0 {
		fmt.Fprintln(r.out, "No files with recognizable extensions were found")
		return
	}

	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		if counts[exts[i]] != counts[exts[j]] {
			return counts[exts[i]] > counts[exts[j]]
		}
		return exts[i] < exts[j]
	})

	for _, ext := range exts {
		fmt.Fprintf(r.out, "*.%s: %d files\n", ext, counts[ext])
	}
}

func (r *Reporter) printEntries(entries []models.Entry) {
	rule := strings.Repeat("-", entryRule)
	fmt.Fprintln(r.out, rule)
	for _, entry := range entries {
		fmt.Fprintf(r.out, "URL: %s\n", entry.URL)
		fmt.Fprintf(r.out, "First capture: %s\n", entry.FirstCapture)
		fmt.Fprintf(r.out, "Archive link: %s\n", entry.ArchiveLink)
		fmt.Fprintln(r.out, rule)
	}
}

// export writes the entry blocks to the output file.
func (r *Reporter) export(entries []models.Entry) error {
	file, err := os.Create(r.outputFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	bar := newProgressBar(len(entries), "exporting results")
	w := bufio.NewWriter(file)
	rule := strings.Repeat("-", entryRule)

	for _, entry := range entries {
		fmt.Fprintf(w, "URL: %s\n", entry.URL)
		fmt.Fprintf(w, "First capture: %s\n", entry.FirstCapture)
		fmt.Fprintf(w, "Archive link: %s\n", entry.ArchiveLink)
		fmt.Fprintln(w, rule)
		bar.Add(1)
	}

	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

func newProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
