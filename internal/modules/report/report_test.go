package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Shac0x/WebPastMachine/internal/models"
	"go.uber.org/zap/zaptest"
)

func runReporter(t *testing.T, r *Reporter, entries []models.Entry) (string, error) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	var buf bytes.Buffer
	r.out = &buf

	inputChan := make(chan interface{}, len(entries)+1)
	for _, e := range entries {
		inputChan <- e
	}
	close(inputChan)
	outputChan := make(chan interface{}, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.Execute(ctx, inputChan, outputChan, logger)
	return buf.String(), err
}

func sampleEntries() []models.Entry {
	return []models.Entry{
		{
			URL:          "http://example.com/index.html",
			FirstCapture: "2020-01-01 00:00:00",
			ArchiveLink:  "http://web.archive.org/web/20200101000000/http://example.com/index.html",
		},
		{
			URL:          "http://example.com/report.pdf",
			FirstCapture: "2020-06-01 12:00:00",
			ArchiveLink:  "http://web.archive.org/web/20200601120000/http://example.com/report.pdf",
		},
		{
			URL:          "http://example.com/about.html",
			FirstCapture: "2021-01-02 15:04:05",
			ArchiveLink:  "http://web.archive.org/web/20210102150405/http://example.com/about.html",
		},
	}
}

func TestReporter_Execute_Console(t *testing.T) {
	out, err := runReporter(t, New(""), sampleEntries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "Total unique URLs found: 3") {
		t.Errorf("missing total line in output:\n%s", out)
	}
	// html (2) sorts before pdf (1).
	htmlIdx := strings.Index(out, "*.html: 2 files")
	pdfIdx := strings.Index(out, "*.pdf: 1 files")
	if htmlIdx < 0 || pdfIdx < 0 {
		t.Fatalf("missing extension analysis in output:\n%s", out)
	}
	if htmlIdx > pdfIdx {
		t.Errorf("expected html count before pdf count:\n%s", out)
	}
	for _, e := range sampleEntries() {
		if !strings.Contains(out, "URL: "+e.URL) {
			t.Errorf("missing entry for %s in output:\n%s", e.URL, out)
		}
		if !strings.Contains(out, "Archive link: "+e.ArchiveLink) {
			t.Errorf("missing archive link for %s in output:\n%s", e.URL, out)
		}
	}
}

func TestReporter_Execute_ConsoleDeterministic(t *testing.T) {
	first, err := runReporter(t, New(""), sampleEntries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := runReporter(t, New(""), sampleEntries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("output differs between identical runs:\n%s\n---\n%s", first, second)
	}
}

func TestReporter_Execute_NoEntries(t *testing.T) {
	out, err := runReporter(t, New(""), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No archived URLs found for this domain.") {
		t.Errorf("missing no-results message in output:\n%s", out)
	}
}

func TestReporter_Execute_NoRecognizableExtensions(t *testing.T) {
	entries := []models.Entry{
		{URL: "http://example.com/about", FirstCapture: "2020-01-01 00:00:00"},
	}
	out, err := runReporter(t, New(""), entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No files with recognizable extensions were found") {
		t.Errorf("missing fallback analysis line in output:\n%s", out)
	}
}

func TestReporter_Execute_Export(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "results.txt")

	out, err := runReporter(t, New(outputFile), sampleEntries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Results exported to: "+outputFile) {
		t.Errorf("missing export confirmation in output:\n%s", out)
	}
	// Entries go to the file, not the console.
	if strings.Contains(out, "URL: http://example.com/index.html") {
		t.Errorf("entries should not be printed when exporting:\n%s", out)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("failed to read export file: %v", err)
	}
	content := string(data)
	for _, e := range sampleEntries() {
		if !strings.Contains(content, "URL: "+e.URL) {
			t.Errorf("missing entry for %s in export file:\n%s", e.URL, content)
		}
		if !strings.Contains(content, "First capture: "+e.FirstCapture) {
			t.Errorf("missing first capture for %s in export file:\n%s", e.URL, content)
		}
	}
}

func TestReporter_Execute_ExportFailure(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "missing", "results.txt")

	_, err := runReporter(t, New(outputFile), sampleEntries())
	if err == nil {
		t.Error("expected error for unwritable output path, got nil")
	}
}
