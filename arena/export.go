package arena

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Export formats for the run manifest.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ExportError indicates the manifest could not be written. It is fatal to the
// export step only; completed downloads are untouched.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export manifest %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// manifestEntry is one row of the exported manifest.
type manifestEntry struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Report renders the five-counter summary of a run. In dry-run mode the
// downloaded counter is labeled as hypothetical.
func Report(w io.Writer, result *RunResult) {
	downloadedLabel := "downloaded"
	if result.DryRun {
		downloadedLabel = "would download"
	}
	fmt.Fprintf(w, "total:      %d\n", result.Total)
	fmt.Fprintf(w, "%s: %d\n", padLabel(downloadedLabel), result.Downloaded)
	fmt.Fprintf(w, "%s: %d\n", padLabel("skipped"), result.Skipped)
	fmt.Fprintf(w, "%s: %d\n", padLabel("failed"), result.Failed)
	fmt.Fprintf(w, "%s: %d\n", padLabel("no image"), result.NoImage)
}

func padLabel(label string) string {
	const width = 10
	if len(label) >= width {
		return label
	}
	return label + strings.Repeat(" ", width-len(label))
}

// ExportManifest serializes the successfully-downloaded (or dry-run-counted)
// jobs to path in the requested format, creating the destination directory if
// absent.
func ExportManifest(jobs []CompletedJob, format, path string) error {
	entries := make([]manifestEntry, len(jobs))
	for i, cj := range jobs {
		entries[i] = manifestEntry{
			ID:           cj.Job.Block.ID,
			Title:        cj.Job.Block.Title,
			URL:          cj.Job.Block.Image.Original.URL,
			DownloadedAt: cj.DownloadedAt,
		}
	}

	var data []byte
	switch format {
	case FormatJSON:
		encoded, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return &ExportError{Path: path, Err: err}
		}
		data = encoded
	case FormatCSV:
		data = []byte(renderCSV(entries))
	default:
		return &ExportError{Path: path, Err: fmt.Errorf("unknown format %q", format)}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

// renderCSV emits a header row plus one row per entry. Titles are always
// double-quoted; embedded quotes are doubled per RFC 4180.
func renderCSV(entries []manifestEntry) string {
	var sb strings.Builder
	sb.WriteString("id,title,url,downloaded_at\n")
	for _, e := range entries {
		title := strings.ReplaceAll(e.Title, `"`, `""`)
		fmt.Fprintf(&sb, "%d,\"%s\",%s,%s\n",
			e.ID, title, e.URL, e.DownloadedAt.Format(time.RFC3339))
	}
	return sb.String()
}

// ManifestPath returns the conventional manifest location for a channel:
// {outputDir}/{slug}/{slug}-list.{format}.
func ManifestPath(outputDir, slug, format string) string {
	return filepath.Join(outputDir, slug, fmt.Sprintf("%s-list.%s", slug, format))
}

// FailureLogPath returns the conventional failure log location for a channel:
// {outputDir}/.arena-dl-{slug}.log.
func FailureLogPath(outputDir, slug string) string {
	return filepath.Join(outputDir, fmt.Sprintf(".arena-dl-%s.log", slug))
}
