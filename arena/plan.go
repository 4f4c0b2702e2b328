package arena

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// Job is a planned download derived from one image-bearing block. Jobs are
// never mutated once planned and are consumed exactly once by the downloader.
type Job struct {
	// Block is the source block.
	Block Block
	// TargetPath is the local path the image lands at. Derivation is
	// deterministic: the same block always yields the same path, within a
	// run and across runs, which is what makes skip-existing and resume
	// correct.
	TargetPath string
}

// Plan filters blocks down to downloadable jobs. Blocks without an image are
// dropped (the caller counts them separately). Pure: calling Plan twice on
// the same input yields identical jobs in the same order.
func Plan(blocks []Block, outputDir, slug string) []Job {
	jobs := make([]Job, 0, len(blocks))
	for _, b := range blocks {
		if !b.HasImage() {
			continue
		}
		jobs = append(jobs, Job{
			Block:      b,
			TargetPath: targetPath(b, outputDir, slug),
		})
	}
	return jobs
}

// targetPath derives {outputDir}/{slug}/{id}_{slugifiedTitleOrId}.{ext}.
func targetPath(b Block, outputDir, slug string) string {
	name := Slugify(b.Title)
	if name == "" {
		name = strconv.Itoa(b.ID)
	}
	ext := extFromContentType(b.Image.ContentType)
	return filepath.Join(outputDir, slug, fmt.Sprintf("%d_%s.%s", b.ID, name, ext))
}

// Slugify lower-cases the title and collapses runs of non-alphanumeric
// characters into single separators. Returns "" when no usable characters
// remain; the caller falls back to the numeric block id.
func Slugify(s string) string {
	var sb strings.Builder
	lastDash := true // suppress a leading separator
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			sb.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(sb.String(), "-")
}

// extFromContentType maps an image content type to a filename extension,
// defaulting to jpg when unresolvable.
func extFromContentType(ct string) string {
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/jpeg", "image/jpg":
		return "jpg"
	default:
		return "jpg"
	}
}
