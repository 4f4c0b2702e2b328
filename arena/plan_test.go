package arena

import (
	"path/filepath"
	"strings"
	"testing"
)

func imageBlock(id int, title, contentType, url string) Block {
	return Block{
		ID:    id,
		Title: title,
		Image: &Image{
			ContentType: contentType,
			Original:    ImageOriginal{URL: url},
		},
	}
}

func TestPlanFiltersBlocksWithoutImage(t *testing.T) {
	blocks := []Block{
		{ID: 1, Title: "text block"},
		imageBlock(2, "photo", "image/jpeg", "https://x/2.jpg"),
		{ID: 3, Title: "link block", Image: &Image{}}, // image without URL
		imageBlock(4, "another", "image/png", "https://x/4.png"),
	}

	jobs := Plan(blocks, "/out", "chan")
	if len(jobs) != 2 {
		t.Fatalf("Plan returned %d jobs, want 2", len(jobs))
	}
	if jobs[0].Block.ID != 2 || jobs[1].Block.ID != 4 {
		t.Errorf("Plan kept wrong blocks: %d, %d", jobs[0].Block.ID, jobs[1].Block.ID)
	}
}

func TestPlanDeterministic(t *testing.T) {
	blocks := []Block{
		imageBlock(10, "First Image", "image/png", "https://x/10.png"),
		imageBlock(11, "", "image/jpeg", "https://x/11.jpg"),
		imageBlock(12, "Überraschung!", "image/webp", "https://x/12.webp"),
	}

	first := Plan(blocks, "/out", "chan")
	second := Plan(blocks, "/out", "chan")

	if len(first) != len(second) {
		t.Fatalf("plan lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].TargetPath != second[i].TargetPath {
			t.Errorf("job %d target differs: %q vs %q", i, first[i].TargetPath, second[i].TargetPath)
		}
	}
}

func TestPlanSeaWallScenario(t *testing.T) {
	blocks := []Block{
		imageBlock(42, "Sea Wall", "image/png", "https://x/42.png"),
	}

	jobs := Plan(blocks, "/out", "walls")
	if len(jobs) != 1 {
		t.Fatalf("Plan returned %d jobs, want 1", len(jobs))
	}
	if !strings.HasSuffix(jobs[0].TargetPath, "42_sea-wall.png") {
		t.Errorf("TargetPath = %q, want suffix 42_sea-wall.png", jobs[0].TargetPath)
	}
	if !strings.HasPrefix(jobs[0].TargetPath, filepath.Join("/out", "walls")) {
		t.Errorf("TargetPath = %q, want under /out/walls", jobs[0].TargetPath)
	}
}

func TestPlanFallsBackToIDForUnusableTitle(t *testing.T) {
	blocks := []Block{
		imageBlock(7, "", "image/jpeg", "https://x/7.jpg"),
		imageBlock(8, "???!!!", "image/jpeg", "https://x/8.jpg"),
	}

	jobs := Plan(blocks, "/out", "chan")
	if got := filepath.Base(jobs[0].TargetPath); got != "7_7.jpg" {
		t.Errorf("empty title filename = %q, want 7_7.jpg", got)
	}
	if got := filepath.Base(jobs[1].TargetPath); got != "8_8.jpg" {
		t.Errorf("punctuation-only title filename = %q, want 8_8.jpg", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sea Wall", "sea-wall"},
		{"Hello, World!", "hello-world"},
		{"  spaced  out  ", "spaced-out"},
		{"already-slugged", "already-slugged"},
		{"MiXeD CaSe 123", "mixed-case-123"},
		{"!!!", ""},
		{"", ""},
		{"trailing dots...", "trailing-dots"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtFromContentType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"image/png", "png"},
		{"image/jpeg", "jpg"},
		{"image/jpg", "jpg"},
		{"image/gif", "gif"},
		{"image/webp", "webp"},
		{"IMAGE/PNG", "png"},
		{"application/octet-stream", "jpg"},
		{"", "jpg"},
	}
	for _, tt := range tests {
		if got := extFromContentType(tt.in); got != tt.want {
			t.Errorf("extFromContentType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
