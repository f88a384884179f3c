package export

import (
	"os/exec"
	"strings"
	"testing"
	"time"
)

func sampleData() Data {
	watchedAt := time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)
	return Data{
		ClubName:    "Friday Films",
		GeneratedAt: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		Entries: []Entry{
			{
				Title:         "The Long Goodbye",
				ReleaseYear:   1973,
				WatchBy:       time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
				Watched:       true,
				WatchedAt:     &watchedAt,
				AverageRating: 4.5,
				RatingCount:   4,
			},
			{
				Title:   "Brand New Pick",
				WatchBy: time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestRenderHistoryHTML(t *testing.T) {
	html, err := RenderHistoryHTML(sampleData())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Friday Films",
		"The Long Goodbye",
		"(1973)",
		"Jun 14, 2025",
		"4.5 / 5 (4)",
		"Brand New Pick",
		"Watch by Jul 20, 2025",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered HTML missing %q", want)
		}
	}
}

func TestRenderHistoryHTMLEmpty(t *testing.T) {
	html, err := RenderHistoryHTML(Data{ClubName: "Quiet Club", GeneratedAt: time.Now()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Nothing selected yet") {
		t.Fatal("expected empty-state copy")
	}
}

func TestExportPDF(t *testing.T) {
	if _, err := exec.LookPath("chromium-browser"); err != nil {
		if _, err := exec.LookPath("chromium"); err != nil {
			t.Skip("chromium not installed")
		}
	}

	result, err := NewService().Export(sampleData(), FormatPDF)
	if err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	if len(result.Data) == 0 || !strings.HasSuffix(result.Filename, ".pdf") {
		t.Fatalf("unexpected result: %d bytes, filename %q", len(result.Data), result.Filename)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("Friday Films!"); got != "Friday-Films" {
		t.Fatalf("sanitize: got %q", got)
	}
	if got := sanitizeFilename(""); got != "history" {
		t.Fatalf("sanitize empty: got %q", got)
	}
}
