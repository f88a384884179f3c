// Package export renders a club's watch history to PDF and DOCX.
package export

import (
	"errors"
	"time"
)

// Format represents the export output format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Entry is one watched (or pending) selection in the history document.
type Entry struct {
	Title         string
	ReleaseYear   int
	WatchBy       time.Time
	Watched       bool
	WatchedAt     *time.Time
	AverageRating float64
	RatingCount   int
}

// Data is everything the history template needs.
type Data struct {
	ClubName    string
	GeneratedAt time.Time
	Entries     []Entry
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrDOCXDependencyMissing indicates DOCX export runtime dependencies are unavailable.
	ErrDOCXDependencyMissing = errors.New("export docx dependency missing")
)
