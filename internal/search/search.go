package search

// Result is a single watch-history search hit.
type Result struct {
	SelectionID string `json:"selectionId"`
	ClubID      string `json:"clubId"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	ReleaseYear int    `json:"releaseYear,omitempty"`
	Watched     bool   `json:"watched"`
}

// Query describes a watch-history search request, scoped to one club.
type Query struct {
	Text   string
	ClubID string
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search over selected movies.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push selections into a search index.
type Indexer interface {
	IndexSelection(record SelectionRecord) error
	DeleteSelection(id string) error
}

// SelectionRecord is the data we index for a selected movie.
type SelectionRecord struct {
	ID          string `json:"id"`
	ClubID      string `json:"clubId"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	ReleaseYear int    `json:"releaseYear"`
	Watched     bool   `json:"watched"`
}
