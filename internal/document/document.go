package document

import "time"

// Document is a parsed compliance document registered for analysis.
type Document struct {
	ID          string    `json:"doc_id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Text        string    `json:"-"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// Section is a titled, contiguous span of a document produced by
// heading-based splitting. Body is never empty.
type Section struct {
	Title string
	Body  string
}

// Chunk is a token-bounded span of source text prepared for a single
// completion call. Start and End are byte offsets into the source;
// consecutive chunks overlap, they never leave gaps.
type Chunk struct {
	Text  string
	Index int
	Start int
	End   int
}
