package model

// ImportRow is one decoded line of an uploaded catalog file. Fields hold
// raw strings exactly as they appeared; Row is the 1-based position in
// the source file.
type ImportRow struct {
	Row        int
	Title      string
	ISBN       string
	AuthorID   string
	AuthorName string
	PageCount  string
}

type RowStatus string

const (
	RowStatusSuccess RowStatus = "success"
	RowStatusFailed  RowStatus = "failed"
)

// RowResult is the outcome for a single row. Errors is populated only on
// failure, Book only on success.
type RowResult struct {
	Row    int       `json:"row"`
	Status RowStatus `json:"status"`
	Errors []string  `json:"errors,omitempty"`
	Book   *Book     `json:"book,omitempty"`
}

// BulkImportResult is the complete batch report returned to the caller.
// Results are ordered by source row regardless of processing order.
type BulkImportResult struct {
	Total   int         `json:"total"`
	Results []RowResult `json:"results"`
}
