package ingest

import (
	"context"
	"io"
	"time"
)

// RawOpportunity is the untrusted, unnormalized data extracted from a
// source listing. Normalize turns it into a models.Opportunity.
type RawOpportunity struct {
	Title       string
	Description string
	SourceURL   string
	SourceName  string
	RawAmount   string
	RawCurrency string
	RawDeadline string
	RawTags     []string
	Country     string
	Sector      string
}

// FetchedDocument is the raw result of a fetch operation.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     map[string][]string
}

// Fetcher retrieves raw content from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}

// Parser extracts raw opportunities from fetched content.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, baseURL string) ([]RawOpportunity, error)
}

// IngestionStats summarizes a single source run.
type IngestionStats struct {
	SourceID   string `json:"source_id"`
	TotalFound int    `json:"total_found"`
	TotalSaved int    `json:"total_saved"`
	Errors     int    `json:"errors"`
	DurationMS int64  `json:"duration_ms"`
}
