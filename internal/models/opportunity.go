package models

import (
	"time"

	"github.com/google/uuid"
)

// Opportunity is a single funding opportunity in the catalog. Records are
// created and updated by the ingestion pipeline or the seed tool and are
// read-only to the matching engine.
type Opportunity struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Country     string     `json:"country"` // "Global" acts as a wildcard
	Sector      string     `json:"sector"`
	AmountMin   float64    `json:"amount_min"`
	AmountMax   float64    `json:"amount_max"`
	Currency    string     `json:"currency"`
	SourceName  string     `json:"source_name"`
	SourceURL   string     `json:"source_url"`
	Keywords    []string   `json:"keywords"`
	Deadline    *time.Time `json:"deadline"`
	IsVerified  bool       `json:"is_verified"`
	Embedding   []float32  `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
