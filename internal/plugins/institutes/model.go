// Package institutes serves the public institute catalog: paginated
// search by name and city, and single-institute lookup. Reads only; the
// catalog is maintained out of band.
package institutes

import "time"

// Institute is one searchable catalog entry.
type Institute struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Address     *string   `json:"address,omitempty"`
	Website     *string   `json:"website,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SearchQuery carries the query-string filters of a catalog search.
type SearchQuery struct {
	Query string
	City  string
	Page  int
}

// defaultPageSize is the fixed page size for catalog searches.
const defaultPageSize = 20

// SearchResult is a page of institutes plus paging metadata.
type SearchResult struct {
	Institutes []Institute `json:"institutes"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}
