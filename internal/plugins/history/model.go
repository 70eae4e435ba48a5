// Package history records the search queries of authenticated users.
// Entries are written as a side effect of institute search and read back
// user-scoped through the cache. A query repeated within a rolling 24
// hours is not recorded again.
package history

import "time"

// Entry is one recorded search.
type Entry struct {
	ID         int64     `json:"id"`
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searched_at"`
}

// dedupeWindow is the rolling window inside which a repeated query is
// suppressed instead of re-recorded.
const dedupeWindow = 24 * time.Hour
