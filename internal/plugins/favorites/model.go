// Package favorites lets a user bookmark institutes. Every operation is
// scoped to the authenticated user: the user id comes from the verified
// token and is intersected with each query, so one user's favorites are
// unreachable from another user's session.
package favorites

import "time"

// Favorite is one bookmark, denormalized with the institute's display
// fields so the list endpoint needs no second lookup.
type Favorite struct {
	ID            int64     `json:"id"`
	InstituteID   int64     `json:"institute_id"`
	InstituteName string    `json:"institute_name"`
	InstituteCity string    `json:"institute_city"`
	CreatedAt     time.Time `json:"created_at"`
}

// AddRequest is the body of POST /favorites.
type AddRequest struct {
	InstituteID int64 `json:"institute_id"`
}
