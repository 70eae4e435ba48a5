// Package fraudreports lets users flag institutes for fraudulent
// behavior. Submissions are quota-limited to 5 per UTC calendar day per
// user; admins can review the full stream.
package fraudreports

import "time"

// maxReportsPerDay is the per-user submission quota, counted over the
// current UTC calendar day.
const maxReportsPerDay = 5

// FraudReport is one submitted report. ReporterEmail is only populated on
// the admin listing.
type FraudReport struct {
	ID            int64     `json:"id"`
	InstituteID   int64     `json:"institute_id"`
	Reason        string    `json:"reason"`
	Details       *string   `json:"details,omitempty"`
	ReporterEmail string    `json:"reporter_email,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SubmitRequest is the body of POST /fraud-reports.
type SubmitRequest struct {
	InstituteID int64   `json:"institute_id"`
	Reason      string  `json:"reason"`
	Details     *string `json:"details,omitempty"`
}
