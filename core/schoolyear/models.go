package schoolyear

import "time"

// SchoolYear is an academic cycle (e.g. "2025-2026"). At most one per school
// is flagged current.
type SchoolYear struct {
	ID       string    `json:"id"`
	SchoolID string    `json:"school_id"`
	Name     string    `json:"name"`
	StartsOn time.Time `json:"starts_on"`
	EndsOn   time.Time `json:"ends_on"`
	Current  bool      `json:"current"`
}
