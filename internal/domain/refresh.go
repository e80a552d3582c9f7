package domain

import "time"

// RefreshStatus describes the outcome of one fetch-and-assemble cycle
// of a single instance.
//
// It is metadata only: neither the source lists nor the assembled tree
// are ever stored alongside it.
type RefreshStatus struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// Instance identifies the process that refreshed.
	// Example: web-01:4711
	Instance string `json:"instance"`

	// ─────────────────────────────
	// Observation
	// ─────────────────────────────

	// RefreshedAt is when the cycle finished.
	RefreshedAt time.Time `json:"refreshed_at"`

	// Duration is how long both fetches took, joined.
	Duration time.Duration `json:"duration"`

	// NavRecords and Sites count what each source returned.
	NavRecords int `json:"nav_records"`
	Sites      int `json:"sites"`

	// ─────────────────────────────
	// Degradation
	// ─────────────────────────────

	// NavError and SitesError hold the failure of a source, if any.
	// A failed source contributed an empty list to the cycle.
	NavError   string `json:"nav_error,omitempty"`
	SitesError string `json:"sites_error,omitempty"`
}

// Degraded reports whether at least one source failed.
func (s RefreshStatus) Degraded() bool {
	return s.NavError != "" || s.SitesError != ""
}
