// Package storage provides the two client-state scopes the report workflow
// writes into: a durable per-user store that survives restarts and is visible
// to every tab, and a tab store that lives only as long as one browsing tab.
package storage

// Keys shared between the submission flow, the report list and the viewer.
// The viewer reads the tab scope first and falls back to the durable scope,
// so both sides must agree on these names exactly.
const (
	KeyAuthUser        = "authUser"
	KeyGeneratedReport = "generatedReport"
	KeyViewReportURL   = "viewReportUrl"
	KeyEditingReportID = "editingReportId"
)

// Scope is one key/value namespace bound to a user (durable) or to a
// user+tab pair (tab-scoped).
type Scope interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// ScopeProvider hands out the durable scope of a user.
type ScopeProvider interface {
	For(userID int) Scope
}
