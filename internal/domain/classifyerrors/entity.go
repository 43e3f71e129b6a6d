package classifyerrors

import "time"

// ClassifyFailure represents a persisted gateway failure entry. History rows
// never carry the real error (the sentinel hides it), so this audit trail is
// the only place an operator can see why a classification came back as Error.
type ClassifyFailure struct {
	ID         int64     `json:"id"`
	AnalysisID string    `json:"analysis_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
