package models

type ValidationState string

const (
	StatePending       ValidationState = "PENDING"
	StateAccepted      ValidationState = "ACCEPTED"
	StateNeedsRevision ValidationState = "NEEDS_REVISION"
)

// GeneratedQuery follows one generator reply through extraction,
// normalization and review. It lives for a single search request.
type GeneratedQuery struct {
	RawText    string          `json:"raw_text"`
	Extracted  string          `json:"extracted"`
	Normalized string          `json:"normalized"`
	State      ValidationState `json:"state"`
	Rounds     int             `json:"rounds"`
}

// Usable reports whether the reply held a statement worth running.
func (q *GeneratedQuery) Usable() bool {
	return q.Normalized != ""
}

type Validation struct {
	State     ValidationState
	Statement string
}
