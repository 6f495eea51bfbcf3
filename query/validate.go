package query

import (
	"errors"
	"strings"

	"subito_scrooper/models"
)

// CompletionMarker is what a reviewing generator replies with once it is
// satisfied with the statement it was shown.
const CompletionMarker = "DONE"

// ErrRevisionLimit is returned by callers that give up after their
// configured number of review rounds.
var ErrRevisionLimit = errors.New("revision limit reached")

// Validate accepts text carrying the completion marker, with the marker
// removed. Anything else needs another round and is returned unchanged.
func Validate(text string) models.Validation {
	if !strings.Contains(text, CompletionMarker) {
		return models.Validation{State: models.StateNeedsRevision, Statement: text}
	}
	return models.Validation{
		State:     models.StateAccepted,
		Statement: strings.TrimSpace(strings.ReplaceAll(text, CompletionMarker, "")),
	}
}
