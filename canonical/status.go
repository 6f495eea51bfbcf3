// Package canonical holds the fixed lookup tables used to normalize raw
// marketplace values: listing status, floor labels and province codes.
package canonical

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownStatus = errors.New("no real estate status in url")

type statusCategory struct {
	key   string
	label string
}

// Search result URLs carry the condition filter either as a path segment
// or as the bc query parameter. Order matters: the first match wins.
var statusCategories = []statusCategory{
	{key: "nuove-costruzioni", label: "Nuova costruzione"},
	{key: "bc=20", label: "Ottimo"},
	{key: "bc=30", label: "Buono"},
	{key: "bc=40", label: "Da ristrutturare"},
}

// Status returns the label of the first status key found in url.
func Status(url string) (string, error) {
	for _, c := range statusCategories {
		if strings.Contains(url, c.key) {
			return c.label, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownStatus, url)
}

func StatusKeys() []string {
	keys := make([]string, len(statusCategories))
	for i, c := range statusCategories {
		keys[i] = c.key
	}
	return keys
}
