package scraper

import (
	"strings"

	"subito_scrooper/canonical"
)

type SpecKind int

const (
	SpecUnknown SpecKind = iota
	SpecArea
	SpecRooms
	SpecBathrooms
	SpecFloor
)

func (k SpecKind) String() string {
	switch k {
	case SpecArea:
		return "mq"
	case SpecRooms:
		return "n_rooms"
	case SpecBathrooms:
		return "n_bathrooms"
	case SpecFloor:
		return "floor"
	default:
		return "unknown"
	}
}

// SpecRule classifies one token of a card's info panel.
type SpecRule struct {
	Kind  SpecKind
	Match func(token string) bool
	Value func(token string) string
}

// SpecRules is evaluated in order and the first matching rule wins.
// "2 Locali Piano 1" is therefore rooms, never floor.
var SpecRules = []SpecRule{
	{
		Kind:  SpecArea,
		Match: func(t string) bool { return strings.HasSuffix(t, "mq") },
		Value: func(t string) string { return t },
	},
	{
		Kind:  SpecRooms,
		Match: func(t string) bool { return strings.Contains(t, "Local") },
		Value: leadingToken,
	},
	{
		Kind:  SpecBathrooms,
		Match: func(t string) bool { return strings.Contains(t, "Bagn") },
		Value: leadingToken,
	},
	{
		Kind: SpecFloor,
		Match: func(t string) bool {
			return strings.Contains(t, "Piano") || canonical.ContainsFloorKey(t)
		},
		Value: floorValue,
	},
}

func ClassifySpec(token string) (SpecKind, string) {
	for _, rule := range SpecRules {
		if rule.Match(token) {
			return rule.Kind, rule.Value(token)
		}
	}
	return SpecUnknown, ""
}

func leadingToken(t string) string {
	fields := strings.Fields(t)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// floorValue keeps only the first word of unmapped tokens, so "Piano 2"
// becomes "Piano".
func floorValue(t string) string {
	if label, ok := canonical.Floor(t); ok {
		return label
	}
	return strings.TrimRight(leadingToken(t), "°Â")
}
