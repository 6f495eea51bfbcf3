package canonical

import "strings"

var floorLabels = map[string]string{
	"Interr.": "Piano interrato",
	"Semint.": "Piano seminterrato",
	"Rialz.":  "Piano rialzato",
}

// Floor maps an abbreviated floor token to its label. Callers fall back to
// the raw token when ok is false.
func Floor(raw string) (string, bool) {
	label, ok := floorLabels[raw]
	return label, ok
}

// ContainsFloorKey reports whether s mentions any abbreviated floor token.
func ContainsFloorKey(s string) bool {
	for key := range floorLabels {
		if strings.Contains(s, key) {
			return true
		}
	}
	return false
}
