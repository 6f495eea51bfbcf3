package scraper

import "testing"

func TestClassifySpec(t *testing.T) {
	tests := []struct {
		token string
		kind  SpecKind
		value string
	}{
		{"85 mq", SpecArea, "85 mq"},
		{"3 Locali", SpecRooms, "3"},
		{"1 Locale", SpecRooms, "1"},
		{"2 Bagni", SpecBathrooms, "2"},
		{"1 Bagno", SpecBathrooms, "1"},
		{"Interr.", SpecFloor, "Piano interrato"},
		{"Semint.", SpecFloor, "Piano seminterrato"},
		{"Rialz.", SpecFloor, "Piano rialzato"},
		{"Piano 2", SpecFloor, "Piano"},
		{"Arredato", SpecUnknown, ""},
		// rule order: rooms wins over floor
		{"2 Locali Piano 1", SpecRooms, "2"},
	}
	for _, tt := range tests {
		kind, value := ClassifySpec(tt.token)
		if kind != tt.kind {
			t.Fatalf("ClassifySpec(%q): expected kind %s, got %s", tt.token, tt.kind, kind)
		}
		if value != tt.value {
			t.Fatalf("ClassifySpec(%q): expected value %q, got %q", tt.token, tt.value, value)
		}
	}
}

func TestFloorValue_StripsDegree(t *testing.T) {
	if got := floorValue("2° Piano"); got != "2" {
		t.Fatalf("expected 2, got %q", got)
	}
	if got := floorValue("2Â° Piano"); got != "2" {
		t.Fatalf("expected 2, got %q", got)
	}
}
