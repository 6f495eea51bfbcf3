package canonical

import (
	"errors"
	"testing"
)

func TestProvinceKnownCodes(t *testing.T) {
	codes := ProvinceCodes()
	if len(codes) != 107 {
		t.Fatalf("expected 107 province codes, got %d", len(codes))
	}
	for _, code := range codes {
		name, err := Province(code)
		if err != nil {
			t.Fatalf("Province(%q) returned error: %v", code, err)
		}
		if name != provinces[code] {
			t.Fatalf("Province(%q) = %q, want %q", code, name, provinces[code])
		}
	}

	if name, _ := Province("CA"); name != "Cagliari" {
		t.Fatalf("expected Cagliari, got %q", name)
	}
}

func TestProvinceUnknownCodes(t *testing.T) {
	for _, code := range []string{"", "XX", "ca", "ROMA", "ZZ"} {
		name, err := Province(code)
		if !errors.Is(err, ErrUnknownProvince) {
			t.Fatalf("Province(%q): expected ErrUnknownProvince, got %v", code, err)
		}
		if name != "" {
			t.Fatalf("Province(%q): expected no name, got %q", code, name)
		}
	}
}

func TestStatusFirstMatchWins(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.subito.it/annunci-sardegna/vendita/appartamenti/nuove-costruzioni/?o=2", "Nuova costruzione"},
		{"https://www.subito.it/annunci-sardegna/vendita/appartamenti/?bc=20", "Ottimo"},
		{"https://www.subito.it/annunci-sardegna/vendita/appartamenti/?bc=30&o=1", "Buono"},
		{"https://www.subito.it/annunci-sardegna/vendita/appartamenti/?bc=40", "Da ristrutturare"},
		{"https://www.subito.it/nuove-costruzioni/?bc=40", "Nuova costruzione"},
	}

	for _, tt := range tests {
		got, err := Status(tt.url)
		if err != nil {
			t.Fatalf("Status(%q) returned error: %v", tt.url, err)
		}
		if got != tt.want {
			t.Errorf("Status(%q) = %q; want %q", tt.url, got, tt.want)
		}
	}
}

func TestStatusMissing(t *testing.T) {
	_, err := Status("https://www.subito.it/annunci-sardegna/vendita/appartamenti/")
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if len(StatusKeys()) != 4 {
		t.Fatalf("expected 4 status keys, got %d", len(StatusKeys()))
	}
}

func TestFloor(t *testing.T) {
	if label, ok := Floor("Interr."); !ok || label != "Piano interrato" {
		t.Fatalf("expected Piano interrato, got %q (ok=%v)", label, ok)
	}
	if _, ok := Floor("Piano 2"); ok {
		t.Fatalf("expected no mapping for Piano 2")
	}
	if !ContainsFloorKey("Rialz.") {
		t.Fatalf("expected Rialz. to be a floor key")
	}
	if ContainsFloorKey("3 Locali") {
		t.Fatalf("did not expect 3 Locali to contain a floor key")
	}
}
