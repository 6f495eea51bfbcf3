package storage

import (
	"testing"

	"subito_scrooper/models"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		colType string
		want    any
	}{
		{"area text to int", "85 mq", "INTEGER", int64(85)},
		{"plus suffix", "5+", "INTEGER", int64(5)},
		{"int passthrough", 145000, "INTEGER", int64(145000)},
		{"sentinel to null", models.NotFound, "INTEGER", nil},
		{"garbage to null", "Piano", "INT", nil},
		{"bool column", true, "BOOL", true},
		{"bool from text", "false", "BOOLEAN", false},
		{"varchar keeps sentinel", models.NotFound, "VARCHAR(255)", models.NotFound},
		{"varchar stringifies", 3, "TEXT", "3"},
		{"nil stays nil", nil, "INTEGER", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerce(tt.in, tt.colType); got != tt.want {
				t.Fatalf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestInsertSQL(t *testing.T) {
	schema := models.Schema{{Name: "content", Type: "TEXT"}, {Name: "price", Type: "INTEGER"}}

	got := insertSQL("real_estates", schema, func(i int) string { return "?" })
	want := "INSERT INTO real_estates (content, price) VALUES (?, ?)"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got = createTableSQL("real_estates", schema)
	want = "CREATE TABLE real_estates (content TEXT, price INTEGER)"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestValidateTable(t *testing.T) {
	if err := validateTable(models.RealEstateTable, models.RealEstateSchema); err != nil {
		t.Fatalf("expected default schema to validate, got %v", err)
	}
	if err := validateTable("t", nil); err == nil {
		t.Fatalf("expected error for empty schema")
	}
	if err := validateTable("t", models.Schema{{Name: "price", Type: "NUMERIC(10, 2)"}}); err != nil {
		t.Fatalf("expected NUMERIC(10, 2) to validate, got %v", err)
	}
}

func TestNormalizeRow(t *testing.T) {
	row := normalizeRow([]any{[]byte("Cagliari"), int64(1), nil})
	if row[0] != "Cagliari" {
		t.Fatalf("expected string, got %T", row[0])
	}
	if row[1] != int64(1) || row[2] != nil {
		t.Fatalf("unexpected row %v", row)
	}
}
