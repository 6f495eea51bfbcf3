package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"subito_scrooper/models"
)

var (
	ErrTableNotFound     = errors.New("table not found")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidType       = errors.New("invalid column type")
)

// RecordStore persists extracted records and runs read-only statements
// against them. Execute must reject statements that write.
type RecordStore interface {
	WriteBatch(ctx context.Context, table string, schema models.Schema, records []models.Record, createIfMissing bool) (int, error)
	Execute(ctx context.Context, statement string) ([]models.Row, error)
	Close() error
}

// RunLog keeps the history of index runs.
type RunLog interface {
	CreateRun(ctx context.Context, run *models.IndexRun) error
	UpdateRun(ctx context.Context, run *models.IndexRun) error
	ListRuns(ctx context.Context, limit int) ([]models.IndexRun, error)
}

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	typePattern  = regexp.MustCompile(`^[A-Za-z]+(\s*\(\s*\d+\s*(,\s*\d+\s*)?\))?$`)
	leadingInt   = regexp.MustCompile(`^\s*(-?\d+)`)
)

func validateTable(table string, schema models.Schema) error {
	if !identPattern.MatchString(table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}
	if len(schema) == 0 {
		return fmt.Errorf("empty schema for table %s", table)
	}
	for _, c := range schema {
		if !identPattern.MatchString(c.Name) {
			return fmt.Errorf("%w: column %q", ErrInvalidIdentifier, c.Name)
		}
		if !typePattern.MatchString(c.Type) {
			return fmt.Errorf("%w: %q for column %s", ErrInvalidType, c.Type, c.Name)
		}
	}
	return nil
}

func createTableSQL(table string, schema models.Schema) string {
	cols := make([]string, len(schema))
	for i, c := range schema {
		cols[i] = c.Name + " " + c.Type
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))
}

func insertSQL(table string, schema models.Schema, placeholder func(i int) string) string {
	marks := make([]string, len(schema))
	for i := range schema {
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(schema.Names(), ", "), strings.Join(marks, ", "))
}

// recordValues reads a record's values in schema order, converted to each
// column's declared type.
func recordValues(rec models.Record, schema models.Schema) ([]any, error) {
	values := make([]any, len(schema))
	for i, c := range schema {
		v, err := rec.Column(c.Name)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		values[i] = coerce(v, c.Type)
	}
	return values, nil
}

// coerce converts v to the declared column type. INTEGER columns take the
// leading integer of textual values ("85 mq" is 85); the NotFound sentinel
// and unparseable text become NULL. Text columns keep the sentinel.
func coerce(v any, colType string) any {
	if v == nil {
		return nil
	}
	t := strings.ToUpper(colType)
	switch {
	case strings.Contains(t, "INT"):
		return toInt(v)
	case strings.HasPrefix(t, "BOOL"):
		return toBool(v)
	default:
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
}

func toInt(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case string:
		if x == models.NotFound {
			return nil
		}
		m := leadingInt.FindStringSubmatch(x)
		if m == nil {
			return nil
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil
		}
		return n
	default:
		return nil
	}
}

func toBool(v any) any {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return nil
		}
		return b
	default:
		return nil
	}
}

// normalizeRow surfaces driver byte slices as strings.
func normalizeRow(values []any) models.Row {
	row := make(models.Row, len(values))
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			row[i] = string(b)
			continue
		}
		row[i] = v
	}
	return row
}
