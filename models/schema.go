package models

const RealEstateTable = "real_estates"

type Column struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Schema is an ordered column list; inserts and SELECT * follow its order.
type Schema []Column

func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

var RealEstateSchema = Schema{
	{Name: "content", Type: "VARCHAR(255)"},
	{Name: "price", Type: "INTEGER"},
	{Name: "link", Type: "VARCHAR(255)"},
	{Name: "sold", Type: "BOOL"},
	{Name: "city", Type: "VARCHAR(255)"},
	{Name: "province", Type: "VARCHAR(255)"},
	{Name: "is_real_estate_agency", Type: "BOOL"},
	{Name: "mq", Type: "INTEGER"},
	{Name: "n_rooms", Type: "INTEGER"},
	{Name: "n_bathrooms", Type: "INTEGER"},
	{Name: "floor", Type: "VARCHAR(50)"},
}

// Row is one result tuple, shaped by whatever statement produced it.
type Row []any
