package services

import (
	"fmt"
	"strings"
	"text/template"

	"subito_scrooper/models"
	"subito_scrooper/query"
)

var columnNotes = map[string]string{
	"content":               "Description of the house",
	"price":                 "Price of the house",
	"link":                  "Link of the ad",
	"sold":                  "If the house is sold or not",
	"city":                  "City of the house",
	"province":              "Province of the house",
	"is_real_estate_agency": "If it is owned by an agency",
	"mq":                    "Square meters of the house",
	"n_rooms":               "Number of rooms in the house",
	"n_bathrooms":           "Number of bathrooms in the house",
	"floor":                 "Floor of the house",
}

// The SQL prompt ends on an open fence, so a completion model writes the
// statement first and closes the fence after it.
var sqlPrompt = template.Must(template.New("sql").Funcs(template.FuncMap{
	"note": func(name string) string { return columnNotes[name] },
	"last": func(i int, cols models.Schema) bool { return i == len(cols)-1 },
}).Parse(`### Instructions:
Your task is to convert a question into a SQL query, given a SQL database schema.
Adhere to these rules:
- **Deliberately go through the question and database schema word by word** to appropriately answer the question
- When creating a ratio, always cast the numerator as float
- Limit to 5 results at most

### Input:
Generate a SQL query that answers the question ` + "`{{.Question}}`" + `.
This query will run on a database whose schema is represented in this string:

TABLE {{.Table}} (
{{- range $i, $c := .Columns}}
  {{$c.Name}} {{$c.Type}}{{if not (last $i $.Columns)}},{{end}}{{with note $c.Name}} -- {{.}}{{end}}
{{- end}}
);

### Response:
Based on your instructions, here is the SQL query I have generated to answer the question ` + "`{{.Question}}`" + `:
` + "```sql\n"))

var reviewPrompt = template.Must(template.New("review").Parse(`Here was the text you were provided:
{{.Question}}
Here is the query you previously generated:
{{.Query}}
Is the query correct?
Things to check for:
- Table name should be {{.Table}}
- Column names should be {{.ColumnNames}}

If the query is correct, say '{{.Marker}}' and return the SQL query.
If not, simply return the best SQL query you can come up with, followed by ` + "```" + `.

Based on your instructions, here is the SQL query:
`))

type promptData struct {
	Question    string
	Query       string
	Table       string
	Columns     models.Schema
	ColumnNames string
	Marker      string
}

func renderSQLPrompt(question, table string, schema models.Schema) (string, error) {
	return render(sqlPrompt, promptData{Question: question, Table: table, Columns: schema})
}

func renderReviewPrompt(question, stmt, table string, schema models.Schema) (string, error) {
	return render(reviewPrompt, promptData{
		Question:    question,
		Query:       stmt,
		Table:       table,
		ColumnNames: strings.Join(schema.Names(), ", "),
		Marker:      query.CompletionMarker,
	})
}

func render(t *template.Template, data promptData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}
