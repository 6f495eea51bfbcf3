// Package query turns generator replies into runnable SQL and executes it.
package query

import (
	"regexp"
	"strings"

	"subito_scrooper/models"
)

const fence = "```"

var (
	lineBreaks     = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	statementStart = regexp.MustCompile(`(?i)^(select|with)\b`)
	languageTag    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+-]*$`)
	whereWord      = regexp.MustCompile(`\bwhere\b`)
	andWord        = regexp.MustCompile(`\band\b`)
	equalityCond   = regexp.MustCompile(`^([a-z_][a-z0-9_.]*)\s*=\s*(.+)$`)
)

// Extract pulls the SQL statement out of a generator reply. The statement
// is whatever precedes the first code fence; when that text does not start
// with SELECT or WITH the body of the first fenced block is used instead.
// ok is false when the reply has no fence at all.
func Extract(text string) (string, bool) {
	text = lineBreaks.Replace(text)

	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}

	candidate := text[:start]
	if !statementStart.MatchString(strings.TrimSpace(candidate)) {
		rest := text[start+len(fence):]
		if end := strings.Index(rest, fence); end >= 0 {
			candidate = stripLanguageTag(rest[:end])
		}
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", false
	}
	return candidate, true
}

// stripLanguageTag drops the info string of a fenced block ("sql",
// "sqlite", "postgresql") unless the body starts with the statement.
func stripLanguageTag(body string) string {
	body = strings.TrimSpace(body)
	first, rest, _ := strings.Cut(body, " ")
	if statementStart.MatchString(first) || !languageTag.MatchString(first) {
		return body
	}
	return rest
}

// Normalize lower-cases stmt and wraps the column of every string equality
// in the WHERE clause with lower(), so "city = 'Milano'" becomes
// "lower(city) = 'milano'". Only one flat AND-joined WHERE is understood.
func Normalize(stmt string) string {
	stmt = strings.ToLower(strings.TrimSpace(stmt))

	loc := whereWord.FindStringIndex(stmt)
	if loc == nil {
		return stmt
	}

	head := strings.TrimSpace(stmt[:loc[0]])
	clause := stmt[loc[1]:]

	conds := andWord.Split(clause, -1)
	for i, c := range conds {
		conds[i] = normalizeCondition(strings.TrimSpace(c))
	}

	return head + " where " + strings.Join(conds, " and ")
}

func normalizeCondition(cond string) string {
	m := equalityCond.FindStringSubmatch(cond)
	if m == nil {
		return cond
	}
	rhs := strings.TrimSpace(m[2])
	if !strings.HasPrefix(rhs, "'") && !strings.HasPrefix(rhs, `"`) {
		return cond
	}
	return "lower(" + m[1] + ") = " + rhs
}

// ExtractOne runs Extract and Normalize over one reply. A reply without a
// statement yields a query that is not Usable.
func ExtractOne(text string) models.GeneratedQuery {
	q := models.GeneratedQuery{RawText: text, State: models.StatePending}
	stmt, ok := Extract(text)
	if !ok {
		return q
	}
	q.Extracted = stmt
	q.Normalized = Normalize(stmt)
	return q
}

// ExtractAll returns one query per reply, in order.
func ExtractAll(texts []string) []models.GeneratedQuery {
	queries := make([]models.GeneratedQuery, len(texts))
	for i, text := range texts {
		queries[i] = ExtractOne(text)
	}
	return queries
}

// Statements returns the normalized statements of the usable queries.
func Statements(queries []models.GeneratedQuery) []string {
	var stmts []string
	for i := range queries {
		if queries[i].Usable() {
			stmts = append(stmts, queries[i].Normalized)
		}
	}
	return stmts
}
