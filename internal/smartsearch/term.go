package smartsearch

import "strings"

// Term is the whitespace-delimited token under the cursor
type Term struct {
	Start, End int // rune offsets into the query, End exclusive
	Text       string
	Key        string // tag key when the term has the form key:value
	Value      string // partial value after the colon, unquoted
	HasKey     bool
	Negated    bool // leading "!"
}

// CurrentTerm finds the term containing cursor. Spaces inside double quotes
// do not split terms.
func CurrentTerm(query string, cursor int) Term {
	runes := []rune(query)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}

	// quoted[i] reports whether rune i sits inside an open quote
	quoted := make([]bool, len(runes))
	inQuote := false
	for i, r := range runes {
		if r == '"' {
			inQuote = !inQuote
		}
		quoted[i] = inQuote
	}

	start := cursor
	for start > 0 && !(runes[start-1] == ' ' && !quoted[start-1]) {
		start--
	}
	end := cursor
	for end < len(runes) && !(runes[end] == ' ' && !quoted[end]) {
		end++
	}

	t := Term{Start: start, End: end, Text: string(runes[start:end])}
	body := t.Text
	if strings.HasPrefix(body, "!") {
		t.Negated = true
		body = body[1:]
	}
	if idx := strings.Index(body, ":"); idx > 0 {
		t.HasKey = true
		t.Key = body[:idx]
		t.Value = strings.Trim(body[idx+1:], `"`)
	}
	return t
}

// Replace substitutes the term's text in query with repl and returns the new
// query plus the rune offset just after the replacement.
func (t Term) Replace(query, repl string) (string, int) {
	runes := []rune(query)
	out := string(runes[:t.Start]) + repl + string(runes[t.End:])
	return out, t.Start + len([]rune(repl))
}

// FormatValue quotes a tag value containing spaces
func FormatValue(v string) string {
	if strings.ContainsAny(v, " \t") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}
