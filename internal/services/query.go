package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codyseavey/pokecard-lookup/internal/models"
)

var (
	// A bare card number ("25") or a number/total pair ("25/102").
	cardNumberPattern = regexp.MustCompile(`^(\d+)(/\d+)?$`)

	// Characters that are special in the upstream wildcard syntax. The double
	// quote is included so a term cannot close the quoted value early.
	specialChars = regexp.MustCompile(`[.*+?^${}()|\[\]\\"]`)
)

// Query is a normalized search term, independent of any source's syntax.
type Query struct {
	// Number is set when the term is a card number; it holds the literal
	// the upstream must match exactly.
	Number string
	// Field and Escaped are set for free-text searches.
	Field   models.SearchField
	Escaped string
}

// NormalizeQuery turns raw user input into a Query. Blank input returns
// ErrEmptyQuery so callers never issue a request for it.
func NormalizeQuery(raw string, field models.SearchField) (Query, error) {
	term := strings.TrimSpace(raw)
	if term == "" {
		return Query{}, ErrEmptyQuery
	}

	if m := cardNumberPattern.FindStringSubmatch(term); m != nil {
		if m[2] != "" {
			return Query{Number: m[0]}, nil
		}
		return Query{Number: m[1]}, nil
	}

	if field == "" {
		field = models.FieldName
	}
	return Query{Field: field, Escaped: EscapeTerm(term)}, nil
}

// EscapeTerm prefixes every special character with a backslash.
func EscapeTerm(term string) string {
	return specialChars.ReplaceAllString(term, `\$0`)
}

// IsNumber reports whether the query is an exact card number match.
func (q Query) IsNumber() bool {
	return q.Number != ""
}

// English renders the query in pokemontcg.io's q syntax.
func (q Query) English() string {
	if q.IsNumber() {
		return fmt.Sprintf(`number:"%s"`, q.Number)
	}
	return fmt.Sprintf(`%s:"*%s*"`, englishField(q.Field), q.Escaped)
}

// Japanese renders the query as a single filter parameter for the Japanese
// source, e.g. ("name", "like:*char*") or ("number", "eq:25/102").
func (q Query) Japanese() (key, value string) {
	if q.IsNumber() {
		return "number", "eq:" + q.Number
	}
	return string(q.Field), "like:*" + q.Escaped + "*"
}

func englishField(f models.SearchField) string {
	switch f {
	case models.FieldSet:
		return "set.name"
	case models.FieldArtist:
		return "artist"
	default:
		return "name"
	}
}
