package compiler

import (
	"fmt"
	"strings"
)

// UnanswerableError reports a question that references data the schema does
// not hold. Suggestion is the full client-facing message; Alternative is the
// question rewritten with each unavailable term replaced by its nearest
// available analog (literal replacement, no grammar guarantees).
type UnanswerableError struct {
	Terms       []string
	Suggestion  string
	Alternative string
}

func (e *UnanswerableError) Error() string {
	return e.Suggestion
}

// Validate checks a question against the known schema. It returns an
// *UnanswerableError when the question mentions an unavailable metric or
// dimension, otherwise the fully extracted intent. Pure function of the
// input text and the static tables.
func (lx *Lexicon) Validate(question string) (*Intent, error) {
	q := strings.ToLower(question)

	var matched []unavailableTerm
	for _, t := range lx.UnavailableTerms {
		if strings.Contains(q, t.Term) {
			matched = append(matched, t)
		}
	}

	if len(matched) > 0 {
		terms := make([]string, len(matched))
		hints := make([]string, len(matched))
		alternative := q
		for i, t := range matched {
			terms[i] = t.Term
			hints[i] = t.Hint
			alternative = strings.ReplaceAll(alternative, t.Term, t.Substitute)
		}
		return nil, &UnanswerableError{
			Terms:       terms,
			Alternative: alternative,
			Suggestion: fmt.Sprintf("Cannot process query with %s. %s. Try: '%s'",
				strings.Join(terms, ", "), strings.Join(hints, " "), alternative),
		}
	}

	intent := lx.Extract(question)
	return &intent, nil
}
