package compiler

import (
	"regexp"
	"strings"
)

const genericExplanation = "This query retrieves data from the database."

var (
	selectListRe = regexp.MustCompile(`(?i)SELECT\s+(.*?)\s+FROM`)
	groupByRe    = regexp.MustCompile(`(?i)GROUP BY\s+(.*?)\s*(?:ORDER BY|LIMIT|$)`)
	whereBodyRe  = regexp.MustCompile(`(?i)WHERE\s+(.*?)\s*(?:GROUP BY|ORDER BY|LIMIT|$)`)
	limitNRe     = regexp.MustCompile(`(?i)LIMIT\s+(\d+)`)
)

// aggPhrases is checked in order against the SELECT list; the first function
// literal found decides the opening verb phrase.
var aggPhrases = []struct {
	fn     string
	phrase string
}{
	{"SUM", "This query calculates the total"},
	{"AVG", "This query calculates the average"},
	{"COUNT", "This query counts"},
	{"MIN", "This query finds the minimum"},
	{"MAX", "This query finds the maximum"},
}

// Explain reconstructs a plain-language sentence from assembled SQL text.
// Parts that cannot be extracted are omitted silently; when nothing at all is
// recognized a generic sentence is returned. Never errors.
func Explain(sql string) string {
	var parts []string

	if m := selectListRe.FindStringSubmatch(sql); m != nil {
		for _, agg := range aggPhrases {
			if strings.Contains(m[1], agg.fn) {
				parts = append(parts, agg.phrase)
				break
			}
		}
	}

	if strings.Contains(sql, "GROUP BY") {
		if m := groupByRe.FindStringSubmatch(sql); m != nil {
			field := m[1]
			// Only the last dotted segment reads naturally ("region", not "c.region").
			parts = append(parts, "grouped by "+field[strings.LastIndex(field, ".")+1:])
		}
	}

	if strings.Contains(sql, "WHERE") {
		if m := whereBodyRe.FindStringSubmatch(sql); m != nil {
			parts = append(parts, "filtered by "+m[1])
		}
	}

	if strings.Contains(sql, "ORDER BY") {
		if strings.Contains(sql, "DESC") {
			parts = append(parts, "sorted in descending order")
		} else {
			parts = append(parts, "sorted in ascending order")
		}
	}

	if strings.Contains(sql, "LIMIT") {
		if m := limitNRe.FindStringSubmatch(sql); m != nil {
			parts = append(parts, "showing top "+m[1]+" results")
		}
	}

	if len(parts) == 0 {
		return genericExplanation
	}
	return strings.Join(parts, " ") + "."
}
