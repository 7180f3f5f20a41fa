package compiler

import (
	"fmt"
	"strings"
)

// IntentDimension is one dimension detected in a question. At most one of the
// detected dimensions ends up as the GROUP BY axis.
type IntentDimension struct {
	Field string
	Join  string
}

// Intent is the structured meaning of a question, built once per request and
// consumed once by BuildSQL.
type Intent struct {
	Metric     Metric
	Agg        string
	Dimensions []IntentDimension
	GroupBy    string
	Joins      []string
	TimeCond   string
	Filters    []string
	SortField  string
	SortDir    string
	Limit      string
}

// Extract runs the seven independent scans over the lower-cased question.
// Every scan tolerates an absent match and falls back to its documented
// default, so the returned intent is always assemblable.
func (lx *Lexicon) Extract(question string) Intent {
	q := strings.ToLower(question)

	in := Intent{
		Metric:     lx.extractMetric(q),
		Dimensions: lx.extractDimensions(q),
		TimeCond:   lx.extractTimeCondition(q),
		Filters:    lx.extractComparisons(q),
	}
	// Metric and aggregation are resolved together: the metric supplies the
	// field and the default function, an explicit verb overrides the function.
	in.Agg = lx.resolveAggregation(q, in.Metric)
	in.GroupBy, in.Joins = lx.extractGrouping(q)
	in.SortField, in.SortDir = lx.extractSorting(q)
	in.Limit = lx.extractLimit(q)
	return in
}

func (lx *Lexicon) extractMetric(q string) Metric {
	for _, m := range lx.Metrics {
		if strings.Contains(q, m.Name) {
			return m
		}
	}
	return lx.Metrics[0] // "sales"
}

func (lx *Lexicon) resolveAggregation(q string, m Metric) string {
	for _, agg := range lx.Aggregations {
		if strings.Contains(q, agg.Keyword) {
			return agg.Func
		}
	}
	return m.Agg
}

func (lx *Lexicon) extractDimensions(q string) []IntentDimension {
	var dims []IntentDimension
	for _, d := range lx.Dimensions {
		if strings.Contains(q, d.Keyword) {
			dims = append(dims, IntentDimension{Field: d.Field, Join: d.Join})
		}
	}
	return dims
}

func (lx *Lexicon) extractTimeCondition(q string) string {
	var conditions []string
	for _, tp := range lx.TimePatterns {
		if strings.Contains(q, tp.Keyword) {
			conditions = append(conditions, tp.Predicate)
		}
	}

	if m := lx.dateRange.FindStringSubmatch(q); m != nil {
		conditions = append(conditions, fmt.Sprintf("s.date BETWEEN '%s' AND '%s'", m[1], m[2]))
	}

	return strings.Join(conditions, " AND ")
}

func (lx *Lexicon) extractComparisons(q string) []string {
	// The compared field is inferred from co-occurring keywords, in priority
	// order, with the sale amount as the default.
	field := "s.total_amount"
	switch {
	case strings.Contains(q, "quantity") || strings.Contains(q, "units"):
		field = "s.quantity"
	case strings.Contains(q, "price"):
		field = "p.price"
	case strings.Contains(q, "stock"):
		field = "p.stock"
	}

	var conditions []string
	for _, c := range lx.Comparisons {
		for _, m := range c.pattern.FindAllStringSubmatch(q, -1) {
			conditions = append(conditions, fmt.Sprintf("%s %s %s", field, c.Op, m[1]))
		}
	}
	return conditions
}

func (lx *Lexicon) extractGrouping(q string) (string, []string) {
	// Explicit "by X" / "per X" phrases win, in fixed priority order.
	for _, gp := range lx.GroupPatterns {
		for _, kw := range gp.Keywords {
			if strings.Contains(q, kw) {
				return gp.Field, joinList(gp.Join)
			}
		}
	}

	// Otherwise a looser bare-keyword presence check, same order. The
	// date/month/year patterns have no loose form.
	for _, gp := range lx.GroupPatterns {
		if gp.Loose == "" {
			continue
		}
		if strings.Contains(q, gp.Loose) || (gp.Loose == "product" && strings.Contains(q, "item")) {
			return gp.Field, joinList(gp.Join)
		}
	}

	return "", nil
}

func joinList(join string) []string {
	if join == "" {
		return nil
	}
	return []string{join}
}

func (lx *Lexicon) extractSorting(q string) (field, direction string) {
	direction = "DESC"
	for _, sp := range lx.SortPatterns {
		if strings.Contains(q, sp.Keyword) {
			direction = sp.Direction
			break
		}
	}

	field = "total"
	if strings.Contains(q, "quantity") || strings.Contains(q, "units") {
		field = "quantity"
	} else if strings.Contains(q, "average") || strings.Contains(q, "avg") {
		field = "average"
	}
	return field, direction
}

func (lx *Lexicon) extractLimit(q string) string {
	for _, p := range lx.limitPatterns {
		if m := p.FindStringSubmatch(q); m != nil {
			return "LIMIT " + m[1]
		}
	}

	for _, kw := range lx.limitKeywords {
		if strings.Contains(q, kw) {
			return "LIMIT 5"
		}
	}
	return ""
}
