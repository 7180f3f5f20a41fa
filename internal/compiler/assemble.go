package compiler

import (
	"fmt"
	"strings"
)

// BuildSQL fills the single SELECT template from an intent. It performs no
// semantic validation of the SQL it emits; the only checked precondition is
// that metric and aggregation were resolved, which the extractor's defaulting
// guarantees — a miss here is a programming error, not user input.
func BuildSQL(in Intent) (string, error) {
	if in.Metric.Field == "" || in.Agg == "" {
		return "", fmt.Errorf("intent has no resolved metric (field=%q agg=%q)", in.Metric.Field, in.Agg)
	}

	selectClause := "SELECT 'Total' as period"
	groupClause := ""
	if in.GroupBy != "" {
		selectClause = "SELECT " + in.GroupBy
		groupClause = "GROUP BY " + in.GroupBy
	}

	// Time condition first, then comparison filters, all AND-combined.
	var conditions []string
	if in.TimeCond != "" {
		conditions = append(conditions, in.TimeCond)
	}
	conditions = append(conditions, in.Filters...)
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	sql := fmt.Sprintf("%s, %s(%s) AS total FROM sales s %s %s %s ORDER BY total %s %s",
		selectClause, in.Agg, in.Metric.Field,
		strings.Join(in.Joins, " "), whereClause, groupClause,
		in.SortDir, in.Limit)

	// Collapse all whitespace runs so absent clauses leave no gaps.
	return strings.Join(strings.Fields(sql), " "), nil
}
