package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSQLBareQuestion(t *testing.T) {
	lx := NewLexicon()

	// No time, filter, group, sort or limit keyword: the whole template
	// collapses to the literal period label and the default metric.
	sql, err := BuildSQL(lx.Extract("everything"))
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT 'Total' as period, SUM(s.total_amount) AS total FROM sales s ORDER BY total DESC",
		sql)
}

func TestBuildSQLGrouped(t *testing.T) {
	lx := NewLexicon()

	sql, err := BuildSQL(lx.Extract("Show me total sales by region"))
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT c.region, SUM(s.total_amount) AS total FROM sales s JOIN customers c ON s.customer_id = c.id GROUP BY c.region ORDER BY total DESC",
		sql)
}

func TestBuildSQLTimeConditionPrecedesFilters(t *testing.T) {
	lx := NewLexicon()

	sql, err := BuildSQL(lx.Extract("sales this month greater than 100"))
	require.NoError(t, err)

	whereIdx := strings.Index(sql, "WHERE")
	require.GreaterOrEqual(t, whereIdx, 0)
	timeIdx := strings.Index(sql, "strftime('%Y-%m', s.date)")
	filterIdx := strings.Index(sql, "s.total_amount > 100")
	require.GreaterOrEqual(t, timeIdx, 0)
	require.GreaterOrEqual(t, filterIdx, 0)
	assert.Less(t, timeIdx, filterIdx, "time condition must come before comparison filters")
	assert.Contains(t, sql, "AND")
}

func TestBuildSQLTopProductsByRevenueLastMonth(t *testing.T) {
	lx := NewLexicon()

	sql, err := BuildSQL(lx.Extract("top 5 products by revenue last month"))
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT p.name, SUM(s.total_amount) AS total FROM sales s JOIN products p ON s.product_id = p.id WHERE strftime('%Y-%m', s.date) = strftime('%Y-%m', 'now', '-1 month') GROUP BY p.name ORDER BY total DESC LIMIT 5",
		sql)
}

func TestBuildSQLWhitespaceNormalized(t *testing.T) {
	lx := NewLexicon()

	sql, err := BuildSQL(lx.Extract("sales by region"))
	require.NoError(t, err)
	assert.NotContains(t, sql, "  ")
	assert.False(t, strings.HasSuffix(sql, " "))
}

func TestBuildSQLRejectsUnresolvedMetric(t *testing.T) {
	_, err := BuildSQL(Intent{SortDir: "DESC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resolved metric")
}

func TestBuildSQLIsDeterministic(t *testing.T) {
	lx := NewLexicon()

	first, err := BuildSQL(lx.Extract("top 5 products by revenue last month"))
	require.NoError(t, err)
	second, err := BuildSQL(lx.Extract("top 5 products by revenue last month"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
