package compiler

import "regexp"

// Metric maps a business term to one aggregated schema field.
type Metric struct {
	Name        string
	Field       string
	Agg         string
	Description string
}

// Dimension is a categorical axis a result can be broken out by.
// Join is empty when the field lives on the sales table itself.
type Dimension struct {
	Keyword string
	Field   string
	Join    string
}

type aggregation struct {
	Keyword string
	Func    string
}

type timePattern struct {
	Keyword   string
	Predicate string
}

type comparison struct {
	Phrase  string
	Op      string
	pattern *regexp.Regexp
}

type sortPattern struct {
	Keyword   string
	Direction string
}

type groupPattern struct {
	Keywords []string // explicit "by X" / "per X" phrases
	Loose    string   // bare keyword fallback, empty when none
	Field    string
	Join     string
}

type unavailableTerm struct {
	Term       string
	Hint       string
	Substitute string
}

// Lexicon holds every pattern table the compiler matches against. Entries are
// ordered slices rather than maps: scan order is the priority order, first
// match wins. Built once at startup and never mutated.
type Lexicon struct {
	Metrics          []Metric
	Aggregations     []aggregation
	TimePatterns     []timePattern
	Comparisons      []comparison
	SortPatterns     []sortPattern
	Dimensions       []Dimension
	GroupPatterns    []groupPattern
	UnavailableTerms []unavailableTerm

	dateRange     *regexp.Regexp
	limitPatterns []*regexp.Regexp
	limitKeywords []string
}

// NewLexicon builds the full pattern table set.
func NewLexicon() *Lexicon {
	lx := &Lexicon{
		Metrics: []Metric{
			{Name: "sales", Field: "s.total_amount", Agg: "SUM", Description: "total sales amount"},
			{Name: "revenue", Field: "s.total_amount", Agg: "SUM", Description: "total revenue"},
			{Name: "quantity", Field: "s.quantity", Agg: "SUM", Description: "total units sold"},
			{Name: "average_sale", Field: "s.total_amount", Agg: "AVG", Description: "average sale amount"},
			{Name: "customer_count", Field: "c.id", Agg: "COUNT DISTINCT", Description: "number of unique customers"},
			{Name: "order_count", Field: "s.id", Agg: "COUNT", Description: "number of orders"},
		},
		Aggregations: []aggregation{
			{Keyword: "total", Func: "SUM"},
			{Keyword: "average", Func: "AVG"},
			{Keyword: "count", Func: "COUNT"},
			{Keyword: "minimum", Func: "MIN"},
			{Keyword: "maximum", Func: "MAX"},
			{Keyword: "sum", Func: "SUM"},
			{Keyword: "avg", Func: "AVG"},
			{Keyword: "min", Func: "MIN"},
			{Keyword: "max", Func: "MAX"},
		},
		TimePatterns: []timePattern{
			{Keyword: "today", Predicate: "date(s.date) = date('now')"},
			{Keyword: "yesterday", Predicate: "date(s.date) = date('now', '-1 day')"},
			{Keyword: "this week", Predicate: "strftime('%Y-%W', s.date) = strftime('%Y-%W', 'now')"},
			{Keyword: "last week", Predicate: "strftime('%Y-%W', s.date) = strftime('%Y-%W', 'now', '-7 days')"},
			{Keyword: "this month", Predicate: "strftime('%Y-%m', s.date) = strftime('%Y-%m', 'now')"},
			{Keyword: "last month", Predicate: "strftime('%Y-%m', s.date) = strftime('%Y-%m', 'now', '-1 month')"},
			{Keyword: "this year", Predicate: "strftime('%Y', s.date) = strftime('%Y', 'now')"},
			{Keyword: "last year", Predicate: "strftime('%Y', s.date) = strftime('%Y', 'now', '-1 year')"},
		},
		SortPatterns: []sortPattern{
			{Keyword: "ascending", Direction: "ASC"},
			{Keyword: "descending", Direction: "DESC"},
			{Keyword: "increasing", Direction: "ASC"},
			{Keyword: "decreasing", Direction: "DESC"},
			{Keyword: "highest", Direction: "DESC"},
			{Keyword: "lowest", Direction: "ASC"},
			{Keyword: "most", Direction: "DESC"},
			{Keyword: "least", Direction: "ASC"},
		},
		Dimensions: []Dimension{
			{Keyword: "region", Field: "c.region", Join: "customers c"},
			{Keyword: "product", Field: "p.name", Join: "products p"},
			{Keyword: "category", Field: "p.category", Join: "products p"},
			{Keyword: "customer", Field: "c.name", Join: "customers c"},
			{Keyword: "date", Field: "s.date"},
		},
		GroupPatterns: []groupPattern{
			{Keywords: []string{"by region", "per region"}, Loose: "region",
				Field: "c.region", Join: "JOIN customers c ON s.customer_id = c.id"},
			{Keywords: []string{"by product", "per product", "by item"}, Loose: "product",
				Field: "p.name", Join: "JOIN products p ON s.product_id = p.id"},
			{Keywords: []string{"by category", "per category"}, Loose: "category",
				Field: "p.category", Join: "JOIN products p ON s.product_id = p.id"},
			{Keywords: []string{"by customer", "per customer"}, Loose: "customer",
				Field: "c.name", Join: "JOIN customers c ON s.customer_id = c.id"},
			{Keywords: []string{"by date", "per date"}, Field: "date(s.date)"},
			{Keywords: []string{"by month", "per month"}, Field: "strftime('%Y-%m', s.date)"},
			{Keywords: []string{"by year", "per year"}, Field: "strftime('%Y', s.date)"},
		},
		UnavailableTerms: []unavailableTerm{
			{Term: "profit", Hint: "We don't have profit data, but you can query sales or revenue", Substitute: "revenue"},
			{Term: "tax", Hint: "Tax information is not available, but you can query total sales", Substitute: "total sales"},
			{Term: "discount", Hint: "Discount data is not available, but you can query sales amounts", Substitute: "sales"},
			{Term: "returns", Hint: "Return data is not available, but you can query sales", Substitute: "sales"},
			{Term: "shipping", Hint: "Shipping data is not available", Substitute: "sales"},
			{Term: "cost", Hint: "Cost data is not available, but you can query sales price", Substitute: "price"},
			{Term: "country", Hint: "Country data is not available, but you can query by region", Substitute: "region"},
			{Term: "city", Hint: "City data is not available, but you can query by region", Substitute: "region"},
			{Term: "state", Hint: "State data is not available, but you can query by region", Substitute: "region"},
			{Term: "age", Hint: "Customer age data is not available", Substitute: "customer"},
			{Term: "gender", Hint: "Customer gender data is not available", Substitute: "customer"},
		},

		dateRange: regexp.MustCompile(`between\s+(\d{4}-\d{2}-\d{2})\s+and\s+(\d{4}-\d{2}-\d{2})`),
		limitPatterns: []*regexp.Regexp{
			regexp.MustCompile(`top\s+(\d+)`),
			regexp.MustCompile(`first\s+(\d+)`),
			regexp.MustCompile(`(\d+)\s+best`),
			regexp.MustCompile(`(\d+)\s+most`),
			regexp.MustCompile(`limit\s+(\d+)`),
			regexp.MustCompile(`show\s+(\d+)`),
		},
		limitKeywords: []string{"top", "best", "highest", "lowest"},
	}

	comparisons := []struct{ phrase, op string }{
		{"greater than", ">"},
		{"more than", ">"},
		{"higher than", ">"},
		{"less than", "<"},
		{"lower than", "<"},
		{"equal to", "="},
		{"equals", "="},
		{"not equal to", "!="},
		{"at least", ">="},
		{"greater than or equal to", ">="},
		{"at most", "<="},
		{"less than or equal to", "<="},
	}
	for _, c := range comparisons {
		lx.Comparisons = append(lx.Comparisons, comparison{
			Phrase:  c.phrase,
			Op:      c.op,
			pattern: regexp.MustCompile(regexp.QuoteMeta(c.phrase) + `\s+(\d+(?:\.\d+)?)`),
		})
	}

	return lx
}
