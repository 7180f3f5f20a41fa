// Package compiler translates free-text analytical questions into
// parameterized SQL aggregate queries against the fixed sales schema, plus a
// plain-language explanation of the generated query. The pipeline is
// deterministic and stateless: validate, extract intent, assemble, explain.
// An optional LLM provider is consulted first and any failure falls back
// silently to the rule-based pipeline.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/rfinnegan/salesql/internal/llm"
)

// Result is the compiler's output: the SQL text and its explanation.
type Result struct {
	SQL         string
	Explanation string
}

// Compiler is safe for concurrent use; it holds only immutable tables and an
// optional provider handle.
type Compiler struct {
	lexicon *Lexicon
	schema  *Schema
	llm     llm.Provider
	logger  *slog.Logger
}

// New builds a compiler. provider may be nil, in which case only the
// rule-based pipeline runs. logger may be nil.
func New(provider llm.Provider, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		lexicon: NewLexicon(),
		schema:  DefaultSchema(),
		llm:     provider,
		logger:  logger,
	}
}

// Schema returns the fixed logical schema the compiler operates over.
func (c *Compiler) Schema() *Schema {
	return c.schema
}

// Generate converts a question into SQL plus an explanation. The LLM path is
// tried once when configured; any transport failure or structurally invalid
// response falls back to the rule-based pipeline. An *UnanswerableError is
// returned when the question references data the schema does not hold.
func (c *Compiler) Generate(ctx context.Context, question string) (Result, error) {
	if c.llm != nil {
		res, err := c.generateWithAI(ctx, question)
		if err == nil {
			c.logger.InfoContext(ctx, "AI generated SQL", "sql", res.SQL)
			return res, nil
		}
		c.logger.WarnContext(ctx, "AI generation failed, falling back to rule-based processing", "error", err)
	}
	return c.generateRuleBased(ctx, question)
}

func (c *Compiler) generateWithAI(ctx context.Context, question string) (Result, error) {
	resp, err := c.llm.GenerateSQL(ctx, llm.GenerateRequest{
		Question: question,
		Schema:   c.schema.DescribeText(),
	})
	if err != nil {
		return Result{}, err
	}
	if resp.SQL == "" {
		return Result{}, fmt.Errorf("provider returned no SQL")
	}
	if err := validateGeneratedSQL(resp.SQL); err != nil {
		return Result{}, err
	}

	explanation := resp.Explanation
	if explanation == "" {
		explanation = Explain(resp.SQL)
	}
	return Result{SQL: resp.SQL, Explanation: explanation}, nil
}

func (c *Compiler) generateRuleBased(ctx context.Context, question string) (Result, error) {
	intent, err := c.lexicon.Validate(question)
	if err != nil {
		c.logger.WarnContext(ctx, "invalid query detected", "error", err)
		return Result{}, err
	}

	sql, err := BuildSQL(*intent)
	if err != nil {
		return Result{}, err
	}

	c.logger.InfoContext(ctx, "rule-based generated SQL", "sql", sql)
	return Result{SQL: sql, Explanation: Explain(sql)}, nil
}

// Structural checks for AI-generated SQL. Anything weaker than this is not
// worth executing against the schema.
var generatedSQLChecks = []struct {
	pattern *regexp.Regexp
	message string
}{
	{regexp.MustCompile(`(?is)\bFROM\b.*\bsales\b`), "query must use the sales table"},
	{regexp.MustCompile(`(?is)\bJOIN\b.*\b(products|customers)\b`), "query must include proper table joins"},
	{regexp.MustCompile(`(?i)\bWHERE\b|\bGROUP BY\b|\bORDER BY\b`), "query must include appropriate clauses"},
}

func validateGeneratedSQL(sql string) error {
	for _, check := range generatedSQLChecks {
		if !check.pattern.MatchString(sql) {
			return fmt.Errorf("invalid SQL generated: %s", check.message)
		}
	}
	return nil
}
