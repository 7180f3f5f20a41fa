package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponseLabeledSections(t *testing.T) {
	raw := `SQL: SELECT c.region, SUM(s.total_amount) AS total FROM sales s JOIN customers c ON s.customer_id = c.id GROUP BY c.region ORDER BY total DESC
Explanation: Totals sales for each customer region.`

	resp := ParseResponse(raw)
	assert.Equal(t, "SELECT c.region, SUM(s.total_amount) AS total FROM sales s JOIN customers c ON s.customer_id = c.id GROUP BY c.region ORDER BY total DESC", resp.SQL)
	assert.Equal(t, "Totals sales for each customer region.", resp.Explanation)
}

func TestParseResponseMultilineSQL(t *testing.T) {
	raw := "SQL:\nSELECT p.name, SUM(s.total_amount) AS total\nFROM sales s\nJOIN products p ON s.product_id = p.id\nGROUP BY p.name\nExplanation: Revenue per product."

	resp := ParseResponse(raw)
	assert.Contains(t, resp.SQL, "JOIN products p")
	assert.NotContains(t, resp.SQL, "Explanation")
	assert.Equal(t, "Revenue per product.", resp.Explanation)
}

func TestParseResponseBareSQL(t *testing.T) {
	resp := ParseResponse("SELECT * FROM sales s")
	assert.Equal(t, "SELECT * FROM sales s", resp.SQL)
	assert.Empty(t, resp.Explanation)
}

func TestParseResponseStripsCodeFences(t *testing.T) {
	resp := ParseResponse("```sql\nSELECT * FROM sales s\n```")
	assert.Equal(t, "SELECT * FROM sales s", resp.SQL)

	resp = ParseResponse("SQL: ```sql\nSELECT * FROM sales s\n``` Explanation: everything")
	assert.Equal(t, "SELECT * FROM sales s", resp.SQL)
	assert.Equal(t, "everything", resp.Explanation)
}

func TestParseResponseMissingSQLSection(t *testing.T) {
	resp := ParseResponse("Explanation: the question cannot be answered")
	assert.Empty(t, resp.SQL)
	assert.Equal(t, "the question cannot be answered", resp.Explanation)
}

func TestNewProviderDefaults(t *testing.T) {
	p, err := NewProvider(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = NewProvider(Config{Provider: "anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	_, err := NewProvider(Config{Provider: "openai"})
	require.Error(t, err)
}

func TestNewProviderRejectsUnknownProvider(t *testing.T) {
	_, err := NewProvider(Config{Provider: "llama-farm", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llama-farm")
}

func TestBuildSystemPromptEmbedsSchema(t *testing.T) {
	prompt := BuildSystemPrompt("TABLE: sales")
	assert.Contains(t, prompt, "TABLE: sales")
	assert.Contains(t, prompt, "SQL:")
	assert.Contains(t, prompt, "Explanation:")
}
