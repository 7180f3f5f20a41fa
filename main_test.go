package main

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rfinnegan/salesql/internal/compiler"
	"github.com/rfinnegan/salesql/internal/db"
)

// setupTestApp wires a fully working app over a seeded temp database, with
// no LLM provider so only the rule-based pipeline runs.
func setupTestApp(t *testing.T) *app {
	t.Helper()

	database, err := db.Open(t.TempDir() + "/sales.db")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database))

	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))

	return &app{
		db:       database,
		tmpl:     template.Must(template.New("index").Parse(indexHTML)),
		compiler: compiler.New(nil, logger),
		logger:   logger,
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

func postGenerate(t *testing.T, a *app, body string) (*httptest.ResponseRecorder, generateResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handleGenerate(rec, req)

	var resp generateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestHandleGenerateTotalSalesByRegion(t *testing.T) {
	a := setupTestApp(t)

	rec, resp := postGenerate(t, a, `{"query":"Show me total sales by region"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, resp.SQLQuery, "GROUP BY c.region")
	assert.Contains(t, resp.Explanation, "grouped by region")
	assert.Len(t, resp.Results, 4)

	for _, row := range resp.Results {
		assert.Contains(t, row, "region")
		assert.Contains(t, row, "total")
	}
}

func TestHandleGenerateBareQuestionReturnsGrandTotal(t *testing.T) {
	a := setupTestApp(t)

	rec, resp := postGenerate(t, a, `{"query":"overall revenue"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Total", resp.Results[0]["period"])
	assert.InDelta(t, 4099.91, resp.Results[0]["total"].(float64), 0.001)
}

func TestHandleGenerateUnanswerableQuestion(t *testing.T) {
	a := setupTestApp(t)

	rec, resp := postGenerate(t, a, `{"query":"what's our profit by country"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "Cannot process query with profit, country")
	assert.Equal(t, "what's our revenue by region", resp.Suggestion)
}

func TestHandleGenerateRejectsBadInput(t *testing.T) {
	a := setupTestApp(t)

	rec, _ := postGenerate(t, a, `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = postGenerate(t, a, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExportCSV(t *testing.T) {
	a := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(`{"query":"total sales by region"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handleExportCSV(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "region,total", lines[0])
	assert.Len(t, lines, 5) // header + four regions
}

func TestHandleSchema(t *testing.T) {
	a := setupTestApp(t)

	rec := httptest.NewRecorder()
	a.handleSchema(rec, httptest.NewRequest(http.MethodGet, "/api/schema", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "total_amount")
	assert.Contains(t, rec.Body.String(), "customer information")
}

func TestHandleHealth(t *testing.T) {
	a := setupTestApp(t)

	rec := httptest.NewRecorder()
	a.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
