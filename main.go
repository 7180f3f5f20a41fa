package main

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rfinnegan/salesql/internal/compiler"
	"github.com/rfinnegan/salesql/internal/db"
	"github.com/rfinnegan/salesql/internal/llm"
)

const (
	defaultAddr   = ":8000"
	defaultDBPath = "sales.db"
	queryTimeout  = 8 * time.Second
)

type app struct {
	db       *sql.DB
	tmpl     *template.Template
	compiler *compiler.Compiler
	logger   *slog.Logger
}

type generateRequest struct {
	Query string `json:"query"`
}

type generateResponse struct {
	SQLQuery    string           `json:"sql_query"`
	Explanation string           `json:"explanation"`
	Results     []map[string]any `json:"results"`
	Error       string           `json:"error,omitempty"`
	Suggestion  string           `json:"suggestion,omitempty"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load() // loads .env if present, silently ignores if not

	dbPath := env("DB_PATH", defaultDBPath)
	addr := env("ADDR", defaultAddr)

	database, err := db.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	if err := db.RunMigrations(database); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", dbPath)

	// LLM provider is optional; without it only the rule-based pipeline runs.
	var provider llm.Provider
	if os.Getenv("LLM_API_KEY") != "" {
		provider, err = llm.NewProviderFromEnv()
		if err != nil {
			logger.Warn("failed to initialize LLM, continuing rule-based only", "error", err)
		} else {
			logger.Info("LLM provider initialized", "provider", provider.Name())
		}
	} else {
		logger.Info("LLM not configured (set LLM_API_KEY to enable)")
	}

	app := &app{
		db:       database,
		tmpl:     template.Must(template.New("index").Parse(indexHTML)),
		compiler: compiler.New(provider, logger),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/", app.handleIndex)
	r.Post("/api/generate", app.handleGenerate)
	r.Post("/api/export", app.handleExportCSV)
	r.Get("/api/schema", app.handleSchema)
	r.Get("/api/health", app.handleHealth)

	logger.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func (a *app) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.tmpl.Execute(w, nil); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (a *app) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, generateResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondJSON(w, http.StatusBadRequest, generateResponse{Error: "query is required"})
		return
	}

	a.logger.InfoContext(ctx, "query received", "query", req.Query)

	result, err := a.compiler.Generate(ctx, req.Query)
	if err != nil {
		var unanswerable *compiler.UnanswerableError
		if errors.As(err, &unanswerable) {
			respondJSON(w, http.StatusBadRequest, generateResponse{
				Error:      unanswerable.Suggestion,
				Suggestion: unanswerable.Alternative,
			})
			return
		}
		a.logger.ErrorContext(ctx, "generation failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, generateResponse{Error: "failed to generate query"})
		return
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	results, err := a.executeQuery(queryCtx, result.SQL)
	if err != nil {
		a.logger.ErrorContext(ctx, "query execution failed", "error", err, "sql", result.SQL)
		respondJSON(w, http.StatusBadRequest, generateResponse{
			SQLQuery:    result.SQL,
			Explanation: result.Explanation,
			Error:       err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, generateResponse{
		SQLQuery:    result.SQL,
		Explanation: result.Explanation,
		Results:     results,
	})
}

func (a *app) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	result, err := a.compiler.Generate(ctx, req.Query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := a.db.QueryContext(queryCtx, result.SQL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=export.csv")

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(columns); err != nil {
		return
	}

	for rows.Next() {
		values, err := scanRow(rows, len(columns))
		if err != nil {
			return
		}
		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = formatCSVValue(v)
		}
		if err := csvWriter.Write(record); err != nil {
			return
		}
	}
}

func (a *app) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema := a.compiler.Schema()
	respondJSON(w, http.StatusOK, map[string]any{
		"tables":      schema.Tables,
		"description": schema.DescribeText(),
	})
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// executeQuery runs the generated SQL and returns each row as a column-keyed
// map, matching the /api/generate response contract.
func (a *app) executeQuery(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := []map[string]any{}
	for rows.Next() {
		values, err := scanRow(rows, len(columns))
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func scanRow(rows *sql.Rows, numCols int) ([]any, error) {
	values := make([]any, numCols)
	ptrs := make([]any, numCols)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}

func formatCSVValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

//go:embed templates/index.html
var indexHTML string
