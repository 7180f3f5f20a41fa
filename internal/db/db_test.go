package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func openSeeded(t *testing.T) *sql.DB {
	t.Helper()

	database, err := Open(t.TempDir() + "/sales.db")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, RunMigrations(database))
	return database
}

func TestMigrationsCreateAndSeedSchema(t *testing.T) {
	database := openSeeded(t)

	var count int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM products").Scan(&count))
	assert.Equal(t, 5, count)

	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM customers").Scan(&count))
	assert.Equal(t, 4, count)

	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM sales").Scan(&count))
	assert.Equal(t, 5, count)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	database := openSeeded(t)

	require.NoError(t, RunMigrations(database))

	var count int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM sales").Scan(&count))
	assert.Equal(t, 5, count, "seed must not run twice")
}

func TestSeededDataAnswersGeneratedQueries(t *testing.T) {
	database := openSeeded(t)

	// The shape the compiler emits for "total sales by region".
	rows, err := database.Query("SELECT c.region, SUM(s.total_amount) AS total FROM sales s JOIN customers c ON s.customer_id = c.id GROUP BY c.region ORDER BY total DESC")
	require.NoError(t, err)
	defer rows.Close()

	totals := map[string]float64{}
	for rows.Next() {
		var region string
		var total float64
		require.NoError(t, rows.Scan(&region, &total))
		totals[region] = total
	}
	require.NoError(t, rows.Err())

	assert.Len(t, totals, 4)
	assert.InDelta(t, 2599.96, totals["North"], 0.001)
	assert.InDelta(t, 699.99, totals["South"], 0.001)
}
