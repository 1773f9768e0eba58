package source

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTempDB creates a throwaway sqlite DB with a couple of rows.
func createTempDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE entries (id INTEGER PRIMARY KEY, name TEXT);`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO entries (id, name) VALUES (1, 'a'), (2, 'b');`)
	require.NoError(t, err)

	return path
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{DSN: "x"}, testLogger())
	assert.Error(t, err)

	_, err = New(Config{Type: "sqlite3"}, testLogger())
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	s, err := New(Config{Type: "sqlite3", DSN: createTempDB(t)}, testLogger())
	require.NoError(t, err)

	res, err := s.Fetch(context.Background(), "SELECT id, name FROM entries ORDER BY id")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, res.Columns)
	require.Len(t, res.Rows, 2)
	for _, row := range res.Rows {
		assert.Len(t, row, len(res.Columns))
	}

	assert.EqualValues(t, 1, res.Rows[0][0])
	assert.EqualValues(t, "a", res.Rows[0][1])
	assert.EqualValues(t, 2, res.Rows[1][0])
	assert.EqualValues(t, "b", res.Rows[1][1])
}

func TestFetchEmpty(t *testing.T) {
	s, err := New(Config{Type: "sqlite3", DSN: createTempDB(t)}, testLogger())
	require.NoError(t, err)

	res, err := s.Fetch(context.Background(), "SELECT id, name FROM entries WHERE id > 100")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Len(t, res.Rows, 0)
}

// Connection establishment honors the caller's context.
func TestFetchCancelledContext(t *testing.T) {
	s, err := New(Config{Type: "sqlite3", DSN: createTempDB(t), ConnectTimeout: time.Second}, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Fetch(ctx, "SELECT id FROM entries")
	require.Error(t, err)

	var cerr *CaptureError
	assert.True(t, errors.As(err, &cerr))
}

func TestFetchBadQuery(t *testing.T) {
	s, err := New(Config{Type: "sqlite3", DSN: createTempDB(t)}, testLogger())
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), "SELECT nope FROM nowhere")
	require.Error(t, err)

	var cerr *CaptureError
	assert.True(t, errors.As(err, &cerr))
}
