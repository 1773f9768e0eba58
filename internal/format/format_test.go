package format

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlcourier/models"
)

func testResultSet() *models.ResultSet {
	return &models.ResultSet{
		Columns: []string{"id", "name"},
		Rows: [][]any{
			{int64(1), "a"},
			{int64(2), "b"},
		},
	}
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New("xml")
	require.Error(t, err)

	var rerr *RenderError
	assert.True(t, errors.As(err, &rerr))
	assert.Equal(t, "xml", rerr.Format)
}

func TestExtensions(t *testing.T) {
	for tag, ext := range map[string]string{
		FormatCSV:  "csv",
		FormatPipe: "txt",
		FormatPDF:  "pdf",
	} {
		r, err := New(tag)
		require.NoError(t, err)
		assert.Equal(t, ext, r.Ext())
	}
}

func TestCSVRender(t *testing.T) {
	r, err := New(FormatCSV)
	require.NoError(t, err)

	art, err := r.Render(testResultSet(), true)
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, art.Format)
	assert.Equal(t, "id,name\n1,a\n2,b\n", string(art.Bytes))
}

func TestCSVRenderNoHeader(t *testing.T) {
	r, _ := New(FormatCSV)

	art, err := r.Render(testResultSet(), false)
	require.NoError(t, err)
	assert.Equal(t, "1,a\n2,b\n", string(art.Bytes))
}

func TestPipeRender(t *testing.T) {
	r, err := New(FormatPipe)
	require.NoError(t, err)

	art, err := r.Render(testResultSet(), false)
	require.NoError(t, err)

	assert.Equal(t, FormatPipe, art.Format)
	assert.Equal(t, "1|a\n2|b\n", string(art.Bytes))
}

// TestCSVRoundTrip renders a result set with awkward values and parses the
// artifact back, expecting the exact columns and rows.
func TestCSVRoundTrip(t *testing.T) {
	res := &models.ResultSet{
		Columns: []string{"id", "note"},
		Rows: [][]any{
			{int64(1), `has,comma`},
			{int64(2), `has"quote`},
			{int64(3), "has\nnewline"},
		},
	}

	r, _ := New(FormatCSV)
	art, err := r.Render(res, true)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(art.Bytes)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, res.Columns, records[0])
	for i, row := range res.Rows {
		assert.Equal(t, stringify(row), records[i+1])
	}
}

// A zero-row result set may legally render as a header-only artifact or an
// empty one, depending on the header flag.
func TestCSVRenderEmpty(t *testing.T) {
	res := &models.ResultSet{Columns: []string{"id", "name"}}
	r, _ := New(FormatCSV)

	art, err := r.Render(res, true)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n", string(art.Bytes))

	art, err = r.Render(res, false)
	require.NoError(t, err)
	assert.Equal(t, "", string(art.Bytes))
}

func TestPDFRender(t *testing.T) {
	r, err := New(FormatPDF)
	require.NoError(t, err)

	art, err := r.Render(testResultSet(), true)
	require.NoError(t, err)

	assert.Equal(t, FormatPDF, art.Format)
	assert.True(t, bytes.HasPrefix(art.Bytes, []byte("%PDF-")))
}

// Enough rows to overflow one landscape Letter page.
func TestPDFRenderPaginates(t *testing.T) {
	res := &models.ResultSet{Columns: []string{"id"}}
	for i := 0; i < 200; i++ {
		res.Rows = append(res.Rows, []any{int64(i)})
	}

	r, _ := New(FormatPDF)
	art, err := r.Render(res, true)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(art.Bytes, []byte("%PDF-")))
}

func TestPDFRenderEmpty(t *testing.T) {
	r, _ := New(FormatPDF)

	art, err := r.Render(&models.ResultSet{Columns: []string{"id"}}, true)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(art.Bytes, []byte("%PDF-")))
}

func TestStringify(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	out := stringify([]any{nil, []byte("raw"), ts, int64(42), 1.5, true})
	assert.Equal(t, []string{"", "raw", "2024-01-02 03:04:05", "42", "1.5", "true"}, out)
}
