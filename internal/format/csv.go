package format

import (
	"bytes"
	"encoding/csv"

	"sqlcourier/models"
)

// delimited renders csv and pipe artifacts. The two only differ in the
// delimiter rune and the file extension.
type delimited struct {
	format string
	comma  rune
	ext    string
}

// Render writes the result set as delimiter-separated lines, one row per
// line terminated by \n, with standard quoting for cells containing the
// delimiter, quotes or line breaks. The header row comes first iff
// includeHeader is set.
func (d *delimited) Render(res *models.ResultSet, includeHeader bool) (models.Artifact, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	w.Comma = d.comma

	if includeHeader {
		if err := w.Write(res.Columns); err != nil {
			return models.Artifact{}, &RenderError{Format: d.format, Err: err}
		}
	}

	for _, row := range res.Rows {
		if err := w.Write(stringify(row)); err != nil {
			return models.Artifact{}, &RenderError{Format: d.format, Err: err}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return models.Artifact{}, &RenderError{Format: d.format, Err: err}
	}

	return models.Artifact{Format: d.format, Bytes: buf.Bytes()}, nil
}

func (d *delimited) Ext() string {
	return d.ext
}
