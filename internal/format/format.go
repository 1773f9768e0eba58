// Package format renders captured result sets into export artifacts.
// The set of formats is closed: csv, pipe (csv with a | delimiter) and pdf.
package format

import (
	"fmt"
	"time"

	"sqlcourier/models"
)

// Supported format tags.
const (
	FormatCSV  = "csv"
	FormatPipe = "pipe"
	FormatPDF  = "pdf"
)

// RenderError wraps an unrecognized format tag or an encoding failure.
// It is fatal to the current cycle only.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("error rendering format '%s': %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer turns a result set into a complete, self-contained artifact.
type Renderer interface {
	Render(res *models.ResultSet, includeHeader bool) (models.Artifact, error)

	// Ext returns the file extension that {ext} in filename patterns
	// resolves to for this format.
	Ext() string
}

// New returns the renderer for the given format tag.
func New(tag string) (Renderer, error) {
	switch tag {
	case FormatCSV:
		return &delimited{format: FormatCSV, comma: ',', ext: "csv"}, nil
	case FormatPipe:
		return &delimited{format: FormatPipe, comma: '|', ext: "txt"}, nil
	case FormatPDF:
		return &pdf{}, nil
	}

	return nil, &RenderError{Format: tag, Err: fmt.Errorf("unknown format. Use '%s', '%s' or '%s'", FormatCSV, FormatPipe, FormatPDF)}
}

// stringify converts a scanned row into its text representation,
// one cell per column.
func stringify(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case nil:
			out[i] = ""
		case []byte:
			out[i] = string(val)
		case time.Time:
			out[i] = val.Format("2006-01-02 15:04:05")
		default:
			out[i] = fmt.Sprintf("%v", val)
		}
	}

	return out
}
