package format

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"sqlcourier/models"
)

const pdfRowHeight = 7.0

// pdf renders the result set as a simple tabular document on landscape
// Letter pages, paginating when rows overflow a page.
type pdf struct{}

// Render lays the result set out as a bordered grid: a grey header band
// (iff includeHeader) followed by the rows. A result set with zero rows
// produces a single-paragraph document instead of an empty table.
func (p *pdf) Render(res *models.ResultSet, includeHeader bool) (models.Artifact, error) {
	doc := fpdf.New("L", "mm", "Letter", "")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	if len(res.Rows) == 0 {
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, pdfRowHeight, "No data returned by the query.", "", "L", false)
		return p.output(doc)
	}

	var (
		pageW, pageH           = doc.GetPageSize()
		left, _, right, bottom = doc.GetMargins()
		colW                   = (pageW - left - right) / float64(len(res.Columns))
	)

	header := func() {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetFillColor(128, 128, 128)
		doc.SetTextColor(245, 245, 245)
		for _, c := range res.Columns {
			doc.CellFormat(colW, pdfRowHeight, c, "1", 0, "C", true, 0, "")
		}
		doc.Ln(-1)
	}
	body := func() {
		doc.SetFont("Helvetica", "", 9)
		doc.SetFillColor(245, 245, 220)
		doc.SetTextColor(0, 0, 0)
	}

	if includeHeader {
		header()
	}
	body()

	for _, row := range res.Rows {
		// Paginate before the row would cross the bottom margin.
		if doc.GetY()+pdfRowHeight > pageH-bottom {
			doc.AddPage()
			if includeHeader {
				header()
			}
			body()
		}

		for _, cell := range stringify(row) {
			doc.CellFormat(colW, pdfRowHeight, cell, "1", 0, "C", true, 0, "")
		}
		doc.Ln(-1)
	}

	return p.output(doc)
}

func (p *pdf) output(doc *fpdf.Fpdf) (models.Artifact, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return models.Artifact{}, &RenderError{Format: FormatPDF, Err: err}
	}

	return models.Artifact{Format: FormatPDF, Bytes: buf.Bytes()}, nil
}

func (p *pdf) Ext() string {
	return "pdf"
}
