package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth = 277.0
	pdfCellPad   = 2.0
)

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType is the MIME type of the rendered output.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Render creates a PDF document with an optional title and table body. Cell
// text wider than its column is truncated with an ellipsis.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	colWidth := pdfPageWidth / float64(len(data.Headers))
	writeHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, fit(pdf, tr(header), colWidth), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			writeHeader()
		}
	})
	writeHeader()

	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, fit(pdf, tr(row[header]), colWidth), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	limit := width - pdfCellPad
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
