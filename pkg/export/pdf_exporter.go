package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Grid is a two dimensional table with labelled rows and columns.
type Grid struct {
	Title         string
	CornerLabel   string
	ColumnHeaders []string
	RowHeaders    []string
	Cells         [][]string
	Notes         []string
}

// PDFExporter renders grids as landscape A4 pages, one grid per page.
type PDFExporter struct {
	rowHeaderWidth float64
	lineHeight     float64
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{rowHeaderWidth: 28, lineHeight: 4.5}
}

// RenderGrids writes every grid on its own page under a shared document title.
func (e *PDFExporter) RenderGrids(title string, grids []Grid) ([]byte, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("pdf requires at least one grid")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetTitle(title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	for _, grid := range grids {
		if len(grid.ColumnHeaders) == 0 {
			return nil, fmt.Errorf("grid %q has no columns", grid.Title)
		}
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 8, tr(strings.TrimSpace(title+" "+grid.Title)), "", 1, "C", false, 0, "")
		pdf.Ln(2)

		colWidth := (usable - e.rowHeaderWidth) / float64(len(grid.ColumnHeaders))
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(e.rowHeaderWidth, 8, tr(grid.CornerLabel), "1", 0, "C", true, 0, "")
		for _, header := range grid.ColumnHeaders {
			pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		for r, rowHeader := range grid.RowHeaders {
			pdf.SetFont("Arial", "", 8)
			height := e.lineHeight * 2
			for c := range grid.ColumnHeaders {
				lines := pdf.SplitLines([]byte(tr(cellAt(grid.Cells, r, c))), colWidth-2)
				if h := float64(len(lines))*e.lineHeight + 2; h > height {
					height = h
				}
			}
			x, y := pdf.GetXY()
			pdf.SetFont("Arial", "B", 8)
			pdf.Rect(x, y, e.rowHeaderWidth, height, "D")
			pdf.MultiCell(e.rowHeaderWidth, e.lineHeight, tr(rowHeader), "", "C", false)
			pdf.SetFont("Arial", "", 8)
			for c := range grid.ColumnHeaders {
				cx := x + e.rowHeaderWidth + float64(c)*colWidth
				pdf.Rect(cx, y, colWidth, height, "D")
				pdf.SetXY(cx+1, y+1)
				pdf.MultiCell(colWidth-2, e.lineHeight, tr(cellAt(grid.Cells, r, c)), "", "L", false)
			}
			pdf.SetXY(x, y+height)
		}

		if len(grid.Notes) > 0 {
			pdf.Ln(3)
			pdf.SetFont("Arial", "I", 8)
			for _, note := range grid.Notes {
				pdf.MultiCell(0, e.lineHeight, tr(note), "", "L", false)
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func cellAt(cells [][]string, r, c int) string {
	if r < len(cells) && c < len(cells[r]) {
		return cells[r][c]
	}
	return ""
}
