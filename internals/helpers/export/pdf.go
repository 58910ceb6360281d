package export

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"
)

// WritePDF: A4 landscape, judul + tabel dengan header abu-abu.
func WritePDF(t Table) ([]byte, error) {
	pdf := NewDocument("L")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont(FontFamily, "B", 14)
	pdf.CellFormat(0, 8, Visual(t.Title), "", 1, Align(t.Title, "L"), false, 0, "")
	pdf.SetFont(FontFamily, "", 8)
	pdf.CellFormat(0, 5, time.Now().Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := columnWidths(t.Columns, 277)

	header := func() {
		pdf.SetFont(FontFamily, "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, c := range t.Columns {
			pdf.CellFormat(widths[i], 7, Visual(c.Header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(FontFamily, "", 8)
	}
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range t.Rows {
		if pdf.GetY()+6 > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for i := range t.Columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			// potong dulu dalam urutan logis supaya awal teks RTL yang tersisa
			cell := Reorder(fit(pdf, Shape(v), widths[i]-2))
			pdf.CellFormat(widths[i], 6, cell, "1", 0, Align(v, "L"), false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func columnWidths(cols []Column, total float64) []float64 {
	out := make([]float64, len(cols))
	if len(cols) == 0 {
		return out
	}
	var sum float64
	for _, c := range cols {
		w := c.Width
		if w <= 0 {
			w = 1
		}
		sum += w
	}
	for i, c := range cols {
		w := c.Width
		if w <= 0 {
			w = 1
		}
		out[i] = total * w / sum
	}
	return out
}

// fit memotong teks yang lebih lebar dari sel.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
