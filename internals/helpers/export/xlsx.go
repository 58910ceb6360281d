package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"kindergarten_backend/internals/logger"
)

const sheetName = "Sheet1"

// WriteXLSX: baris 1 = header (bold), lalu data.
func WriteXLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.GetLogger().Warn("close excel file", zap.Error(err))
		}
	}()

	if t.Title != "" {
		if err := f.SetSheetName(sheetName, sheetTitle(t.Title)); err != nil {
			return nil, err
		}
	}
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", toAny(t.Headers())); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if len(t.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return nil, err
		}
	}
	for i, row := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, toAny(row)); err != nil {
			return nil, err
		}
	}
	for i, col := range t.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, xlsxWidth(col.Width)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Column.Width adalah bobot relatif (dipakai juga oleh PDF); di Excel dikalikan
// jadi lebar karakter dengan batas bawah/atas.
const (
	xlsxCharsPerWeight = 6.0
	xlsxMinWidth       = 10.0
	xlsxMaxWidth       = 60.0
	xlsxDefaultWidth   = 18.0
)

func xlsxWidth(weight float64) float64 {
	if weight <= 0 {
		return xlsxDefaultWidth
	}
	w := weight * xlsxCharsPerWeight
	if w < xlsxMinWidth {
		return xlsxMinWidth
	}
	if w > xlsxMaxWidth {
		return xlsxMaxWidth
	}
	return w
}

// excel membatasi nama sheet 31 karakter dan melarang beberapa simbol
func sheetTitle(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, s)
	if len([]rune(s)) > 31 {
		s = string([]rune(s)[:31])
	}
	return s
}

// SetSheetRow butuh pointer ke slice
func toAny(in []string) *[]interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return &out
}

// ReadXLSX membaca sheet pertama; baris pertama = header (lowercase, trim).
// Baris kosong dilewati. Nomor baris (1-based, sesuai Excel) disimpan di key "_row".
func ReadXLSX(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("excel file is empty")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]map[string]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec := map[string]string{}
		empty := true
		for j, v := range row {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			v = strings.TrimSpace(v)
			if v != "" {
				empty = false
			}
			rec[headers[j]] = v
		}
		if empty {
			continue
		}
		rec["_row"] = fmt.Sprint(i + 2)
		out = append(out, rec)
	}
	return out, nil
}

// BytesReader is a small helper for tests and handlers that already hold the bytes.
func BytesReader(b []byte) io.Reader { return bytes.NewReader(b) }
