package export

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	helper "kindergarten_backend/internals/helpers"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"

	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePDF  = "application/pdf"
)

type Column struct {
	Header string
	Width  float64 // relatif; 0 = rata
}

// Table is a static table definition rendered to xlsx or pdf.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

func (t Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Header
	}
	return out
}

// NormalizeFormat: default xlsx; nilai tak dikenal → "".
func NormalizeFormat(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "xlsx", "excel":
		return FormatXLSX
	case "pdf":
		return FormatPDF
	default:
		return ""
	}
}

// Send renders t in the ?format= requested and writes it as an attachment.
func Send(c *fiber.Ctx, t Table, baseName string) error {
	format := NormalizeFormat(c.Query("format"))
	var (
		data []byte
		mime string
		err  error
	)
	switch format {
	case FormatXLSX:
		data, err = WriteXLSX(t)
		mime = MimeXLSX
	case FormatPDF:
		data, err = WritePDF(t)
		mime = MimePDF
	default:
		return fiber.NewError(fiber.StatusBadRequest, "format must be xlsx or pdf")
	}
	if err != nil {
		return err
	}
	c.Attachment(helper.ExportFileName(baseName, format, time.Now()))
	c.Set(fiber.HeaderContentType, mime)
	return c.Send(data)
}
