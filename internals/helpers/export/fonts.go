package export

import (
	_ "embed"

	"github.com/go-pdf/fpdf"
)

// DejaVu Sans: Latin + huruf Arab (termasuk presentation forms) dalam satu font.
var (
	//go:embed fonts/DejaVuSans.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSans-Bold.ttf
	fontBold []byte
)

const FontFamily = "DejaVu"

// NewDocument returns an A4 document with the UTF-8 font family registered.
// Italic maps to the regular face.
func NewDocument(orientation string) *fpdf.Fpdf {
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(FontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(FontFamily, "B", fontBold)
	pdf.AddUTF8FontFromBytes(FontFamily, "I", fontRegular)
	return pdf
}

// Align: teks RTL rata kanan, selainnya pakai def.
func Align(s, def string) string {
	if HasRTL(s) {
		return "R"
	}
	return def
}
