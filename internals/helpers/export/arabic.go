package export

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// bentuk kontekstual Arabic Presentation Forms-B.
// initial == 0 berarti huruf hanya menyambung ke kanan (alif, dal, ra, waw, ...).
type arabicForms struct {
	isolated, final, initial, medial rune
}

var arabicLetters = map[rune]arabicForms{
	0x0621: {0xFE80, 0, 0, 0}, // hamza, tidak menyambung
	0x0622: {0xFE81, 0xFE82, 0, 0},
	0x0623: {0xFE83, 0xFE84, 0, 0},
	0x0624: {0xFE85, 0xFE86, 0, 0},
	0x0625: {0xFE87, 0xFE88, 0, 0},
	0x0626: {0xFE89, 0xFE8A, 0xFE8B, 0xFE8C},
	0x0627: {0xFE8D, 0xFE8E, 0, 0},
	0x0628: {0xFE8F, 0xFE90, 0xFE91, 0xFE92},
	0x0629: {0xFE93, 0xFE94, 0, 0},
	0x062A: {0xFE95, 0xFE96, 0xFE97, 0xFE98},
	0x062B: {0xFE99, 0xFE9A, 0xFE9B, 0xFE9C},
	0x062C: {0xFE9D, 0xFE9E, 0xFE9F, 0xFEA0},
	0x062D: {0xFEA1, 0xFEA2, 0xFEA3, 0xFEA4},
	0x062E: {0xFEA5, 0xFEA6, 0xFEA7, 0xFEA8},
	0x062F: {0xFEA9, 0xFEAA, 0, 0},
	0x0630: {0xFEAB, 0xFEAC, 0, 0},
	0x0631: {0xFEAD, 0xFEAE, 0, 0},
	0x0632: {0xFEAF, 0xFEB0, 0, 0},
	0x0633: {0xFEB1, 0xFEB2, 0xFEB3, 0xFEB4},
	0x0634: {0xFEB5, 0xFEB6, 0xFEB7, 0xFEB8},
	0x0635: {0xFEB9, 0xFEBA, 0xFEBB, 0xFEBC},
	0x0636: {0xFEBD, 0xFEBE, 0xFEBF, 0xFEC0},
	0x0637: {0xFEC1, 0xFEC2, 0xFEC3, 0xFEC4},
	0x0638: {0xFEC5, 0xFEC6, 0xFEC7, 0xFEC8},
	0x0639: {0xFEC9, 0xFECA, 0xFECB, 0xFECC},
	0x063A: {0xFECD, 0xFECE, 0xFECF, 0xFED0},
	0x0640: {0x0640, 0x0640, 0x0640, 0x0640}, // tatweel
	0x0641: {0xFED1, 0xFED2, 0xFED3, 0xFED4},
	0x0642: {0xFED5, 0xFED6, 0xFED7, 0xFED8},
	0x0643: {0xFED9, 0xFEDA, 0xFEDB, 0xFEDC},
	0x0644: {0xFEDD, 0xFEDE, 0xFEDF, 0xFEE0},
	0x0645: {0xFEE1, 0xFEE2, 0xFEE3, 0xFEE4},
	0x0646: {0xFEE5, 0xFEE6, 0xFEE7, 0xFEE8},
	0x0647: {0xFEE9, 0xFEEA, 0xFEEB, 0xFEEC},
	0x0648: {0xFEED, 0xFEEE, 0, 0},
	0x0649: {0xFEEF, 0xFEF0, 0, 0},
	0x064A: {0xFEF1, 0xFEF2, 0xFEF3, 0xFEF4},
}

// lam + alif → ligatur {isolated, final}
var lamAlef = map[rune][2]rune{
	0x0622: {0xFEF5, 0xFEF6},
	0x0623: {0xFEF7, 0xFEF8},
	0x0625: {0xFEF9, 0xFEFA},
	0x0627: {0xFEFB, 0xFEFC},
}

const arabicLam = 0x0644

func (f arabicForms) joinsNext() bool { return f.initial != 0 }
func (f arabicForms) joinsPrev() bool { return f.final != 0 }

// harakat dibuang: font tidak memposisikan tanda di atas glyph yang sudah dibalik.
func isHaraka(r rune) bool { return (r >= 0x064B && r <= 0x065F) || r == 0x0670 }

// HasRTL reports whether s contains right-to-left letters.
func HasRTL(s string) bool {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		if c := p.Class(); c == bidi.R || c == bidi.AL {
			return true
		}
	}
	return false
}

// Shape mengganti huruf Arab dengan bentuk kontekstualnya (urutan logis tetap).
func Shape(s string) string {
	if !HasRTL(s) {
		return s
	}
	in := make([]rune, 0, len(s))
	for _, r := range s {
		if !isHaraka(r) {
			in = append(in, r)
		}
	}

	out := make([]rune, 0, len(in))
	for i := 0; i < len(in); i++ {
		r := in[i]
		forms, ok := arabicLetters[r]
		if !ok {
			out = append(out, r)
			continue
		}
		prev := i > 0 && arabicLetters[in[i-1]].joinsNext()

		if r == arabicLam && i+1 < len(in) {
			if lig, ok := lamAlef[in[i+1]]; ok {
				if prev {
					out = append(out, lig[1])
				} else {
					out = append(out, lig[0])
				}
				i++
				continue
			}
		}

		next := false
		if i+1 < len(in) {
			nf, ok := arabicLetters[in[i+1]]
			next = ok && nf.joinsPrev()
		}
		switch {
		case forms.joinsNext() && prev && next:
			out = append(out, forms.medial)
		case forms.joinsNext() && next:
			out = append(out, forms.initial)
		case forms.joinsPrev() && prev:
			out = append(out, forms.final)
		default:
			out = append(out, forms.isolated)
		}
	}
	return string(out)
}

// Reorder mengubah urutan logis menjadi urutan visual (kiri ke kanan) per baris,
// versi ringkas algoritma bidi Unicode: level ditentukan dari kelas karakter lalu
// dibalik dari level tertinggi ke level ganjil terendah.
func Reorder(s string) string {
	if !HasRTL(s) {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = string(reorderLine([]rune(l)))
	}
	return strings.Join(lines, "\n")
}

// Visual = Shape lalu Reorder; hasilnya siap ditulis fpdf.
func Visual(s string) string { return Reorder(Shape(s)) }

func reorderLine(rs []rune) []rune {
	if len(rs) == 0 {
		return rs
	}
	cls := make([]bidi.Class, len(rs))
	base := 0
	baseSet := false
	for i, r := range rs {
		p, _ := bidi.LookupRune(r)
		cls[i] = p.Class()
		if !baseSet {
			switch cls[i] {
			case bidi.L:
				baseSet = true
			case bidi.R, bidi.AL:
				base, baseSet = 1, true
			}
		}
	}

	const unresolved = -1
	levels := make([]int, len(rs))
	rtlContext := base == 1
	for i, c := range cls {
		switch c {
		case bidi.L:
			levels[i] = base * 2 // 0 di paragraf LTR, 2 di paragraf RTL
			rtlContext = false
		case bidi.R, bidi.AL:
			levels[i] = 1
			rtlContext = true
		case bidi.EN, bidi.AN:
			if rtlContext {
				levels[i] = 2
			} else {
				levels[i] = base * 2
			}
		case bidi.NSM:
			if i > 0 {
				levels[i] = levels[i-1]
			} else {
				levels[i] = base
			}
		default:
			levels[i] = unresolved
		}
	}

	// angka dihitung sebagai RTL saat menentukan arah netral
	isRTL := func(i int) bool {
		if i < 0 || i >= len(rs) {
			return base == 1
		}
		if cls[i] == bidi.EN || cls[i] == bidi.AN {
			return levels[i] != 0
		}
		return levels[i]%2 == 1
	}
	for i := 0; i < len(rs); {
		if levels[i] != unresolved {
			i++
			continue
		}
		j := i
		for j < len(rs) && levels[j] == unresolved {
			j++
		}
		before, after := isRTL(i-1), isRTL(j)
		lvl := base
		switch {
		case before && after:
			lvl = 1
		case !before && !after:
			lvl = base * 2
		}
		for k := i; k < j; k++ {
			levels[k] = lvl
		}
		i = j
	}

	maxLevel := 0
	for _, l := range levels {
		if l > maxLevel {
			maxLevel = l
		}
	}
	out := append([]rune(nil), rs...)
	for lvl := maxLevel; lvl >= 1; lvl-- {
		for i := 0; i < len(out); {
			if levels[i] < lvl {
				i++
				continue
			}
			j := i
			for j < len(out) && levels[j] >= lvl {
				j++
			}
			reverseRunes(out[i:j])
			reverseInts(levels[i:j])
			i = j
		}
	}
	return out
}

func reverseRunes(r []rune) {
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
}

func reverseInts(v []int) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}
