package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func reversed(s string) string {
	r := []rune(s)
	reverseRunes(r)
	return string(r)
}

func TestShape(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"name", "أحمد بن علي", "ﺃﺣﻤﺪ ﺑﻦ ﻋﻠﻲ"},
		{"lam alef", "سلام", "ﺳﻼﻡ"},
		{"isolated lam alef", "لا", "ﻻ"},
		{"harakat dropped", "مُحَمَّد", "ﻣﺤﻤﺪ"},
		{"latin untouched", "Amina 4", "Amina 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Shape(tt.in))
		})
	}
}

func TestReorder(t *testing.T) {
	shaped := Shape("أحمد بن علي")
	assert.Equal(t, reversed(shaped), Reorder(shaped))

	ali := Shape("علي")
	assert.Equal(t, "12 "+reversed(ali), Reorder(ali+" 12"), "digits keep their order")

	ahmed := Shape("أحمد")
	assert.Equal(t, "Classe: "+reversed(ahmed), Reorder("Classe: "+ahmed))
	assert.Equal(t, "plain text", Reorder("plain text"))
}

func TestHasRTLAndAlign(t *testing.T) {
	assert.True(t, HasRTL("Amina أحمد"))
	assert.False(t, HasRTL("Amina 12"))
	assert.Equal(t, "R", Align("علي", "L"))
	assert.Equal(t, "C", Align("Ali", "C"))
}
