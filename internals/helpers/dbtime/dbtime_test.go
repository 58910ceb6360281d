package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-09-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-09-01", FormatDate(d))

	d, err = ParseDate("2024-09-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	_, err = ParseDate("01/09/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseDate("  ")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseDatePtr(t *testing.T) {
	p, err := ParseDatePtr("")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = ParseDatePtr("2024-01-02")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "2024-01-02", FormatDatePtr(p))
	assert.Equal(t, "", FormatDatePtr(nil))
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, 5, 6, 15, 30, 0, 0, Location())
	got := StartOfDay(in)
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, 6, got.Day())
}
