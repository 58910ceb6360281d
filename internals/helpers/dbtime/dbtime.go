// file: internals/helpers/dbtime/dbtime.go
package dbtime

import (
	"errors"
	"strings"
	"sync"
	"time"

	"kindergarten_backend/internals/configs"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD or RFC3339")

var (
	locOnce sync.Once
	loc     *time.Location
)

// Location mengembalikan timezone sekolah:
// 1) APP_TIMEZONE
// 2) Fallback: Africa/Casablanca
// 3) Fallback terakhir: time.UTC
func Location() *time.Location {
	locOnce.Do(func() {
		for _, name := range []string{configs.GetEnv("APP_TIMEZONE"), "Africa/Casablanca"} {
			if strings.TrimSpace(name) == "" {
				continue
			}
			if l, err := time.LoadLocation(name); err == nil {
				loc = l
				return
			}
		}
		loc = time.UTC
	})
	return loc
}

// Now is swapped in tests.
var Now = func() time.Time { return time.Now().In(Location()) }

// StartOfDay memotong jam pada zona sekolah.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate menerima "2006-01-02" (tanggal di zona sekolah) atau RFC3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.ParseInLocation(DateLayout, s, Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// ParseDatePtr: "" → nil.
func ParseDatePtr(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Location()).Format(DateLayout)
}

func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}
