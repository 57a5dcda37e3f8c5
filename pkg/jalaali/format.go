package jalaali

import (
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	persianZero = '۰'
	arabicZero  = '٠'
)

var monthNames = [...]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

var (
	toASCII = runes.Map(func(r rune) rune {
		switch {
		case r >= persianZero && r <= persianZero+9:
			return '0' + (r - persianZero)
		case r >= arabicZero && r <= arabicZero+9:
			return '0' + (r - arabicZero)
		}
		return r
	})
	toPersian = runes.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return persianZero + (r - '0')
		}
		return r
	})
)

var (
	locOnce sync.Once
	loc     *time.Location
)

// Location returns Asia/Tehran, or a fixed +03:30 zone when tzdata is unavailable.
func Location() *time.Location {
	locOnce.Do(func() {
		l, err := time.LoadLocation("Asia/Tehran")
		if err != nil {
			l = time.FixedZone("IRST", 3*3600+30*60)
		}
		loc = l
	})
	return loc
}

// NormalizeDigits replaces Persian and Arabic-Indic digits with ASCII digits.
func NormalizeDigits(s string) string {
	out, _, err := transform.String(toASCII, s)
	if err != nil {
		return s
	}
	return out
}

// ToPersianDigits replaces ASCII digits with Persian digits.
func ToPersianDigits(s string) string {
	out, _, err := transform.String(toPersian, s)
	if err != nil {
		return s
	}
	return out
}

// Parse reads a YYYY/MM/DD date written with ASCII, Persian or Arabic-Indic digits.
// It reports false for malformed input or a day that does not exist.
func Parse(s string) (Date, bool) {
	s = strings.TrimSpace(NormalizeDigits(s))
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Date{}, false
	}

	var nums [3]int
	for i, p := range parts {
		if p == "" || len(p) > 4 || strings.IndexFunc(p, notDigit) >= 0 {
			return Date{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, false
		}
		nums[i] = n
	}
	if len(parts[0]) != 4 || len(parts[1]) > 2 || len(parts[2]) > 2 {
		return Date{}, false
	}

	d := Date{Year: nums[0], Month: nums[1], Day: nums[2]}
	if !d.IsValid() {
		return Date{}, false
	}
	return d, true
}

// ParseTime parses s and returns midnight of that day in Location().
func ParseTime(s string) (time.Time, bool) {
	d, ok := Parse(s)
	if !ok {
		return time.Time{}, false
	}
	return d.Time(nil), true
}

// Format renders d as YYYY/MM/DD in Persian digits.
func Format(d Date) string {
	return ToPersianDigits(d.String())
}

// FormatTime renders the Jalaali day of t (observed in Location()) in Persian digits.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Format(FromTime(t))
}

// MonthName returns the Persian name of month m, or "" when m is out of range.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// StartOfDay returns midnight of t's Jalaali day in Location().
func StartOfDay(t time.Time) time.Time {
	return FromTime(t).Time(nil)
}

// EndOfDay returns the last nanosecond of t's Jalaali day in Location().
func EndOfDay(t time.Time) time.Time {
	return FromTime(t).AddDays(1).Time(nil).Add(-time.Nanosecond)
}

func notDigit(r rune) bool {
	return r > unicode.MaxASCII || r < '0' || r > '9'
}
