// Package jalaali provides conversion between the Gregorian and the Solar Hijri
// (Jalaali) calendars, leap-year rules, parsing, formatting and fiscal-year helpers.
//
// Conversion uses the 33-year-cycle break table (Borkowski's arithmetic), valid for
// Jalaali years -61 .. 3177. Results outside that range are unspecified.
package jalaali

import (
	"fmt"
	"time"
)

// MinYear and MaxYear bound the supported Jalaali years.
const (
	MinYear = -61
	MaxYear = 3177
)

// Esfand is the twelfth month; its length depends on the leap rule.
const Esfand = 12

// breaks holds the years at which the leap cycle shifts.
var breaks = [...]int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181, 1210,
	1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

// Date is a calendar date in the Jalaali calendar.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// NewDate builds a Date without validating it. Use IsValid before relying on it.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// IsValid reports whether d names an existing day.
func (d Date) IsValid() bool {
	return IsValidDate(d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String returns the ASCII form YYYY/MM/DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(d.Month - o.Month)
	default:
		return sign(d.Day - o.Day)
	}
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is later than o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return d2j(j2d(d.Year, d.Month, d.Day) + n)
}

// Gregorian returns the Gregorian year, month and day of d.
func (d Date) Gregorian() (int, int, int) {
	return ToGregorian(d.Year, d.Month, d.Day)
}

// Time returns midnight of d in loc. A nil loc means Location().
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = Location()
	}
	gy, gm, gd := d.Gregorian()
	return time.Date(gy, time.Month(gm), gd, 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	gy, gm, gd := d.Gregorian()
	return time.Date(gy, time.Month(gm), gd, 12, 0, 0, 0, time.UTC).Weekday()
}

// ToJalaali converts a Gregorian date to Jalaali.
func ToJalaali(gy, gm, gd int) Date {
	return d2j(g2d(gy, gm, gd))
}

// FromTime converts the calendar day of t, observed in Location(), to Jalaali.
func FromTime(t time.Time) Date {
	return FromTimeIn(t, Location())
}

// FromTimeIn converts the calendar day of t observed in loc.
func FromTimeIn(t time.Time, loc *time.Location) Date {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return ToJalaali(y, int(m), d)
}

// ToGregorian converts a Jalaali date to Gregorian.
func ToGregorian(jy, jm, jd int) (gy, gm, gd int) {
	return d2g(j2d(jy, jm, jd))
}

// IsLeapYear reports whether jy has 366 days.
func IsLeapYear(jy int) bool {
	leap, _, _ := jalCal(jy)
	return leap == 0
}

// MonthLength returns the number of days in month jm of year jy, or 0 when jm is
// not a month number.
func MonthLength(jy, jm int) int {
	switch {
	case jm < 1 || jm > 12:
		return 0
	case jm <= 6:
		return 31
	case jm <= 11:
		return 30
	case IsLeapYear(jy):
		return 30
	default:
		return 29
	}
}

// IsValidDate reports whether jy/jm/jd names an existing day in the supported range.
func IsValidDate(jy, jm, jd int) bool {
	return jy >= MinYear && jy <= MaxYear &&
		jm >= 1 && jm <= 12 &&
		jd >= 1 && jd <= MonthLength(jy, jm)
}

// FiscalYearBoundaries returns 1 Farvardin and the last day of Esfand of jy.
func FiscalYearBoundaries(jy int) (start, end Date) {
	return Date{Year: jy, Month: 1, Day: 1}, Date{Year: jy, Month: Esfand, Day: MonthLength(jy, Esfand)}
}

// jalCal returns the leap state of jy (0 means leap year, otherwise years since the
// last leap year), the Gregorian year in which jy begins and the March day of
// 1 Farvardin.
func jalCal(jy int) (leap, gy, march int) {
	gy = jy + 621
	leapJ := -14
	jp := breaks[0]
	jump := 0

	for i := 1; i < len(breaks); i++ {
		jm := breaks[i]
		jump = jm - jp
		if jy < jm {
			break
		}
		leapJ += jump/33*8 + jump%33/4
		jp = jm
	}

	n := jy - jp
	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}

	leapG := gy/4 - (gy/100+1)*3/4 - 150
	march = 20 + leapJ - leapG

	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}
	leap = ((n+1)%33 - 1) % 4
	if leap == -1 {
		leap = 4
	}
	return leap, gy, march
}

// j2d converts a Jalaali date to a Julian Day Number.
func j2d(jy, jm, jd int) int {
	_, gy, march := jalCal(jy)
	return g2d(gy, 3, march) + (jm-1)*31 - jm/7*(jm-7) + jd - 1
}

// d2j converts a Julian Day Number to a Jalaali date.
func d2j(jdn int) Date {
	gy, _, _ := d2g(jdn)
	jy := gy - 621
	leap, _, march := jalCal(jy)
	k := jdn - g2d(gy, 3, march)

	if k >= 0 {
		if k <= 185 {
			return Date{Year: jy, Month: 1 + k/31, Day: k%31 + 1}
		}
		k -= 186
	} else {
		jy--
		k += 179
		if leap == 1 {
			k++
		}
	}
	return Date{Year: jy, Month: 7 + k/30, Day: k%30 + 1}
}

// g2d converts a Gregorian date to a Julian Day Number.
func g2d(gy, gm, gd int) int {
	d := (gy+(gm-8)/6+100100)*1461/4 +
		(153*((gm+9)%12)+2)/5 +
		gd - 34840408
	return d - (gy+100100+(gm-8)/6)/100*3/4 + 752
}

// d2g converts a Julian Day Number to a Gregorian date.
func d2g(jdn int) (gy, gm, gd int) {
	j := 4*jdn + 139361631
	j += (4*jdn+183187720)/146097*3/4*4 - 3908
	i := j%1461/4*5 + 308
	gd = i%153/5 + 1
	gm = i/153%12 + 1
	gy = j/1461 - 100100 + (8-gm)/6
	return gy, gm, gd
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
