package dto

import (
	"time"

	"anbar/pkg/jalaali"
)

// CalendarDay describes one day in both calendars.
type CalendarDay struct {
	Date        time.Time `json:"date"`
	JalaliDate  string    `json:"jalaliDate"`
	JalaliASCII string    `json:"jalaliAscii"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	MonthName   string    `json:"monthName"`
	Day         int       `json:"day"`
	Weekday     string    `json:"weekday"`
	IsLeapYear  bool      `json:"isLeapYear"`
}

// NewCalendarDay describes the Jalaali day of t observed in Tehran.
func NewCalendarDay(t time.Time) CalendarDay {
	d := jalaali.FromTime(t)
	return CalendarDay{
		Date:        d.Time(nil).UTC(),
		JalaliDate:  jalaali.Format(d),
		JalaliASCII: d.String(),
		Year:        d.Year,
		Month:       d.Month,
		MonthName:   jalaali.MonthName(d.Month),
		Day:         d.Day,
		Weekday:     d.Weekday().String(),
		IsLeapYear:  jalaali.IsLeapYear(d.Year),
	}
}

// FiscalYearResponse is the span of a Jalaali fiscal year.
type FiscalYearResponse struct {
	Year       int       `json:"year"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	JalaliFrom string    `json:"jalaliFrom"`
	JalaliTo   string    `json:"jalaliTo"`
	Days       int       `json:"days"`
	IsLeapYear bool      `json:"isLeapYear"`
}
