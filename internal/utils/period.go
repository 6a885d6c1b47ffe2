package utils

import (
	"fmt"
	"time"
)

const (
	DateLayout   = "2006-01-02"
	ClockLayout  = "15:04"
	civilLayout  = DateLayout + " " + ClockLayout
	hallUTCShift = 6 * 60 * 60
)

// HallZone is the civil calendar every date in the hall is expressed in (UTC+6, no DST)
var HallZone = time.FixedZone("UTC+6", hallUTCShift)

// Period is a calendar month in the hall calendar
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// CurrentPeriod returns the month containing now
func CurrentPeriod(now time.Time) Period {
	t := now.In(HallZone)
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// PreviousPeriod returns the month before the one containing now
func PreviousPeriod(now time.Time) Period {
	t := now.In(HallZone)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, HallZone).AddDate(0, -1, 0)
	return Period{Month: int(first.Month()), Year: first.Year()}
}

// NewPeriod validates month and year
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid month: %d", month)
	}
	if year < 2000 || year > 9999 {
		return Period{}, fmt.Errorf("invalid year: %d", year)
	}
	return Period{Month: month, Year: year}, nil
}

// Start is midnight of the first day of the period
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, HallZone)
}

// End is midnight of the first day of the following month (exclusive bound)
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// StartDate and EndDate are the period bounds as YYYY-MM-DD, End exclusive
func (p Period) StartDate() string { return p.Start().Format(DateLayout) }
func (p Period) EndDate() string   { return p.End().Format(DateLayout) }

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// DueDate is the first day of the month containing now plus days
func DueDate(now time.Time, days int) time.Time {
	return CurrentPeriod(now).Start().AddDate(0, 0, days)
}

// Today returns the hall calendar date of now as YYYY-MM-DD
func Today(now time.Time) string {
	return now.In(HallZone).Format(DateLayout)
}

// ParseCivil combines a YYYY-MM-DD date and an HH:MM clock into an instant in the hall calendar
func ParseCivil(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(civilLayout, date+" "+clock, HallZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}
