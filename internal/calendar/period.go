package calendar

import (
	"fmt"
	"time"
)

// PeriodKind selects the quarterly calendar a taxpayer has elected.
type PeriodKind string

const (
	KindStandard PeriodKind = "standard"
	KindCalendar PeriodKind = "calendar"
)

// ParsePeriodKind accepts "standard" and "calendar"; empty means standard.
func ParsePeriodKind(s string) (PeriodKind, error) {
	switch PeriodKind(s) {
	case "", KindStandard:
		return KindStandard, nil
	case KindCalendar:
		return KindCalendar, nil
	}
	return "", fmt.Errorf("invalid period kind %q (expected standard or calendar)", s)
}

// Period is an inclusive date range at day granularity.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod truncates both ends to the day.
func NewPeriod(start, end time.Time) Period {
	return Period{Start: Day(start), End: Day(end)}
}

// Contains reports whether d falls within the period, inclusive.
func (p Period) Contains(d time.Time) bool {
	day := Day(d)
	return !day.Before(p.Start) && !day.After(p.End)
}

// Key identifies a period within storage; stable for equal periods.
func (p Period) Key() string {
	return p.Start.Format("2006-01-02") + "_" + p.End.Format("2006-01-02")
}

func (p Period) String() string {
	return p.Start.Format("2006-01-02") + ".." + p.End.Format("2006-01-02")
}

// StandardPeriods returns the four quarters aligned to the tax year:
// Apr 6–Jul 5, Jul 6–Oct 5, Oct 6–Jan 5, Jan 6–Apr 5.
func StandardPeriods(ty TaxYear) [4]Period {
	y := ty.StartYear()
	return [4]Period{
		{Start: Date(y, time.April, 6), End: Date(y, time.July, 5)},
		{Start: Date(y, time.July, 6), End: Date(y, time.October, 5)},
		{Start: Date(y, time.October, 6), End: Date(y+1, time.January, 5)},
		{Start: Date(y+1, time.January, 6), End: Date(y+1, time.April, 5)},
	}
}

// CalendarPeriods returns the calendar-quarter election:
// Apr 6–Jun 30, Jul 1–Sep 30, Oct 1–Dec 31, Jan 1–Mar 31.
func CalendarPeriods(ty TaxYear) [4]Period {
	y := ty.StartYear()
	return [4]Period{
		{Start: Date(y, time.April, 6), End: Date(y, time.June, 30)},
		{Start: Date(y, time.July, 1), End: Date(y, time.September, 30)},
		{Start: Date(y, time.October, 1), End: Date(y, time.December, 31)},
		{Start: Date(y+1, time.January, 1), End: Date(y+1, time.March, 31)},
	}
}

// Periods dispatches on the period kind.
func Periods(ty TaxYear, kind PeriodKind) [4]Period {
	if kind == KindCalendar {
		return CalendarPeriods(ty)
	}
	return StandardPeriods(ty)
}

// FindPeriod returns the quarter of ty containing d.
func FindPeriod(ty TaxYear, kind PeriodKind, d time.Time) (Period, bool) {
	for _, p := range Periods(ty, kind) {
		if p.Contains(d) {
			return p, true
		}
	}
	return Period{}, false
}

// MatchPeriod returns the quarter of ty that starts and ends exactly on the given dates.
func MatchPeriod(ty TaxYear, kind PeriodKind, start, end time.Time) (Period, bool) {
	want := NewPeriod(start, end)
	for _, p := range Periods(ty, kind) {
		if p.Start.Equal(want.Start) && p.End.Equal(want.End) {
			return p, true
		}
	}
	return Period{}, false
}

// Deadline returns the submission deadline for a period ending on periodEnd:
// the 5th of the month after the month in which the period has closed.
// Dec 31 and Jan 5 both give Feb 5.
func Deadline(periodEnd time.Time) time.Time {
	closed := Day(periodEnd).AddDate(0, 0, 1)
	year, month := closed.Year(), closed.Month()+1
	if month > time.December {
		month = time.January
		year++
	}
	return Date(year, month, 5)
}

// QuarterNumber maps a period start month to 1..4 (Apr–Jun is Q1).
func QuarterNumber(periodStart time.Time) int {
	switch m := periodStart.Month(); {
	case m >= time.April && m <= time.June:
		return 1
	case m >= time.July && m <= time.September:
		return 2
	case m >= time.October:
		return 3
	default:
		return 4
	}
}
