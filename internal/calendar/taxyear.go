package calendar

import (
	"fmt"
	"strconv"
	"time"
)

// TaxYear is a UK tax year identifier of the form YYYY-YY, e.g. "2025-26".
type TaxYear string

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date is a shorthand for a UTC midnight date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NewTaxYear returns the tax year starting on April 6 of startYear.
func NewTaxYear(startYear int) TaxYear {
	return TaxYear(fmt.Sprintf("%04d-%02d", startYear, (startYear+1)%100))
}

// ParseTaxYear validates s and returns it as a TaxYear.
func ParseTaxYear(s string) (TaxYear, error) {
	if len(s) != 7 || s[4] != '-' || !allDigits(s[:4]) || !allDigits(s[5:]) {
		return "", fmt.Errorf("invalid tax year %q (expected YYYY-YY)", s)
	}
	start, err := strconv.Atoi(s[:4])
	if err != nil {
		return "", fmt.Errorf("invalid tax year %q: %w", s, err)
	}
	end, err := strconv.Atoi(s[5:])
	if err != nil {
		return "", fmt.Errorf("invalid tax year %q: %w", s, err)
	}
	if end != (start+1)%100 {
		return "", fmt.Errorf("invalid tax year %q: end year must follow start year", s)
	}
	return TaxYear(s), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// StartYear returns the calendar year in which the tax year begins.
// It panics on a malformed identifier; use ParseTaxYear on untrusted input.
func (ty TaxYear) StartYear() int {
	n, err := strconv.Atoi(string(ty)[:4])
	if err != nil {
		panic(fmt.Sprintf("calendar: malformed tax year %q", string(ty)))
	}
	return n
}

// Start is April 6 of the start year.
func (ty TaxYear) Start() time.Time {
	return Date(ty.StartYear(), time.April, 6)
}

// End is April 5 of the following year.
func (ty TaxYear) End() time.Time {
	return Date(ty.StartYear()+1, time.April, 5)
}

// Contains reports whether d falls within the tax year, inclusive of both ends.
func (ty TaxYear) Contains(d time.Time) bool {
	day := Day(d)
	return !day.Before(ty.Start()) && !day.After(ty.End())
}

func (ty TaxYear) Next() TaxYear { return NewTaxYear(ty.StartYear() + 1) }

func (ty TaxYear) Prev() TaxYear { return NewTaxYear(ty.StartYear() - 1) }

func (ty TaxYear) String() string { return string(ty) }

// CurrentTaxYear returns the tax year that contains today.
func CurrentTaxYear(today time.Time) TaxYear {
	day := Day(today)
	year := day.Year()
	if day.Before(Date(year, time.April, 6)) {
		return NewTaxYear(year - 1)
	}
	return NewTaxYear(year)
}

// ForDate is CurrentTaxYear under a name that reads better for historic dates.
func ForDate(d time.Time) TaxYear {
	return CurrentTaxYear(d)
}
