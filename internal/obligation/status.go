// Package obligation derives display statuses for authority-reported filing obligations.
package obligation

import (
	"sort"
	"time"

	"mtd/internal/calendar"
)

// Status is the state reported by the authority.
type Status string

const (
	StatusOpen      Status = "Open"
	StatusFulfilled Status = "Fulfilled"
)

// DisplayStatus is derived locally from the authority status and today's date.
type DisplayStatus string

const (
	DisplayUpcoming  DisplayStatus = "upcoming"
	DisplayOpen      DisplayStatus = "open"
	DisplayOverdue   DisplayStatus = "overdue"
	DisplayFulfilled DisplayStatus = "fulfilled"
)

// Obligation is a requirement to submit data for a period by a due date.
// It is owned by the authority and never mutated here.
type Obligation struct {
	BusinessID   string          `json:"business_id"`
	BusinessType string          `json:"business_type"`
	Period       calendar.Period `json:"period"`
	DueDate      time.Time       `json:"due_date"`
	Status       Status          `json:"status"`
	ReceivedDate *time.Time      `json:"received_date,omitempty"`
	PeriodKey    string          `json:"period_key,omitempty"`
}

// Derive returns the display status of o as of today. Fulfilled always wins.
func Derive(o Obligation, today time.Time) DisplayStatus {
	if o.Status == StatusFulfilled {
		return DisplayFulfilled
	}
	day := calendar.Day(today)
	switch {
	case calendar.Day(o.Period.Start).After(day):
		return DisplayUpcoming
	case day.After(calendar.Day(o.DueDate)):
		return DisplayOverdue
	default:
		return DisplayOpen
	}
}

// DaysUntilDue is positive while days remain, negative once overdue and zero on the due date.
func DaysUntilDue(dueDate, today time.Time) int {
	diff := calendar.Day(dueDate).Sub(calendar.Day(today))
	return int(diff.Hours() / 24)
}

// SortByUrgency orders fulfilled obligations last and the rest by ascending due date.
// The input slice is not modified.
func SortByUrgency(obligations []Obligation, today time.Time) []Obligation {
	out := make([]Obligation, len(obligations))
	copy(out, obligations)
	sort.SliceStable(out, func(i, j int) bool {
		fi := Derive(out[i], today) == DisplayFulfilled
		fj := Derive(out[j], today) == DisplayFulfilled
		if fi != fj {
			return !fi
		}
		return calendar.Day(out[i].DueDate).Before(calendar.Day(out[j].DueDate))
	})
	return out
}

// View is an obligation annotated for listing.
type View struct {
	Obligation
	DisplayStatus DisplayStatus `json:"display_status"`
	DaysUntilDue  int           `json:"days_until_due"`
	Quarter       int           `json:"quarter"`
}

// Annotate sorts by urgency and attaches derived fields.
func Annotate(obligations []Obligation, today time.Time) []View {
	sorted := SortByUrgency(obligations, today)
	views := make([]View, 0, len(sorted))
	for _, o := range sorted {
		views = append(views, View{
			Obligation:    o,
			DisplayStatus: Derive(o, today),
			DaysUntilDue:  DaysUntilDue(o.DueDate, today),
			Quarter:       calendar.QuarterNumber(o.Period.Start),
		})
	}
	return views
}
