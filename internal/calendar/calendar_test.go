package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaxYear(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: "2025-26"},
		{in: "2099-00"},
		{in: "2025-27", wantErr: true},
		{in: "2025/26", wantErr: true},
		{in: "abcd-ef", wantErr: true},
		{in: "2025-2", wantErr: true},
		{in: "+024-25", wantErr: true},
		{in: "-001-00", wantErr: true},
		{in: " 024-25", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ty, err := ParseTaxYear(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TaxYear(tt.in), ty)
		})
	}
}

func TestTaxYearBounds(t *testing.T) {
	ty := NewTaxYear(2025)
	assert.Equal(t, TaxYear("2025-26"), ty)
	assert.Equal(t, Date(2025, time.April, 6), ty.Start())
	assert.Equal(t, Date(2026, time.April, 5), ty.End())
	assert.Equal(t, TaxYear("2026-27"), ty.Next())
	assert.Equal(t, TaxYear("2024-25"), ty.Prev())
	assert.True(t, ty.Contains(time.Date(2026, time.April, 5, 23, 59, 0, 0, time.UTC)))
	assert.False(t, ty.Contains(Date(2026, time.April, 6)))
}

func TestStandardPeriodsCoverTaxYear(t *testing.T) {
	for start := 2017; start <= 2031; start++ {
		ty := NewTaxYear(start)
		periods := StandardPeriods(ty)

		assert.Equal(t, ty.Start(), periods[0].Start, ty)
		assert.Equal(t, ty.End(), periods[3].End, ty)
		for i, p := range periods {
			assert.False(t, p.End.Before(p.Start), "%s period %d inverted", ty, i)
			assert.True(t, ty.Contains(p.Start) && ty.Contains(p.End))
			if i > 0 {
				assert.Equal(t, periods[i-1].End.AddDate(0, 0, 1), p.Start, "%s gap before period %d", ty, i)
			}
		}
	}
}

func TestCalendarPeriodsAreContiguous(t *testing.T) {
	ty := NewTaxYear(2025)
	periods := CalendarPeriods(ty)

	assert.Equal(t, Date(2025, time.April, 6), periods[0].Start)
	assert.Equal(t, Date(2025, time.June, 30), periods[0].End)
	assert.Equal(t, Date(2026, time.March, 31), periods[3].End)
	for i := 1; i < len(periods); i++ {
		assert.Equal(t, periods[i-1].End.AddDate(0, 0, 1), periods[i].Start)
	}
	for _, p := range periods {
		assert.True(t, ty.Contains(p.Start) && ty.Contains(p.End))
	}
}

func TestDeadline(t *testing.T) {
	tests := []struct {
		end  time.Time
		want time.Time
	}{
		{Date(2025, time.July, 5), Date(2025, time.August, 5)},
		{Date(2025, time.October, 5), Date(2025, time.November, 5)},
		{Date(2026, time.January, 5), Date(2026, time.February, 5)},
		{Date(2026, time.April, 5), Date(2026, time.May, 5)},
		{Date(2025, time.June, 30), Date(2025, time.August, 5)},
		{Date(2025, time.December, 31), Date(2026, time.February, 5)},
		{Date(2026, time.March, 31), Date(2026, time.May, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.end.Format("2006-01-02"), func(t *testing.T) {
			assert.Equal(t, tt.want, Deadline(tt.end))
		})
	}
}

func TestQuarterNumber(t *testing.T) {
	ty := NewTaxYear(2025)
	for i, p := range StandardPeriods(ty) {
		assert.Equal(t, i+1, QuarterNumber(p.Start))
	}
	for i, p := range CalendarPeriods(ty) {
		assert.Equal(t, i+1, QuarterNumber(p.Start))
	}
}

func TestCurrentTaxYear(t *testing.T) {
	assert.Equal(t, TaxYear("2024-25"), CurrentTaxYear(Date(2025, time.April, 5)))
	assert.Equal(t, TaxYear("2025-26"), CurrentTaxYear(Date(2025, time.April, 6)))
	assert.Equal(t, TaxYear("2024-25"), CurrentTaxYear(Date(2025, time.January, 1)))
	assert.Equal(t, TaxYear("2025-26"), CurrentTaxYear(Date(2025, time.December, 31)))
}

func TestCurrentTaxYearOnlyChangesOnApril6(t *testing.T) {
	d := Date(2023, time.January, 1)
	end := Date(2027, time.January, 1)
	for d.Before(end) {
		next := d.AddDate(0, 0, 1)
		if CurrentTaxYear(d) != CurrentTaxYear(next) {
			assert.Equal(t, time.April, next.Month())
			assert.Equal(t, 6, next.Day())
		}
		d = next
	}
}

func TestFindPeriod(t *testing.T) {
	ty := NewTaxYear(2025)

	p, ok := FindPeriod(ty, KindStandard, Date(2025, time.December, 25))
	require.True(t, ok)
	assert.Equal(t, Date(2025, time.October, 6), p.Start)

	p, ok = FindPeriod(ty, KindCalendar, Date(2025, time.December, 25))
	require.True(t, ok)
	assert.Equal(t, Date(2025, time.October, 1), p.Start)

	_, ok = FindPeriod(ty, KindCalendar, Date(2026, time.April, 2))
	assert.False(t, ok)
}

func TestMatchPeriod(t *testing.T) {
	ty := NewTaxYear(2024)
	p, ok := MatchPeriod(ty, KindStandard, Date(2024, time.July, 6), Date(2024, time.October, 5))
	require.True(t, ok)
	assert.Equal(t, 2, QuarterNumber(p.Start))

	_, ok = MatchPeriod(ty, KindStandard, Date(2024, time.July, 6), Date(2024, time.October, 6))
	assert.False(t, ok)
}

func TestParsePeriodKind(t *testing.T) {
	k, err := ParsePeriodKind("")
	require.NoError(t, err)
	assert.Equal(t, KindStandard, k)

	k, err = ParsePeriodKind("calendar")
	require.NoError(t, err)
	assert.Equal(t, KindCalendar, k)

	_, err = ParsePeriodKind("monthly")
	assert.Error(t, err)
}
