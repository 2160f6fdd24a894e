package category

import (
	"testing"
	"time"

	"mtd/internal/calendar"
	"mtd/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(date time.Time, amount string, cat string) model.Transaction {
	t := model.Transaction{Date: date, Amount: decimal.RequireFromString(amount), Description: cat}
	if cat != "" {
		c := cat
		t.MTDCategory = &c
	}
	return t
}

func TestMapCategoryTiers(t *testing.T) {
	m := NewDefaultMapper()

	tests := []struct {
		name string
		raw  string
		bt   string
		want Code
		ok   bool
	}{
		{"exact label", "Stock", model.BusinessTypeSelfEmployment, CostOfGoods, true},
		{"exact code", "adminCosts", model.BusinessTypeSelfEmployment, AdminCosts, true},
		{"case insensitive", "BANK CHARGES", model.BusinessTypeSelfEmployment, FinanceCharges, true},
		{"raw contains label", "Monthly software subscription", model.BusinessTypeSelfEmployment, AdminCosts, true},
		{"label contains raw", "subcontract", model.BusinessTypeSelfEmployment, PaymentsToSubcontractors, true},
		{"property finance cost", "Mortgage interest", model.BusinessTypeUKProperty, ResidentialFinancialCost, true},
		{"property rents", "rent received", model.BusinessTypeUKProperty, Income, true},
		{"unknown", "zzz", model.BusinessTypeSelfEmployment, "", false},
		{"empty", "  ", model.BusinessTypeSelfEmployment, "", false},
		{"unknown business type", "Stock", "crypto", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.MapCategory(tt.raw, tt.bt)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapCategoryBusinessTypeSpecific(t *testing.T) {
	m := NewDefaultMapper()

	code, ok := m.MapCategory("residentialFinancialCost", model.BusinessTypeSelfEmployment)
	if ok {
		assert.NotEqual(t, ResidentialFinancialCost, code)
	}

	code, ok = m.MapCategory("Repairs", model.BusinessTypeUKProperty)
	require.True(t, ok)
	assert.Equal(t, RepairsAndMaintenance, code)

	code, ok = m.MapCategory("Repairs", model.BusinessTypeSelfEmployment)
	require.True(t, ok)
	assert.Equal(t, MaintenanceCosts, code)
}

func TestNewMapperCopiesDictionaries(t *testing.T) {
	dicts := map[string]Dictionary{model.BusinessTypeSelfEmployment: {{Label: "Widgets", Code: CostOfGoods}}}
	m := NewMapper(dicts)
	dicts[model.BusinessTypeSelfEmployment][0].Code = AdminCosts

	code, ok := m.MapCategory("Widgets", model.BusinessTypeSelfEmployment)
	require.True(t, ok)
	assert.Equal(t, CostOfGoods, code)
}

func TestSuggest(t *testing.T) {
	m := NewDefaultMapper()
	s, ok := m.Suggest("Advertsing", model.BusinessTypeSelfEmployment)
	require.True(t, ok)
	assert.Equal(t, AdvertisingCosts, s.Code)
	assert.Equal(t, 1, s.Distance)

	_, ok = m.Suggest("", model.BusinessTypeSelfEmployment)
	assert.False(t, ok)
}

func sampleLedger() []model.Transaction {
	return []model.Transaction{
		tx(calendar.Date(2025, time.April, 10), "1000.00", "Sales"),
		tx(calendar.Date(2025, time.May, 2), "-120.50", "Software"),
		tx(calendar.Date(2025, time.June, 30), "-80.00", "Fuel"),
		tx(calendar.Date(2025, time.July, 8), "2500.00", "Sales"),
		tx(calendar.Date(2025, time.August, 1), "-300.00", "Accountancy"),
		tx(calendar.Date(2025, time.August, 3), "40.00", "Grants"),
		tx(calendar.Date(2025, time.September, 9), "-15.00", "Mystery"),
		tx(calendar.Date(2025, time.September, 10), "-9.99", ""),
		tx(calendar.Date(2026, time.January, 10), "-50.00", "Software"),
	}
}

func TestAggregate(t *testing.T) {
	m := NewDefaultMapper()
	q2 := calendar.StandardPeriods(calendar.NewTaxYear(2025))[1]

	b := m.Aggregate(sampleLedger(), model.BusinessTypeSelfEmployment, &q2)

	assert.True(t, decimal.RequireFromString("2500").Equal(b.Income.Turnover))
	assert.True(t, decimal.RequireFromString("40").Equal(b.Income.Other))
	assert.True(t, decimal.RequireFromString("300").Equal(b.Expense(ProfessionalFees)))
	assert.True(t, b.Expense(AdminCosts).IsZero())
	assert.Len(t, b.Unmapped, 2)
	assert.Len(t, b.TransactionsByCategory[Income], 1)
}

func TestAggregateSumInvariant(t *testing.T) {
	m := NewDefaultMapper()
	ledger := sampleLedger()
	b := m.Aggregate(ledger, model.BusinessTypeSelfEmployment, nil)

	contributed := decimal.Zero
	seen := map[*model.Transaction]bool{}
	for _, txs := range b.TransactionsByCategory {
		for i := range txs {
			contributed = contributed.Add(txs[i].Amount.Abs())
			seen[&txs[i]] = true
		}
	}
	totals := decimal.Zero
	for _, v := range b.CategoryTotals() {
		totals = totals.Add(v)
	}
	assert.True(t, contributed.Equal(totals), "category totals %s != contributed %s", totals, contributed)
	assert.Equal(t, len(ledger)-len(b.Unmapped), len(seen))
}

func TestAggregateIsIdempotent(t *testing.T) {
	m := NewDefaultMapper()
	ledger := sampleLedger()
	a := m.Aggregate(ledger, model.BusinessTypeSelfEmployment, nil)
	b := m.Aggregate(ledger, model.BusinessTypeSelfEmployment, nil)
	assert.Equal(t, a.CategoryTotals(), b.CategoryTotals())
}

func TestAggregatePeriodCumulativeIsMonotonic(t *testing.T) {
	m := NewDefaultMapper()
	ty := calendar.NewTaxYear(2025)
	ledger := sampleLedger()

	prev := map[Code]decimal.Decimal{}
	for _, p := range calendar.StandardPeriods(ty) {
		this, cum := m.AggregatePeriod(ledger, model.BusinessTypeSelfEmployment, ty, p)
		cumTotals := cum.CategoryTotals()
		for code, v := range this.CategoryTotals() {
			assert.True(t, cumTotals[code].GreaterThanOrEqual(v), "%s: cumulative below period", code)
		}
		for code, v := range prev {
			assert.True(t, cumTotals[code].GreaterThanOrEqual(v), "%s: cumulative decreased", code)
		}
		prev = cumTotals
	}
	assert.True(t, decimal.RequireFromString("170.50").Equal(prev[AdminCosts]))
}

func TestApplyAdjustments(t *testing.T) {
	m := NewDefaultMapper()
	b := m.Aggregate(sampleLedger(), model.BusinessTypeSelfEmployment, nil)

	adjusted, err := ApplyAdjustments(b, []model.Adjustment{
		{Field: "turnover", Amount: decimal.RequireFromString("-100")},
		{Field: string(AdminCosts), Amount: decimal.RequireFromString("29.50")},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3400").Equal(adjusted.Income.Turnover))
	assert.True(t, decimal.RequireFromString("200").Equal(adjusted.Expense(AdminCosts)))
	assert.True(t, decimal.RequireFromString("3500").Equal(b.Income.Turnover), "original must be untouched")

	_, err = ApplyAdjustments(b, []model.Adjustment{{Field: string(ResidentialFinancialCost), Amount: decimal.NewFromInt(1)}})
	assert.Error(t, err)
}

func TestConsolidation(t *testing.T) {
	assert.True(t, CanConsolidate(decimal.RequireFromString("89999.99")))
	assert.False(t, CanConsolidate(decimal.NewFromInt(90000)))

	b := newBucket(model.BusinessTypeUKProperty)
	b.Expenses[RepairsAndMaintenance] = decimal.NewFromInt(100)
	b.Expenses[ResidentialFinancialCost] = decimal.NewFromInt(900)
	assert.True(t, decimal.NewFromInt(100).Equal(ConsolidatedTotal(b)))

	se := newBucket(model.BusinessTypeSelfEmployment)
	se.Expenses[AdminCosts] = decimal.NewFromInt(10)
	se.Expenses[CostOfGoods] = decimal.NewFromInt(5)
	assert.True(t, decimal.NewFromInt(15).Equal(ConsolidatedTotal(se)))
}
