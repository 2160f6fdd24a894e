package category

import (
	"fmt"
	"sort"

	"mtd/internal/calendar"
	"mtd/internal/model"

	"github.com/shopspring/decimal"
)

// ConsolidationThreshold is the year-to-date turnover below which expenses may be reported as one figure.
var ConsolidationThreshold = decimal.NewFromInt(90000)

// IncomeTotals holds the two income lines every business type reports.
type IncomeTotals struct {
	Turnover decimal.Decimal `json:"turnover"`
	Other    decimal.Decimal `json:"other"`
}

// Unmapped is a transaction whose label did not resolve, with the nearest known label if any.
type Unmapped struct {
	Transaction model.Transaction `json:"transaction"`
	Suggestion  *Suggestion       `json:"suggestion,omitempty"`
}

// Bucket holds aggregated totals for one filter window.
type Bucket struct {
	BusinessType           string                       `json:"business_type"`
	Income                 IncomeTotals                 `json:"income"`
	Expenses               map[Code]decimal.Decimal     `json:"expenses"`
	TransactionsByCategory map[Code][]model.Transaction `json:"transactions_by_category"`
	Unmapped               []Unmapped                   `json:"unmapped,omitempty"`
}

func newBucket(businessType string) Bucket {
	return Bucket{
		BusinessType:           businessType,
		Income:                 IncomeTotals{Turnover: decimal.Zero, Other: decimal.Zero},
		Expenses:               map[Code]decimal.Decimal{},
		TransactionsByCategory: map[Code][]model.Transaction{},
	}
}

// Aggregate sums abs(amount) of every transaction whose category resolves and whose date lies in
// filter. A nil filter aggregates everything. Each transaction contributes to exactly one code.
func (m *Mapper) Aggregate(txs []model.Transaction, businessType string, filter *calendar.Period) Bucket {
	b := newBucket(businessType)
	for _, tx := range txs {
		if filter != nil && !filter.Contains(tx.Date) {
			continue
		}
		code, ok := m.MapCategory(tx.Category(), businessType)
		if !ok || !(code == Income || code == OtherIncome || IsExpenseCode(businessType, code)) {
			u := Unmapped{Transaction: tx}
			if s, found := m.Suggest(tx.Category(), businessType); found {
				u.Suggestion = &s
			}
			b.Unmapped = append(b.Unmapped, u)
			continue
		}
		amount := tx.Amount.Abs()
		switch code {
		case Income:
			b.Income.Turnover = b.Income.Turnover.Add(amount)
		case OtherIncome:
			b.Income.Other = b.Income.Other.Add(amount)
		default:
			b.Expenses[code] = b.Expense(code).Add(amount)
		}
		b.TransactionsByCategory[code] = append(b.TransactionsByCategory[code], tx)
	}
	return b
}

// AggregatePeriod produces the two buckets always used together: the quarter alone and the
// year to date up to and including the quarter.
func (m *Mapper) AggregatePeriod(txs []model.Transaction, businessType string, ty calendar.TaxYear, period calendar.Period) (thisPeriod, cumulative Bucket) {
	ytd := calendar.NewPeriod(ty.Start(), period.End)
	return m.Aggregate(txs, businessType, &period), m.Aggregate(txs, businessType, &ytd)
}

// Expense returns the total for code, zero when absent.
func (b Bucket) Expense(code Code) decimal.Decimal {
	if v, ok := b.Expenses[code]; ok {
		return v
	}
	return decimal.Zero
}

func (b Bucket) TotalIncome() decimal.Decimal {
	return b.Income.Turnover.Add(b.Income.Other)
}

func (b Bucket) TotalExpenses() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b.Expenses {
		total = total.Add(v)
	}
	return total
}

// Profit is total income less total expenses; it may be negative.
func (b Bucket) Profit() decimal.Decimal {
	return b.TotalIncome().Sub(b.TotalExpenses())
}

// CategoryTotals flattens income and expenses into one map keyed by code.
func (b Bucket) CategoryTotals() map[Code]decimal.Decimal {
	out := make(map[Code]decimal.Decimal, len(b.Expenses)+2)
	for k, v := range b.Expenses {
		out[k] = v
	}
	if len(b.TransactionsByCategory[Income]) > 0 || !b.Income.Turnover.IsZero() {
		out[Income] = b.Income.Turnover
	}
	if len(b.TransactionsByCategory[OtherIncome]) > 0 || !b.Income.Other.IsZero() {
		out[OtherIncome] = b.Income.Other
	}
	return out
}

// ExpenseCodesPresent returns the codes with a total, sorted for stable output.
func (b Bucket) ExpenseCodesPresent() []Code {
	codes := make([]Code, 0, len(b.Expenses))
	for c := range b.Expenses {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Clone deep-copies the maps so the result can be modified independently.
func (b Bucket) Clone() Bucket {
	out := b
	out.Expenses = make(map[Code]decimal.Decimal, len(b.Expenses))
	for k, v := range b.Expenses {
		out.Expenses[k] = v
	}
	out.TransactionsByCategory = make(map[Code][]model.Transaction, len(b.TransactionsByCategory))
	for k, v := range b.TransactionsByCategory {
		out.TransactionsByCategory[k] = append([]model.Transaction(nil), v...)
	}
	out.Unmapped = append([]Unmapped(nil), b.Unmapped...)
	return out
}

// ApplyAdjustments layers manual corrections on a copy of b. Field is "turnover" (or "income"),
// "otherIncome", or an expense code valid for the business type.
func ApplyAdjustments(b Bucket, adjustments []model.Adjustment) (Bucket, error) {
	out := b.Clone()
	for _, adj := range adjustments {
		code := Code(adj.Field)
		switch {
		case code == Income || adj.Field == "turnover":
			out.Income.Turnover = out.Income.Turnover.Add(adj.Amount)
		case code == OtherIncome:
			out.Income.Other = out.Income.Other.Add(adj.Amount)
		case IsExpenseCode(b.BusinessType, code):
			out.Expenses[code] = out.Expense(code).Add(adj.Amount)
		default:
			return Bucket{}, fmt.Errorf("adjustment field '%s' is not valid for %s", adj.Field, b.BusinessType)
		}
	}
	return out, nil
}

// IsAdjustableField reports whether field names a line an adjustment may target.
func IsAdjustableField(businessType, field string) bool {
	code := Code(field)
	return field == "turnover" || code == Income || code == OtherIncome || IsExpenseCode(businessType, code)
}

// CanConsolidate reports whether year-to-date turnover allows consolidated expenses.
func CanConsolidate(ytdTurnover decimal.Decimal) bool {
	return ytdTurnover.LessThan(ConsolidationThreshold)
}

// ConsolidatedTotal collapses the itemised expenses into one figure. Property residential
// finance costs are reported on their own line and stay out of the total.
func ConsolidatedTotal(b Bucket) decimal.Decimal {
	total := decimal.Zero
	for code, v := range b.Expenses {
		if code == ResidentialFinancialCost && model.IsProperty(b.BusinessType) {
			continue
		}
		total = total.Add(v)
	}
	return total
}
