package taxcalc

import (
	"time"

	"mtd/internal/calendar"

	"github.com/shopspring/decimal"
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// Input is the raw material of taxable profit.
type Input struct {
	Income     decimal.Decimal `json:"income"`
	Expenses   decimal.Decimal `json:"expenses"`
	Deductions decimal.Decimal `json:"deductions"`
}

// BandResult is the slice of profit that fell into one band and the charge on it.
type BandResult struct {
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
	Tax    decimal.Decimal `json:"tax"`
}

// Installment is one payment on account.
type Installment struct {
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
}

// Result is derived from one input snapshot and never cached past the request that built it.
type Result struct {
	TaxYear           calendar.TaxYear `json:"tax_year"`
	TaxableProfit     decimal.Decimal  `json:"taxable_profit"`
	PersonalAllowance decimal.Decimal  `json:"personal_allowance"`
	AllowanceUsed     decimal.Decimal  `json:"allowance_used"`
	IncomeTaxByBand   []BandResult     `json:"income_tax_by_band"`
	IncomeTax         decimal.Decimal  `json:"income_tax"`
	Class2            decimal.Decimal  `json:"class2"`
	Class4ByBand      []BandResult     `json:"class4_by_band"`
	NIC               decimal.Decimal  `json:"nic"`
	TotalDue          decimal.Decimal  `json:"total_due"`
	EffectiveRate     decimal.Decimal  `json:"effective_rate"`
	MarginalRate      int              `json:"marginal_rate"`
	PaymentsOnAccount []Installment    `json:"payments_on_account,omitempty"`
}

// Band returns the named income tax band result.
func (r Result) Band(name string) (BandResult, bool) {
	for _, b := range r.IncomeTaxByBand {
		if b.Name == name {
			return b, true
		}
	}
	return BandResult{}, false
}

// TaxableProfit is income less expenses less deductions, rounded to pence.
func (in Input) TaxableProfit() decimal.Decimal {
	return in.Income.Sub(in.Expenses).Sub(in.Deductions).Round(2)
}

// Calculate derives profit from in and runs CalculateProfit.
func Calculate(in Input, r Rates) Result {
	return CalculateProfit(in.TaxableProfit(), r)
}

// CalculateProfit computes the liability on a single profit figure. Every monetary sub-result is
// rounded to two places on its own before it is summed.
func CalculateProfit(profit decimal.Decimal, r Rates) Result {
	profit = profit.Round(2)
	res := Result{
		TaxYear:       r.TaxYear,
		TaxableProfit: profit,
	}

	res.PersonalAllowance = personalAllowance(profit, r)
	res.AllowanceUsed = decimal.Max(decimal.Zero, decimal.Min(profit, res.PersonalAllowance))

	remaining := decimal.Max(decimal.Zero, profit.Sub(res.AllowanceUsed))
	res.IncomeTax = decimal.Zero
	for _, band := range r.Bands {
		amount := remaining
		if !band.Width.IsZero() {
			amount = decimal.Min(remaining, band.Width)
		}
		tax := amount.Mul(band.Rate).Round(2)
		res.IncomeTaxByBand = append(res.IncomeTaxByBand, BandResult{Name: band.Name, Rate: band.Rate, Amount: amount, Tax: tax})
		res.IncomeTax = res.IncomeTax.Add(tax)
		remaining = remaining.Sub(amount)
		if amount.IsPositive() {
			// the last band that received profit holds the last pound
			res.MarginalRate = int(band.Rate.Mul(hundred).IntPart())
		}
	}

	res.Class2 = decimal.Zero
	if profit.GreaterThan(r.Class2.SmallProfitsThreshold) {
		res.Class2 = r.Class2.Annual()
	}
	res.Class4ByBand = class4(profit, r.Class4)

	res.NIC = res.Class2
	for _, b := range res.Class4ByBand {
		res.NIC = res.NIC.Add(b.Tax)
	}
	res.TotalDue = res.IncomeTax.Add(res.NIC)

	res.EffectiveRate = decimal.Zero
	if profit.IsPositive() {
		res.EffectiveRate = res.TotalDue.Div(profit).Mul(hundred).Round(2)
	}

	res.PaymentsOnAccount = paymentsOnAccount(res.TotalDue, r)
	return res
}

// personalAllowance tapers by one pound per two pounds over the threshold, floored at zero.
func personalAllowance(profit decimal.Decimal, r Rates) decimal.Decimal {
	if profit.LessThanOrEqual(r.TaperThreshold) {
		return r.PersonalAllowance
	}
	reduction := profit.Sub(r.TaperThreshold).Div(two).Floor()
	return decimal.Max(decimal.Zero, r.PersonalAllowance.Sub(reduction))
}

func class4(profit decimal.Decimal, c Class4) []BandResult {
	lower := decimal.Min(profit, c.UpperProfitsLimit).Sub(c.LowerProfitsLimit)
	lower = decimal.Max(decimal.Zero, lower)
	upper := decimal.Max(decimal.Zero, profit.Sub(c.UpperProfitsLimit))
	return []BandResult{
		{Name: "main", Rate: c.MainRate, Amount: lower, Tax: lower.Mul(c.MainRate).Round(2)},
		{Name: "additional", Rate: c.AdditionalRate, Amount: upper, Tax: upper.Mul(c.AdditionalRate).Round(2)},
	}
}

// paymentsOnAccount splits the liability into two halves due 31 January and 31 July after the year ends.
func paymentsOnAccount(totalDue decimal.Decimal, r Rates) []Installment {
	if r.PaymentsOnAccountThreshold.IsZero() || totalDue.LessThan(r.PaymentsOnAccountThreshold) {
		return nil
	}
	// the second installment takes the odd penny
	first := totalDue.Div(two).RoundDown(2)
	year := r.TaxYear.StartYear() + 2
	return []Installment{
		{DueDate: calendar.Date(year, time.January, 31), Amount: first},
		{DueDate: calendar.Date(year, time.July, 31), Amount: totalDue.Sub(first)},
	}
}
