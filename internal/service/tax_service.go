package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"mtd/internal/calendar"
	"mtd/internal/taxcalc"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

// TaxEstimateRequest takes either a profit figure or income and expenses. Amounts are decimal strings.
type TaxEstimateRequest struct {
	TaxYear    string `json:"tax_year" binding:"required"` // YYYY-YY
	Profit     string `json:"profit"`
	Income     string `json:"income"`
	Expenses   string `json:"expenses"`
	Deductions string `json:"deductions"`
}

// --- Interface ---

type TaxService interface {
	Estimate(ctx context.Context, req TaxEstimateRequest) (taxcalc.Result, error)
	SupportedTaxYears(ctx context.Context) []string
}

type taxService struct {
	rates taxcalc.RateTable
}

func NewTaxService(rates taxcalc.RateTable) TaxService {
	return &taxService{rates: rates}
}

// --- Implementation ---

func (s *taxService) Estimate(ctx context.Context, req TaxEstimateRequest) (taxcalc.Result, error) {
	ty, err := calendar.ParseTaxYear(req.TaxYear)
	if err != nil {
		return taxcalc.Result{}, invalidErr(err)
	}
	rates, err := s.rates.For(ty)
	if err != nil {
		if errors.Is(err, taxcalc.ErrUnsupportedTaxYear) {
			return taxcalc.Result{}, invalidErr(err)
		}
		return taxcalc.Result{}, fmt.Errorf("failed to load tax rates: %w", err)
	}

	if req.Profit != "" {
		profit, err := parseAmount("profit", req.Profit)
		if err != nil {
			return taxcalc.Result{}, err
		}
		return taxcalc.CalculateProfit(profit, rates), nil
	}

	var in taxcalc.Input
	if in.Income, err = parseAmount("income", req.Income); err != nil {
		return taxcalc.Result{}, err
	}
	if in.Expenses, err = parseAmount("expenses", req.Expenses); err != nil {
		return taxcalc.Result{}, err
	}
	if in.Deductions, err = parseAmount("deductions", req.Deductions); err != nil {
		return taxcalc.Result{}, err
	}
	return taxcalc.Calculate(in, rates), nil
}

// SupportedTaxYears lists the years with configured rates, oldest first
func (s *taxService) SupportedTaxYears(ctx context.Context) []string {
	years := s.rates.TaxYears()
	out := make([]string, 0, len(years))
	for _, ty := range years {
		out = append(out, ty.String())
	}
	sort.Strings(out)
	return out
}

// --- Helpers ---

// parseAmount treats an empty string as zero.
func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("%s is not a valid amount", field)
	}
	return d, nil
}
