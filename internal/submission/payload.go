package submission

import (
	"encoding/json"
	"fmt"

	"mtd/internal/calendar"
	"mtd/internal/category"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// BodyInput is everything a submission body is built from.
type BodyInput struct {
	Domain   Domain
	Strategy Strategy
	TaxYear  calendar.TaxYear
	Period   calendar.Period
	// Bucket holds the figures to send: year-to-date for cumulative, the quarter for discrete.
	Bucket category.Bucket
	// Consolidated collapses itemised expenses into consolidatedExpenses.
	Consolidated bool
	// YTDTurnover decides whether consolidation is allowed.
	YTDTurnover decimal.Decimal
	CountryCode string
}

type periodDates struct {
	PeriodStartDate string `json:"periodStartDate"`
	PeriodEndDate   string `json:"periodEndDate"`
}

type selfEmploymentIncome struct {
	Turnover json.Number `json:"turnover"`
	Other    json.Number `json:"other"`
}

type selfEmploymentBody struct {
	PeriodDates    *periodDates           `json:"periodDates,omitempty"`
	PeriodIncome   selfEmploymentIncome   `json:"periodIncome"`
	PeriodExpenses map[string]json.Number `json:"periodExpenses,omitempty"`
}

type propertyIncome struct {
	PeriodAmount json.Number `json:"periodAmount"`
	OtherIncome  json.Number `json:"otherIncome"`
}

type propertyData struct {
	Income   propertyIncome         `json:"income"`
	Expenses map[string]json.Number `json:"expenses,omitempty"`
}

type rentIncome struct {
	RentAmount json.Number `json:"rentAmount"`
}

type foreignIncome struct {
	RentIncome          rentIncome  `json:"rentIncome"`
	OtherPropertyIncome json.Number `json:"otherPropertyIncome"`
}

type foreignEntry struct {
	CountryCode string                 `json:"countryCode"`
	Income      foreignIncome          `json:"income"`
	Expenses    map[string]json.Number `json:"expenses,omitempty"`
}

type propertyBody struct {
	FromDate         string         `json:"fromDate,omitempty"`
	ToDate           string         `json:"toDate,omitempty"`
	UKProperty       *propertyData  `json:"ukProperty,omitempty"`
	UKNonFHLProperty *propertyData  `json:"ukNonFhlProperty,omitempty"`
	ForeignProperty  []foreignEntry `json:"foreignProperty,omitempty"`
	// discrete bodies name the non-FHL schedule
	ForeignNonFHLProperty []foreignEntry `json:"foreignNonFhlProperty,omitempty"`
}

// BuildBody renders the wire body. Itemised and consolidated expenses never appear together.
// Consolidation at or above the turnover threshold is refused locally; the authority still has
// the final say on every other rule.
func BuildBody(in BodyInput) (any, error) {
	if in.Consolidated && !category.CanConsolidate(in.YTDTurnover) {
		return nil, fmt.Errorf("%w: year-to-date turnover %s", ErrConsolidationLimit, in.YTDTurnover.StringFixed(2))
	}

	// Cumulative covers the tax year to the end of the period. A discrete amend carries no dates.
	var from, to string
	switch s := in.Strategy.(type) {
	case Cumulative:
		from, to = in.TaxYear.Start().Format(dateLayout), in.Period.End.Format(dateLayout)
	case Discrete:
		if s.PeriodID == "" {
			from, to = in.Period.Start.Format(dateLayout), in.Period.End.Format(dateLayout)
		}
	default:
		return nil, fmt.Errorf("unknown submission strategy %T", in.Strategy)
	}

	expenses := expenseLines(in.Bucket, in.Consolidated)

	switch in.Domain {
	case DomainSelfEmployment:
		body := selfEmploymentBody{
			PeriodIncome: selfEmploymentIncome{
				Turnover: amount(in.Bucket.Income.Turnover),
				Other:    amount(in.Bucket.Income.Other),
			},
			PeriodExpenses: expenses,
		}
		if from != "" {
			body.PeriodDates = &periodDates{PeriodStartDate: from, PeriodEndDate: to}
		}
		return body, nil

	case DomainUKProperty:
		data := &propertyData{
			Income: propertyIncome{
				PeriodAmount: amount(in.Bucket.Income.Turnover),
				OtherIncome:  amount(in.Bucket.Income.Other),
			},
			Expenses: expenses,
		}
		body := propertyBody{FromDate: from, ToDate: to}
		if _, ok := in.Strategy.(Cumulative); ok {
			body.UKProperty = data
		} else {
			body.UKNonFHLProperty = data
		}
		return body, nil

	case DomainForeignProperty:
		if in.CountryCode == "" {
			return nil, ErrMissingCountryCode
		}
		entries := []foreignEntry{{
			CountryCode: in.CountryCode,
			Income: foreignIncome{
				RentIncome:          rentIncome{RentAmount: amount(in.Bucket.Income.Turnover)},
				OtherPropertyIncome: amount(in.Bucket.Income.Other),
			},
			Expenses: expenses,
		}}
		body := propertyBody{FromDate: from, ToDate: to}
		if _, ok := in.Strategy.(Cumulative); ok {
			body.ForeignProperty = entries
		} else {
			body.ForeignNonFHLProperty = entries
		}
		return body, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDomain, in.Domain)
}

// expenseLines returns nil when there is nothing to report.
func expenseLines(b category.Bucket, consolidated bool) map[string]json.Number {
	lines := map[string]json.Number{}
	if consolidated {
		if total := category.ConsolidatedTotal(b); !total.IsZero() {
			lines["consolidatedExpenses"] = amount(total)
		}
		// restricted relief is reported on its own line either way
		if v := b.Expense(category.ResidentialFinancialCost); !v.IsZero() {
			lines[string(category.ResidentialFinancialCost)] = amount(v)
		}
	} else {
		for code, v := range b.Expenses {
			if !v.IsZero() {
				lines[string(code)] = amount(v)
			}
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
