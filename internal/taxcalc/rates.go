// Package taxcalc computes income tax and National Insurance on self-employed and property profits.
package taxcalc

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"mtd/internal/calendar"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed rates.yaml
var defaultRatesYAML []byte

// ErrUnsupportedTaxYear is returned when no rates are configured for a tax year.
var ErrUnsupportedTaxYear = errors.New("tax year not supported")

// Band is one income tax band. A zero Width means the band is unbounded.
type Band struct {
	Name  string
	Width decimal.Decimal
	Rate  decimal.Decimal
}

// Class2 is the flat-rate contribution.
type Class2 struct {
	WeeklyRate            decimal.Decimal
	Weeks                 int64
	SmallProfitsThreshold decimal.Decimal
}

// Annual is the flat amount for the year.
func (c Class2) Annual() decimal.Decimal {
	return c.WeeklyRate.Mul(decimal.NewFromInt(c.Weeks)).Round(2)
}

// Class4 is the profit-related contribution, banded between two limits.
type Class4 struct {
	LowerProfitsLimit decimal.Decimal
	UpperProfitsLimit decimal.Decimal
	MainRate          decimal.Decimal
	AdditionalRate    decimal.Decimal
}

// Rates holds every constant the calculation needs for one tax year.
type Rates struct {
	TaxYear                    calendar.TaxYear
	PersonalAllowance          decimal.Decimal
	TaperThreshold             decimal.Decimal
	Bands                      []Band
	Class2                     Class2
	Class4                     Class4
	PaymentsOnAccountThreshold decimal.Decimal
}

// RateTable maps tax years to their rates. It is read-only after loading.
type RateTable struct {
	years map[calendar.TaxYear]Rates
}

// For returns the rates for ty.
func (t RateTable) For(ty calendar.TaxYear) (Rates, error) {
	r, ok := t.years[ty]
	if !ok {
		return Rates{}, fmt.Errorf("%w: %s", ErrUnsupportedTaxYear, ty)
	}
	return r, nil
}

// TaxYears lists the configured years in no particular order.
func (t RateTable) TaxYears() []calendar.TaxYear {
	out := make([]calendar.TaxYear, 0, len(t.years))
	for ty := range t.years {
		out = append(out, ty)
	}
	return out
}

// --- YAML schema ---

type bandYAML struct {
	Name  string `yaml:"name"`
	Width string `yaml:"width"`
	Rate  string `yaml:"rate"`
}

type class2YAML struct {
	WeeklyRate            string `yaml:"weekly_rate"`
	Weeks                 int64  `yaml:"weeks"`
	SmallProfitsThreshold string `yaml:"small_profits_threshold"`
}

type class4YAML struct {
	LowerProfitsLimit string `yaml:"lower_profits_limit"`
	UpperProfitsLimit string `yaml:"upper_profits_limit"`
	MainRate          string `yaml:"main_rate"`
	AdditionalRate    string `yaml:"additional_rate"`
}

type yearYAML struct {
	PersonalAllowance          string     `yaml:"personal_allowance"`
	TaperThreshold             string     `yaml:"taper_threshold"`
	Bands                      []bandYAML `yaml:"bands"`
	Class2                     class2YAML `yaml:"class2"`
	Class4                     class4YAML `yaml:"class4"`
	PaymentsOnAccountThreshold string     `yaml:"payments_on_account_threshold"`
}

type ratesFile struct {
	TaxYears map[string]yearYAML `yaml:"tax_years"`
}

// DefaultRates parses the embedded rate table.
func DefaultRates() (RateTable, error) {
	return ParseRates(defaultRatesYAML)
}

// LoadRatesFile reads a rate table from disk. An empty path yields the embedded table.
func LoadRatesFile(path string) (RateTable, error) {
	if path == "" {
		return DefaultRates()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RateTable{}, fmt.Errorf("failed to read rates file: %w", err)
	}
	return ParseRates(data)
}

// ParseRates decodes a YAML rate table.
func ParseRates(data []byte) (RateTable, error) {
	var f ratesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return RateTable{}, fmt.Errorf("failed to parse rates: %w", err)
	}
	table := RateTable{years: make(map[calendar.TaxYear]Rates, len(f.TaxYears))}
	for key, y := range f.TaxYears {
		ty, err := calendar.ParseTaxYear(key)
		if err != nil {
			return RateTable{}, err
		}
		r, err := y.toRates(ty)
		if err != nil {
			return RateTable{}, fmt.Errorf("rates for %s: %w", key, err)
		}
		table.years[ty] = r
	}
	return table, nil
}

func (y yearYAML) toRates(ty calendar.TaxYear) (Rates, error) {
	p := &parser{}
	r := Rates{
		TaxYear:                    ty,
		PersonalAllowance:          p.dec("personal_allowance", y.PersonalAllowance),
		TaperThreshold:             p.dec("taper_threshold", y.TaperThreshold),
		PaymentsOnAccountThreshold: p.dec("payments_on_account_threshold", y.PaymentsOnAccountThreshold),
		Class2: Class2{
			WeeklyRate:            p.dec("class2.weekly_rate", y.Class2.WeeklyRate),
			Weeks:                 y.Class2.Weeks,
			SmallProfitsThreshold: p.dec("class2.small_profits_threshold", y.Class2.SmallProfitsThreshold),
		},
		Class4: Class4{
			LowerProfitsLimit: p.dec("class4.lower_profits_limit", y.Class4.LowerProfitsLimit),
			UpperProfitsLimit: p.dec("class4.upper_profits_limit", y.Class4.UpperProfitsLimit),
			MainRate:          p.dec("class4.main_rate", y.Class4.MainRate),
			AdditionalRate:    p.dec("class4.additional_rate", y.Class4.AdditionalRate),
		},
	}
	for i, b := range y.Bands {
		band := Band{Name: b.Name, Rate: p.dec(fmt.Sprintf("bands[%d].rate", i), b.Rate), Width: decimal.Zero}
		if b.Width != "" {
			band.Width = p.dec(fmt.Sprintf("bands[%d].width", i), b.Width)
		} else if i != len(y.Bands)-1 {
			p.fail(fmt.Errorf("bands[%d]: only the last band may be unbounded", i))
		}
		r.Bands = append(r.Bands, band)
	}
	if len(r.Bands) == 0 {
		p.fail(errors.New("at least one band is required"))
	}
	return r, p.err
}

// parser keeps the first decode error so toRates reads as a flat list.
type parser struct{ err error }

func (p *parser) dec(field, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.fail(fmt.Errorf("invalid %s %q: %w", field, s, err))
		return decimal.Zero
	}
	return d
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
