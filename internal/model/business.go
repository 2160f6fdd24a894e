package model

import "fmt"

// BusinessType constants, as used by the authority's business details API
const (
	BusinessTypeSelfEmployment  = "self-employment"
	BusinessTypeUKProperty      = "uk-property"
	BusinessTypeForeignProperty = "foreign-property"
)

// Business identifies an income source registered with the authority. Read-through, not persisted.
type Business struct {
	BusinessID   string `json:"business_id"`
	Type         string `json:"type"`
	TradingName  string `json:"trading_name,omitempty"`
	PeriodKind   string `json:"period_kind,omitempty"` // standard or calendar quarters
	FirstTaxYear string `json:"first_tax_year,omitempty"`
}

// ValidateBusinessType rejects anything outside the three supported income sources
func ValidateBusinessType(t string) error {
	switch t {
	case BusinessTypeSelfEmployment, BusinessTypeUKProperty, BusinessTypeForeignProperty:
		return nil
	}
	return fmt.Errorf("unsupported business type '%s'", t)
}

// IsProperty reports whether t is one of the property income sources
func IsProperty(t string) bool {
	return t == BusinessTypeUKProperty || t == BusinessTypeForeignProperty
}
