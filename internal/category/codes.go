// Package category maps ledger category labels to the authority's income and expense codes
// and aggregates transactions into per-period and year-to-date buckets.
package category

import "mtd/internal/model"

// Code is an authority-defined income or expense field name.
type Code string

// Income pseudo-codes. They land in Bucket.Income rather than Bucket.Expenses.
const (
	Income      Code = "income"
	OtherIncome Code = "otherIncome"
)

// Self-employment expense codes
const (
	CostOfGoods                Code = "costOfGoods"
	PaymentsToSubcontractors   Code = "paymentsToSubcontractors"
	WagesAndStaffCosts         Code = "wagesAndStaffCosts"
	CarVanTravelExpenses       Code = "carVanTravelExpenses"
	PremisesRunningCosts       Code = "premisesRunningCosts"
	MaintenanceCosts           Code = "maintenanceCosts"
	AdminCosts                 Code = "adminCosts"
	BusinessEntertainmentCosts Code = "businessEntertainmentCosts"
	AdvertisingCosts           Code = "advertisingCosts"
	InterestOnBankOtherLoans   Code = "interestOnBankOtherLoans"
	FinanceCharges             Code = "financeCharges"
	IrrecoverableDebts         Code = "irrecoverableDebts"
	ProfessionalFees           Code = "professionalFees"
	Depreciation               Code = "depreciation"
	OtherExpenses              Code = "otherExpenses"
)

// Property expense codes. PremisesRunningCosts and ProfessionalFees are shared with self-employment.
const (
	RepairsAndMaintenance    Code = "repairsAndMaintenance"
	FinancialCosts           Code = "financialCosts"
	CostOfServices           Code = "costOfServices"
	PropertyOther            Code = "other"
	TravelCosts              Code = "travelCosts"
	ResidentialFinancialCost Code = "residentialFinancialCost" // restricted relief, property only
)

// SelfEmploymentExpenseCodes in the authority's field order.
var SelfEmploymentExpenseCodes = []Code{
	CostOfGoods, PaymentsToSubcontractors, WagesAndStaffCosts, CarVanTravelExpenses,
	PremisesRunningCosts, MaintenanceCosts, AdminCosts, BusinessEntertainmentCosts,
	AdvertisingCosts, InterestOnBankOtherLoans, FinanceCharges, IrrecoverableDebts,
	ProfessionalFees, Depreciation, OtherExpenses,
}

// PropertyExpenseCodes in the authority's field order.
var PropertyExpenseCodes = []Code{
	PremisesRunningCosts, RepairsAndMaintenance, FinancialCosts, ProfessionalFees,
	CostOfServices, PropertyOther, TravelCosts, ResidentialFinancialCost,
}

// ExpenseCodes returns the expense codes valid for a business type.
func ExpenseCodes(businessType string) []Code {
	if model.IsProperty(businessType) {
		return PropertyExpenseCodes
	}
	return SelfEmploymentExpenseCodes
}

// IsExpenseCode reports whether c is an expense code for the business type.
func IsExpenseCode(businessType string, c Code) bool {
	for _, x := range ExpenseCodes(businessType) {
		if x == c {
			return true
		}
	}
	return false
}

// Entry is one label → code mapping.
type Entry struct {
	Label string
	Code  Code
}

// Dictionary is an ordered list of label mappings. Order decides ties.
type Dictionary []Entry

// DefaultDictionaries returns a fresh copy of the built-in dictionaries keyed by business type.
func DefaultDictionaries() map[string]Dictionary {
	se := Dictionary{
		{"Turnover", Income},
		{"Sales", Income},
		{"Income", Income},
		{"Fees received", Income},
		{"Other income", OtherIncome},
		{"Other business income", OtherIncome},
		{"Grants", OtherIncome},
		{"Cost of goods", CostOfGoods},
		{"Cost of goods bought for resale", CostOfGoods},
		{"Stock", CostOfGoods},
		{"Materials", CostOfGoods},
		{"Subcontractors", PaymentsToSubcontractors},
		{"Construction industry subcontractors", PaymentsToSubcontractors},
		{"Wages", WagesAndStaffCosts},
		{"Salaries", WagesAndStaffCosts},
		{"Staff costs", WagesAndStaffCosts},
		{"Car, van and travel expenses", CarVanTravelExpenses},
		{"Travel", CarVanTravelExpenses},
		{"Fuel", CarVanTravelExpenses},
		{"Mileage", CarVanTravelExpenses},
		{"Rent, rates, power and insurance", PremisesRunningCosts},
		{"Rent", PremisesRunningCosts},
		{"Utilities", PremisesRunningCosts},
		{"Insurance", PremisesRunningCosts},
		{"Repairs", MaintenanceCosts},
		{"Maintenance", MaintenanceCosts},
		{"Phone, fax, stationery and other office costs", AdminCosts},
		{"Office costs", AdminCosts},
		{"Stationery", AdminCosts},
		{"Software", AdminCosts},
		{"Phone", AdminCosts},
		{"Postage", AdminCosts},
		{"Entertainment", BusinessEntertainmentCosts},
		{"Advertising", AdvertisingCosts},
		{"Marketing", AdvertisingCosts},
		{"Interest on bank and other loans", InterestOnBankOtherLoans},
		{"Loan interest", InterestOnBankOtherLoans},
		{"Bank charges", FinanceCharges},
		{"Finance charges", FinanceCharges},
		{"Card fees", FinanceCharges},
		{"Bad debts", IrrecoverableDebts},
		{"Irrecoverable debts", IrrecoverableDebts},
		{"Accountancy", ProfessionalFees},
		{"Legal fees", ProfessionalFees},
		{"Professional fees", ProfessionalFees},
		{"Depreciation", Depreciation},
		{"Other expenses", OtherExpenses},
		{"Sundry", OtherExpenses},
	}
	se = append(se, codeEntries(append([]Code{Income, OtherIncome}, SelfEmploymentExpenseCodes...))...)

	property := Dictionary{
		{"Rent received", Income},
		{"Rental income", Income},
		{"Rents", Income},
		{"Income", Income},
		{"Premiums of lease grant", OtherIncome},
		{"Other property income", OtherIncome},
		{"Other income", OtherIncome},
		{"Rent, rates, insurance and ground rents", PremisesRunningCosts},
		{"Ground rent", PremisesRunningCosts},
		{"Service charges", PremisesRunningCosts},
		{"Insurance", PremisesRunningCosts},
		{"Council tax", PremisesRunningCosts},
		{"Property repairs and maintenance", RepairsAndMaintenance},
		{"Repairs", RepairsAndMaintenance},
		{"Maintenance", RepairsAndMaintenance},
		{"Residential finance costs", ResidentialFinancialCost},
		{"Mortgage interest", ResidentialFinancialCost},
		{"Loan interest and other financial costs", FinancialCosts},
		{"Bank charges", FinancialCosts},
		{"Legal, management and other professional fees", ProfessionalFees},
		{"Letting agent fees", ProfessionalFees},
		{"Accountancy", ProfessionalFees},
		{"Legal fees", ProfessionalFees},
		{"Costs of services provided, including wages", CostOfServices},
		{"Cleaning", CostOfServices},
		{"Gardening", CostOfServices},
		{"Travel costs", TravelCosts},
		{"Travel", TravelCosts},
		{"Other allowable property expenses", PropertyOther},
		{"Other expenses", PropertyOther},
	}
	property = append(property, codeEntries(append([]Code{Income, OtherIncome}, PropertyExpenseCodes...))...)

	foreign := make(Dictionary, len(property))
	copy(foreign, property)

	return map[string]Dictionary{
		model.BusinessTypeSelfEmployment:  se,
		model.BusinessTypeUKProperty:      property,
		model.BusinessTypeForeignProperty: foreign,
	}
}

// codeEntries lets ledgers that already store authority codes map exactly.
func codeEntries(codes []Code) Dictionary {
	d := make(Dictionary, 0, len(codes))
	for _, c := range codes {
		d = append(d, Entry{Label: string(c), Code: c})
	}
	return d
}
