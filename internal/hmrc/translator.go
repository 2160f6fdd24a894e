package hmrc

import (
	"net/http"
	"strings"
)

// Classification decides what the caller does next.
type Classification string

const (
	ClassRetryable Classification = "retryable"
	ClassReauth    Classification = "reauth"
	ClassTerminal  Classification = "terminal"
)

// Category groups codes by cause.
type Category string

const (
	CategoryFormat        Category = "format"
	CategoryRule          Category = "rule"
	CategoryResource      Category = "resource"
	CategoryAuthorization Category = "authorization"
	CategoryServer        Category = "server"
)

// UnknownErrorMessage is shown for any code missing from the table.
const UnknownErrorMessage = "An unknown error occurred. Please try again later or contact support."

// Entry is the translation of one error code.
type Entry struct {
	Classification Classification `json:"classification"`
	Category       Category       `json:"category"`
	Message        string         `json:"message"`
}

// Table maps authority error codes to their translation.
type Table map[string]Entry

func terminal(cat Category, msg string) Entry {
	return Entry{Classification: ClassTerminal, Category: cat, Message: msg}
}

// DefaultTable returns a fresh copy of the built-in translations.
func DefaultTable() Table {
	return Table{
		// format
		"FORMAT_NINO":           terminal(CategoryFormat, "The National Insurance number is not valid."),
		"FORMAT_TAX_YEAR":       terminal(CategoryFormat, "The tax year is not valid."),
		"FORMAT_BUSINESS_ID":    terminal(CategoryFormat, "The business ID is not valid."),
		"FORMAT_PERIOD_ID":      terminal(CategoryFormat, "The period ID is not valid."),
		"FORMAT_VALUE":          terminal(CategoryFormat, "One or more amounts are not valid. Amounts must have at most two decimal places and fit the allowed range."),
		"FORMAT_START_DATE":     terminal(CategoryFormat, "The period start date is not valid."),
		"FORMAT_END_DATE":       terminal(CategoryFormat, "The period end date is not valid."),
		"FORMAT_FROM_DATE":      terminal(CategoryFormat, "The from date is not valid."),
		"FORMAT_TO_DATE":        terminal(CategoryFormat, "The to date is not valid."),
		"INVALID_ACCEPT_HEADER": terminal(CategoryFormat, "The request used an unsupported API version."),
		"BAD_REQUEST":           terminal(CategoryFormat, "The request could not be understood."),
		"INVALID_REQUEST":       terminal(CategoryFormat, "The request was not valid."),

		"RULE_INCORRECT_GOV_TEST_SCENARIO": terminal(CategoryFormat, "The test scenario header is not valid."),

		// rule
		"RULE_INCORRECT_OR_EMPTY_BODY_SUBMITTED":           terminal(CategoryRule, "The submission is empty or has missing fields."),
		"RULE_TAX_YEAR_NOT_SUPPORTED":                      terminal(CategoryRule, "This tax year is not supported."),
		"RULE_TAX_YEAR_RANGE_INVALID":                      terminal(CategoryRule, "The tax year must cover exactly one year."),
		"RULE_TAX_YEAR_NOT_ENDED":                          terminal(CategoryRule, "The tax year has not ended yet."),
		"RULE_BOTH_EXPENSES_SUPPLIED":                      terminal(CategoryRule, "Itemised and consolidated expenses cannot both be submitted."),
		"RULE_NOT_ALLOWED_CONSOLIDATED_EXPENSES":           terminal(CategoryRule, "Consolidated expenses are not allowed because turnover is above the threshold."),
		"RULE_END_DATE_BEFORE_START_DATE":                  terminal(CategoryRule, "The period end date is before the start date."),
		"RULE_OVERLAPPING_PERIOD":                          terminal(CategoryRule, "The period overlaps an existing submission."),
		"RULE_MISALIGNED_PERIOD":                           terminal(CategoryRule, "The period does not align with the accounting period."),
		"RULE_NOT_CONTIGUOUS_PERIOD":                       terminal(CategoryRule, "The period does not follow on from the previous submission."),
		"RULE_DUPLICATE_PERIOD":                            terminal(CategoryRule, "A summary for this period already exists."),
		"RULE_DUPLICATE_SUBMISSION":                        terminal(CategoryRule, "This submission has already been received."),
		"RULE_TYPE_OF_BUSINESS_INCORRECT":                  terminal(CategoryRule, "The business type does not match this endpoint."),
		"RULE_BUSINESS_INCOME_PERIOD_RESTRICTION":          terminal(CategoryRule, "Income cannot be submitted for this period."),
		"RULE_OUTSIDE_AMENDMENT_WINDOW":                    terminal(CategoryRule, "The amendment window for this tax year has closed."),
		"RULE_EARLY_DATA_SUBMISSION_NOT_ACCEPTED":          terminal(CategoryRule, "Data cannot be submitted before the period has ended."),
		"RULE_ADVANCE_SUBMISSION_REQUIRES_PERIOD_END_DATE": terminal(CategoryRule, "An advance submission must cover the full period."),
		"RULE_START_DATE_NOT_ALIGNED_WITH_REPORTING_TYPE":  terminal(CategoryRule, "The start date does not match the quarterly reporting type."),
		"RULE_END_DATE_NOT_ALIGNED_WITH_REPORTING_TYPE":    terminal(CategoryRule, "The end date does not match the quarterly reporting type."),

		// resource
		"MATCHING_RESOURCE_NOT_FOUND": terminal(CategoryResource, "The business or period could not be found. Refresh your businesses and try again."),
		"NOT_FOUND":                   terminal(CategoryResource, "The requested record could not be found."),
		"PERIOD_NOT_FOUND":            terminal(CategoryResource, "The period summary could not be found."),
		"SUBMISSION_ID_NOT_FOUND":     terminal(CategoryResource, "The submission could not be found."),
		"NO_BUSINESSES_FOUND":         terminal(CategoryResource, "No businesses are registered for this taxpayer."),

		// authorization
		"UNAUTHORIZED":                   {Classification: ClassReauth, Category: CategoryAuthorization, Message: "Your session has expired. Please sign in to HMRC again."},
		"INVALID_CREDENTIALS":            {Classification: ClassReauth, Category: CategoryAuthorization, Message: "Your HMRC credentials are no longer valid. Please sign in again."},
		"INVALID_BEARER_TOKEN":           {Classification: ClassReauth, Category: CategoryAuthorization, Message: "Your HMRC credentials are no longer valid. Please sign in again."},
		"MISSING_CREDENTIALS":            {Classification: ClassReauth, Category: CategoryAuthorization, Message: "You are not signed in to HMRC."},
		"CLIENT_OR_AGENT_NOT_AUTHORISED": terminal(CategoryAuthorization, "You are not authorised to act for this taxpayer."),
		"RULE_INSOLVENT_TRADER":          terminal(CategoryAuthorization, "This taxpayer cannot use this service."),

		// server
		"MESSAGE_THROTTLED_OUT": {Classification: ClassRetryable, Category: CategoryServer, Message: "HMRC is receiving too many requests. Please wait a moment."},
		"INTERNAL_SERVER_ERROR": {Classification: ClassRetryable, Category: CategoryServer, Message: "HMRC encountered an error. Please try again."},
		"SERVICE_UNAVAILABLE":   {Classification: ClassRetryable, Category: CategoryServer, Message: "HMRC is temporarily unavailable. Please try again later."},
		"BAD_GATEWAY":           {Classification: ClassRetryable, Category: CategoryServer, Message: "HMRC could not be reached. Please try again."},
		"GATEWAY_TIMEOUT":       {Classification: ClassRetryable, Category: CategoryServer, Message: "HMRC took too long to respond. Please try again."},
	}
}

// Translator maps codes to classifications and user-facing messages. Safe for concurrent use.
type Translator struct {
	table Table
}

// NewTranslator copies t; later changes to t are not observed.
func NewTranslator(t Table) *Translator {
	cp := make(Table, len(t))
	for k, v := range t {
		cp[k] = v
	}
	return &Translator{table: cp}
}

// Lookup returns the table entry for code.
func (t *Translator) Lookup(code string) (Entry, bool) {
	e, ok := t.table[code]
	return e, ok
}

// Translate returns the entry for code, or a terminal entry carrying the generic message.
func (t *Translator) Translate(code string) Entry {
	if e, ok := t.table[code]; ok {
		return e
	}
	return Entry{Classification: ClassTerminal, Category: categoryFromCode(code), Message: UnknownErrorMessage}
}

// Apply fills the classification fields of e. Unknown codes fall back to the HTTP status
// so that an unlisted 5xx is still retried and an unlisted 401 still triggers sign-in.
func (t *Translator) Apply(e *APIError) {
	entry, ok := t.table[e.Code]
	if !ok {
		entry = Entry{Classification: ClassTerminal, Category: categoryFromCode(e.Code), Message: UnknownErrorMessage}
		switch {
		case e.StatusCode == http.StatusUnauthorized:
			entry.Classification, entry.Category = ClassReauth, CategoryAuthorization
		case e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500:
			entry.Classification, entry.Category = ClassRetryable, CategoryServer
		}
	}
	e.Classification = entry.Classification
	e.Category = entry.Category
	e.UserMessage = entry.Message
}

// Message is one translated failure. Path is empty for the top-level error.
type Message struct {
	Code string `json:"code"`
	Path string `json:"path,omitempty"`
	Text string `json:"message"`
}

// Messages translates every nested error on its own, keeping its field path.
// Without nested errors the top-level code is translated.
func (t *Translator) Messages(e *APIError) []Message {
	if len(e.Errors) == 0 {
		text := e.UserMessage
		if text == "" {
			text = t.Translate(e.Code).Message
		}
		return []Message{{Code: e.Code, Text: text}}
	}
	out := make([]Message, 0, len(e.Errors))
	for _, d := range e.Errors {
		out = append(out, Message{Code: d.Code, Path: d.Path, Text: t.Translate(d.Code).Message})
	}
	return out
}

// Summary joins Messages for display, prefixing each with its path when one is known.
func (t *Translator) Summary(e *APIError) string {
	msgs := t.Messages(e)
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Path != "" {
			parts = append(parts, m.Path+": "+m.Text)
			continue
		}
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n")
}

func categoryFromCode(code string) Category {
	switch {
	case strings.HasPrefix(code, "FORMAT_"):
		return CategoryFormat
	case strings.HasPrefix(code, "RULE_"):
		return CategoryRule
	case strings.HasSuffix(code, "NOT_FOUND"):
		return CategoryResource
	}
	return CategoryServer
}

// codeForStatus names an error whose response carried no JSON body.
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "CLIENT_OR_AGENT_NOT_AUTHORISED"
	case http.StatusNotFound:
		return "MATCHING_RESOURCE_NOT_FOUND"
	case http.StatusNotAcceptable:
		return "INVALID_ACCEPT_HEADER"
	case http.StatusConflict:
		return "RULE_DUPLICATE_SUBMISSION"
	case http.StatusUnprocessableEntity:
		return "INVALID_REQUEST"
	case http.StatusTooManyRequests:
		return "MESSAGE_THROTTLED_OUT"
	case http.StatusBadGateway:
		return "BAD_GATEWAY"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	case http.StatusGatewayTimeout:
		return "GATEWAY_TIMEOUT"
	}
	if status >= 500 {
		return "INTERNAL_SERVER_ERROR"
	}
	return "UNKNOWN_ERROR"
}
