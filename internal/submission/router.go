// Package submission chooses the wire format, endpoint and API version for a quarterly update
// and sends it.
package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"mtd/internal/calendar"
	"mtd/internal/fraud"
	"mtd/internal/hmrc"
	"mtd/internal/model"
)

// DefaultCutoverYear is the first tax year start year submitted in the cumulative format.
const DefaultCutoverYear = 2025

var (
	ErrStrategyMismatch   = errors.New("submission strategy does not match the tax year's format")
	ErrUnsupportedDomain  = errors.New("unsupported business type")
	ErrConsolidationLimit = errors.New("consolidated expenses are only allowed below the turnover threshold")
	ErrMissingCountryCode = errors.New("foreign property submissions need a country code")
)

// Domain is the endpoint family for a business type.
type Domain string

const (
	DomainSelfEmployment  Domain = "self-employment"
	DomainUKProperty      Domain = "property/uk"
	DomainForeignProperty Domain = "property/foreign"
)

// DomainFor maps a business type to its endpoint family.
func DomainFor(businessType string) (Domain, error) {
	switch businessType {
	case model.BusinessTypeSelfEmployment:
		return DomainSelfEmployment, nil
	case model.BusinessTypeUKProperty:
		return DomainUKProperty, nil
	case model.BusinessTypeForeignProperty:
		return DomainForeignProperty, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDomain, businessType)
}

// IsProperty reports whether d is one of the property families.
func (d Domain) IsProperty() bool {
	return d == DomainUKProperty || d == DomainForeignProperty
}

// Strategy is either Cumulative or Discrete.
type Strategy interface {
	isStrategy()
	Name() string
}

// Cumulative replaces the year-to-date picture. Create and amend are the same PUT.
type Cumulative struct{}

// Discrete creates a period summary when PeriodID is empty and amends that summary otherwise.
type Discrete struct {
	PeriodID string
}

func (Cumulative) isStrategy() {}
func (Discrete) isStrategy()   {}

func (Cumulative) Name() string { return "cumulative" }

func (d Discrete) Name() string {
	if d.PeriodID == "" {
		return "discrete-create"
	}
	return "discrete-amend"
}

// EraVersions holds the API version before and after the cutover.
type EraVersions struct {
	Discrete   string `json:"discrete"`
	Cumulative string `json:"cumulative"`
}

// Versions holds API versions per endpoint family.
type Versions struct {
	SelfEmployment EraVersions `json:"self_employment"`
	Property       EraVersions `json:"property"`
}

// DefaultVersions returns the versions in use at the time of writing.
func DefaultVersions() Versions {
	return Versions{
		SelfEmployment: EraVersions{Discrete: "3.0", Cumulative: "5.0"},
		Property:       EraVersions{Discrete: "4.0", Cumulative: "6.0"},
	}
}

// Router is read-only after construction and safe for concurrent use.
type Router struct {
	CutoverYear int
	Versions    Versions
	Retry       hmrc.RetryConfig
}

// NewRouter returns a router with the default cutover, versions and retry policy.
func NewRouter() Router {
	return Router{CutoverYear: DefaultCutoverYear, Versions: DefaultVersions(), Retry: hmrc.DefaultRetryConfig}
}

// UsesCumulativeFormat reports whether ty is submitted as a year-to-date picture.
func (r Router) UsesCumulativeFormat(ty calendar.TaxYear) bool {
	return ty.StartYear() >= r.CutoverYear
}

// APIVersion returns the version for ty and d.
func (r Router) APIVersion(ty calendar.TaxYear, d Domain) string {
	era := r.Versions.SelfEmployment
	if d.IsProperty() {
		era = r.Versions.Property
	}
	if r.UsesCumulativeFormat(ty) {
		return era.Cumulative
	}
	return era.Discrete
}

// StrategyFor picks the strategy for ty. existingPeriodID is the id of a summary already
// submitted for the same period, if any; it only matters before the cutover.
func (r Router) StrategyFor(ty calendar.TaxYear, existingPeriodID string) Strategy {
	if r.UsesCumulativeFormat(ty) {
		return Cumulative{}
	}
	return Discrete{PeriodID: existingPeriodID}
}

// Plan is a resolved request line.
type Plan struct {
	Domain     Domain   `json:"domain"`
	Strategy   Strategy `json:"-"`
	Method     string   `json:"method"`
	Path       string   `json:"path"`
	APIVersion string   `json:"api_version"`
	Idempotent bool     `json:"idempotent"`
}

// StrategyName is the plan's strategy for storage and display.
func (p Plan) StrategyName() string { return p.Strategy.Name() }

// Plan resolves method, path and version. A strategy from the wrong era is a caller error
// and is returned as ErrStrategyMismatch rather than corrected.
func (r Router) Plan(business model.Business, nino string, ty calendar.TaxYear, s Strategy) (Plan, error) {
	domain, err := DomainFor(business.Type)
	if err != nil {
		return Plan{}, err
	}
	base := fmt.Sprintf("/individuals/business/%s/%s/%s", domain, url.PathEscape(nino), url.PathEscape(business.BusinessID))
	p := Plan{Domain: domain, Strategy: s, APIVersion: r.APIVersion(ty, domain)}

	switch st := s.(type) {
	case Cumulative:
		if !r.UsesCumulativeFormat(ty) {
			return Plan{}, fmt.Errorf("%w: %s uses period summaries", ErrStrategyMismatch, ty)
		}
		p.Method = http.MethodPut
		p.Path = base + "/cumulative/" + ty.String()
		p.Idempotent = true
	case Discrete:
		if r.UsesCumulativeFormat(ty) {
			return Plan{}, fmt.Errorf("%w: %s uses cumulative submissions", ErrStrategyMismatch, ty)
		}
		if st.PeriodID == "" {
			p.Method = http.MethodPost
			p.Path = base + "/period/" + ty.String()
		} else {
			p.Method = http.MethodPut
			p.Path = base + "/period/" + ty.String() + "/" + url.PathEscape(st.PeriodID)
			p.Idempotent = true
		}
	default:
		return Plan{}, fmt.Errorf("unknown submission strategy %T", s)
	}
	return p, nil
}

// Doer sends one request to the authority.
type Doer interface {
	Do(ctx context.Context, req hmrc.Request, out any) (*hmrc.Response, error)
}

// Reference identifies an accepted submission.
type Reference struct {
	PeriodID      string `json:"period_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	StatusCode    int    `json:"status_code"`
}

type createResponse struct {
	PeriodID     string `json:"periodId"`
	SubmissionID string `json:"submissionId"`
}

// Submit sends body according to plan. Retries follow the router's policy and the plan's
// idempotency: a POST that got no response is never resent.
func (r Router) Submit(ctx context.Context, client Doer, plan Plan, body any, headers fraud.HeaderSet) (Reference, error) {
	req := hmrc.Request{
		Method:     plan.Method,
		Path:       plan.Path,
		APIVersion: plan.APIVersion,
		Body:       body,
		Headers:    headers,
	}
	return hmrc.WithRetry(ctx, r.Retry, plan.Idempotent, func(ctx context.Context) (Reference, error) {
		var created createResponse
		resp, err := client.Do(ctx, req, &created)
		if err != nil {
			return Reference{}, err
		}
		ref := Reference{CorrelationID: resp.CorrelationID, StatusCode: resp.StatusCode}
		switch {
		case created.PeriodID != "":
			ref.PeriodID = created.PeriodID
		case created.SubmissionID != "":
			ref.PeriodID = created.SubmissionID
		default:
			if d, ok := plan.Strategy.(Discrete); ok {
				ref.PeriodID = d.PeriodID
			}
		}
		return ref, nil
	})
}

// RetrieveCumulative reads back the year-to-date picture held by the authority.
func (r Router) RetrieveCumulative(ctx context.Context, client Doer, business model.Business, nino string, ty calendar.TaxYear, headers fraud.HeaderSet) (json.RawMessage, error) {
	plan, err := r.Plan(business, nino, ty, Cumulative{})
	if err != nil {
		return nil, err
	}
	return hmrc.WithRetry(ctx, r.Retry, true, func(ctx context.Context) (json.RawMessage, error) {
		var out json.RawMessage
		if _, err := client.Do(ctx, hmrc.Request{
			Method:     http.MethodGet,
			Path:       plan.Path,
			APIVersion: plan.APIVersion,
			Headers:    headers,
		}, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}
