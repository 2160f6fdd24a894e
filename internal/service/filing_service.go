package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"mtd/internal/calendar"
	"mtd/internal/category"
	"mtd/internal/fraud"
	"mtd/internal/hmrc"
	"mtd/internal/model"
	"mtd/internal/repository"
	"mtd/internal/submission"
	"mtd/internal/taxcalc"
	"mtd/internal/websocket"
	"mtd/pkg/pagination"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

// FilingRequest names one quarter of one business. Deductions only feed the tax estimate.
type FilingRequest struct {
	NINO         string `json:"nino" binding:"required"`
	BusinessID   string `json:"business_id" binding:"required"`
	BusinessType string `json:"business_type" binding:"required,oneof=self-employment uk-property foreign-property"`
	TaxYear      string `json:"tax_year" binding:"required"`     // YYYY-YY
	PeriodStart  string `json:"period_start" binding:"required"` // YYYY-MM-DD
	PeriodEnd    string `json:"period_end" binding:"required"`   // YYYY-MM-DD
	PeriodKind   string `json:"period_kind"`                     // standard (default) or calendar
	Consolidated bool   `json:"consolidated"`
	CountryCode  string `json:"country_code"` // foreign property only
	Deductions   string `json:"deductions"`
}

type BucketSummary struct {
	Turnover         string            `json:"turnover"`
	OtherIncome      string            `json:"other_income"`
	Expenses         map[string]string `json:"expenses"`
	TotalIncome      string            `json:"total_income"`
	TotalExpenses    string            `json:"total_expenses"`
	Profit           string            `json:"profit"`
	TransactionCount int               `json:"transaction_count"`
}

type UnmappedLine struct {
	TransactionID string               `json:"transaction_id"`
	Date          string               `json:"date"`
	Description   string               `json:"description"`
	Category      string               `json:"category"`
	Amount        string               `json:"amount"`
	Suggestion    *category.Suggestion `json:"suggestion,omitempty"`
}

type FilingPreview struct {
	TaxYear    string          `json:"tax_year"`
	Period     calendar.Period `json:"period"`
	PeriodKey  string          `json:"period_key"`
	Quarter    int             `json:"quarter"`
	Deadline   string          `json:"deadline"`
	Strategy   string          `json:"strategy"`
	Plan       submission.Plan `json:"plan"`
	ThisPeriod BucketSummary   `json:"this_period"`
	YearToDate BucketSummary   `json:"year_to_date"`
	Unmapped   []UnmappedLine  `json:"unmapped"`
	Body       any             `json:"body"`
	Estimate   *taxcalc.Result `json:"estimate,omitempty"`
	Warnings   []string        `json:"warnings"`
}

type SubmissionResponse struct {
	ID            string `json:"id"`
	BusinessID    string `json:"business_id"`
	BusinessType  string `json:"business_type"`
	TaxYear       string `json:"tax_year"`
	PeriodKey     string `json:"period_key"`
	Strategy      string `json:"strategy"`
	Method        string `json:"method"`
	APIVersion    string `json:"api_version"`
	PeriodID      string `json:"period_id,omitempty"`
	Status        string `json:"status"`
	ErrorCode     string `json:"error_code,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type SubmitResult struct {
	Submission SubmissionResponse   `json:"submission"`
	Reference  submission.Reference `json:"reference"`
}

type HistoryQuery struct {
	BusinessID string
	TaxYear    string
	Page       int
	Limit      int
}

type CumulativeQuery struct {
	NINO         string `form:"nino" binding:"required"`
	BusinessID   string `form:"business_id" binding:"required"`
	BusinessType string `form:"business_type" binding:"required"`
	TaxYear      string `form:"tax_year" binding:"required"`
}

// --- Interface ---

type FilingService interface {
	Preview(ctx context.Context, userID string, req FilingRequest) (FilingPreview, error)
	Submit(ctx context.Context, caller Caller, req FilingRequest) (SubmitResult, error)
	History(ctx context.Context, userID string, q HistoryQuery) ([]SubmissionResponse, int64, error)
	RetrieveCumulative(ctx context.Context, caller Caller, q CumulativeQuery) (json.RawMessage, error)
}

// FilingDeps groups the collaborators of the filing service.
type FilingDeps struct {
	Transactions repository.TransactionRepository
	Adjustments  repository.AdjustmentRepository
	Submissions  repository.SubmissionRepository
	Audit        repository.AuditRepository
	TxManager    repository.TransactionManager
	Mapper       *category.Mapper
	Router       submission.Router
	Rates        taxcalc.RateTable
	Hmrc         HmrcGateway
	Headers      HeaderBuilder
	Events       EventPublisher
	DefaultKind  calendar.PeriodKind
}

type filingService struct {
	FilingDeps
	now func() time.Time
}

func NewFilingService(deps FilingDeps) FilingService {
	return &filingService{FilingDeps: deps, now: time.Now}
}

// prepared is everything needed to preview or send one quarter.
type prepared struct {
	business   model.Business
	taxYear    calendar.TaxYear
	period     calendar.Period
	thisPeriod category.Bucket
	yearToDate category.Bucket
	strategy   submission.Strategy
	plan       submission.Plan
	body       any
	deductions decimal.Decimal
	// adjustments recorded against quarters of the other period kind
	foreignAdjustments int
}

// --- Implementation ---

func (s *filingService) Preview(ctx context.Context, userID string, req FilingRequest) (FilingPreview, error) {
	p, err := s.prepare(ctx, userID, req)
	if err != nil {
		return FilingPreview{}, err
	}

	preview := FilingPreview{
		TaxYear:    p.taxYear.String(),
		Period:     p.period,
		PeriodKey:  p.period.Key(),
		Quarter:    calendar.QuarterNumber(p.period.Start),
		Deadline:   calendar.Deadline(p.period.End).Format(dateLayout),
		Strategy:   p.plan.StrategyName(),
		Plan:       p.plan,
		ThisPeriod: summarize(p.thisPeriod),
		YearToDate: summarize(p.yearToDate),
		Unmapped:   unmappedLines(p.yearToDate),
		Body:       p.body,
		Warnings:   []string{},
	}

	if !calendar.Day(s.now()).After(p.period.End) {
		preview.Warnings = append(preview.Warnings, "the period has not ended yet; the authority rejects early submissions")
	}
	if n := len(preview.Unmapped); n > 0 {
		preview.Warnings = append(preview.Warnings, fmt.Sprintf("%d transaction(s) have no recognised category and are left out of the totals", n))
	}
	if n := p.foreignAdjustments; n > 0 {
		preview.Warnings = append(preview.Warnings, fmt.Sprintf("%d adjustment(s) were recorded for %s quarters of another period kind and are left out of the totals", n, p.taxYear))
	}

	rates, err := s.Rates.For(p.taxYear)
	switch {
	case err == nil:
		est := taxcalc.Calculate(taxcalc.Input{
			Income:     p.yearToDate.TotalIncome(),
			Expenses:   p.yearToDate.TotalExpenses(),
			Deductions: p.deductions,
		}, rates)
		preview.Estimate = &est
	case errors.Is(err, taxcalc.ErrUnsupportedTaxYear):
		preview.Warnings = append(preview.Warnings, "no tax rates configured for "+p.taxYear.String()+"; estimate omitted")
	default:
		return FilingPreview{}, fmt.Errorf("failed to load tax rates: %w", err)
	}

	return preview, nil
}

func (s *filingService) Submit(ctx context.Context, caller Caller, req FilingRequest) (SubmitResult, error) {
	p, err := s.prepare(ctx, caller.UserID, req)
	if err != nil {
		return SubmitResult{}, err
	}

	headers, err := headersFor(ctx, s.Headers, caller)
	if err != nil {
		return SubmitResult{}, err
	}
	if missing := fraud.Validate(headers); len(missing) > 0 {
		writeAuditLog(ctx, s.Audit, caller.UserID, model.ActionFraudHeadersBlock, p.business.BusinessID, p.period.Key(), map[string]interface{}{
			"missing": missing,
		})
		return SubmitResult{}, &hmrc.HeaderValidationError{Missing: missing}
	}

	ref, sendErr := s.Router.Submit(ctx, s.Hmrc, p.plan, p.body, headers)

	bodyJSON, _ := json.Marshal(p.body)
	row := model.Submission{
		UserID:        caller.UserID,
		BusinessID:    p.business.BusinessID,
		BusinessType:  p.business.Type,
		TaxYear:       p.taxYear.String(),
		PeriodKey:     p.period.Key(),
		Strategy:      p.plan.StrategyName(),
		Method:        p.plan.Method,
		APIVersion:    p.plan.APIVersion,
		PeriodID:      ref.PeriodID,
		Reference:     ref.PeriodID,
		Status:        model.SubmissionStatusAccepted,
		CorrelationID: ref.CorrelationID,
		RequestBody:   string(bodyJSON),
	}
	action := model.ActionSubmitPeriod
	if sendErr != nil {
		action = model.ActionSubmitRejected
		row.Status = model.SubmissionStatusFailed
		var apiErr *hmrc.APIError
		if errors.As(sendErr, &apiErr) {
			row.Status = model.SubmissionStatusRejected
			row.ErrorCode = apiErr.Code
			row.CorrelationID = apiErr.CorrelationID
		}
	}

	// The history row and its audit entry commit together. The authority's answer stands even
	// if recording it fails, so a write failure is logged rather than returned.
	err = s.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.Submissions.Create(txCtx, &row); err != nil {
			return err
		}
		detailsJSON, _ := json.Marshal(map[string]interface{}{
			"status":     row.Status,
			"strategy":   row.Strategy,
			"period_id":  row.PeriodID,
			"error_code": row.ErrorCode,
		})
		return s.Audit.Log(txCtx, &model.AuditLog{
			UserID:     caller.UserID,
			Action:     action,
			EntityID:   p.business.BusinessID,
			EntityName: p.taxYear.String() + " " + p.period.Key(),
			Details:    string(detailsJSON),
		})
	})
	if err != nil {
		log.Printf("filing: failed to record %s submission for %s %s: %v", row.Status, row.BusinessID, row.PeriodKey, err)
	}

	res := SubmitResult{Submission: toSubmissionResponse(row), Reference: ref}
	if s.Events != nil {
		s.Events.Publish(websocket.Event{Type: eventFor(row.Status), UserID: caller.UserID, Payload: res.Submission})
	}

	if sendErr != nil {
		return res, fmt.Errorf("failed to submit period: %w", sendErr)
	}
	return res, nil
}

func (s *filingService) History(ctx context.Context, userID string, q HistoryQuery) ([]SubmissionResponse, int64, error) {
	if q.TaxYear != "" {
		if _, err := calendar.ParseTaxYear(q.TaxYear); err != nil {
			return nil, 0, invalidErr(err)
		}
	}
	filter := repository.SubmissionFilter{UserID: userID, BusinessID: q.BusinessID, TaxYear: q.TaxYear}
	p := pagination.New(q.Page, q.Limit)
	subs, total, err := s.Submissions.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch submission history: %w", err)
	}
	res := make([]SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		res = append(res, toSubmissionResponse(sub))
	}
	return res, total, nil
}

func (s *filingService) RetrieveCumulative(ctx context.Context, caller Caller, q CumulativeQuery) (json.RawMessage, error) {
	if err := model.ValidateBusinessType(q.BusinessType); err != nil {
		return nil, invalidErr(err)
	}
	ty, err := calendar.ParseTaxYear(q.TaxYear)
	if err != nil {
		return nil, invalidErr(err)
	}
	if !s.Router.UsesCumulativeFormat(ty) {
		return nil, invalid("%s predates cumulative submissions", ty)
	}
	headers, err := headersFor(ctx, s.Headers, caller)
	if err != nil {
		return nil, err
	}
	business := model.Business{BusinessID: q.BusinessID, Type: q.BusinessType}
	out, err := s.Router.RetrieveCumulative(ctx, s.Hmrc, business, q.NINO, ty, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cumulative summary: %w", err)
	}
	return out, nil
}

// --- Helpers ---

func (s *filingService) prepare(ctx context.Context, userID string, req FilingRequest) (prepared, error) {
	if err := model.ValidateBusinessType(req.BusinessType); err != nil {
		return prepared{}, invalidErr(err)
	}
	ty, period, err := resolvePeriod(req.TaxYear, req.PeriodStart, req.PeriodEnd, req.PeriodKind, s.DefaultKind)
	if err != nil {
		return prepared{}, err
	}
	deductions, err := parseAmount("deductions", req.Deductions)
	if err != nil {
		return prepared{}, err
	}
	kind := s.DefaultKind
	if req.PeriodKind != "" {
		kind = calendar.PeriodKind(req.PeriodKind)
	}

	business := model.Business{BusinessID: req.BusinessID, Type: req.BusinessType, PeriodKind: string(kind)}
	p := prepared{business: business, taxYear: ty, period: period, deductions: deductions}

	txs, err := s.Transactions.ListByRange(ctx, userID, req.BusinessID, ty.Start(), period.End)
	if err != nil {
		return prepared{}, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	p.thisPeriod, p.yearToDate = s.Mapper.AggregatePeriod(txs, req.BusinessType, ty, period)

	adjs, err := s.Adjustments.ListByTaxYear(ctx, userID, req.BusinessID, ty.String())
	if err != nil {
		return prepared{}, fmt.Errorf("failed to fetch adjustments: %w", err)
	}
	quarterAdj, ytdAdj, foreign := splitAdjustments(adjs, ty, kind, period)
	p.foreignAdjustments = len(foreign)
	if p.thisPeriod, err = category.ApplyAdjustments(p.thisPeriod, quarterAdj); err != nil {
		return prepared{}, invalidErr(err)
	}
	if p.yearToDate, err = category.ApplyAdjustments(p.yearToDate, ytdAdj); err != nil {
		return prepared{}, invalidErr(err)
	}

	var existingPeriodID string
	if !s.Router.UsesCumulativeFormat(ty) {
		prev, err := s.Submissions.LatestAccepted(ctx, userID, req.BusinessID, ty.String(), period.Key())
		if err != nil {
			return prepared{}, fmt.Errorf("failed to fetch previous submission: %w", err)
		}
		if prev != nil {
			existingPeriodID = prev.PeriodID
		}
	}
	p.strategy = s.Router.StrategyFor(ty, existingPeriodID)

	if p.plan, err = s.Router.Plan(business, req.NINO, ty, p.strategy); err != nil {
		return prepared{}, invalidErr(err)
	}

	domain := p.plan.Domain
	bucket := p.thisPeriod
	if _, ok := p.strategy.(submission.Cumulative); ok {
		bucket = p.yearToDate
	}
	p.body, err = submission.BuildBody(submission.BodyInput{
		Domain:       domain,
		Strategy:     p.strategy,
		TaxYear:      ty,
		Period:       period,
		Bucket:       bucket,
		Consolidated: req.Consolidated,
		YTDTurnover:  p.yearToDate.Income.Turnover,
		CountryCode:  req.CountryCode,
	})
	if err != nil {
		return prepared{}, invalidErr(err)
	}
	return p, nil
}

// splitAdjustments returns the adjustments of the quarter itself and those of every quarter
// up to and including it. Adjustments keyed to no quarter of kind are returned as foreign.
func splitAdjustments(adjs []model.Adjustment, ty calendar.TaxYear, kind calendar.PeriodKind, period calendar.Period) (quarter, ytd, foreign []model.Adjustment) {
	known := map[string]bool{}
	upTo := map[string]bool{}
	for _, q := range calendar.Periods(ty, kind) {
		known[q.Key()] = true
		if !q.End.After(period.End) {
			upTo[q.Key()] = true
		}
	}
	for _, a := range adjs {
		if !known[a.PeriodKey] {
			foreign = append(foreign, a)
			continue
		}
		if a.PeriodKey == period.Key() {
			quarter = append(quarter, a)
		}
		if upTo[a.PeriodKey] {
			ytd = append(ytd, a)
		}
	}
	return quarter, ytd, foreign
}

func summarize(b category.Bucket) BucketSummary {
	out := BucketSummary{
		Turnover:      b.Income.Turnover.StringFixed(2),
		OtherIncome:   b.Income.Other.StringFixed(2),
		Expenses:      make(map[string]string, len(b.Expenses)),
		TotalIncome:   b.TotalIncome().StringFixed(2),
		TotalExpenses: b.TotalExpenses().StringFixed(2),
		Profit:        b.Profit().StringFixed(2),
	}
	for code, v := range b.Expenses {
		out.Expenses[string(code)] = v.StringFixed(2)
	}
	for _, txs := range b.TransactionsByCategory {
		out.TransactionCount += len(txs)
	}
	return out
}

func unmappedLines(b category.Bucket) []UnmappedLine {
	out := make([]UnmappedLine, 0, len(b.Unmapped))
	for _, u := range b.Unmapped {
		out = append(out, UnmappedLine{
			TransactionID: u.Transaction.ID.String(),
			Date:          u.Transaction.Date.Format(dateLayout),
			Description:   u.Transaction.Description,
			Category:      u.Transaction.Category(),
			Amount:        u.Transaction.Amount.StringFixed(2),
			Suggestion:    u.Suggestion,
		})
	}
	return out
}

func eventFor(status string) string {
	switch status {
	case model.SubmissionStatusAccepted:
		return websocket.EventSubmissionAccepted
	case model.SubmissionStatusRejected:
		return websocket.EventSubmissionRejected
	default:
		return websocket.EventSubmissionFailed
	}
}

func toSubmissionResponse(sub model.Submission) SubmissionResponse {
	resp := SubmissionResponse{
		ID:            sub.ID.String(),
		BusinessID:    sub.BusinessID,
		BusinessType:  sub.BusinessType,
		TaxYear:       sub.TaxYear,
		PeriodKey:     sub.PeriodKey,
		Strategy:      sub.Strategy,
		Method:        sub.Method,
		APIVersion:    sub.APIVersion,
		PeriodID:      sub.PeriodID,
		Status:        sub.Status,
		ErrorCode:     sub.ErrorCode,
		CorrelationID: sub.CorrelationID,
	}
	if !sub.CreatedAt.IsZero() {
		resp.CreatedAt = sub.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
