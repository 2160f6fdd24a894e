package service

import (
	"context"
	"fmt"

	"mtd/internal/calendar"
	"mtd/internal/category"
	"mtd/internal/model"
	"mtd/internal/repository"
)

// --- DTOs ---

type CreateAdjustmentRequest struct {
	BusinessID   string `json:"business_id" binding:"required"`
	BusinessType string `json:"business_type" binding:"required,oneof=self-employment uk-property foreign-property"`
	TaxYear      string `json:"tax_year" binding:"required"`     // YYYY-YY
	PeriodStart  string `json:"period_start" binding:"required"` // YYYY-MM-DD
	PeriodEnd    string `json:"period_end" binding:"required"`   // YYYY-MM-DD
	PeriodKind   string `json:"period_kind"`                     // standard (default) or calendar
	Field        string `json:"field" binding:"required"`        // turnover, otherIncome or an expense code
	Amount       string `json:"amount" binding:"required"`       // signed decimal string
	Description  string `json:"description"`
	Type         string `json:"type" binding:"omitempty,oneof=CORRECTION ACCRUAL OTHER"`
}

type AdjustmentResponse struct {
	ID          string `json:"id"`
	BusinessID  string `json:"business_id"`
	TaxYear     string `json:"tax_year"`
	PeriodKey   string `json:"period_key"`
	Field       string `json:"field"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Type        string `json:"type"`
	CreatedAt   string `json:"created_at"`
}

// --- Interface ---

type AdjustmentService interface {
	CreateAdjustment(ctx context.Context, userID string, req CreateAdjustmentRequest) (AdjustmentResponse, error)
	ListAdjustments(ctx context.Context, userID, businessID, taxYear string) ([]AdjustmentResponse, error)
}

type adjustmentService struct {
	repo        repository.AdjustmentRepository
	audit       repository.AuditRepository
	defaultKind calendar.PeriodKind
}

func NewAdjustmentService(repo repository.AdjustmentRepository, audit repository.AuditRepository, defaultKind calendar.PeriodKind) AdjustmentService {
	return &adjustmentService{repo: repo, audit: audit, defaultKind: defaultKind}
}

// --- Implementation ---

func (s *adjustmentService) CreateAdjustment(ctx context.Context, userID string, req CreateAdjustmentRequest) (AdjustmentResponse, error) {
	if err := model.ValidateBusinessType(req.BusinessType); err != nil {
		return AdjustmentResponse{}, invalidErr(err)
	}
	if !category.IsAdjustableField(req.BusinessType, req.Field) {
		return AdjustmentResponse{}, invalid("field '%s' cannot be adjusted for %s", req.Field, req.BusinessType)
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return AdjustmentResponse{}, err
	}
	if amount.IsZero() {
		return AdjustmentResponse{}, invalid("amount must not be zero")
	}

	ty, period, err := resolvePeriod(req.TaxYear, req.PeriodStart, req.PeriodEnd, req.PeriodKind, s.defaultKind)
	if err != nil {
		return AdjustmentResponse{}, err
	}

	adjType := req.Type
	if adjType == "" {
		adjType = model.AdjustmentTypeOther
	}

	adj := model.Adjustment{
		UserID:      userID,
		BusinessID:  req.BusinessID,
		TaxYear:     ty.String(),
		PeriodKey:   period.Key(),
		Field:       req.Field,
		Amount:      amount,
		Description: req.Description,
		Type:        adjType,
	}
	if err := s.repo.Create(ctx, &adj); err != nil {
		return AdjustmentResponse{}, fmt.Errorf("failed to create adjustment: %w", err)
	}

	writeAuditLog(ctx, s.audit, userID, model.ActionCreateAdjustment, adj.ID.String(), req.Field+" "+amount.StringFixed(2), req)

	return toAdjustmentResponse(adj), nil
}

func (s *adjustmentService) ListAdjustments(ctx context.Context, userID, businessID, taxYear string) ([]AdjustmentResponse, error) {
	if businessID == "" {
		return nil, invalid("business_id is required")
	}
	if _, err := calendar.ParseTaxYear(taxYear); err != nil {
		return nil, invalidErr(err)
	}
	adjs, err := s.repo.ListByTaxYear(ctx, userID, businessID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch adjustments: %w", err)
	}
	res := make([]AdjustmentResponse, 0, len(adjs))
	for _, a := range adjs {
		res = append(res, toAdjustmentResponse(a))
	}
	return res, nil
}

// --- Helpers ---

// resolvePeriod accepts only the four quarters of the elected calendar.
func resolvePeriod(taxYear, start, end, kind string, defaultKind calendar.PeriodKind) (calendar.TaxYear, calendar.Period, error) {
	ty, err := calendar.ParseTaxYear(taxYear)
	if err != nil {
		return "", calendar.Period{}, invalidErr(err)
	}
	pk := defaultKind
	if kind != "" {
		if pk, err = calendar.ParsePeriodKind(kind); err != nil {
			return "", calendar.Period{}, invalidErr(err)
		}
	}
	from, err := parseDate("period_start", start)
	if err != nil {
		return "", calendar.Period{}, err
	}
	to, err := parseDate("period_end", end)
	if err != nil {
		return "", calendar.Period{}, err
	}
	period, ok := calendar.MatchPeriod(ty, pk, from, to)
	if !ok {
		return "", calendar.Period{}, invalid("%s..%s is not a %s quarter of %s", start, end, pk, ty)
	}
	return ty, period, nil
}

func toAdjustmentResponse(a model.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:          a.ID.String(),
		BusinessID:  a.BusinessID,
		TaxYear:     a.TaxYear,
		PeriodKey:   a.PeriodKey,
		Field:       a.Field,
		Amount:      a.Amount.StringFixed(2),
		Description: a.Description,
		Type:        a.Type,
		CreatedAt:   a.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
