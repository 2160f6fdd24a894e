package service

import (
	"context"
	"fmt"
	"time"

	"mtd/internal/calendar"
	"mtd/internal/model"
	"mtd/internal/obligation"
)

// --- DTOs ---

type ObligationQuery struct {
	NINO string
	From string // YYYY-MM-DD, defaults to the start of the current tax year
	To   string // YYYY-MM-DD, defaults to the end of the current tax year
}

// --- Interface ---

type ObligationService interface {
	ListObligations(ctx context.Context, caller Caller, q ObligationQuery) ([]obligation.View, error)
	ListBusinesses(ctx context.Context, caller Caller, nino string) ([]model.Business, error)
}

type obligationService struct {
	hmrc    HmrcGateway
	headers HeaderBuilder
	now     func() time.Time
}

func NewObligationService(gateway HmrcGateway, headers HeaderBuilder) ObligationService {
	return &obligationService{hmrc: gateway, headers: headers, now: time.Now}
}

// --- Implementation ---

func (s *obligationService) ListObligations(ctx context.Context, caller Caller, q ObligationQuery) ([]obligation.View, error) {
	if q.NINO == "" {
		return nil, invalid("nino is required")
	}
	today := s.now()
	ty := calendar.CurrentTaxYear(today)
	from, to := ty.Start(), ty.End()

	var err error
	if q.From != "" {
		if from, err = parseDate("from", q.From); err != nil {
			return nil, err
		}
	}
	if q.To != "" {
		if to, err = parseDate("to", q.To); err != nil {
			return nil, err
		}
	}
	if to.Before(from) {
		return nil, invalid("to must not be before from")
	}

	headers, err := headersFor(ctx, s.headers, caller)
	if err != nil {
		return nil, err
	}
	obligations, err := s.hmrc.ListObligations(ctx, q.NINO, from, to, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch obligations: %w", err)
	}
	return obligation.Annotate(obligations, today), nil
}

func (s *obligationService) ListBusinesses(ctx context.Context, caller Caller, nino string) ([]model.Business, error) {
	if nino == "" {
		return nil, invalid("nino is required")
	}
	headers, err := headersFor(ctx, s.headers, caller)
	if err != nil {
		return nil, err
	}
	businesses, err := s.hmrc.ListBusinesses(ctx, nino, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch businesses: %w", err)
	}
	return businesses, nil
}
