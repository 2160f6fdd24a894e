package service

import (
	"context"
	"fmt"

	"mtd/internal/repository"
	"mtd/pkg/pagination"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditQuery struct {
	Action   string
	EntityID string
	Page     int
	Limit    int
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, userID string, q AuditQuery) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// GetAuditLogs returns the caller's own activity, newest first
func (s *auditService) GetAuditLogs(ctx context.Context, userID string, q AuditQuery) ([]AuditLogResponse, int64, error) {
	p := pagination.New(q.Page, q.Limit)
	filter := repository.AuditFilter{UserID: userID, Action: q.Action, EntityID: q.EntityID}
	logs, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     l.UserID,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
