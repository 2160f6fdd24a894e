package repository

import (
	"context"
	"errors"

	"mtd/internal/model"

	"gorm.io/gorm"
)

// SubmissionFilter narrows a history listing. Empty fields match everything.
type SubmissionFilter struct {
	UserID     string
	BusinessID string
	TaxYear    string
}

// SubmissionRepository is append-only: rows are created, never updated.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	List(ctx context.Context, filter SubmissionFilter, offset, limit int) ([]model.Submission, int64, error)
	LatestAccepted(ctx context.Context, userID, businessID, taxYear, periodKey string) (*model.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	return GetDB(ctx, r.db).Create(sub).Error
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter, offset, limit int) ([]model.Submission, int64, error) {
	var subs []model.Submission
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Submission{}).Where("user_id = ?", filter.UserID)
	if filter.BusinessID != "" {
		query = query.Where("business_id = ?", filter.BusinessID)
	}
	if filter.TaxYear != "" {
		query = query.Where("tax_year = ?", filter.TaxYear)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// LatestAccepted returns nil when the period has never been accepted
func (r *submissionRepository) LatestAccepted(ctx context.Context, userID, businessID, taxYear, periodKey string) (*model.Submission, error) {
	var sub model.Submission
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND business_id = ? AND tax_year = ? AND period_key = ? AND status = ?",
			userID, businessID, taxYear, periodKey, model.SubmissionStatusAccepted).
		Order("created_at desc").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
