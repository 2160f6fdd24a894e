package repository

import (
	"context"

	"mtd/internal/model"

	"gorm.io/gorm"
)

type AdjustmentRepository interface {
	Create(ctx context.Context, adj *model.Adjustment) error
	ListByTaxYear(ctx context.Context, userID, businessID, taxYear string) ([]model.Adjustment, error)
}

type adjustmentRepository struct {
	db *gorm.DB
}

func NewAdjustmentRepository(db *gorm.DB) AdjustmentRepository {
	return &adjustmentRepository{db: db}
}

func (r *adjustmentRepository) Create(ctx context.Context, adj *model.Adjustment) error {
	return GetDB(ctx, r.db).Create(adj).Error
}

func (r *adjustmentRepository) ListByTaxYear(ctx context.Context, userID, businessID, taxYear string) ([]model.Adjustment, error) {
	var adjs []model.Adjustment
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND business_id = ? AND tax_year = ?", userID, businessID, taxYear).
		Order("created_at ASC").
		Find(&adjs).Error
	return adjs, err
}
