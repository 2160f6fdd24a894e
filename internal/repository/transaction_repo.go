package repository

import (
	"context"
	"time"

	"mtd/internal/model"

	"gorm.io/gorm"
)

// TransactionRepository reads ledger lines. Writes belong to the external ledger.
type TransactionRepository interface {
	ListByRange(ctx context.Context, userID, businessID string, from, to time.Time) ([]model.Transaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// ListByRange returns transactions dated from..to inclusive, oldest first
func (r *transactionRepository) ListByRange(ctx context.Context, userID, businessID string, from, to time.Time) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND business_id = ? AND date BETWEEN ? AND ?", userID, businessID, from, to).
		Order("date ASC, created_at ASC").
		Find(&txs).Error
	return txs, err
}
