package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a ledger line read for aggregation. Its lifecycle is owned by the external ledger.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      string          `gorm:"type:varchar(64);not null;index:idx_tx_user_business_date" json:"user_id"`
	BusinessID  string          `gorm:"type:varchar(64);not null;index:idx_tx_user_business_date" json:"business_id"`
	Date        time.Time       `gorm:"type:date;not null;index:idx_tx_user_business_date" json:"date"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"` // positive = income
	Description string          `gorm:"type:text" json:"description"`
	MTDCategory *string         `gorm:"type:varchar(100)" json:"mtd_category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Category returns the raw category label, empty when uncategorised
func (t Transaction) Category() string {
	if t.MTDCategory == nil {
		return ""
	}
	return *t.MTDCategory
}
