package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentType enum constants
const (
	AdjustmentTypeCorrection = "CORRECTION"
	AdjustmentTypeAccrual    = "ACCRUAL"
	AdjustmentTypeOther      = "OTHER"
)

// Adjustment is a manual correction layered on top of aggregated totals. Additive, never a replacement.
type Adjustment struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      string          `gorm:"type:varchar(64);not null;index:idx_adj_key" json:"user_id"`
	BusinessID  string          `gorm:"type:varchar(64);not null;index:idx_adj_key" json:"business_id"`
	TaxYear     string          `gorm:"type:varchar(7);not null;index:idx_adj_key" json:"tax_year"`
	PeriodKey   string          `gorm:"type:varchar(21);not null;index:idx_adj_key" json:"period_key"` // calendar.Period.Key()
	Field       string          `gorm:"type:varchar(100);not null" json:"field"`                       // turnover, other or an expense code
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	Type        string          `gorm:"type:varchar(20);not null;default:'OTHER'" json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
}
