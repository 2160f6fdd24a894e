package repository

import (
	"context"

	"mtd/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceProfileRepository interface {
	Upsert(ctx context.Context, profile *model.DeviceProfile) error
	FindByID(ctx context.Context, deviceID string) (*model.DeviceProfile, error)
}

type deviceProfileRepository struct {
	db *gorm.DB
}

func NewDeviceProfileRepository(db *gorm.DB) DeviceProfileRepository {
	return &deviceProfileRepository{db: db}
}

// Upsert replaces the cached values for a device
func (r *deviceProfileRepository) Upsert(ctx context.Context, profile *model.DeviceProfile) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		UpdateAll: true,
	}).Create(profile).Error
}

func (r *deviceProfileRepository) FindByID(ctx context.Context, deviceID string) (*model.DeviceProfile, error) {
	var profile model.DeviceProfile
	if err := GetDB(ctx, r.db).First(&profile, "device_id = ?", deviceID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
