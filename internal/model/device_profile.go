package model

import (
	"time"
)

// DeviceProfile caches the client-origin fraud prevention values collected once per device
type DeviceProfile struct {
	DeviceID          string    `gorm:"type:varchar(64);primaryKey" json:"device_id"`
	UserID            string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Timezone          string    `gorm:"type:varchar(20);not null" json:"timezone"` // UTC±hh:mm
	Screens           string    `gorm:"type:jsonb" json:"screens"`                 // JSON array of screen geometries
	WindowWidth       int       `json:"window_width"`
	WindowHeight      int       `json:"window_height"`
	BrowserPlugins    string    `gorm:"type:jsonb" json:"browser_plugins"` // JSON array of raw names
	BrowserUserAgent  string    `gorm:"type:text;not null" json:"browser_user_agent"`
	BrowserDoNotTrack bool      `gorm:"default:false" json:"browser_do_not_track"`
	MultiFactor       string    `gorm:"type:text" json:"multi_factor"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
