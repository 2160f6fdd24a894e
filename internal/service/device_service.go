package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mtd/internal/fraud"
	"mtd/internal/model"
	"mtd/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDeviceNotRegistered is returned when fraud headers are requested for an unknown device.
var ErrDeviceNotRegistered = errors.New("device not registered")

// --- DTOs ---

// RegisterDeviceRequest carries the values the browser collects once per device.
// TimezoneOffset is minutes east of UTC.
type RegisterDeviceRequest struct {
	DeviceID       string              `json:"device_id"`
	TimezoneOffset int                 `json:"timezone_offset"`
	Screens        []fraud.Screen      `json:"screens" binding:"required,min=1"`
	WindowWidth    int                 `json:"window_width" binding:"required"`
	WindowHeight   int                 `json:"window_height" binding:"required"`
	Plugins        []string            `json:"plugins"`
	UserAgent      string              `json:"user_agent" binding:"required"`
	DoNotTrack     bool                `json:"do_not_track"`
	MultiFactor    []fraud.MultiFactor `json:"multi_factor"`
}

type DeviceResponse struct {
	DeviceID  string `json:"device_id"`
	Timezone  string `json:"timezone"`
	UpdatedAt string `json:"updated_at"`
}

// --- Interface ---

// DeviceService stores device profiles and serves them to the fraud header builder.
type DeviceService interface {
	fraud.DeviceInfoProvider
	Register(ctx context.Context, userID string, req RegisterDeviceRequest) (DeviceResponse, error)
}

type deviceService struct {
	repo  repository.DeviceProfileRepository
	audit repository.AuditRepository
}

func NewDeviceService(repo repository.DeviceProfileRepository, audit repository.AuditRepository) DeviceService {
	return &deviceService{repo: repo, audit: audit}
}

// --- Implementation ---

func (s *deviceService) Register(ctx context.Context, userID string, req RegisterDeviceRequest) (DeviceResponse, error) {
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	} else if _, err := uuid.Parse(deviceID); err != nil {
		return DeviceResponse{}, invalid("device_id must be a UUID")
	}

	existing, err := s.repo.FindByID(ctx, deviceID)
	switch {
	case err == nil && existing.UserID != userID:
		return DeviceResponse{}, invalid("device_id belongs to another user")
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return DeviceResponse{}, fmt.Errorf("failed to fetch device profile: %w", err)
	}

	screensJSON, _ := json.Marshal(req.Screens)
	pluginsJSON, _ := json.Marshal(req.Plugins)
	mfaJSON, _ := json.Marshal(req.MultiFactor)

	profile := model.DeviceProfile{
		DeviceID:          deviceID,
		UserID:            userID,
		Timezone:          fraud.FormatTimezone(req.TimezoneOffset * 60),
		Screens:           string(screensJSON),
		WindowWidth:       req.WindowWidth,
		WindowHeight:      req.WindowHeight,
		BrowserPlugins:    string(pluginsJSON),
		BrowserUserAgent:  req.UserAgent,
		BrowserDoNotTrack: req.DoNotTrack,
		MultiFactor:       string(mfaJSON),
	}
	if err := s.repo.Upsert(ctx, &profile); err != nil {
		return DeviceResponse{}, fmt.Errorf("failed to save device profile: %w", err)
	}

	writeAuditLog(ctx, s.audit, userID, model.ActionRegisterDevice, deviceID, req.UserAgent, map[string]interface{}{
		"timezone": profile.Timezone,
		"screens":  len(req.Screens),
	})

	return DeviceResponse{
		DeviceID:  deviceID,
		Timezone:  profile.Timezone,
		UpdatedAt: profile.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// DeviceInfo loads the stored profile for deviceID. A device registered by another user is
// reported as not registered.
func (s *deviceService) DeviceInfo(ctx context.Context, deviceID, userID string) (fraud.DeviceInfo, error) {
	if deviceID == "" {
		return fraud.DeviceInfo{}, ErrDeviceNotRegistered
	}
	profile, err := s.repo.FindByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fraud.DeviceInfo{}, fmt.Errorf("%w: %s", ErrDeviceNotRegistered, deviceID)
		}
		return fraud.DeviceInfo{}, fmt.Errorf("failed to fetch device profile: %w", err)
	}
	if profile.UserID != userID {
		return fraud.DeviceInfo{}, fmt.Errorf("%w: %s", ErrDeviceNotRegistered, deviceID)
	}

	info := fraud.DeviceInfo{
		DeviceID:     profile.DeviceID,
		Timezone:     profile.Timezone,
		WindowWidth:  profile.WindowWidth,
		WindowHeight: profile.WindowHeight,
		UserAgent:    profile.BrowserUserAgent,
		DoNotTrack:   profile.BrowserDoNotTrack,
	}
	if err := unmarshalColumn(profile.Screens, &info.Screens); err != nil {
		return fraud.DeviceInfo{}, fmt.Errorf("failed to decode screens: %w", err)
	}
	if err := unmarshalColumn(profile.BrowserPlugins, &info.Plugins); err != nil {
		return fraud.DeviceInfo{}, fmt.Errorf("failed to decode plugins: %w", err)
	}
	if err := unmarshalColumn(profile.MultiFactor, &info.MultiFactor); err != nil {
		return fraud.DeviceInfo{}, fmt.Errorf("failed to decode multi-factor: %w", err)
	}
	return info, nil
}

func unmarshalColumn(s string, v interface{}) error {
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
