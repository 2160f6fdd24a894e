package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"mtd/internal/fraud"
	"mtd/internal/hmrc"
	"mtd/internal/model"
	"mtd/internal/obligation"
	"mtd/internal/repository"
	"mtd/internal/websocket"
)

const dateLayout = "2006-01-02"

// ErrInvalidRequest marks caller mistakes; handlers answer them with 400.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound marks a missing record; handlers answer it with 404.
var ErrNotFound = errors.New("not found")

// Caller identifies who is asking and from where.
type Caller struct {
	UserID   string
	DeviceID string
	Conn     fraud.ConnectionInfo
}

// HmrcGateway is the part of hmrc.Client the services call.
type HmrcGateway interface {
	Do(ctx context.Context, req hmrc.Request, out any) (*hmrc.Response, error)
	ListBusinesses(ctx context.Context, nino string, headers fraud.HeaderSet) ([]model.Business, error)
	ListObligations(ctx context.Context, nino string, from, to time.Time, headers fraud.HeaderSet) ([]obligation.Obligation, error)
}

// HeaderBuilder assembles the fraud prevention headers for one outbound call.
type HeaderBuilder interface {
	Build(ctx context.Context, deviceID, userID string, conn fraud.ConnectionInfo) (fraud.HeaderSet, error)
}

// EventPublisher pushes realtime events to a user's connected clients.
type EventPublisher interface {
	Publish(ev websocket.Event)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func invalidErr(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, invalid("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

func headersFor(ctx context.Context, b HeaderBuilder, caller Caller) (fraud.HeaderSet, error) {
	headers, err := b.Build(ctx, caller.DeviceID, caller.UserID, caller.Conn)
	if err != nil {
		return nil, fmt.Errorf("failed to build fraud prevention headers: %w", err)
	}
	return headers, nil
}

// writeAuditLog is best-effort: a failed write is logged and the operation carries on.
func writeAuditLog(ctx context.Context, repo repository.AuditRepository, userID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	if err := repo.Log(ctx, &entry); err != nil {
		log.Printf("audit: failed to record %s for %s: %v", action, entityID, err)
	}
}
