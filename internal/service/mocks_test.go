package service

import (
	"context"
	"time"

	"mtd/internal/fraud"
	"mtd/internal/hmrc"
	"mtd/internal/model"
	"mtd/internal/obligation"
	"mtd/internal/repository"
	"mtd/internal/websocket"

	"github.com/stretchr/testify/mock"
)

type mockTransactionRepo struct{ mock.Mock }

func (m *mockTransactionRepo) ListByRange(ctx context.Context, userID, businessID string, from, to time.Time) ([]model.Transaction, error) {
	args := m.Called(ctx, userID, businessID, from, to)
	txs, _ := args.Get(0).([]model.Transaction)
	return txs, args.Error(1)
}

type mockAdjustmentRepo struct{ mock.Mock }

func (m *mockAdjustmentRepo) Create(ctx context.Context, adj *model.Adjustment) error {
	return m.Called(ctx, adj).Error(0)
}

func (m *mockAdjustmentRepo) ListByTaxYear(ctx context.Context, userID, businessID, taxYear string) ([]model.Adjustment, error) {
	args := m.Called(ctx, userID, businessID, taxYear)
	adjs, _ := args.Get(0).([]model.Adjustment)
	return adjs, args.Error(1)
}

type mockSubmissionRepo struct{ mock.Mock }

func (m *mockSubmissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter, offset, limit int) ([]model.Submission, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	subs, _ := args.Get(0).([]model.Submission)
	return subs, args.Get(1).(int64), args.Error(2)
}

func (m *mockSubmissionRepo) LatestAccepted(ctx context.Context, userID, businessID, taxYear, periodKey string) (*model.Submission, error) {
	args := m.Called(ctx, userID, businessID, taxYear, periodKey)
	sub, _ := args.Get(0).(*model.Submission)
	return sub, args.Error(1)
}

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, filter repository.AuditFilter, offset, limit int) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type mockDeviceRepo struct{ mock.Mock }

func (m *mockDeviceRepo) Upsert(ctx context.Context, profile *model.DeviceProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *mockDeviceRepo) FindByID(ctx context.Context, deviceID string) (*model.DeviceProfile, error) {
	args := m.Called(ctx, deviceID)
	p, _ := args.Get(0).(*model.DeviceProfile)
	return p, args.Error(1)
}

// inlineTx runs fn directly; repositories are mocked so there is nothing to commit.
type inlineTx struct{}

func (inlineTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Do(ctx context.Context, req hmrc.Request, out any) (*hmrc.Response, error) {
	args := m.Called(ctx, req, out)
	if fill, ok := args.Get(2).(func(any)); ok {
		fill(out)
	}
	resp, _ := args.Get(0).(*hmrc.Response)
	return resp, args.Error(1)
}

func (m *mockGateway) ListBusinesses(ctx context.Context, nino string, headers fraud.HeaderSet) ([]model.Business, error) {
	args := m.Called(ctx, nino, headers)
	bs, _ := args.Get(0).([]model.Business)
	return bs, args.Error(1)
}

func (m *mockGateway) ListObligations(ctx context.Context, nino string, from, to time.Time, headers fraud.HeaderSet) ([]obligation.Obligation, error) {
	args := m.Called(ctx, nino, from, to, headers)
	obs, _ := args.Get(0).([]obligation.Obligation)
	return obs, args.Error(1)
}

// fixedHeaders returns the same set for every call.
type fixedHeaders struct {
	set fraud.HeaderSet
	err error
}

func (f fixedHeaders) Build(context.Context, string, string, fraud.ConnectionInfo) (fraud.HeaderSet, error) {
	return f.set.Clone(), f.err
}

func completeHeaders() fraud.HeaderSet {
	h := fraud.HeaderSet{}
	for _, name := range fraud.Required {
		h[name] = "x"
	}
	return h
}

type recordingPublisher struct {
	events []websocket.Event
}

func (p *recordingPublisher) Publish(ev websocket.Event) {
	p.events = append(p.events, ev)
}
