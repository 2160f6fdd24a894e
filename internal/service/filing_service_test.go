package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"mtd/internal/calendar"
	"mtd/internal/category"
	"mtd/internal/fraud"
	"mtd/internal/hmrc"
	"mtd/internal/model"
	"mtd/internal/repository"
	"mtd/internal/submission"
	"mtd/internal/taxcalc"
	"mtd/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type filingFixture struct {
	svc    *filingService
	txs    *mockTransactionRepo
	adjs   *mockAdjustmentRepo
	subs   *mockSubmissionRepo
	audit  *mockAuditRepo
	gw     *mockGateway
	events *recordingPublisher
}

func newFilingFixture(t *testing.T, headers HeaderBuilder) *filingFixture {
	t.Helper()
	rates, err := taxcalc.DefaultRates()
	require.NoError(t, err)

	router := submission.NewRouter()
	router.Retry = hmrc.RetryConfig{MaxRetries: 0}

	f := &filingFixture{
		txs:    &mockTransactionRepo{},
		adjs:   &mockAdjustmentRepo{},
		subs:   &mockSubmissionRepo{},
		audit:  &mockAuditRepo{},
		gw:     &mockGateway{},
		events: &recordingPublisher{},
	}
	f.svc = &filingService{
		FilingDeps: FilingDeps{
			Transactions: f.txs,
			Adjustments:  f.adjs,
			Submissions:  f.subs,
			Audit:        f.audit,
			TxManager:    inlineTx{},
			Mapper:       category.NewDefaultMapper(),
			Router:       router,
			Rates:        rates,
			Hmrc:         f.gw,
			Headers:      headers,
			Events:       f.events,
			DefaultKind:  calendar.KindStandard,
		},
		now: func() time.Time { return time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC) },
	}
	return f
}

func tx(date string, amount, cat string) model.Transaction {
	d, _ := time.Parse(dateLayout, date)
	return model.Transaction{ID: uuid.New(), Date: d, Amount: decimal.RequireFromString(amount), MTDCategory: &cat}
}

func q1Request() FilingRequest {
	return FilingRequest{
		NINO:         "AA123456A",
		BusinessID:   "XAIS12345678901",
		BusinessType: model.BusinessTypeSelfEmployment,
		TaxYear:      "2025-26",
		PeriodStart:  "2025-04-06",
		PeriodEnd:    "2025-07-05",
	}
}

func (f *filingFixture) ledger(txs []model.Transaction, adjs []model.Adjustment) {
	f.txs.On("ListByRange", mock.Anything, "u1", "XAIS12345678901", mock.Anything, mock.Anything).Return(txs, nil)
	f.adjs.On("ListByTaxYear", mock.Anything, "u1", "XAIS12345678901", mock.Anything).Return(adjs, nil)
}

func TestPreviewCumulativeYear(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})
	q1 := calendar.StandardPeriods("2025-26")[0]
	f.ledger(
		[]model.Transaction{
			tx("2025-05-01", "1000", "Sales"),
			tx("2025-06-01", "-200", "Software"),
			tx("2025-06-02", "-50", "zzqx"),
		},
		[]model.Adjustment{
			{PeriodKey: q1.Key(), Field: "adminCosts", Amount: decimal.NewFromInt(20)},
			{PeriodKey: "2025-07-06_2025-10-05", Field: "adminCosts", Amount: decimal.NewFromInt(999)},
		},
	)

	preview, err := f.svc.Preview(context.Background(), "u1", q1Request())
	require.NoError(t, err)

	assert.Equal(t, "cumulative", preview.Strategy)
	assert.Equal(t, http.MethodPut, preview.Plan.Method)
	assert.Equal(t, "/individuals/business/self-employment/AA123456A/XAIS12345678901/cumulative/2025-26", preview.Plan.Path)
	assert.Equal(t, "2025-08-05", preview.Deadline)
	assert.Equal(t, 1, preview.Quarter)

	// the later quarter's adjustment is out of scope
	assert.Equal(t, "1000.00", preview.YearToDate.Turnover)
	assert.Equal(t, "220.00", preview.YearToDate.Expenses["adminCosts"])
	assert.Equal(t, "780.00", preview.YearToDate.Profit)
	assert.Equal(t, "220.00", preview.ThisPeriod.Expenses["adminCosts"])

	require.Len(t, preview.Unmapped, 1)
	assert.Equal(t, "zzqx", preview.Unmapped[0].Category)
	require.Len(t, preview.Warnings, 1)
	assert.Contains(t, preview.Warnings[0], "no recognised category")

	require.NotNil(t, preview.Estimate)
	assert.True(t, preview.Estimate.TotalDue.IsZero(), "profit is inside the personal allowance")
	f.gw.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything)
}

func TestPreviewWarnsBeforePeriodEnd(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})
	f.svc.now = func() time.Time { return time.Date(2025, time.July, 5, 18, 0, 0, 0, time.UTC) }
	f.ledger(nil, nil)

	preview, err := f.svc.Preview(context.Background(), "u1", q1Request())
	require.NoError(t, err)
	require.Len(t, preview.Warnings, 1)
	assert.Contains(t, preview.Warnings[0], "not ended")
}

func TestPreviewWarnsAboutAdjustmentsOfOtherPeriodKind(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})
	calendarQ1 := calendar.CalendarPeriods("2025-26")[0]
	f.ledger(
		[]model.Transaction{tx("2025-05-01", "1000", "Sales")},
		[]model.Adjustment{{PeriodKey: calendarQ1.Key(), Field: "adminCosts", Amount: decimal.NewFromInt(40)}},
	)

	preview, err := f.svc.Preview(context.Background(), "u1", q1Request())
	require.NoError(t, err)

	assert.Empty(t, preview.ThisPeriod.Expenses["adminCosts"])
	require.Len(t, preview.Warnings, 1)
	assert.Contains(t, preview.Warnings[0], "1 adjustment(s)")
	assert.Contains(t, preview.Warnings[0], "another period kind")
}

func TestPreviewDiscreteAmendUsesPreviousPeriodID(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})
	f.ledger([]model.Transaction{tx("2024-05-01", "500", "Sales")}, nil)
	f.subs.On("LatestAccepted", mock.Anything, "u1", "XAIS12345678901", "2024-25", "2024-04-06_2024-07-05").
		Return(&model.Submission{PeriodID: "p-9"}, nil)

	req := q1Request()
	req.TaxYear, req.PeriodStart, req.PeriodEnd = "2024-25", "2024-04-06", "2024-07-05"

	preview, err := f.svc.Preview(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, "discrete-amend", preview.Strategy)
	assert.Equal(t, http.MethodPut, preview.Plan.Method)
	assert.True(t, strings.HasSuffix(preview.Plan.Path, "/period/2024-25/p-9"))
	assert.Equal(t, "3.0", preview.Plan.APIVersion)
}

func TestPreviewRejectsBadInput(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})

	tests := []struct {
		name string
		edit func(r *FilingRequest)
	}{
		{"tax year", func(r *FilingRequest) { r.TaxYear = "2025-27" }},
		{"not a quarter", func(r *FilingRequest) { r.PeriodEnd = "2025-07-04" }},
		{"business type", func(r *FilingRequest) { r.BusinessType = "partnership" }},
		{"period kind", func(r *FilingRequest) { r.PeriodKind = "monthly" }},
		{"deductions", func(r *FilingRequest) { r.Deductions = "lots" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := q1Request()
			tt.edit(&req)
			_, err := f.svc.Preview(context.Background(), "u1", req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestPreviewRefusesConsolidationAboveThreshold(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})
	f.ledger([]model.Transaction{tx("2025-05-01", "95000", "Sales")}, nil)

	req := q1Request()
	req.Consolidated = true
	_, err := f.svc.Preview(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.ErrorIs(t, err, submission.ErrConsolidationLimit)
}

func TestSubmitAccepted(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})
	f.ledger([]model.Transaction{tx("2025-05-01", "1000", "Sales")}, nil)
	f.gw.On("Do", mock.Anything, mock.MatchedBy(func(r hmrc.Request) bool { return r.Method == http.MethodPut }), mock.Anything).
		Return(&hmrc.Response{StatusCode: http.StatusNoContent, CorrelationID: "corr-1"}, nil, nil).Once()

	var saved *model.Submission
	f.subs.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.Submission)
	}).Return(nil)
	f.audit.On("Log", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool { return l.Action == model.ActionSubmitPeriod })).Return(nil)

	res, err := f.svc.Submit(context.Background(), Caller{UserID: "u1", DeviceID: "d1"}, q1Request())
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, model.SubmissionStatusAccepted, saved.Status)
	assert.Equal(t, "cumulative", saved.Strategy)
	assert.Equal(t, "5.0", saved.APIVersion)
	assert.Equal(t, "corr-1", saved.CorrelationID)
	assert.Contains(t, saved.RequestBody, `"turnover":1000.00`)
	assert.Equal(t, model.SubmissionStatusAccepted, res.Submission.Status)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, websocket.EventSubmissionAccepted, f.events.events[0].Type)
	assert.Equal(t, "u1", f.events.events[0].UserID)
	f.gw.AssertExpectations(t)
}

func TestSubmitRejectedIsRecorded(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})
	f.ledger(nil, nil)
	apiErr := &hmrc.APIError{StatusCode: http.StatusUnprocessableEntity, Code: "RULE_TYPE_OF_BUSINESS_INCORRECT", CorrelationID: "corr-2", Classification: hmrc.ClassTerminal}
	f.gw.On("Do", mock.Anything, mock.Anything, mock.Anything).Return(nil, apiErr, nil).Once()

	var saved *model.Submission
	f.subs.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.Submission)
	}).Return(nil)
	f.audit.On("Log", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool { return l.Action == model.ActionSubmitRejected })).Return(nil)

	_, err := f.svc.Submit(context.Background(), Caller{UserID: "u1"}, q1Request())
	var got *hmrc.APIError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "RULE_TYPE_OF_BUSINESS_INCORRECT", got.Code)

	require.NotNil(t, saved)
	assert.Equal(t, model.SubmissionStatusRejected, saved.Status)
	assert.Equal(t, "RULE_TYPE_OF_BUSINESS_INCORRECT", saved.ErrorCode)
	assert.Equal(t, "corr-2", saved.CorrelationID)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, websocket.EventSubmissionRejected, f.events.events[0].Type)
}

func TestSubmitTransportFailureIsRecordedAsFailed(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})
	f.ledger(nil, nil)
	f.gw.On("Do", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &hmrc.TransportError{Method: http.MethodPut, Err: errors.New("connection reset")}, nil)

	var saved *model.Submission
	f.subs.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.Submission)
	}).Return(nil)
	f.audit.On("Log", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Submit(context.Background(), Caller{UserID: "u1"}, q1Request())
	require.Error(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, model.SubmissionStatusFailed, saved.Status)
	assert.Equal(t, websocket.EventSubmissionFailed, f.events.events[0].Type)
}

func TestSubmitBlockedByMissingHeaders(t *testing.T) {
	partial := completeHeaders()
	delete(partial, fraud.ClientDeviceID)
	f := newFilingFixture(t, fixedHeaders{set: partial})
	f.ledger(nil, nil)
	f.audit.On("Log", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool { return l.Action == model.ActionFraudHeadersBlock })).Return(nil)

	_, err := f.svc.Submit(context.Background(), Caller{UserID: "u1"}, q1Request())
	var hv *hmrc.HeaderValidationError
	require.ErrorAs(t, err, &hv)
	assert.Equal(t, []string{fraud.ClientDeviceID}, hv.Missing)

	f.gw.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything)
	f.subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.events)
}

func TestSubmitUnknownDevice(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{err: ErrDeviceNotRegistered})
	f.ledger(nil, nil)

	_, err := f.svc.Submit(context.Background(), Caller{UserID: "u1"}, q1Request())
	assert.ErrorIs(t, err, ErrDeviceNotRegistered)
	f.gw.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryPaging(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})
	filter := repository.SubmissionFilter{UserID: "u1", BusinessID: "XAIS1", TaxYear: "2025-26"}
	f.subs.On("List", mock.Anything, filter, 10, 10).
		Return([]model.Submission{{ID: uuid.New(), Status: model.SubmissionStatusAccepted}}, int64(11), nil)

	res, total, err := f.svc.History(context.Background(), "u1", HistoryQuery{BusinessID: "XAIS1", TaxYear: "2025-26", Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, res, 1)
	assert.Equal(t, model.SubmissionStatusAccepted, res[0].Status)

	_, _, err = f.svc.History(context.Background(), "u1", HistoryQuery{TaxYear: "2025", Page: 1, Limit: 10})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRetrieveCumulative(t *testing.T) {
	f := newFilingFixture(t, fixedHeaders{set: completeHeaders()})
	f.gw.On("Do", mock.Anything, mock.MatchedBy(func(r hmrc.Request) bool {
		return r.Method == http.MethodGet && strings.HasSuffix(r.Path, "/cumulative/2025-26")
	}), mock.Anything).Return(&hmrc.Response{StatusCode: http.StatusOK}, nil, func(out any) {
		*(out.(*json.RawMessage)) = json.RawMessage(`{"periodIncome":{"turnover":10}}`)
	})

	q := CumulativeQuery{NINO: "AA123456A", BusinessID: "XAIS1", BusinessType: model.BusinessTypeSelfEmployment, TaxYear: "2025-26"}
	out, err := f.svc.RetrieveCumulative(context.Background(), Caller{UserID: "u1"}, q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"periodIncome":{"turnover":10}}`, string(out))

	q.TaxYear = "2024-25"
	_, err = f.svc.RetrieveCumulative(context.Background(), Caller{UserID: "u1"}, q)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
