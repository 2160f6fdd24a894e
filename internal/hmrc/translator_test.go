package hmrc

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCodeHasOneClassification(t *testing.T) {
	for code, e := range DefaultTable() {
		assert.Contains(t, []Classification{ClassRetryable, ClassReauth, ClassTerminal}, e.Classification, code)
		assert.NotEmpty(t, e.Message, code)
		assert.NotEqual(t, UnknownErrorMessage, e.Message, code)
	}
}

func TestTranslate(t *testing.T) {
	tr := NewTranslator(DefaultTable())

	assert.Equal(t, ClassRetryable, tr.Translate("MESSAGE_THROTTLED_OUT").Classification)
	assert.Equal(t, ClassReauth, tr.Translate("INVALID_CREDENTIALS").Classification)
	assert.Equal(t, CategoryRule, tr.Translate("RULE_BOTH_EXPENSES_SUPPLIED").Category)

	unknown := tr.Translate("RULE_SOMETHING_NEW")
	assert.Equal(t, UnknownErrorMessage, unknown.Message)
	assert.Equal(t, ClassTerminal, unknown.Classification)
	assert.Equal(t, CategoryRule, unknown.Category)
	assert.NotContains(t, unknown.Message, "RULE_SOMETHING_NEW")
}

func TestTranslatorIsIsolatedFromTable(t *testing.T) {
	table := DefaultTable()
	tr := NewTranslator(table)
	table["FORMAT_NINO"] = Entry{Classification: ClassRetryable, Message: "changed"}
	delete(table, "FORMAT_TAX_YEAR")

	assert.Equal(t, ClassTerminal, tr.Translate("FORMAT_NINO").Classification)
	_, ok := tr.Lookup("FORMAT_TAX_YEAR")
	assert.True(t, ok)

	custom := NewTranslator(Table{"X": {Classification: ClassRetryable, Category: CategoryServer, Message: "custom"}})
	assert.Equal(t, "custom", custom.Translate("X").Message)
	assert.Equal(t, UnknownErrorMessage, custom.Translate("FORMAT_NINO").Message)
}

func TestApplyFallsBackToStatusForUnknownCodes(t *testing.T) {
	tr := NewTranslator(DefaultTable())

	e := &APIError{StatusCode: http.StatusBadGateway, Code: "UPSTREAM_WOBBLE"}
	tr.Apply(e)
	assert.Equal(t, ClassRetryable, e.Classification)
	assert.Equal(t, UnknownErrorMessage, e.UserMessage)

	e = &APIError{StatusCode: http.StatusUnauthorized, Code: "TOKEN_GONE"}
	tr.Apply(e)
	assert.True(t, e.RequiresReauth())

	e = &APIError{StatusCode: http.StatusUnprocessableEntity, Code: "RULE_NEW"}
	tr.Apply(e)
	assert.Equal(t, ClassTerminal, e.Classification)
}

func TestMessagesPreserveNestedPaths(t *testing.T) {
	tr := NewTranslator(DefaultTable())
	e := &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_REQUEST",
		Errors: []ErrorDetail{
			{Code: "FORMAT_VALUE", Path: "/periodExpenses/travelCosts"},
			{Code: "FORMAT_VALUE", Path: "/periodIncome/turnover"},
			{Code: "NEVER_SEEN"},
		},
	}
	tr.Apply(e)

	msgs := tr.Messages(e)
	require.Len(t, msgs, 3)
	assert.Equal(t, "/periodExpenses/travelCosts", msgs[0].Path)
	assert.Equal(t, "/periodIncome/turnover", msgs[1].Path)
	assert.Equal(t, msgs[0].Text, msgs[1].Text)
	assert.Equal(t, UnknownErrorMessage, msgs[2].Text)

	summary := tr.Summary(e)
	assert.Contains(t, summary, "/periodIncome/turnover: ")
	assert.Contains(t, summary, UnknownErrorMessage)
}

func TestMessagesTopLevelOnly(t *testing.T) {
	tr := NewTranslator(DefaultTable())
	e := &APIError{StatusCode: http.StatusForbidden, Code: "CLIENT_OR_AGENT_NOT_AUTHORISED"}
	tr.Apply(e)
	msgs := tr.Messages(e)
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].Path)
	assert.Equal(t, "You are not authorised to act for this taxpayer.", msgs[0].Text)
}

var fastRetry = RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}

func retryableErr() error {
	return &APIError{StatusCode: 503, Code: "SERVICE_UNAVAILABLE", Classification: ClassRetryable}
}

func TestWithRetryRecoversFromRetryableResponse(t *testing.T) {
	attempts := 0
	got, err := WithRetry(context.Background(), fastRetry, false, func(context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", retryableErr()
		}
		return "ref-1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ref-1", got)
	assert.Equal(t, 3, attempts, "an error response means nothing was applied, so POST may be resent")
}

func TestWithRetryStopsOnTerminal(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), fastRetry, true, func(context.Context) (int, error) {
		attempts++
		return 0, &APIError{StatusCode: 400, Code: "RULE_BOTH_EXPENSES_SUPPLIED", Classification: ClassTerminal}
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryNeverRetriesReauth(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), fastRetry, true, func(context.Context) (int, error) {
		attempts++
		return 0, &APIError{StatusCode: 401, Code: "UNAUTHORIZED", Classification: ClassReauth}
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryTransportErrorsRespectIdempotency(t *testing.T) {
	transport := &TransportError{Method: "POST", Path: "/x", Err: errors.New("connection reset")}

	attempts := 0
	_, err := WithRetry(context.Background(), fastRetry, false, func(context.Context) (int, error) {
		attempts++
		return 0, transport
	})
	assert.ErrorIs(t, err, transport.Err)
	assert.Equal(t, 1, attempts, "non-idempotent call with unknown outcome is not resent")

	attempts = 0
	_, err = WithRetry(context.Background(), fastRetry, true, func(context.Context) (int, error) {
		attempts++
		return 0, transport
	})
	require.Error(t, err)
	assert.Equal(t, fastRetry.MaxRetries+1, attempts)
}

func TestWithRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxRetries: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, BackoffFactor: 1}

	attempts := 0
	_, err := WithRetry(ctx, cfg, true, func(context.Context) (int, error) {
		attempts++
		cancel()
		return 0, retryableErr()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestShouldRetryIgnoresLocalErrors(t *testing.T) {
	assert.False(t, ShouldRetry(&HeaderValidationError{Missing: []string{"x"}}, true))
	assert.False(t, ShouldRetry(errors.New("boom"), true))
	assert.False(t, ShouldRetry(&TransportError{Err: context.Canceled}, true))
}
