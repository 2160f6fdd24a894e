package handler

import (
	"errors"
	"log"
	"net/http"

	"mtd/internal/hmrc"
	"mtd/internal/middleware"
	"mtd/internal/service"
	"mtd/pkg/response"

	"github.com/gin-gonic/gin"
)

// RejectionDetail is the data of an error response for a request the authority refused.
type RejectionDetail struct {
	Code          string         `json:"code"`
	Category      string         `json:"category,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Messages      []hmrc.Message `json:"messages"`
	Missing       []string       `json:"missing,omitempty"`
}

// writeError maps service and client errors onto the response envelope.
// Header validation and caller mistakes are 400, authority rejections 422, expired authority
// sessions 401, exhausted retries 503 and unreachable authority 502.
func writeError(c *gin.Context, translator *hmrc.Translator, err error) {
	var (
		hv        *hmrc.HeaderValidationError
		apiErr    *hmrc.APIError
		transport *hmrc.TransportError
	)
	switch {
	case errors.As(err, &hv):
		abortWith(c, http.StatusBadRequest, "Fraud prevention headers are incomplete", RejectionDetail{Code: "MISSING_FRAUD_HEADERS", Missing: hv.Missing})
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrDeviceNotRegistered):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.As(err, &apiErr):
		detail := RejectionDetail{
			Code:          apiErr.Code,
			Category:      string(apiErr.Category),
			CorrelationID: apiErr.CorrelationID,
		}
		msg := apiErr.UserMessage
		if translator != nil {
			detail.Messages = translator.Messages(apiErr)
			msg = translator.Summary(apiErr)
		}
		status := http.StatusUnprocessableEntity
		switch {
		case apiErr.RequiresReauth():
			status = http.StatusUnauthorized
		case apiErr.Retryable():
			status = http.StatusServiceUnavailable
		}
		abortWith(c, status, msg, detail)
	case errors.As(err, &transport):
		log.Printf("hmrc: %v", err)
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, "The tax authority could not be reached. Please try again later."))
	default:
		log.Printf("handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

func abortWith(c *gin.Context, status int, msg string, detail RejectionDetail) {
	c.JSON(status, response.ErrorWithDetail(status, msg, detail))
}

// caller collects identity and origin for outbound fraud headers.
func caller(c *gin.Context) service.Caller {
	ctx := c.Request.Context()
	conn, _ := middleware.ConnectionFrom(ctx)
	return service.Caller{
		UserID:   middleware.UserID(c),
		DeviceID: middleware.DeviceIDFrom(ctx),
		Conn:     conn,
	}
}
