package middleware

import (
	"context"
	"net/http"
	"time"

	"mtd/internal/fraud"
	"mtd/internal/hmrc"
	"mtd/pkg/response"

	"github.com/gin-gonic/gin"
)

// Request headers set by the front end
const (
	HeaderHmrcToken = "X-Hmrc-Token"
	HeaderDeviceID  = "X-Device-Id"
)

type connectionKey struct{}
type deviceKey struct{}

// CaptureConnection records the caller's public address for the server-origin fraud headers.
// It runs on every request so the timestamp is the moment the request arrived.
func CaptureConnection() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn := fraud.ConnectionFromRequest(c.Request, time.Now())
		ctx := context.WithValue(c.Request.Context(), connectionKey{}, conn)
		if id := c.GetHeader(HeaderDeviceID); id != "" {
			ctx = context.WithValue(ctx, deviceKey{}, id)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireHmrcToken passes the caller's HMRC bearer token to the client through the request context
func RequireHmrcToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderHmrcToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "HMRC authorisation is missing"))
			return
		}
		c.Request = c.Request.WithContext(hmrc.WithToken(c.Request.Context(), token))
		c.Next()
	}
}

// ConnectionFrom returns the connection captured for ctx
func ConnectionFrom(ctx context.Context) (fraud.ConnectionInfo, bool) {
	conn, ok := ctx.Value(connectionKey{}).(fraud.ConnectionInfo)
	return conn, ok
}

// DeviceIDFrom returns the device id sent with the request
func DeviceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(deviceKey{}).(string)
	return id
}
