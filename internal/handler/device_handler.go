package handler

import (
	"net/http"

	"mtd/internal/middleware"
	"mtd/internal/service"
	"mtd/pkg/response"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	deviceService service.DeviceService
}

func NewDeviceHandler(deviceService service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/devices", h.RegisterDevice)
}

// RegisterDevice stores the browser values needed for client fraud prevention headers
// @Summary      Register device
// @Description  Saves screen, window, timezone, plugin and user agent values for a device. A device id is issued when none is sent.
// @Tags         devices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterDeviceRequest  true  "Device Payload"
// @Success      201      {object}  response.Response{data=service.DeviceResponse}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/devices [post]
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	var req service.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	device, err := h.deviceService.Register(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, nil, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, device))
}
