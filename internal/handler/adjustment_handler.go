package handler

import (
	"net/http"

	"mtd/internal/middleware"
	"mtd/internal/service"
	"mtd/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdjustmentHandler struct {
	adjustmentService service.AdjustmentService
}

func NewAdjustmentHandler(adjustmentService service.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentService: adjustmentService}
}

func (h *AdjustmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/adjustments")
	{
		group.POST("", h.CreateAdjustment)
		group.GET("", h.GetAdjustments)
	}
}

// CreateAdjustment records a manual correction on top of the ledger totals
// @Summary      Create adjustment
// @Tags         adjustments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateAdjustmentRequest  true  "Adjustment Payload"
// @Success      201      {object}  response.Response{data=service.AdjustmentResponse}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/adjustments [post]
func (h *AdjustmentHandler) CreateAdjustment(c *gin.Context) {
	var req service.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	adj, err := h.adjustmentService.CreateAdjustment(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, nil, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, adj))
}

// GetAdjustments lists the adjustments of one business for a tax year
// @Summary      Get adjustments
// @Tags         adjustments
// @Security     BearerAuth
// @Produce      json
// @Param        business_id  query     string  true  "Business id"
// @Param        tax_year     query     string  true  "Tax year (YYYY-YY)"
// @Success      200          {object}  response.Response{data=[]service.AdjustmentResponse}
// @Failure      400          {object}  response.Response
// @Router       /api/adjustments [get]
func (h *AdjustmentHandler) GetAdjustments(c *gin.Context) {
	adjs, err := h.adjustmentService.ListAdjustments(c.Request.Context(), middleware.UserID(c), c.Query("business_id"), c.Query("tax_year"))
	if err != nil {
		writeError(c, nil, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, adjs))
}
