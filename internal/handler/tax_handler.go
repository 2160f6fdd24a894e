package handler

import (
	"net/http"

	"mtd/internal/service"
	"mtd/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxHandler struct {
	taxService service.TaxService
}

func NewTaxHandler(taxService service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

func (h *TaxHandler) RegisterRoutes(router *gin.RouterGroup) {
	tax := router.Group("/api/tax")
	{
		tax.POST("/estimate", h.Estimate)
		tax.GET("/years", h.GetTaxYears)
	}
}

// Estimate computes income tax and National Insurance for a profit figure
// @Summary      Estimate tax
// @Description  Either profit, or income with expenses and deductions, for a supported tax year
// @Tags         tax
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TaxEstimateRequest  true  "Estimate Payload"
// @Success      200      {object}  response.Response{data=taxcalc.Result}
// @Failure      400      {object}  response.Response
// @Router       /api/tax/estimate [post]
func (h *TaxHandler) Estimate(c *gin.Context) {
	var req service.TaxEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.taxService.Estimate(c.Request.Context(), req)
	if err != nil {
		writeError(c, nil, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GetTaxYears lists the tax years with configured rates
// @Summary      Supported tax years
// @Tags         tax
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /api/tax/years [get]
func (h *TaxHandler) GetTaxYears(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.taxService.SupportedTaxYears(c.Request.Context())))
}
