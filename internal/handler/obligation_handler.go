package handler

import (
	"net/http"

	"mtd/internal/hmrc"
	"mtd/internal/middleware"
	"mtd/internal/service"
	"mtd/pkg/response"

	"github.com/gin-gonic/gin"
)

type ObligationHandler struct {
	obligationService service.ObligationService
	translator        *hmrc.Translator
}

func NewObligationHandler(obligationService service.ObligationService, translator *hmrc.Translator) *ObligationHandler {
	return &ObligationHandler{obligationService: obligationService, translator: translator}
}

func (h *ObligationHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api")
	group.Use(middleware.RequireHmrcToken())
	{
		group.GET("/obligations", h.GetObligations)
		group.GET("/businesses", h.GetBusinesses)
	}
}

// GetObligations lists the authority's obligations with locally derived statuses
// @Summary      Get obligations
// @Description  Reads obligations from the tax authority, sorted by urgency with display status and days until due
// @Tags         obligations
// @Security     BearerAuth
// @Produce      json
// @Param        X-Hmrc-Token  header    string  true   "HMRC OAuth access token"
// @Param        X-Device-Id   header    string  true   "Registered device id"
// @Param        nino          query     string  true   "National Insurance number"
// @Param        from          query     string  false  "From date (YYYY-MM-DD), defaults to the current tax year start"
// @Param        to            query     string  false  "To date (YYYY-MM-DD), defaults to the current tax year end"
// @Success      200           {object}  response.Response{data=[]obligation.View}
// @Failure      400           {object}  response.Response
// @Failure      401           {object}  response.Response
// @Router       /api/obligations [get]
func (h *ObligationHandler) GetObligations(c *gin.Context) {
	views, err := h.obligationService.ListObligations(c.Request.Context(), caller(c), service.ObligationQuery{
		NINO: c.Query("nino"),
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		writeError(c, h.translator, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, views))
}

// GetBusinesses lists the income sources registered with the authority
// @Summary      Get businesses
// @Tags         obligations
// @Security     BearerAuth
// @Produce      json
// @Param        X-Hmrc-Token  header    string  true  "HMRC OAuth access token"
// @Param        X-Device-Id   header    string  true  "Registered device id"
// @Param        nino          query     string  true  "National Insurance number"
// @Success      200           {object}  response.Response{data=[]model.Business}
// @Failure      400           {object}  response.Response
// @Router       /api/businesses [get]
func (h *ObligationHandler) GetBusinesses(c *gin.Context) {
	businesses, err := h.obligationService.ListBusinesses(c.Request.Context(), caller(c), c.Query("nino"))
	if err != nil {
		writeError(c, h.translator, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, businesses))
}
