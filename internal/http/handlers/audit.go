package handlers

import (
	"fmt"
	"net/http"

	"railway/internal/http/middleware"
	"railway/internal/services"
	"railway/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	Audit services.AuditService
}

// GET /api/admin/audit
func (h AuditHandler) Seats(c *gin.Context) {
	report, err := h.Audit.Check(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "audit", "manual_check",
		fmt.Sprintf("operator_id=%d trains=%d mismatches=%d", middleware.OperatorID(c), report.Trains, len(report.Mismatches)))
	c.JSON(http.StatusOK, report)
}
