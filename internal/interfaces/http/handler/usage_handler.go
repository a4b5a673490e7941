package handler

import (
	"context"
	"strings"

	billingapp "github.com/nilmarket/backend/internal/application/billing"
	"github.com/nilmarket/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuotaReader reads quota and usage state for a tenant
type QuotaReader interface {
	GetQuotaStatus(ctx context.Context, tenantID uuid.UUID) (map[billing.UsageType]billingapp.QuotaCheckResult, error)
	GetUsageSummary(ctx context.Context, tenantID uuid.UUID, period billing.ResetPeriod) (*billingapp.UsageSummaryDTO, error)
}

// UsageHandler handles plan usage and quota API endpoints
type UsageHandler struct {
	BaseHandler
	quotas QuotaReader
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(quotas QuotaReader) *UsageHandler {
	return &UsageHandler{
		quotas: quotas,
	}
}

// QuotaStatusItem is one quota line in the status response
type QuotaStatusItem struct {
	UsageType    string  `json:"usage_type"`
	Allowed      bool    `json:"allowed"`
	CurrentUsage int64   `json:"current_usage"`
	Limit        int64   `json:"limit"`
	Remaining    int64   `json:"remaining"`
	Percentage   float64 `json:"percentage"`
	Status       string  `json:"status"`
}

// GetQuotaStatus godoc
//
//	@ID				getQuotaStatus
//	@Summary		Get quota status
//	@Description	Current usage against every plan quota for the tenant
//	@Tags			billing
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=[]QuotaStatusItem}
//	@Router			/billing/quotas [get]
func (h *UsageHandler) GetQuotaStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	status, err := h.quotas.GetQuotaStatus(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]QuotaStatusItem, 0, len(status))
	for usageType, result := range status {
		items = append(items, QuotaStatusItem{
			UsageType:    string(usageType),
			Allowed:      result.Allowed,
			CurrentUsage: result.CurrentUsage,
			Limit:        result.Limit,
			Remaining:    result.Remaining,
			Percentage:   result.Percentage,
			Status:       string(result.Status),
		})
	}
	h.Success(c, items)
}

// GetUsageSummary godoc
//
//	@ID				getUsageSummary
//	@Summary		Get usage summary
//	@Description	Usage totals for the requested reset period, monthly by default
//	@Tags			billing
//	@Produce		json
//	@Param			period	query		string	false	"Reset period"	Enums(daily, weekly, monthly, yearly)
//	@Success		200		{object}	dto.Response{data=billingapp.UsageSummaryDTO}
//	@Failure		400		{object}	dto.Response	"Unknown period"
//	@Router			/billing/usage [get]
func (h *UsageHandler) GetUsageSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	period := billing.ResetPeriod(strings.ToUpper(c.DefaultQuery("period", "monthly")))
	if !period.IsValid() || period == billing.ResetPeriodNever {
		h.BadRequest(c, "Unknown period")
		return
	}

	summary, err := h.quotas.GetUsageSummary(c.Request.Context(), tenantID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
