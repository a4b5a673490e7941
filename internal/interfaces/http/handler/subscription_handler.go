package handler

import (
	"context"

	billingapp "github.com/nilmarket/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubscriptionManager manages the tenant's subscription lifecycle
type SubscriptionManager interface {
	ListPlans(ctx context.Context) []billingapp.PlanResponse
	Subscribe(ctx context.Context, tenantID uuid.UUID, req billingapp.SubscribeRequest) (*billingapp.SubscriptionResponse, error)
	GetCurrent(ctx context.Context, tenantID uuid.UUID) (*billingapp.SubscriptionResponse, error)
	ChangePlan(ctx context.Context, tenantID uuid.UUID, req billingapp.ChangePlanRequest) (*billingapp.SubscriptionResponse, error)
	Cancel(ctx context.Context, tenantID uuid.UUID, req billingapp.CancelSubscriptionRequest) (*billingapp.SubscriptionResponse, error)
	Reactivate(ctx context.Context, tenantID uuid.UUID) (*billingapp.SubscriptionResponse, error)
}

// SubscriptionHandler handles subscription API endpoints
type SubscriptionHandler struct {
	BaseHandler
	subscriptionService SubscriptionManager
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService SubscriptionManager) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// ListPlans godoc
//
//	@ID				listPlans
//	@Summary		List subscription plans
//	@Description	Plan catalog with the quotas each plan grants
//	@Tags			billing
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=[]billingapp.PlanResponse}
//	@Router			/billing/plans [get]
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	h.Success(c, h.subscriptionService.ListPlans(c.Request.Context()))
}

// Subscribe godoc
//
//	@ID				subscribe
//	@Summary		Start paid subscription
//	@Description	Create a Stripe subscription for the tenant. The response carries the client secret for payment confirmation.
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		billingapp.SubscribeRequest	true	"Plan selection"
//	@Success		201		{object}	dto.Response{data=billingapp.SubscriptionResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		409		{object}	dto.Response	"Subscription already active"
//	@Router			/billing/subscription [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.subscriptionService.Subscribe(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetCurrent godoc
//
//	@ID				getSubscription
//	@Summary		Get current subscription
//	@Tags			billing
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=billingapp.SubscriptionResponse}
//	@Failure		404	{object}	dto.Response	"Tenant has no subscription"
//	@Router			/billing/subscription [get]
func (h *SubscriptionHandler) GetCurrent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	resp, err := h.subscriptionService.GetCurrent(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangePlan godoc
//
//	@ID				changePlan
//	@Summary		Change subscription plan
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		billingapp.ChangePlanRequest	true	"New plan"
//	@Success		200		{object}	dto.Response{data=billingapp.SubscriptionResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/billing/subscription/plan [put]
func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.subscriptionService.ChangePlan(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
//
//	@ID				cancelSubscription
//	@Summary		Cancel subscription
//	@Description	Cancel immediately or at the end of the current period
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		billingapp.CancelSubscriptionRequest	true	"Cancellation options"
//	@Success		200		{object}	dto.Response{data=billingapp.SubscriptionResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/billing/subscription/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.subscriptionService.Cancel(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reactivate godoc
//
//	@ID				reactivateSubscription
//	@Summary		Reactivate subscription
//	@Description	Undo a scheduled period-end cancellation
//	@Tags			billing
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=billingapp.SubscriptionResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/billing/subscription/reactivate [post]
func (h *SubscriptionHandler) Reactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	resp, err := h.subscriptionService.Reactivate(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
