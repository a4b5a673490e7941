package handler

import (
	bundleapp "github.com/nilmarket/backend/internal/application/bundle"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BundleHandler handles bundle and offer API endpoints
type BundleHandler struct {
	BaseHandler
	bundleService *bundleapp.BundleService
}

// NewBundleHandler creates a new BundleHandler
func NewBundleHandler(bundleService *bundleapp.BundleService) *BundleHandler {
	return &BundleHandler{
		bundleService: bundleService,
	}
}

// Create godoc
//
//	@ID				createBundle
//	@Summary		Create offer bundle
//	@Description	Create a draft bundle with its offers. Retries with the same Idempotency-Key return the original bundle.
//	@Tags			bundles
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string							false	"Idempotency key, overrides the body field"
//	@Param			request			body		bundleapp.CreateBundleRequest	true	"Bundle details"
//	@Success		201				{object}	dto.Response{data=bundleapp.BundleResponse}
//	@Failure		400				{object}	dto.Response
//	@Failure		422				{object}	dto.Response	"Offer total exceeds budget"
//	@Failure		429				{object}	dto.Response	"Plan quota exceeded"
//	@Router			/bundles [post]
func (h *BundleHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req bundleapp.CreateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}
	if req.IdempotencyKey == "" {
		h.BadRequest(c, "Idempotency key is required")
		return
	}

	resp, err := h.bundleService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
//
//	@ID				getBundle
//	@Summary		Get bundle
//	@Tags			bundles
//	@Produce		json
//	@Param			id	path		string	true	"Bundle ID"
//	@Success		200	{object}	dto.Response{data=bundleapp.BundleResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/bundles/{id} [get]
func (h *BundleHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	bundleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bundle ID")
		return
	}

	resp, err := h.bundleService.Get(c.Request.Context(), tenantID, bundleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Submit godoc
//
//	@ID				submitBundle
//	@Summary		Submit bundle for compliance review
//	@Tags			bundles
//	@Produce		json
//	@Param			id	path		string	true	"Bundle ID"
//	@Success		200	{object}	dto.Response{data=bundleapp.BundleResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/bundles/{id}/submit [post]
func (h *BundleHandler) Submit(c *gin.Context) {
	tenantID, userID, bundleID, ok := h.target(c)
	if !ok {
		return
	}

	resp, err := h.bundleService.Submit(c.Request.Context(), tenantID, userID, bundleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Approve godoc
//
//	@ID				approveBundle
//	@Summary		Approve bundle
//	@Description	Approve a reviewed bundle and queue its offers for dispatch
//	@Tags			bundles
//	@Produce		json
//	@Param			id	path		string	true	"Bundle ID"
//	@Success		200	{object}	dto.Response{data=bundleapp.BundleResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/bundles/{id}/approve [post]
func (h *BundleHandler) Approve(c *gin.Context) {
	tenantID, userID, bundleID, ok := h.target(c)
	if !ok {
		return
	}

	resp, err := h.bundleService.Approve(c.Request.Context(), tenantID, userID, bundleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject godoc
//
//	@ID				rejectBundle
//	@Summary		Reject bundle
//	@Tags			bundles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Bundle ID"
//	@Param			request	body		bundleapp.RejectBundleRequest	true	"Rejection reason"
//	@Success		200		{object}	dto.Response{data=bundleapp.BundleResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/bundles/{id}/reject [post]
func (h *BundleHandler) Reject(c *gin.Context) {
	tenantID, userID, bundleID, ok := h.target(c)
	if !ok {
		return
	}

	var req bundleapp.RejectBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.bundleService.Reject(c.Request.Context(), tenantID, userID, bundleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
//
//	@ID				listBundles
//	@Summary		List bundles
//	@Tags			bundles
//	@Produce		json
//	@Param			status		query		string	false	"Filter by status"
//	@Param			campaign_id	query		string	false	"Filter by campaign"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	dto.Response{data=[]bundleapp.BundleListItemResponse}
//	@Router			/bundles [get]
func (h *BundleHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var req bundleapp.ListBundlesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.bundleService.List(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// ListPendingReview godoc
//
//	@ID				listBundlesPendingReview
//	@Summary		List bundles awaiting compliance review
//	@Tags			bundles
//	@Produce		json
//	@Param			page		query		int	false	"Page number"
//	@Param			page_size	query		int	false	"Page size"
//	@Success		200			{object}	dto.Response{data=[]bundleapp.BundleListItemResponse}
//	@Router			/bundles/pending-review [get]
func (h *BundleHandler) ListPendingReview(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var req bundleapp.ListBundlesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, err := h.bundleService.ListPendingReview(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// AcceptOffer godoc
//
//	@ID				acceptOffer
//	@Summary		Accept offer
//	@Description	Athlete accepts an offer from a dispatched bundle
//	@Tags			offers
//	@Produce		json
//	@Param			id	path		string	true	"Offer ID"
//	@Success		200	{object}	dto.Response{data=bundleapp.OfferResponse}
//	@Failure		422	{object}	dto.Response	"Offer expired or already answered"
//	@Router			/offers/{id}/accept [post]
func (h *BundleHandler) AcceptOffer(c *gin.Context) {
	tenantID, userID, offerID, ok := h.target(c)
	if !ok {
		return
	}

	resp, err := h.bundleService.AcceptOffer(c.Request.Context(), tenantID, userID, offerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeclineOffer godoc
//
//	@ID				declineOffer
//	@Summary		Decline offer
//	@Tags			offers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Offer ID"
//	@Param			request	body		bundleapp.DeclineOfferRequest	false	"Decline reason"
//	@Success		200		{object}	dto.Response{data=bundleapp.OfferResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/offers/{id}/decline [post]
func (h *BundleHandler) DeclineOffer(c *gin.Context) {
	tenantID, userID, offerID, ok := h.target(c)
	if !ok {
		return
	}

	var req bundleapp.DeclineOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.bundleService.DeclineOffer(c.Request.Context(), tenantID, userID, offerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// WithdrawOffer godoc
//
//	@ID				withdrawOffer
//	@Summary		Withdraw offer
//	@Description	Bundle owner withdraws a pending offer
//	@Tags			offers
//	@Produce		json
//	@Param			id	path		string	true	"Offer ID"
//	@Success		200	{object}	dto.Response{data=bundleapp.OfferResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/offers/{id}/withdraw [post]
func (h *BundleHandler) WithdrawOffer(c *gin.Context) {
	tenantID, userID, offerID, ok := h.target(c)
	if !ok {
		return
	}

	resp, err := h.bundleService.WithdrawOffer(c.Request.Context(), tenantID, userID, offerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMyOffers godoc
//
//	@ID				listMyOffers
//	@Summary		List own offer inbox
//	@Description	Offers addressed to the calling athlete
//	@Tags			offers
//	@Produce		json
//	@Param			page		query		int	false	"Page number"
//	@Param			page_size	query		int	false	"Page size"
//	@Success		200			{object}	dto.Response{data=[]bundleapp.OfferResponse}
//	@Router			/offers/mine [get]
func (h *BundleHandler) ListMyOffers(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req bundleapp.ListAthleteOffersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, err := h.bundleService.ListOffersForAthlete(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

func (h *BundleHandler) identity(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

func (h *BundleHandler) target(c *gin.Context) (uuid.UUID, uuid.UUID, uuid.UUID, bool) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, id, true
}
