package handler

import (
	"context"

	campaignapp "github.com/nilmarket/backend/internal/application/campaign"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CampaignHandler handles campaign wizard API endpoints
type CampaignHandler struct {
	BaseHandler
	campaignService *campaignapp.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignService *campaignapp.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
	}
}

// Create godoc
//
//	@ID				createCampaign
//	@Summary		Create campaign draft
//	@Description	Start the campaign wizard with a draft campaign
//	@Tags			campaigns
//	@Accept			json
//	@Produce		json
//	@Param			request	body		campaignapp.CreateCampaignRequest	true	"Campaign basics"
//	@Success		201		{object}	dto.Response{data=campaignapp.CampaignResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		429		{object}	dto.Response	"Plan quota exceeded"
//	@Router			/campaigns [post]
func (h *CampaignHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req campaignapp.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.campaignService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
//
//	@ID				getCampaign
//	@Summary		Get campaign
//	@Tags			campaigns
//	@Produce		json
//	@Param			id	path		string	true	"Campaign ID"
//	@Success		200	{object}	dto.Response{data=campaignapp.CampaignResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/campaigns/{id} [get]
func (h *CampaignHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	resp, err := h.campaignService.Get(c.Request.Context(), tenantID, campaignID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SaveBasics godoc
//
//	@ID				saveCampaignBasics
//	@Summary		Save campaign basics step
//	@Tags			campaigns
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Campaign ID"
//	@Param			request	body		campaignapp.SaveBasicsRequest	true	"Basics"
//	@Success		200		{object}	dto.Response{data=campaignapp.CampaignResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/campaigns/{id}/basics [put]
func (h *CampaignHandler) SaveBasics(c *gin.Context) {
	tenantID, userID, campaignID, ok := h.target(c)
	if !ok {
		return
	}

	var req campaignapp.SaveBasicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.campaignService.SaveBasics(c.Request.Context(), tenantID, userID, campaignID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SaveAudience godoc
//
//	@ID				saveCampaignAudience
//	@Summary		Save campaign audience step
//	@Tags			campaigns
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Campaign ID"
//	@Param			request	body		campaignapp.SaveAudienceRequest	true	"Audience targeting"
//	@Success		200		{object}	dto.Response{data=campaignapp.CampaignResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/campaigns/{id}/audience [put]
func (h *CampaignHandler) SaveAudience(c *gin.Context) {
	tenantID, userID, campaignID, ok := h.target(c)
	if !ok {
		return
	}

	var req campaignapp.SaveAudienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.campaignService.SaveAudience(c.Request.Context(), tenantID, userID, campaignID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SaveBudget godoc
//
//	@ID				saveCampaignBudget
//	@Summary		Save campaign budget step
//	@Tags			campaigns
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Campaign ID"
//	@Param			request	body		campaignapp.SaveBudgetRequest	true	"Budget and schedule"
//	@Success		200		{object}	dto.Response{data=campaignapp.CampaignResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/campaigns/{id}/budget [put]
func (h *CampaignHandler) SaveBudget(c *gin.Context) {
	tenantID, userID, campaignID, ok := h.target(c)
	if !ok {
		return
	}

	var req campaignapp.SaveBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.campaignService.SaveBudget(c.Request.Context(), tenantID, userID, campaignID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Publish godoc
//
//	@ID				publishCampaign
//	@Summary		Publish campaign
//	@Description	Publish a draft once every wizard step is complete
//	@Tags			campaigns
//	@Produce		json
//	@Param			id	path		string	true	"Campaign ID"
//	@Success		200	{object}	dto.Response{data=campaignapp.CampaignResponse}
//	@Failure		402	{object}	dto.Response	"Active subscription required"
//	@Failure		422	{object}	dto.Response	"Wizard incomplete"
//	@Router			/campaigns/{id}/publish [post]
func (h *CampaignHandler) Publish(c *gin.Context) {
	h.lifecycle(c, h.campaignService.Publish)
}

// Pause godoc
//
//	@ID				pauseCampaign
//	@Summary		Pause campaign
//	@Tags			campaigns
//	@Produce		json
//	@Param			id	path		string	true	"Campaign ID"
//	@Success		200	{object}	dto.Response{data=campaignapp.CampaignResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/campaigns/{id}/pause [post]
func (h *CampaignHandler) Pause(c *gin.Context) {
	h.lifecycle(c, h.campaignService.Pause)
}

// Resume godoc
//
//	@ID				resumeCampaign
//	@Summary		Resume paused campaign
//	@Tags			campaigns
//	@Produce		json
//	@Param			id	path		string	true	"Campaign ID"
//	@Success		200	{object}	dto.Response{data=campaignapp.CampaignResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/campaigns/{id}/resume [post]
func (h *CampaignHandler) Resume(c *gin.Context) {
	h.lifecycle(c, h.campaignService.Resume)
}

// Complete godoc
//
//	@ID				completeCampaign
//	@Summary		Complete campaign
//	@Tags			campaigns
//	@Produce		json
//	@Param			id	path		string	true	"Campaign ID"
//	@Success		200	{object}	dto.Response{data=campaignapp.CampaignResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/campaigns/{id}/complete [post]
func (h *CampaignHandler) Complete(c *gin.Context) {
	h.lifecycle(c, h.campaignService.Complete)
}

// Cancel godoc
//
//	@ID				cancelCampaign
//	@Summary		Cancel campaign
//	@Tags			campaigns
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Campaign ID"
//	@Param			request	body		campaignapp.CancelCampaignRequest	true	"Cancellation reason"
//	@Success		200		{object}	dto.Response{data=campaignapp.CampaignResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/campaigns/{id}/cancel [post]
func (h *CampaignHandler) Cancel(c *gin.Context) {
	tenantID, userID, campaignID, ok := h.target(c)
	if !ok {
		return
	}

	var req campaignapp.CancelCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.campaignService.Cancel(c.Request.Context(), tenantID, userID, campaignID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteDraft godoc
//
//	@ID				deleteCampaignDraft
//	@Summary		Delete draft campaign
//	@Description	Delete a campaign that has never been published
//	@Tags			campaigns
//	@Produce		json
//	@Param			id	path		string	true	"Campaign ID"
//	@Success		200	{object}	dto.Response
//	@Failure		422	{object}	dto.Response	"Campaign is not a draft"
//	@Router			/campaigns/{id} [delete]
func (h *CampaignHandler) DeleteDraft(c *gin.Context) {
	tenantID, userID, campaignID, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.campaignService.DeleteDraft(c.Request.Context(), tenantID, userID, campaignID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": true})
}

// List godoc
//
//	@ID				listCampaigns
//	@Summary		List campaigns
//	@Tags			campaigns
//	@Produce		json
//	@Param			status		query		string	false	"Filter by status"
//	@Param			search		query		string	false	"Search by name"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	dto.Response{data=[]campaignapp.CampaignListItemResponse}
//	@Router			/campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var req campaignapp.ListCampaignsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.campaignService.List(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// ListMine godoc
//
//	@ID				listMyCampaigns
//	@Summary		List own campaigns
//	@Tags			campaigns
//	@Produce		json
//	@Param			status		query		string	false	"Filter by status"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	dto.Response{data=[]campaignapp.CampaignListItemResponse}
//	@Router			/campaigns/mine [get]
func (h *CampaignHandler) ListMine(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req campaignapp.ListCampaignsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.campaignService.ListMine(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

func (h *CampaignHandler) identity(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
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

func (h *CampaignHandler) target(c *gin.Context) (uuid.UUID, uuid.UUID, uuid.UUID, bool) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, campaignID, true
}

func (h *CampaignHandler) lifecycle(c *gin.Context, apply func(ctx context.Context, tenantID, userID, campaignID uuid.UUID) (*campaignapp.CampaignResponse, error)) {
	tenantID, userID, campaignID, ok := h.target(c)
	if !ok {
		return
	}

	resp, err := apply(c.Request.Context(), tenantID, userID, campaignID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
