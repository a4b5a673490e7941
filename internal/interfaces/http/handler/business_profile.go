package handler

import (
	"context"

	profileapp "github.com/nilmarket/backend/internal/application/profile"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BusinessProfileHandler handles business profile API endpoints
type BusinessProfileHandler struct {
	BaseHandler
	businessService *profileapp.BusinessService
}

// NewBusinessProfileHandler creates a new BusinessProfileHandler
func NewBusinessProfileHandler(businessService *profileapp.BusinessService) *BusinessProfileHandler {
	return &BusinessProfileHandler{
		businessService: businessService,
	}
}

// Create godoc
//
//	@ID				createBusinessProfile
//	@Summary		Create business profile
//	@Description	Create the caller's business profile (one per user)
//	@Tags			business-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.CreateBusinessProfileRequest	true	"Profile details"
//	@Success		201		{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		409		{object}	dto.Response	"Profile already exists"
//	@Router			/business-profiles [post]
func (h *BusinessProfileHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.CreateBusinessProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.businessService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetMine godoc
//
//	@ID				getMyBusinessProfile
//	@Summary		Get own business profile
//	@Tags			business-profiles
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/business-profiles/me [get]
func (h *BusinessProfileHandler) GetMine(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	resp, err := h.businessService.GetMine(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get godoc
//
//	@ID				getBusinessProfile
//	@Summary		Get business profile
//	@Tags			business-profiles
//	@Produce		json
//	@Param			id	path		string	true	"Profile ID"
//	@Success		200	{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/business-profiles/{id} [get]
func (h *BusinessProfileHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid profile ID")
		return
	}

	resp, err := h.businessService.Get(c.Request.Context(), tenantID, profileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateCompany godoc
//
//	@ID				updateBusinessCompany
//	@Summary		Update company details
//	@Description	Update company name, industry, and website
//	@Tags			business-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.UpdateBusinessCompanyRequest	true	"Company details"
//	@Success		200		{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/business-profiles/me/company [put]
func (h *BusinessProfileHandler) UpdateCompany(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.UpdateBusinessCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.businessService.UpdateCompany(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateBio godoc
//
//	@ID				updateBusinessBio
//	@Summary		Update business bio
//	@Tags			business-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.UpdateBioRequest	true	"Bio"
//	@Success		200		{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/business-profiles/me/bio [put]
func (h *BusinessProfileHandler) UpdateBio(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.UpdateBioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.businessService.UpdateBio(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetTargeting godoc
//
//	@ID				setBusinessTargeting
//	@Summary		Set targeting preferences
//	@Description	Set the sports and regions the business wants to reach
//	@Tags			business-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.SetTargetingRequest	true	"Targeting"
//	@Success		200		{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/business-profiles/me/targeting [put]
func (h *BusinessProfileHandler) SetTargeting(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.SetTargetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.businessService.SetTargeting(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetCampaignGoals godoc
//
//	@ID				setBusinessCampaignGoals
//	@Summary		Set campaign goals
//	@Tags			business-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.SetCampaignGoalsRequest	true	"Campaign goals"
//	@Success		200		{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/business-profiles/me/campaign-goals [put]
func (h *BusinessProfileHandler) SetCampaignGoals(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.SetCampaignGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.businessService.SetCampaignGoals(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetBudgetBand godoc
//
//	@ID				setBusinessBudgetBand
//	@Summary		Set budget band
//	@Description	Set the minimum and maximum per-deal budget
//	@Tags			business-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.SetBudgetBandRequest	true	"Budget band"
//	@Success		200		{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/business-profiles/me/budget [put]
func (h *BusinessProfileHandler) SetBudgetBand(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.SetBudgetBandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.businessService.SetBudgetBand(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Submit godoc
//
//	@ID				submitBusinessProfile
//	@Summary		Submit business profile for review
//	@Tags			business-profiles
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		422	{object}	dto.Response	"Profile incomplete"
//	@Router			/business-profiles/me/submit [post]
func (h *BusinessProfileHandler) Submit(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	resp, err := h.businessService.Submit(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
//
//	@ID				listBusinessProfiles
//	@Summary		List business profiles
//	@Tags			business-profiles
//	@Produce		json
//	@Param			status		query		string	false	"Filter by status"
//	@Param			search		query		string	false	"Search company name or industry"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	dto.Response{data=[]profileapp.BusinessProfileListItemResponse}
//	@Router			/business-profiles [get]
func (h *BusinessProfileHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.ListProfilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.businessService.List(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Approve godoc
//
//	@ID				approveBusinessProfile
//	@Summary		Approve business profile
//	@Tags			business-profiles
//	@Produce		json
//	@Param			id	path		string	true	"Profile ID"
//	@Success		200	{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/business-profiles/{id}/approve [post]
func (h *BusinessProfileHandler) Approve(c *gin.Context) {
	h.review(c, h.businessService.Approve)
}

// Reject godoc
//
//	@ID				rejectBusinessProfile
//	@Summary		Reject business profile
//	@Tags			business-profiles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Profile ID"
//	@Param			request	body		profileapp.RejectProfileRequest	true	"Rejection reason"
//	@Success		200		{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/business-profiles/{id}/reject [post]
func (h *BusinessProfileHandler) Reject(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid profile ID")
		return
	}

	var req profileapp.RejectProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.businessService.Reject(c.Request.Context(), tenantID, profileID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Suspend godoc
//
//	@ID				suspendBusinessProfile
//	@Summary		Suspend business profile
//	@Tags			business-profiles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Profile ID"
//	@Param			request	body		profileapp.SuspendProfileRequest	true	"Suspension reason"
//	@Success		200		{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/business-profiles/{id}/suspend [post]
func (h *BusinessProfileHandler) Suspend(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid profile ID")
		return
	}

	var req profileapp.SuspendProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.businessService.Suspend(c.Request.Context(), tenantID, profileID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reinstate godoc
//
//	@ID				reinstateBusinessProfile
//	@Summary		Reinstate suspended business profile
//	@Tags			business-profiles
//	@Produce		json
//	@Param			id	path		string	true	"Profile ID"
//	@Success		200	{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/business-profiles/{id}/reinstate [post]
func (h *BusinessProfileHandler) Reinstate(c *gin.Context) {
	h.review(c, h.businessService.Reinstate)
}

// CreateMediaAsset godoc
//
//	@ID				createBusinessMediaAsset
//	@Summary		Register media kit upload
//	@Tags			business-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.CreateMediaAssetRequest	true	"Asset details"
//	@Success		201		{object}	dto.Response{data=profileapp.UploadIntentResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/business-profiles/me/media [post]
func (h *BusinessProfileHandler) CreateMediaAsset(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.CreateMediaAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.businessService.CreateMediaAsset(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ConfirmMediaAsset godoc
//
//	@ID				confirmBusinessMediaAsset
//	@Summary		Confirm media kit upload
//	@Tags			business-profiles
//	@Accept			json
//	@Produce		json
//	@Param			assetId	path		string								true	"Asset ID"
//	@Param			request	body		profileapp.ConfirmMediaAssetRequest	true	"Upload result"
//	@Success		200		{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		404		{object}	dto.Response
//	@Router			/business-profiles/me/media/{assetId}/confirm [post]
func (h *BusinessProfileHandler) ConfirmMediaAsset(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	assetID, err := uuid.Parse(c.Param("assetId"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	var req profileapp.ConfirmMediaAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.businessService.ConfirmMediaAsset(c.Request.Context(), tenantID, userID, assetID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveMediaAsset godoc
//
//	@ID				removeBusinessMediaAsset
//	@Summary		Remove media kit asset
//	@Tags			business-profiles
//	@Produce		json
//	@Param			assetId	path		string	true	"Asset ID"
//	@Success		200		{object}	dto.Response{data=profileapp.BusinessProfileResponse}
//	@Failure		404		{object}	dto.Response
//	@Router			/business-profiles/me/media/{assetId} [delete]
func (h *BusinessProfileHandler) RemoveMediaAsset(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	assetID, err := uuid.Parse(c.Param("assetId"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	resp, err := h.businessService.RemoveMediaAsset(c.Request.Context(), tenantID, userID, assetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *BusinessProfileHandler) identity(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
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

func (h *BusinessProfileHandler) review(c *gin.Context, apply func(ctx context.Context, tenantID, profileID uuid.UUID) (*profileapp.BusinessProfileResponse, error)) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid profile ID")
		return
	}

	resp, err := apply(c.Request.Context(), tenantID, profileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
