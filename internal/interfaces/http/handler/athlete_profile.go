package handler

import (
	"context"

	profileapp "github.com/nilmarket/backend/internal/application/profile"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AthleteProfileHandler handles athlete profile API endpoints
type AthleteProfileHandler struct {
	BaseHandler
	athleteService *profileapp.AthleteService
}

// NewAthleteProfileHandler creates a new AthleteProfileHandler
func NewAthleteProfileHandler(athleteService *profileapp.AthleteService) *AthleteProfileHandler {
	return &AthleteProfileHandler{
		athleteService: athleteService,
	}
}

// Create godoc
//
//	@ID				createAthleteProfile
//	@Summary		Create athlete profile
//	@Description	Create the caller's athlete profile (one per user)
//	@Tags			athlete-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.CreateAthleteProfileRequest	true	"Profile details"
//	@Success		201		{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		409		{object}	dto.Response	"Profile already exists"
//	@Router			/athlete-profiles [post]
func (h *AthleteProfileHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.CreateAthleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.athleteService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetMine godoc
//
//	@ID				getMyAthleteProfile
//	@Summary		Get own athlete profile
//	@Description	Get the caller's athlete profile with completion breakdown
//	@Tags			athlete-profiles
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/athlete-profiles/me [get]
func (h *AthleteProfileHandler) GetMine(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	resp, err := h.athleteService.GetMine(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get godoc
//
//	@ID				getAthleteProfile
//	@Summary		Get athlete profile
//	@Description	Get an athlete profile by ID
//	@Tags			athlete-profiles
//	@Produce		json
//	@Param			id	path		string	true	"Profile ID"
//	@Success		200	{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/athlete-profiles/{id} [get]
func (h *AthleteProfileHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid profile ID")
		return
	}

	resp, err := h.athleteService.Get(c.Request.Context(), tenantID, profileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateBasics godoc
//
//	@ID				updateAthleteBasics
//	@Summary		Update athlete basics
//	@Description	Update display name, sport, school, division, and graduation year
//	@Tags			athlete-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.UpdateAthleteBasicsRequest	true	"Basics"
//	@Success		200		{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/athlete-profiles/me/basics [put]
func (h *AthleteProfileHandler) UpdateBasics(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.UpdateAthleteBasicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.athleteService.UpdateBasics(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateBio godoc
//
//	@ID				updateAthleteBio
//	@Summary		Update athlete bio
//	@Tags			athlete-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.UpdateBioRequest	true	"Bio"
//	@Success		200		{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/athlete-profiles/me/bio [put]
func (h *AthleteProfileHandler) UpdateBio(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.UpdateBioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.athleteService.UpdateBio(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetContentTags godoc
//
//	@ID				setAthleteContentTags
//	@Summary		Set content tags
//	@Description	Replace the athlete's content tags
//	@Tags			athlete-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.SetContentTagsRequest	true	"Content tags"
//	@Success		200		{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/athlete-profiles/me/content-tags [put]
func (h *AthleteProfileHandler) SetContentTags(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.SetContentTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.athleteService.SetContentTags(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetSocialAccounts godoc
//
//	@ID				setAthleteSocialAccounts
//	@Summary		Set social accounts
//	@Description	Replace the athlete's linked social accounts and follower counts
//	@Tags			athlete-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.SetSocialAccountsRequest	true	"Social accounts"
//	@Success		200		{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/athlete-profiles/me/social-accounts [put]
func (h *AthleteProfileHandler) SetSocialAccounts(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.SetSocialAccountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.athleteService.SetSocialAccounts(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetCompensationFloor godoc
//
//	@ID				setAthleteCompensationFloor
//	@Summary		Set compensation floor
//	@Description	Set the minimum deal amount the athlete will consider
//	@Tags			athlete-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.SetCompensationFloorRequest	true	"Compensation floor"
//	@Success		200		{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/athlete-profiles/me/compensation-floor [put]
func (h *AthleteProfileHandler) SetCompensationFloor(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.SetCompensationFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.athleteService.SetCompensationFloor(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Submit godoc
//
//	@ID				submitAthleteProfile
//	@Summary		Submit athlete profile for review
//	@Description	Submit the profile for compliance review (requires 100% completion)
//	@Tags			athlete-profiles
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		422	{object}	dto.Response	"Profile incomplete"
//	@Router			/athlete-profiles/me/submit [post]
func (h *AthleteProfileHandler) Submit(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	resp, err := h.athleteService.Submit(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
//
//	@ID				listAthleteProfiles
//	@Summary		List athlete profiles
//	@Description	List athlete profiles for the tenant with filtering (review queue)
//	@Tags			athlete-profiles
//	@Produce		json
//	@Param			status		query		string	false	"Filter by status"
//	@Param			search		query		string	false	"Search display name or school"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	dto.Response{data=[]profileapp.AthleteProfileListItemResponse}
//	@Router			/athlete-profiles [get]
func (h *AthleteProfileHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.ListProfilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.athleteService.List(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Approve godoc
//
//	@ID				approveAthleteProfile
//	@Summary		Approve athlete profile
//	@Description	Approve a profile in review, activating it in the marketplace
//	@Tags			athlete-profiles
//	@Produce		json
//	@Param			id	path		string	true	"Profile ID"
//	@Success		200	{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/athlete-profiles/{id}/approve [post]
func (h *AthleteProfileHandler) Approve(c *gin.Context) {
	h.review(c, h.athleteService.Approve)
}

// Reject godoc
//
//	@ID				rejectAthleteProfile
//	@Summary		Reject athlete profile
//	@Tags			athlete-profiles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Profile ID"
//	@Param			request	body		profileapp.RejectProfileRequest	true	"Rejection reason"
//	@Success		200		{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/athlete-profiles/{id}/reject [post]
func (h *AthleteProfileHandler) Reject(c *gin.Context) {
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

	resp, err := h.athleteService.Reject(c.Request.Context(), tenantID, profileID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Suspend godoc
//
//	@ID				suspendAthleteProfile
//	@Summary		Suspend athlete profile
//	@Tags			athlete-profiles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Profile ID"
//	@Param			request	body		profileapp.SuspendProfileRequest	true	"Suspension reason"
//	@Success		200		{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		422		{object}	dto.Response
//	@Router			/athlete-profiles/{id}/suspend [post]
func (h *AthleteProfileHandler) Suspend(c *gin.Context) {
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

	resp, err := h.athleteService.Suspend(c.Request.Context(), tenantID, profileID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reinstate godoc
//
//	@ID				reinstateAthleteProfile
//	@Summary		Reinstate suspended athlete profile
//	@Tags			athlete-profiles
//	@Produce		json
//	@Param			id	path		string	true	"Profile ID"
//	@Success		200	{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/athlete-profiles/{id}/reinstate [post]
func (h *AthleteProfileHandler) Reinstate(c *gin.Context) {
	h.review(c, h.athleteService.Reinstate)
}

// CreateMediaAsset godoc
//
//	@ID				createAthleteMediaAsset
//	@Summary		Register media kit upload
//	@Description	Register an upload intent and return a presigned upload URL
//	@Tags			athlete-profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		profileapp.CreateMediaAssetRequest	true	"Asset details"
//	@Success		201		{object}	dto.Response{data=profileapp.UploadIntentResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/athlete-profiles/me/media [post]
func (h *AthleteProfileHandler) CreateMediaAsset(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req profileapp.CreateMediaAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.athleteService.CreateMediaAsset(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ConfirmMediaAsset godoc
//
//	@ID				confirmAthleteMediaAsset
//	@Summary		Confirm media kit upload
//	@Description	Mark an uploaded asset ready after the client finishes its upload
//	@Tags			athlete-profiles
//	@Accept			json
//	@Produce		json
//	@Param			assetId	path		string								true	"Asset ID"
//	@Param			request	body		profileapp.ConfirmMediaAssetRequest	true	"Upload result"
//	@Success		200		{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		404		{object}	dto.Response
//	@Router			/athlete-profiles/me/media/{assetId}/confirm [post]
func (h *AthleteProfileHandler) ConfirmMediaAsset(c *gin.Context) {
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

	resp, err := h.athleteService.ConfirmMediaAsset(c.Request.Context(), tenantID, userID, assetID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveMediaAsset godoc
//
//	@ID				removeAthleteMediaAsset
//	@Summary		Remove media kit asset
//	@Tags			athlete-profiles
//	@Produce		json
//	@Param			assetId	path		string	true	"Asset ID"
//	@Success		200		{object}	dto.Response{data=profileapp.AthleteProfileResponse}
//	@Failure		404		{object}	dto.Response
//	@Router			/athlete-profiles/me/media/{assetId} [delete]
func (h *AthleteProfileHandler) RemoveMediaAsset(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	assetID, err := uuid.Parse(c.Param("assetId"))
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	resp, err := h.athleteService.RemoveMediaAsset(c.Request.Context(), tenantID, userID, assetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// identity extracts tenant and user from the request context
func (h *AthleteProfileHandler) identity(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
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

// review handles the reason-less review transitions
func (h *AthleteProfileHandler) review(c *gin.Context, apply func(ctx context.Context, tenantID, profileID uuid.UUID) (*profileapp.AthleteProfileResponse, error)) {
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
