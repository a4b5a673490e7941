package handler

import (
	"strconv"

	matchingapp "github.com/nilmarket/backend/internal/application/matching"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MatchHandler handles athlete matching API endpoints
type MatchHandler struct {
	BaseHandler
	matchService *matchingapp.MatchService
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(matchService *matchingapp.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// Run godoc
//
//	@ID				runMatch
//	@Summary		Run athlete match
//	@Description	Score athletes against a campaign's targeting. Uses the external matching API when available, the local scorer otherwise.
//	@Tags			matching
//	@Accept			json
//	@Produce		json
//	@Param			request	body		matchingapp.RunMatchRequest	true	"Match parameters"
//	@Success		201		{object}	dto.Response{data=matchingapp.MatchRunResponse}
//	@Failure		422		{object}	dto.Response	"Campaign not matchable"
//	@Failure		429		{object}	dto.Response	"Daily match quota exceeded"
//	@Router			/matches/run [post]
func (h *MatchHandler) Run(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req matchingapp.RunMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.matchService.Run(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
//
//	@ID				getMatchRun
//	@Summary		Get match run
//	@Tags			matching
//	@Produce		json
//	@Param			id	path		string	true	"Run ID"
//	@Success		200	{object}	dto.Response{data=matchingapp.MatchRunResponse}
//	@Failure		404	{object}	dto.Response
//	@Router			/matches/{id} [get]
func (h *MatchHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID")
		return
	}

	resp, err := h.matchService.Get(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetLatest godoc
//
//	@ID				getLatestMatchRun
//	@Summary		Get latest completed match run for a campaign
//	@Tags			matching
//	@Produce		json
//	@Param			id			path		string	true	"Campaign ID"
//	@Success		200			{object}	dto.Response{data=matchingapp.MatchRunResponse}
//	@Failure		404			{object}	dto.Response	"No completed run yet"
//	@Router			/campaigns/{id}/matches/latest [get]
func (h *MatchHandler) GetLatest(c *gin.Context) {
	tenantID, campaignID, ok := h.campaign(c)
	if !ok {
		return
	}

	resp, err := h.matchService.GetLatest(c.Request.Context(), tenantID, campaignID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByCampaign godoc
//
//	@ID				listMatchRuns
//	@Summary		List match runs for a campaign
//	@Tags			matching
//	@Produce		json
//	@Param			id			path		string	true	"Campaign ID"
//	@Param			page		query		int		false	"Page number"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	dto.Response{data=[]matchingapp.MatchRunResponse}
//	@Router			/campaigns/{id}/matches [get]
func (h *MatchHandler) ListByCampaign(c *gin.Context) {
	tenantID, campaignID, ok := h.campaign(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, err := h.matchService.ListByCampaign(c.Request.Context(), tenantID, campaignID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

func (h *MatchHandler) identity(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
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

func (h *MatchHandler) campaign(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, false
	}
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, campaignID, true
}
