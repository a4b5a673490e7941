package handler

import (
	accessapp "github.com/nilmarket/backend/internal/application/access"
	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccessHandler handles route access decision endpoints
type AccessHandler struct {
	BaseHandler
	accessService *accessapp.AccessService
	roleRepo      identity.RoleRepository
}

// NewAccessHandler creates a new AccessHandler
func NewAccessHandler(accessService *accessapp.AccessService, roleRepo identity.RoleRepository) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
		roleRepo:      roleRepo,
	}
}

// Decide godoc
//
//	@ID				decideAccess
//	@Summary		Evaluate route access
//	@Description	Evaluate whether the caller may enter a route with the given requirement. Works for anonymous callers too.
//	@Tags			access
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accessapp.DecideRequest	true	"Route requirement"
//	@Success		200		{object}	dto.Response{data=accessapp.DecisionResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/access/route-decision [post]
func (h *AccessHandler) Decide(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req accessapp.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var userID *uuid.UUID
	var roles []string
	if raw := middleware.GetJWTUserID(c); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Unauthorized(c, "Invalid user identity")
			return
		}
		userID = &id

		roles, err = h.resolveRoleCodes(c)
		if err != nil {
			h.HandleError(c, err)
			return
		}
	}

	resp, err := h.accessService.Decide(c.Request.Context(), tenantID, userID, roles, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// resolveRoleCodes maps the token's role IDs to role codes.
// Unknown IDs are skipped rather than failing the whole check.
func (h *AccessHandler) resolveRoleCodes(c *gin.Context) ([]string, error) {
	rawIDs := middleware.GetJWTRoleIDs(c)
	if len(rawIDs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := h.roleRepo.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(found))
	for _, role := range found {
		codes = append(codes, role.Code)
	}
	return codes, nil
}
