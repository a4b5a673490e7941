package middleware

import (
	"context"
	"net/http"

	accessapp "github.com/nilmarket/backend/internal/application/access"
	"github.com/nilmarket/backend/internal/domain/access"
	"github.com/nilmarket/backend/internal/domain/identity"
	"github.com/nilmarket/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessDecider evaluates a route requirement for a caller
type AccessDecider interface {
	Decide(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, roles []string, req accessapp.DecideRequest) (*accessapp.DecisionResponse, error)
}

// RoleCodeResolver maps role IDs from the token to role codes
type RoleCodeResolver interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Role, error)
}

// AccessGateConfig holds configuration for the access gate middleware
type AccessGateConfig struct {
	Decider  AccessDecider
	RoleRepo RoleCodeResolver
	Logger   *zap.Logger
}

// AccessGate enforces a route requirement before the handler runs.
// Allow passes through, redirect returns 403 with the target so the
// client can route the user, deny returns 403 with a reason.
func AccessGate(cfg AccessGateConfig, requirement accessapp.DecideRequest) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := GetTenantUUID(c)
		if err == nil && tenantID == uuid.Nil {
			if raw := GetJWTTenantID(c); raw != "" {
				tenantID, err = uuid.Parse(raw)
			}
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeValidationFormat, "Invalid tenant ID"))
			return
		}

		var userID *uuid.UUID
		var roles []string
		if raw := GetJWTUserID(c); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid user identity"))
				return
			}
			userID = &id
			roles = resolveRoleCodes(c, cfg.RoleRepo)
		}

		decision, err := cfg.Decider.Decide(c.Request.Context(), tenantID, userID, roles, requirement)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("access decision failed",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrCodeInternal, "Access check failed"))
			return
		}

		switch access.DecisionKind(decision.Kind) {
		case access.DecisionAllow:
			c.Next()
		case access.DecisionRedirect:
			c.Header("X-Redirect-Target", decision.Target)
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, decision.Reason))
		default:
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, decision.Reason))
		}
	}
}

func resolveRoleCodes(c *gin.Context, roleRepo RoleCodeResolver) []string {
	if roleRepo == nil {
		return nil
	}

	rawIDs := GetJWTRoleIDs(c)
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := roleRepo.FindByIDs(c.Request.Context(), ids)
	if err != nil {
		return nil
	}

	codes := make([]string, 0, len(found))
	for _, role := range found {
		codes = append(codes, role.Code)
	}
	return codes
}
