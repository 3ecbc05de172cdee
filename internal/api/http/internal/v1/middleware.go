package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/investhub/backend/internal/service"
	"github.com/investhub/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	userCtx             = "userId"
	sessionTokenCtx     = "sessionToken"
)

func (h *Handler) userIdentityMiddleware(c *gin.Context) {
	token, err := parseAuthHeader(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	id, err := h.services.Sessions.Validate(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, service.ErrUnauthenticated) {
			logger.Error("validate session failed", zap.Error(err))
			errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
			return
		}
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	c.Set(userCtx, id)
	c.Set(sessionTokenCtx, token)
}

// adminMiddleware must run after userIdentityMiddleware.
func (h *Handler) adminMiddleware(c *gin.Context) {
	id, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	if err := h.services.Admin.Authorize(c.Request.Context(), id); err != nil {
		if !errors.Is(err, service.ErrForbidden) {
			logger.Error("authorize admin failed", zap.Error(err))
			errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
			return
		}
		errorResponse(c, http.StatusForbidden, ForbiddenCode)
		return
	}
}

func parseAuthHeader(c *gin.Context) (string, error) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return "", errors.New("empty auth header")
	}

	headerParts := strings.Split(header, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return "", errors.New("invalid auth header")
	}

	if len(headerParts[1]) == 0 {
		return "", errors.New("token is empty")
	}

	return headerParts[1], nil
}

func getUserUUID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(userCtx)
	if !ok {
		return uuid.Nil, errors.New("user id not found")
	}

	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user id has unexpected type")
	}

	return id, nil
}

func getSessionToken(c *gin.Context) string {
	return c.GetString(sessionTokenCtx)
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, InvalidIDCode)
		return uuid.Nil, false
	}
	return id, true
}
