package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initNotificationsRoutes(api *gin.RouterGroup) {
	notifications := api.Group("/notifications", h.userIdentityMiddleware)
	notifications.GET("", h.listNotifications)
	notifications.POST("/:id/read", h.markNotificationRead)
}

// @Summary Notifications
// @Tags Notifications
// @Description Newest first
// @ModuleID listNotifications
// @Produce  json
// @Success 200 {array} notificationResponse
// @Failure 401 {object} ErrorStruct
// @Security UserAuth
// @Router /notifications [get]
func (h *Handler) listNotifications(c *gin.Context) {
	id, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	notifications, err := h.services.Notifications.List(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	res := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		res = append(res, notificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Mark notification read
// @Tags Notifications
// @ModuleID markNotificationRead
// @Param id path string true "notification id"
// @Success 204
// @Failure 404 {object} ErrorStruct
// @Security UserAuth
// @Router /notifications/{id}/read [post]
func (h *Handler) markNotificationRead(c *gin.Context) {
	userID, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.Notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
