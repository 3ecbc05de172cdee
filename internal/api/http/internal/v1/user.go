package v1

import (
	"net/http"

	"github.com/investhub/backend/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initUsersRoutes(api *gin.RouterGroup) {
	users := api.Group("/users", h.userIdentityMiddleware)
	users.GET("/me", h.getMe)
	users.PUT("/me", h.updateMe)
	users.POST("/me/password", h.changePassword)
	users.GET("/:id", h.getUser)
}

type updateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,max=64"`
	LastName  string `json:"last_name" binding:"required,max=64"`
	Country   string `json:"country" binding:"required,country"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// @Summary Current user
// @Tags Users
// @ModuleID getMe
// @Produce  json
// @Success 200 {object} userResponse
// @Failure 401 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me [get]
func (h *Handler) getMe(c *gin.Context) {
	id, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	user, err := h.services.Users.GetOneByID(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// @Summary User by id
// @Tags Users
// @Description Own record, or any record for admins
// @ModuleID getUser
// @Produce  json
// @Param id path string true "user id"
// @Success 200 {object} userResponse
// @Failure 403 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Security UserAuth
// @Router /users/{id} [get]
func (h *Handler) getUser(c *gin.Context) {
	callerID, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if id != callerID {
		if err := h.services.Admin.Authorize(c.Request.Context(), callerID); err != nil {
			serviceErrorResponse(c, err)
			return
		}
	}

	user, err := h.services.Users.GetOneByID(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// @Summary Update profile
// @Tags Users
// @ModuleID updateMe
// @Accept  json
// @Produce  json
// @Param input body updateProfileRequest true "profile"
// @Success 200 {object} userResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 409 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me [put]
func (h *Handler) updateMe(c *gin.Context) {
	id, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	user, err := h.services.Users.UpdateProfile(c.Request.Context(), id, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Country:   req.Country,
	})
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// @Summary Change password
// @Tags Users
// @Description Signs out every session of the user
// @ModuleID changePassword
// @Accept  json
// @Param input body changePasswordRequest true "passwords"
// @Success 204
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me/password [post]
func (h *Handler) changePassword(c *gin.Context) {
	id, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Users.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
