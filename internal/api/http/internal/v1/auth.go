package v1

import (
	"net/http"
	"time"

	"github.com/investhub/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/verify-email", h.verifyEmail)
	auth.POST("/resend-verification", h.resendVerification)
	auth.POST("/login", h.login)
	auth.POST("/logout", h.userIdentityMiddleware, h.logout)
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"required,max=64"`
	LastName  string `json:"last_name" binding:"required,max=64"`
	Country   string `json:"country" binding:"required,country"`
}

type registerResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

type verifyEmailRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Code   string `json:"code" binding:"required,len=6,numeric"`
}

type resendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func newAuthResponse(res *service.AuthResult) authResponse {
	return authResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      newUserResponse(res.User),
	}
}

// @Summary Register
// @Tags Auth
// @Description Creates an unverified account and e-mails a verification code
// @ModuleID register
// @Accept  json
// @Produce  json
// @Param input body registerRequest true "account"
// @Success 201 {object} registerResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 409 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	id, err := h.services.Users.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Country:   req.Country,
	})
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{UserID: id})
}

// @Summary Verify email
// @Tags Auth
// @Description Confirms the e-mailed code and opens a session
// @ModuleID verifyEmail
// @Accept  json
// @Produce  json
// @Param input body verifyEmailRequest true "code"
// @Success 200 {object} authResponse
// @Failure 400 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/verify-email [post]
func (h *Handler) verifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, InvalidIDCode)
		return
	}

	res, err := h.services.Users.VerifyEmail(c.Request.Context(), userID, req.Code)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(res))
}

// @Summary Resend verification code
// @Tags Auth
// @Description Always accepted, whether or not the address is registered
// @ModuleID resendVerification
// @Accept  json
// @Param input body resendVerificationRequest true "email"
// @Success 202
// @Failure 400 {object} ValidationErrorStruct
// @Router /auth/resend-verification [post]
func (h *Handler) resendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Users.ResendVerification(c.Request.Context(), req.Email); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// @Summary Login
// @Tags Auth
// @ModuleID login
// @Accept  json
// @Produce  json
// @Param input body loginRequest true "credentials"
// @Success 200 {object} authResponse
// @Failure 401 {object} ErrorStruct
// @Failure 403 {object} ErrorStruct
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	res, err := h.services.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(res))
}

// @Summary Logout
// @Tags Auth
// @ModuleID logout
// @Success 204
// @Failure 401 {object} ErrorStruct
// @Security UserAuth
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	if err := h.services.Users.Logout(c.Request.Context(), getSessionToken(c)); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
