package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

func (h *Handler) initAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin", h.userIdentityMiddleware, h.adminMiddleware)
	{
		admin.GET("/kyc-requests", h.listKYCRequests)
		admin.POST("/kyc/:userId/approve", h.approveKYC)
		admin.POST("/kyc/:userId/reject", h.rejectKYC)
		admin.GET("/kyc/:userId/history", h.kycHistory)
		admin.GET("/users", h.listUsers)
		admin.GET("/analytics", h.analytics)
	}
}

type pendingKYCResponse struct {
	User       userResponse          `json:"user"`
	Submission kycSubmissionResponse `json:"submission"`
} // @name PendingKYC

type rejectKYCRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type usersPageResponse struct {
	Users []userResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
} // @name UsersPage

type analyticsResponse struct {
	TotalUsers    int64            `json:"total_users"`
	EmailVerified int64            `json:"email_verified"`
	KYCVerified   int64            `json:"kyc_verified"`
	KYCPending    int64            `json:"kyc_pending"`
	ByCountry     map[string]int64 `json:"by_country"`
} // @name Analytics

// @Summary Pending KYC submissions
// @Tags Admin
// @Description Submissions waiting for review, oldest first, with short-lived document links
// @ModuleID listKYCRequests
// @Produce  json
// @Success 200 {array} pendingKYCResponse
// @Failure 403 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/kyc-requests [get]
func (h *Handler) listKYCRequests(c *gin.Context) {
	pending, err := h.services.KYC.ListPending(c.Request.Context())
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	res := make([]pendingKYCResponse, 0, len(pending))
	for _, p := range pending {
		submission := newKYCSubmissionResponse(p.Submission)
		submission.IDFront.URL = p.IDFrontURL
		submission.IDBack.URL = p.IDBackURL
		submission.Selfie.URL = p.SelfieURL

		res = append(res, pendingKYCResponse{
			User:       newUserResponse(p.User),
			Submission: submission,
		})
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Approve KYC
// @Tags Admin
// @ModuleID approveKYC
// @Produce  json
// @Param userId path string true "user id"
// @Success 200 {object} userResponse
// @Failure 404 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/kyc/{userId}/approve [post]
func (h *Handler) approveKYC(c *gin.Context) {
	adminID, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}

	user, err := h.services.KYC.Approve(c.Request.Context(), userID, adminID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// @Summary Reject KYC
// @Tags Admin
// @Description The body is optional; an empty reason is stored as "No reason provided"
// @ModuleID rejectKYC
// @Accept  json
// @Produce  json
// @Param userId path string true "user id"
// @Param input body rejectKYCRequest false "reason"
// @Success 200 {object} userResponse
// @Failure 404 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/kyc/{userId}/reject [post]
func (h *Handler) rejectKYC(c *gin.Context) {
	adminID, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}

	var req rejectKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		validationErrorResponse(c, err)
		return
	}

	user, err := h.services.KYC.Reject(c.Request.Context(), userID, adminID, req.Reason)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// @Summary KYC history
// @Tags Admin
// @Description Every submission of the user, newest first
// @ModuleID kycHistory
// @Produce  json
// @Param userId path string true "user id"
// @Success 200 {array} kycSubmissionResponse
// @Failure 404 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/kyc/{userId}/history [get]
func (h *Handler) kycHistory(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}

	records, err := h.services.KYC.History(c.Request.Context(), userID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	res := make([]kycSubmissionResponse, 0, len(records))
	for _, r := range records {
		res = append(res, newKYCSubmissionResponse(r))
	}

	c.JSON(http.StatusOK, res)
}

// @Summary List users
// @Tags Admin
// @ModuleID listUsers
// @Produce  json
// @Param page query int false "page, starting at 1"
// @Param limit query int false "page size, at most 100"
// @Success 200 {object} usersPageResponse
// @Failure 403 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/users [get]
func (h *Handler) listUsers(c *gin.Context) {
	page := max(queryInt(c, "page", defaultPage), 1)
	limit := queryInt(c, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	users, total, err := h.services.Admin.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	res := usersPageResponse{
		Users: make([]userResponse, 0, len(users)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range users {
		res.Users = append(res.Users, newUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Analytics
// @Tags Admin
// @ModuleID analytics
// @Produce  json
// @Success 200 {object} analyticsResponse
// @Failure 403 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/analytics [get]
func (h *Handler) analytics(c *gin.Context) {
	stats, err := h.services.Admin.Analytics(c.Request.Context())
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	byCountry := stats.ByCountry
	if byCountry == nil {
		byCountry = map[string]int64{}
	}

	c.JSON(http.StatusOK, analyticsResponse{
		TotalUsers:    stats.TotalUsers,
		EmailVerified: stats.EmailVerified,
		KYCVerified:   stats.KYCVerified,
		KYCPending:    stats.KYCPending,
		ByCountry:     byCountry,
	})
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

