package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/investhub/backend/internal/service"
	"github.com/investhub/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func errorResponse(c *gin.Context, status int, code ErrorCode) {
	c.AbortWithStatusJSON(status, getErrorStruct(code))
}

var serviceErrors = []struct {
	err    error
	status int
	code   ErrorCode
}{
	{service.ErrEmailAlreadyRegistered, http.StatusConflict, EmailAlreadyRegisteredCode},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, InvalidCredentialsCode},
	{service.ErrEmailNotVerified, http.StatusForbidden, EmailNotVerifiedCode},
	{service.ErrInvalidOrExpiredToken, http.StatusBadRequest, InvalidOrExpiredTokenCode},
	{service.ErrUnauthenticated, http.StatusUnauthorized, UnauthenticatedCode},
	{service.ErrForbidden, http.StatusForbidden, ForbiddenCode},
	{service.ErrUserNotFound, http.StatusNotFound, UserNotFoundCode},
	{service.ErrNotificationNotFound, http.StatusNotFound, NotificationNotFoundCode},
	{service.ErrMissingFields, http.StatusBadRequest, MissingFieldsCode},
	{service.ErrInvalidEmail, http.StatusBadRequest, InvalidEmailCode},
	{service.ErrWeakPassword, http.StatusBadRequest, WeakPasswordCode},
	{service.ErrConcurrentUpdate, http.StatusConflict, ConcurrentUpdateCode},
	{service.ErrKYCNotPending, http.StatusConflict, KYCNotPendingCode},
	{service.ErrKYCAlreadySubmitted, http.StatusConflict, KYCAlreadySubmittedCode},
	{service.ErrKYCAlreadyVerified, http.StatusConflict, KYCAlreadyVerifiedCode},
	{service.ErrInvalidKYCDetails, http.StatusBadRequest, InvalidKYCDetailsCode},
}

// serviceErrorResponse maps service sentinels to their status; anything else is a 500.
func serviceErrorResponse(c *gin.Context, err error) {
	for _, e := range serviceErrors {
		if errors.Is(err, e.err) {
			errorResponse(c, e.status, e.code)
			return
		}
	}

	logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
}

func validationErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		errorResponse(c, http.StatusBadRequest, ValidationCode)
		return
	}

	out := make([]ValidationError, len(verr))
	for i, ferr := range verr {
		out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
	}
	response := ValidationErrorStruct{
		ErrorCode:    ValidationCode,
		ErrorMessage: string(errorMessages[ValidationCode]),
	}
	response.Errors = out
	c.AbortWithStatusJSON(http.StatusBadRequest, response)
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return "Must be a valid id"
	case "numeric":
		return "Must contain digits only"
	case "len":
		return fmt.Sprintf("Must be exactly %v characters long", value)
	case "min":
		return fmt.Sprintf("Must be at least %v characters long", value)
	case "max":
		return fmt.Sprintf("Must be at most %v characters long", value)
	case "country":
		return "Invalid country name"
	case "pastdate":
		return "Must be a past date in YYYY-MM-DD format"
	}
	return tag
}
