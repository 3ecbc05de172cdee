package service

import "errors"

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailNotVerified       = errors.New("email not verified")
	ErrInvalidOrExpiredToken  = errors.New("invalid or expired token")
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrForbidden              = errors.New("forbidden")
	ErrUserNotFound           = errors.New("user not found")
	ErrNotificationNotFound   = errors.New("notification not found")
	ErrMissingFields          = errors.New("missing required fields")
	ErrInvalidEmail           = errors.New("invalid email")
	ErrWeakPassword           = errors.New("password too short")

	ErrKYCNotPending       = errors.New("kyc is not pending review")
	ErrKYCAlreadySubmitted = errors.New("kyc already submitted")
	ErrKYCAlreadyVerified  = errors.New("kyc already verified")
	ErrInvalidKYCDetails   = errors.New("invalid kyc details")
	ErrConcurrentUpdate    = errors.New("concurrent update, retry")
)
