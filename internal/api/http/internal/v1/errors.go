package v1

// Errors
const (
	UnknownErrorCode = 0
	ValidationCode   = 6000

	EmailAlreadyRegisteredCode = 1001
	UserNotFoundCode           = 1002
	InvalidCredentialsCode     = 1003
	EmailNotVerifiedCode       = 1004
	InvalidOrExpiredTokenCode  = 1005
	UnauthenticatedCode        = 1006
	ForbiddenCode              = 1007
	InvalidEmailCode           = 1008
	WeakPasswordCode           = 1009
	MissingFieldsCode          = 1010
	ConcurrentUpdateCode       = 1011
	InvalidIDCode              = 1012

	KYCNotPendingCode           = 2001
	KYCAlreadySubmittedCode     = 2002
	KYCAlreadyVerifiedCode      = 2003
	UploadTooLargeCode          = 2004
	UnsupportedDocumentTypeCode = 2005
	InvalidKYCDetailsCode       = 2006

	NotificationNotFoundCode = 3001
)

var errorMessages = map[ErrorCode]ErrorMessage{
	UnknownErrorCode: "unknown error",
	ValidationCode:   "validation error",

	EmailAlreadyRegisteredCode: "email already registered",
	UserNotFoundCode:           "user not found",
	InvalidCredentialsCode:     "invalid email or password",
	EmailNotVerifiedCode:       "email not verified",
	InvalidOrExpiredTokenCode:  "invalid or expired verification code",
	UnauthenticatedCode:        "unauthenticated",
	ForbiddenCode:              "forbidden",
	InvalidEmailCode:           "invalid email",
	WeakPasswordCode:           "password must be at least 8 characters",
	MissingFieldsCode:          "missing required fields",
	ConcurrentUpdateCode:       "resource was modified concurrently, retry",
	InvalidIDCode:              "invalid id",

	KYCNotPendingCode:           "kyc is not pending review",
	KYCAlreadySubmittedCode:     "kyc already submitted",
	KYCAlreadyVerifiedCode:      "kyc already verified",
	UploadTooLargeCode:          "upload too large",
	UnsupportedDocumentTypeCode: "unsupported document type",
	InvalidKYCDetailsCode:       "invalid kyc details",

	NotificationNotFoundCode: "notification not found",
}

type ErrorCode int
type ErrorMessage string

type ErrorStruct struct {
	ErrorCode    `json:"error_code"`
	ErrorMessage `json:"error_message"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	Errors       []ValidationError `json:"validation_errors"`
} // @name ValidationErrorStruct

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

func getErrorStruct(code ErrorCode) *ErrorStruct {
	msg, ok := errorMessages[code]
	if !ok {
		code, msg = UnknownErrorCode, errorMessages[UnknownErrorCode]
	}

	return &ErrorStruct{
		ErrorCode:    code,
		ErrorMessage: msg,
	}
}
