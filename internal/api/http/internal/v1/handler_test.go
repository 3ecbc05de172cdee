package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/investhub/backend/internal/config"
	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/service"
	"github.com/investhub/backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testToken = "session-token"

type testServer struct {
	router        *gin.Engine
	sessions      *mockSessions
	users         *mockUsers
	kyc           *mockKYC
	admin         *mockAdmin
	notifications *mockNotifications
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.RegisterGinValidator()

	ts := &testServer{
		sessions:      &mockSessions{},
		users:         &mockUsers{},
		kyc:           &mockKYC{},
		admin:         &mockAdmin{},
		notifications: &mockNotifications{},
	}
	t.Cleanup(func() {
		ts.sessions.AssertExpectations(t)
		ts.users.AssertExpectations(t)
		ts.kyc.AssertExpectations(t)
		ts.admin.AssertExpectations(t)
		ts.notifications.AssertExpectations(t)
	})

	services := &service.Services{
		Sessions:      ts.sessions,
		Users:         ts.users,
		KYC:           ts.kyc,
		Admin:         ts.admin,
		Notifications: ts.notifications,
	}
	cfg := &config.Config{HttpServer: config.HttpServer{MaxUploadSize: 1 << 20}}

	ts.router = gin.New()
	NewHandler(services, cfg).Init(ts.router.Group("/api"))

	return ts
}

// signIn makes testToken resolve to id.
func (ts *testServer) signIn(id uuid.UUID) {
	ts.sessions.On("Validate", mock.Anything, testToken).Return(id, nil)
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(authorizationHeader, "Bearer "+testToken)

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorCode {
	t.Helper()
	var body struct {
		ErrorCode ErrorCode `json:"error_code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.ErrorCode
}

func testUser(id uuid.UUID) *domain.User {
	return &domain.User{
		ID:        id,
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Country:   "Nigeria",
		Role:      domain.RoleUser,
		KYCStatus: domain.KYCStatusNone,
		KYC:       domain.KYCNone{},
	}
}

func TestUserIdentityMiddleware(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		ts := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, ErrorCode(UnauthenticatedCode), decodeError(t, rec))
	})

	t.Run("unknown session", func(t *testing.T) {
		ts := newTestServer(t)
		ts.sessions.On("Validate", mock.Anything, testToken).Return(uuid.Nil, service.ErrUnauthenticated)

		rec := ts.do(http.MethodGet, "/api/v1/users/me", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("session store down", func(t *testing.T) {
		ts := newTestServer(t)
		ts.sessions.On("Validate", mock.Anything, testToken).Return(uuid.Nil, errors.New("redis down"))

		rec := ts.do(http.MethodGet, "/api/v1/users/me", nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("valid session", func(t *testing.T) {
		ts := newTestServer(t)
		id := uuid.New()
		ts.signIn(id)
		ts.users.On("GetOneByID", mock.Anything, id).Return(testUser(id), nil)

		rec := ts.do(http.MethodGet, "/api/v1/users/me", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body userResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, id, body.ID)
		assert.Nil(t, body.KYC)
	})
}

func TestRegister(t *testing.T) {
	valid := map[string]string{
		"email":      "jane@example.com",
		"password":   "secret123",
		"first_name": "Jane",
		"last_name":  "Doe",
		"country":    "Nigeria",
	}

	t.Run("validation", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "not-an-email",
			"password": "short",
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body ValidationErrorStruct
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, ValidationCode, body.ErrorCode)

		fields := make(map[string]string)
		for _, e := range body.Errors {
			fields[e.FieldKey] = e.ErrorMessage
		}
		assert.Equal(t, "Invalid email format", fields["email"])
		assert.Contains(t, fields, "password")
		assert.Contains(t, fields, "first_name")
	})

	t.Run("duplicate", func(t *testing.T) {
		ts := newTestServer(t)
		ts.users.On("Register", mock.Anything, mock.Anything).Return(uuid.Nil, service.ErrEmailAlreadyRegistered)

		rec := ts.do(http.MethodPost, "/api/v1/auth/register", valid)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, ErrorCode(EmailAlreadyRegisteredCode), decodeError(t, rec))
	})

	t.Run("created", func(t *testing.T) {
		ts := newTestServer(t)
		id := uuid.New()
		ts.users.On("Register", mock.Anything, service.RegisterInput{
			Email:     "jane@example.com",
			Password:  "secret123",
			FirstName: "Jane",
			LastName:  "Doe",
			Country:   "Nigeria",
		}).Return(id, nil)

		rec := ts.do(http.MethodPost, "/api/v1/auth/register", valid)

		require.Equal(t, http.StatusCreated, rec.Code)
		var body registerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, id, body.UserID)
	})
}

func TestVerifyEmail(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.New()
	expires := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	user := testUser(id)
	user.EmailVerified = true
	ts.users.On("VerifyEmail", mock.Anything, id, "123456").Return(&service.AuthResult{
		Token:     "tok",
		ExpiresAt: expires,
		User:      user,
	}, nil)

	rec := ts.do(http.MethodPost, "/api/v1/auth/verify-email", map[string]string{
		"user_id": id.String(),
		"code":    "123456",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tok", body.Token)
	assert.True(t, body.ExpiresAt.Equal(expires))
	assert.True(t, body.User.EmailVerified)
}

func TestVerifyEmail_BadCode(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/auth/verify-email", map[string]string{
		"user_id": uuid.NewString(),
		"code":    "12ab",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.users.On("Login", mock.Anything, "jane@example.com", "wrong").Return(nil, service.ErrInvalidCredentials)

	rec := ts.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrorCode(InvalidCredentialsCode), decodeError(t, rec))
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(uuid.New())
	ts.users.On("Logout", mock.Anything, testToken).Return(nil)

	rec := ts.do(http.MethodPost, "/api/v1/auth/logout", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetUser(t *testing.T) {
	t.Run("other user as non-admin", func(t *testing.T) {
		ts := newTestServer(t)
		caller := uuid.New()
		ts.signIn(caller)
		ts.admin.On("Authorize", mock.Anything, caller).Return(service.ErrForbidden)

		rec := ts.do(http.MethodGet, "/api/v1/users/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("other user as admin", func(t *testing.T) {
		ts := newTestServer(t)
		caller, target := uuid.New(), uuid.New()
		ts.signIn(caller)
		ts.admin.On("Authorize", mock.Anything, caller).Return(nil)
		ts.users.On("GetOneByID", mock.Anything, target).Return(testUser(target), nil)

		rec := ts.do(http.MethodGet, "/api/v1/users/"+target.String(), nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		ts := newTestServer(t)
		ts.signIn(uuid.New())

		rec := ts.do(http.MethodGet, "/api/v1/users/42", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, ErrorCode(InvalidIDCode), decodeError(t, rec))
	})
}

func TestChangePassword(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.New()
	ts.signIn(id)
	ts.users.On("ChangePassword", mock.Anything, id, "secret123", "newsecret1").Return(service.ErrInvalidCredentials)

	rec := ts.do(http.MethodPost, "/api/v1/users/me/password", map[string]string{
		"current_password": "secret123",
		"new_password":     "newsecret1",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_NonAdmin(t *testing.T) {
	ts := newTestServer(t)
	caller := uuid.New()
	ts.signIn(caller)
	ts.admin.On("Authorize", mock.Anything, caller).Return(service.ErrForbidden)

	rec := ts.do(http.MethodGet, "/api/v1/admin/kyc-requests", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, ErrorCode(ForbiddenCode), decodeError(t, rec))
}

func TestAdminRoutes_AuthorizeFailure(t *testing.T) {
	ts := newTestServer(t)
	caller := uuid.New()
	ts.signIn(caller)
	ts.admin.On("Authorize", mock.Anything, caller).Return(errors.New("get user failed: mysql down"))

	rec := ts.do(http.MethodGet, "/api/v1/admin/analytics", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrorCode(UnknownErrorCode), decodeError(t, rec))
}

func (ts *testServer) signInAdmin() uuid.UUID {
	id := uuid.New()
	ts.signIn(id)
	ts.admin.On("Authorize", mock.Anything, id).Return(nil)
	return id
}

func TestApproveKYC(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"approved", nil, http.StatusOK},
		{"not pending", service.ErrKYCNotPending, http.StatusConflict},
		{"unknown user", service.ErrUserNotFound, http.StatusNotFound},
		{"lost race", service.ErrConcurrentUpdate, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			adminID := ts.signInAdmin()
			userID := uuid.New()

			var user *domain.User
			if tt.err == nil {
				user = testUser(userID)
				user.KYCStatus = domain.KYCStatusVerified
				user.KYCVerified = true
			}
			ts.kyc.On("Approve", mock.Anything, userID, adminID).Return(user, tt.err)

			rec := ts.do(http.MethodPost, "/api/v1/admin/kyc/"+userID.String()+"/approve", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRejectKYC(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		ts := newTestServer(t)
		adminID := ts.signInAdmin()
		userID := uuid.New()
		ts.kyc.On("Reject", mock.Anything, userID, adminID, "").Return(testUser(userID), nil)

		rec := ts.do(http.MethodPost, "/api/v1/admin/kyc/"+userID.String()+"/reject", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("with reason", func(t *testing.T) {
		ts := newTestServer(t)
		adminID := ts.signInAdmin()
		userID := uuid.New()
		ts.kyc.On("Reject", mock.Anything, userID, adminID, "blurry").Return(testUser(userID), nil)

		rec := ts.do(http.MethodPost, "/api/v1/admin/kyc/"+userID.String()+"/reject", map[string]string{"reason": "blurry"})

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestListKYCRequests(t *testing.T) {
	ts := newTestServer(t)
	ts.signInAdmin()
	userID := uuid.New()
	ts.kyc.On("ListPending", mock.Anything).Return([]service.PendingKYC{{
		User: testUser(userID),
		Submission: domain.KYCRecord{
			ID:      uuid.New(),
			UserID:  userID,
			Status:  domain.KYCStatusSubmitted,
			IDFront: "kyc/a/front.png",
		},
		IDFrontURL: "https://storage.test/kyc/a/front.png",
	}}, nil)

	rec := ts.do(http.MethodGet, "/api/v1/admin/kyc-requests", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body []pendingKYCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, userID, body[0].User.ID)
	assert.Equal(t, "kyc/a/front.png", body[0].Submission.IDFront.Key)
	assert.Equal(t, "https://storage.test/kyc/a/front.png", body[0].Submission.IDFront.URL)
}

func TestListUsers_ClampsPaging(t *testing.T) {
	ts := newTestServer(t)
	ts.signInAdmin()
	ts.admin.On("ListUsers", mock.Anything, 1, 100).Return([]domain.User{*testUser(uuid.New())}, int64(1), nil)

	rec := ts.do(http.MethodGet, "/api/v1/admin/users?page=0&limit=500", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body usersPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Total)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 100, body.Limit)
	assert.Len(t, body.Users, 1)
}

func TestAnalytics(t *testing.T) {
	ts := newTestServer(t)
	ts.signInAdmin()
	ts.admin.On("Analytics", mock.Anything).Return(&domain.UserStats{
		TotalUsers:    3,
		EmailVerified: 2,
		KYCVerified:   1,
		KYCPending:    1,
		ByCountry:     map[string]int64{"Nigeria": 2, "Ghana": 1},
	}, nil)

	rec := ts.do(http.MethodGet, "/api/v1/admin/analytics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body analyticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.TotalUsers)
	assert.Equal(t, int64(2), body.ByCountry["Nigeria"])
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	ts := newTestServer(t)
	userID, notificationID := uuid.New(), uuid.New()
	ts.signIn(userID)
	ts.notifications.On("MarkRead", mock.Anything, userID, notificationID).Return(service.ErrNotificationNotFound)

	rec := ts.do(http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrorCode(NotificationNotFoundCode), decodeError(t, rec))
}

func newKYCForm(t *testing.T, contentType string) (*bytes.Buffer, string) {
	return newKYCFormWith(t, contentType, "1990-05-17", "passport")
}

func newKYCFormWith(t *testing.T, contentType, dob, idType string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	require.NoError(t, w.WriteField("fullName", "Jane Doe"))
	require.NoError(t, w.WriteField("dob", dob))
	require.NoError(t, w.WriteField("idType", idType))

	for _, field := range []string{"idFront", "idBack", "selfie"} {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+field+`.png"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return body, w.FormDataContentType()
}

func TestSubmitKYC(t *testing.T) {
	t.Run("submitted", func(t *testing.T) {
		ts := newTestServer(t)
		id := uuid.New()
		ts.signIn(id)

		user := testUser(id)
		user.KYCStatus = domain.KYCStatusSubmitted
		ts.kyc.On("Submit", mock.Anything, id, mock.MatchedBy(func(in service.SubmitKYCInput) bool {
			return in.FullName == "Jane Doe" &&
				in.DateOfBirth == "1990-05-17" &&
				in.IDType == "passport" &&
				in.IDFront != nil && in.IDFront.ContentType == "image/png" &&
				in.IDBack != nil && in.Selfie != nil && in.Selfie.Filename == "selfie.png"
		})).Return(user, nil)

		body, contentType := newKYCForm(t, "image/png")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/submit", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(authorizationHeader, "Bearer "+testToken)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var res userResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, domain.KYCStatusSubmitted, res.KYCStatus)
	})

	t.Run("unsupported document type", func(t *testing.T) {
		ts := newTestServer(t)
		ts.signIn(uuid.New())

		body, contentType := newKYCForm(t, "text/plain")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/submit", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(authorizationHeader, "Bearer "+testToken)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, ErrorCode(UnsupportedDocumentTypeCode), decodeError(t, rec))
	})

	t.Run("invalid details", func(t *testing.T) {
		tests := []struct {
			name   string
			dob    string
			idType string
			field  string
		}{
			{"free text dob", "the day after tomorrow, 2099", "passport", "dob"},
			{"future dob", "2999-01-01", "passport", "dob"},
			{"overlong id type", "1990-05-17", strings.Repeat("x", 300), "idType"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ts := newTestServer(t)
				ts.signIn(uuid.New())

				body, contentType := newKYCFormWith(t, "image/png", tt.dob, tt.idType)
				req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/submit", body)
				req.Header.Set("Content-Type", contentType)
				req.Header.Set(authorizationHeader, "Bearer "+testToken)
				rec := httptest.NewRecorder()
				ts.router.ServeHTTP(rec, req)

				require.Equal(t, http.StatusBadRequest, rec.Code)
				var res ValidationErrorStruct
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				assert.Equal(t, ValidationCode, res.ErrorCode)
				require.Len(t, res.Errors, 1)
				assert.Equal(t, tt.field, res.Errors[0].FieldKey)
				ts.kyc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("already verified", func(t *testing.T) {
		ts := newTestServer(t)
		id := uuid.New()
		ts.signIn(id)
		ts.kyc.On("Submit", mock.Anything, id, mock.Anything).Return(nil, service.ErrKYCAlreadyVerified)

		body, contentType := newKYCForm(t, "image/jpeg")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/submit", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(authorizationHeader, "Bearer "+testToken)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, ErrorCode(KYCAlreadyVerifiedCode), decodeError(t, rec))
	})
}
