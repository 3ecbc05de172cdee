package v1

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/investhub/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	formIDFront  = "idFront"
	formIDBack   = "idBack"
	formSelfie   = "selfie"
)

var allowedDocumentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

type submitKYCForm struct {
	FullName    string `form:"fullName" binding:"required,max=255"`
	DateOfBirth string `form:"dob" binding:"required,pastdate"`
	IDType      string `form:"idType" binding:"required,max=32"`
}

func (h *Handler) initKYCRoutes(api *gin.RouterGroup) {
	kyc := api.Group("/kyc", h.userIdentityMiddleware)
	kyc.POST("/submit", h.submitKYC)
}

// @Summary Submit KYC
// @Tags KYC
// @Description Uploads identity documents for review. Allowed when there is no submission yet or the last one was rejected.
// @ModuleID submitKYC
// @Accept  multipart/form-data
// @Produce  json
// @Param fullName formData string true "full legal name"
// @Param dob formData string true "date of birth, YYYY-MM-DD"
// @Param idType formData string true "document type"
// @Param idFront formData file true "document front"
// @Param idBack formData file true "document back"
// @Param selfie formData file true "selfie"
// @Success 201 {object} userResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 403 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Failure 413 {object} ErrorStruct
// @Security UserAuth
// @Router /kyc/submit [post]
func (h *Handler) submitKYC(c *gin.Context) {
	id, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthenticatedCode)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.HttpServer.MaxUploadSize)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorResponse(c, http.StatusRequestEntityTooLarge, UploadTooLargeCode)
			return
		}
		errorResponse(c, http.StatusBadRequest, MissingFieldsCode)
		return
	}
	defer func() { _ = form.RemoveAll() }()

	var details submitKYCForm
	if err := c.ShouldBindWith(&details, binding.FormMultipart); err != nil {
		validationErrorResponse(c, err)
		return
	}

	input := service.SubmitKYCInput{
		FullName:    details.FullName,
		DateOfBirth: details.DateOfBirth,
		IDType:      details.IDType,
	}

	docs := []struct {
		field string
		dst   **service.Document
	}{
		{formIDFront, &input.IDFront},
		{formIDBack, &input.IDBack},
		{formSelfie, &input.Selfie},
	}
	for _, d := range docs {
		files := form.File[d.field]
		if len(files) == 0 {
			continue
		}

		doc, closer, err := openDocument(files[0])
		if err != nil {
			errorResponse(c, http.StatusBadRequest, UnsupportedDocumentTypeCode)
			return
		}
		defer func() { _ = closer.Close() }()
		*d.dst = doc
	}

	user, err := h.services.KYC.Submit(c.Request.Context(), id, input)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

func openDocument(fh *multipart.FileHeader) (*service.Document, io.Closer, error) {
	contentType := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if _, ok := allowedDocumentTypes[contentType]; !ok {
		return nil, nil, errors.New("unsupported content type " + contentType)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}

	return &service.Document{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Reader:      f,
	}, f, nil
}
