package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"github.com/stemsi/kumpul-tugas/internal/response"
	"github.com/stemsi/kumpul-tugas/internal/service"
	"github.com/stemsi/kumpul-tugas/internal/validator"
)

// Memory kept for multipart parts before they spill to temp files.
const multipartMemory = 8 << 20

// SubmissionHandler handles the student-facing submission form.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	classService      *service.ClassService
	log               zerolog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler. classService may be
// nil when the class registry is disabled.
func NewSubmissionHandler(submissionService *service.SubmissionService, classService *service.ClassService, log zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		classService:      classService,
		log:               log.With().Str("component", "submission_handler").Logger(),
	}
}

// ListPublicClasses godoc
// GET /api/v1/public/classes
// Returns the classes a student may submit to. With the registry disabled
// the class is free text and the list is empty.
func (h *SubmissionHandler) ListPublicClasses(c *gin.Context) {
	if !h.submissionService.RegistryEnabled() {
		response.Success(c, http.StatusOK, gin.H{
			"registry_enabled": false,
			"submission_open":  true,
			"classes":          []string{},
		})
		return
	}

	names, err := h.classService.ListActiveNames(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list active classes")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	data := gin.H{
		"registry_enabled": true,
		"submission_open":  len(names) > 0,
		"classes":          names,
	}
	if len(names) == 0 {
		data["message"] = service.NoActiveClassMessage
	}
	response.Success(c, http.StatusOK, data)
}

// Submit godoc
// POST /api/v1/submissions
// Accepts class_name, group_name, notes and one or more "files" parts.
// Each file becomes its own ledger row.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidFormBody)
		return
	}
	defer c.Request.MultipartForm.RemoveAll()

	var req model.SubmitRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	headers := c.Request.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = c.Request.MultipartForm.File["file"]
	}

	uploads, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open uploaded part")
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidFormBody)
		return
	}

	saved, err := h.submissionService.Submit(c.Request.Context(), req, uploads)
	if err != nil {
		h.failSubmit(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"submissions": saved,
		"total":       len(saved),
	})
}

func (h *SubmissionHandler) failSubmit(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveClass):
		response.Fail(c, http.StatusBadRequest, response.ErrNoActiveClass)
	case errors.Is(err, service.ErrClassNotActive):
		response.Fail(c, http.StatusBadRequest, response.ErrClassNotActive)
	case errors.Is(err, service.ErrClassRequired):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"class_name": "Kelas wajib diisi."})
	case errors.Is(err, service.ErrGroupRequired):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"group_name": "Nama kelompok wajib diisi."})
	case errors.Is(err, service.ErrFileRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrTooManyFiles):
		response.Fail(c, http.StatusBadRequest, response.ErrTooManyFiles)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrStorageFailure)
	}
}

// openUploads opens every part. The returned close func is always safe to call.
func openUploads(headers []*multipart.FileHeader) ([]service.Upload, func(), error) {
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		files = append(files, f)
		uploads = append(uploads, service.Upload{Name: fh.Filename, Size: fh.Size, Reader: f})
	}
	return uploads, closeAll, nil
}
