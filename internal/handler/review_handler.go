package handler

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/filestore"
	"github.com/stemsi/kumpul-tugas/internal/middleware"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"github.com/stemsi/kumpul-tugas/internal/response"
	"github.com/stemsi/kumpul-tugas/internal/service"
	"github.com/stemsi/kumpul-tugas/internal/validator"
)

const (
	contentTypeZip  = "application/zip"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReviewHandler serves the admin review surface over the ledger.
type ReviewHandler struct {
	reviewService *service.ReviewService
	log           zerolog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService, log zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		log:           log.With().Str("component", "review_handler").Logger(),
	}
}

// ArchiveEnabled reports whether the bulk archive route should be mounted.
func (h *ReviewHandler) ArchiveEnabled() bool {
	return h.reviewService.ArchiveEnabled()
}

// ListSubmissions godoc
// GET /api/v1/admin/submissions?class=&group=
// Lists ledger rows, newest first, with per-row file availability and the
// filter choices for the current selection.
func (h *ReviewHandler) ListSubmissions(c *gin.Context) {
	var filter model.SubmissionFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rows, opts, err := h.reviewService.List(c.Request.Context(), middleware.GetSession(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"submissions":     rows,
		"total":           len(rows),
		"filters":         opts,
		"archive_enabled": h.reviewService.ArchiveEnabled(),
	})
}

// GetSummary godoc
// GET /api/v1/admin/submissions/summary
// Counts submissions per class and group over the whole ledger.
func (h *ReviewHandler) GetSummary(c *gin.Context) {
	summary, err := h.reviewService.Summary(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// ExportSummary godoc
// GET /api/v1/admin/submissions/summary/export
// Downloads the summary as an XLSX workbook.
func (h *ReviewHandler) ExportSummary(c *gin.Context) {
	name, buf, err := h.reviewService.ExportSummary(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	sendAttachment(c, name, contentTypeXLSX, buf.Bytes())
}

// DownloadSubmission godoc
// GET /api/v1/admin/submissions/:id/download
// Streams one stored file under its original name.
func (h *ReviewHandler) DownloadSubmission(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	name, data, err := h.reviewService.Download(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	sendAttachment(c, name, contentType, data)
}

// DownloadArchive godoc
// GET /api/v1/admin/submissions/archive?class=&group=
// Bundles the filtered submissions into one ZIP. Rows whose file is gone
// are left out and counted in X-Archive-Skipped.
func (h *ReviewHandler) DownloadArchive(c *gin.Context) {
	var filter model.SubmissionFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	name, buf, report, err := h.reviewService.Archive(c.Request.Context(), middleware.GetSession(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("X-Archive-Added", strconv.Itoa(report.Added))
	c.Header("X-Archive-Skipped", strconv.Itoa(len(report.Skipped)))
	sendAttachment(c, name, contentTypeZip, buf.Bytes())
}

func (h *ReviewHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, filestore.ErrFileNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrFileNotFound)
	case errors.Is(err, service.ErrNoSubmissions):
		response.Fail(c, http.StatusNotFound, response.ErrNoSubmissions)
	case errors.Is(err, service.ErrArchiveDisabled):
		response.Fail(c, http.StatusNotFound, response.ErrFeatureDisabled)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("review request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func sendAttachment(c *gin.Context, name, contentType string, data []byte) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, contentType, data)
}
