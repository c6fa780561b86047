package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"github.com/stemsi/kumpul-tugas/internal/response"
	"github.com/stemsi/kumpul-tugas/internal/service"
	"github.com/stemsi/kumpul-tugas/internal/validator"
)

// ClassHandler handles admin-facing class registry management.
type ClassHandler struct {
	classService *service.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// ListClasses godoc
// GET /api/v1/admin/classes
// Lists every registered class, active or not, ordered by name.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classService.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// CreateClass godoc
// POST /api/v1/admin/classes
// Registers a class. Registering an existing name is a silent success.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if _, err := h.classService.AddOrActivate(c.Request.Context(), req.ClassName); err != nil {
		if errors.Is(err, service.ErrEmptyClassName) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"class_name": "Nama kelas tidak boleh kosong."})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class_name": strings.TrimSpace(req.ClassName)})
}

// SetClassActive godoc
// PATCH /api/v1/admin/classes/:id
// Activates or deactivates a class. Existing submissions are untouched.
func (h *ClassHandler) SetClassActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SetClassActiveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.classService.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id, "is_active": *req.IsActive})
}
