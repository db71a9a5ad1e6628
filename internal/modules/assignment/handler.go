package assignment

import (
	"errors"
	"net/http"
	"strconv"

	"assignportal/internal/domain"
	"assignportal/internal/middleware"
	"assignportal/internal/pkg/response"
	"assignportal/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts reads on protected and writes on teacher, which must be
// restricted to teachers.
func (h *Handler) RegisterRoutes(protected, teacher *gin.RouterGroup) {
	protected.GET("/assignments", h.List)
	protected.GET("/assignments/:id", h.Get)
	protected.GET("/my-assignments", h.MyAssignments)

	teacher.POST("/assignments", h.Create)
	teacher.PUT("/assignments/:id", h.Update)
	teacher.DELETE("/assignments/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	now := h.service.Now()
	out := make([]AssignmentResponse, 0, len(list))
	for _, s := range list {
		out = append(out, ToSummaryResponse(s, now))
	}
	response.Success(c, http.StatusOK, gin.H{"assignments": out})
}

func (h *Handler) MyAssignments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	pending, completed, err := h.service.MyAssignments(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	now := h.service.Now()
	out := MyAssignmentsResponse{
		Pending:   make([]AssignmentResponse, 0, len(pending)),
		Completed: make([]AssignmentResponse, 0, len(completed)),
	}
	for _, s := range pending {
		out.Pending = append(out.Pending, ToSummaryResponse(s, now))
	}
	for _, s := range completed {
		out.Completed = append(out.Completed, ToSummaryResponse(s, now))
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Get(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	d, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDetail(d, h.service.Now()))
}

func (h *Handler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	req, ok := bind(c)
	if !ok {
		return
	}
	a, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toResponse(a, h.service.Now()))
}

func (h *Handler) Update(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	req, ok := bind(c)
	if !ok {
		return
	}
	a, err := h.service.Update(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(a, h.service.Now()))
}

func (h *Handler) Delete(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), p, id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func bind(c *gin.Context) (AssignmentRequest, bool) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return req, false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid assignment fields", errs)
		return req, false
	}
	return req, true
}

func principal(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return p, ok
}

func principalAndID(c *gin.Context) (domain.Principal, int64, bool) {
	p, ok := principal(c)
	if !ok {
		return p, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid assignment ID")
		return p, 0, false
	}
	return p, id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAssignmentNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Assignment not found")
	case errors.Is(err, ErrClassNotFound):
		response.Error(c, http.StatusNotFound, "CLASS_NOT_FOUND", "Class not found")
	case errors.Is(err, ErrCourseNotFound):
		response.Error(c, http.StatusNotFound, "COURSE_NOT_FOUND", "Course not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrCourseNotInClass):
		response.Error(c, http.StatusBadRequest, "COURSE_NOT_IN_CLASS", err.Error())
	case errors.Is(err, ErrInvalidDueDate):
		response.Error(c, http.StatusBadRequest, "INVALID_DUE_DATE", "Due date must be RFC 3339 or YYYY-MM-DDTHH:MM")
	case errors.Is(err, ErrInvalidFileTypes):
		response.Error(c, http.StatusBadRequest, "INVALID_FILE_TYPES", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
