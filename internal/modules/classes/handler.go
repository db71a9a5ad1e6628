package classes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"assignportal/internal/domain"
	"assignportal/internal/middleware"
	"assignportal/internal/pkg/response"
	"assignportal/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// ImportField is the multipart field carrying the roster CSV.
const ImportField = "file"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts class management on a group already restricted to teachers.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	classes := r.Group("/classes")
	{
		classes.GET("", h.List)
		classes.POST("", h.Create)
		classes.GET("/:id", h.Get)
		classes.PUT("/:id", h.Update)
		classes.DELETE("/:id", h.Delete)
		classes.GET("/:id/courses", h.Courses)
		classes.POST("/:id/students", h.AddStudent)
		classes.POST("/:id/students/import", h.ImportStudents)
		classes.DELETE("/:id/students/:student_id", h.RemoveStudent)
	}
	r.GET("/templates/student_template", h.DownloadTemplate)
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
	out := make([]ClassResponse, 0, len(list))
	for i := range list {
		out = append(out, ToClassResponse(&list[i]))
	}
	response.Success(c, http.StatusOK, gin.H{"classes": out})
}

func (h *Handler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req ClassRequest
	if !bind(c, &req) {
		return
	}
	class, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ToClassResponse(class))
}

func (h *Handler) Get(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	class, available, err := h.service.Detail(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ClassDetailResponse{
		ClassResponse:     ToClassResponse(class),
		Students:          studentRefs(class.Students),
		AvailableStudents: studentRefs(available),
	})
}

func (h *Handler) Update(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	var req ClassRequest
	if !bind(c, &req) {
		return
	}
	class, err := h.service.Update(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToClassResponse(class))
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

func (h *Handler) Courses(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	courses, err := h.service.Courses(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, courseRefs(courses))
}

/* ---------- ENROLMENT ---------- */

func (h *Handler) AddStudent(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	var req EnrollRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.service.AddStudent(c.Request.Context(), p, id, req.StudentID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, studentRefs([]domain.User{*u})[0])
}

func (h *Handler) RemoveStudent(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	studentID, err := strconv.ParseInt(c.Param("student_id"), 10, 64)
	if err != nil || studentID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid student ID")
		return
	}
	if err := h.service.RemoveStudent(c.Request.Context(), p, id, studentID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": studentID})
}

func (h *Handler) ImportStudents(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile(ImportField)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "A CSV file is required in field 'file'")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	res, err := h.service.ImportStudents(c.Request.Context(), p, id, f)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) DownloadTemplate(c *gin.Context) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", TemplateFilename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", StudentTemplate())
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid class fields", errs)
		return false
	}
	return true
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
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid class ID")
		return p, 0, false
	}
	return p, id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrClassNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Class not found")
	case errors.Is(err, ErrStudentNotFound):
		response.Error(c, http.StatusNotFound, "STUDENT_NOT_FOUND", "Student not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this class")
	case errors.Is(err, ErrCourseNotOwned):
		response.Error(c, http.StatusBadRequest, "INVALID_COURSES", err.Error())
	case errors.Is(err, ErrNotStudent):
		response.Error(c, http.StatusBadRequest, "NOT_A_STUDENT", err.Error())
	case errors.Is(err, ErrAlreadyEnrolled):
		response.Error(c, http.StatusConflict, "ALREADY_ENROLLED", err.Error())
	case errors.Is(err, ErrNotEnrolled):
		response.Error(c, http.StatusNotFound, "NOT_ENROLLED", err.Error())
	case errors.Is(err, ErrInvalidCSV):
		response.Error(c, http.StatusBadRequest, "INVALID_CSV", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
