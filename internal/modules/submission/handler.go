package submission

import (
	"errors"
	"fmt"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"assignportal/internal/domain"
	"assignportal/internal/middleware"
	"assignportal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// UploadField is the repeated multipart field carrying the batch.
const UploadField = "files"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects rg to be behind JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assignments/:id/upload", h.Upload)
	rg.GET("/assignments/:id/submissions", h.ListForAssignment)
	rg.GET("/assignments/:id/my-submission", h.MySubmission)
	rg.GET("/assignments/:id/download", h.DownloadAssignment)
	rg.GET("/submissions/:id", h.GetSubmission)
	rg.GET("/submissions/:id/download", h.DownloadSubmission)
	rg.GET("/files/:id/download", h.DownloadFile)
}

// Upload godoc
// @Summary Submit files for an assignment
// @Description Replaces the caller's previous submission. Redirects to the assignment unless JSON is accepted.
// @Tags Submissions
// @Accept multipart/form-data
// @Param id path int true "Assignment ID"
// @Param files formData file true "Files (repeatable)"
// @Success 201,303 {object} map[string]interface{}
// @Failure 400,403,404,500 {object} map[string]interface{}
// @Router /assignments/{id}/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}

	var headers []*multipart.FileHeader
	form, err := c.MultipartForm()
	switch {
	case err == nil:
		headers = form.File[UploadField]
	case errors.Is(err, http.ErrNotMultipart):
		// no multipart body means no files; Submit reports NO_FILES
	default:
		response.Error(c, http.StatusBadRequest, "INVALID_UPLOAD", "Malformed multipart body")
		return
	}

	batch := make([]FileInput, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll(batch)
			response.Error(c, http.StatusBadRequest, "INVALID_UPLOAD", "Failed to read uploaded file")
			return
		}
		batch = append(batch, FileInput{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}
	defer closeAll(batch)

	sub, err := h.service.Submit(c.Request.Context(), p, id, batch)
	if err != nil {
		writeError(c, err)
		return
	}

	if wantsJSON(c) {
		response.Success(c, http.StatusCreated, ToSubmissionResponse(sub))
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/api/v1/assignments/%d", id))
}

func (h *Handler) ListForAssignment(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	a, subs, err := h.service.ListAssignmentSubmissions(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	out := AssignmentSubmissionsResponse{
		AssignmentID: a.ID,
		Title:        a.Title,
		DueDate:      a.DueDate,
		Submissions:  make([]SubmissionResponse, 0, len(subs)),
		DownloadURL:  fmt.Sprintf("/api/v1/assignments/%d/download", a.ID),
	}
	for i := range subs {
		out.Submissions = append(out.Submissions, ToSubmissionResponse(&subs[i]))
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) MySubmission(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	sub, err := h.service.GetMySubmission(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToSubmissionResponse(sub))
}

func (h *Handler) GetSubmission(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	sub, err := h.service.GetSubmission(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToSubmissionResponse(sub))
}

// DownloadAssignment godoc
// @Summary Download every submission of an assignment as ZIP
// @Tags Submissions
// @Produce application/zip
// @Param id path int true "Assignment ID"
// @Router /assignments/{id}/download [get]
func (h *Handler) DownloadAssignment(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	archive, err := h.service.BuildAssignmentArchive(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	streamArchive(c, archive)
}

func (h *Handler) DownloadSubmission(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	archive, err := h.service.BuildSubmissionArchive(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	streamArchive(c, archive)
}

func (h *Handler) DownloadFile(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	dl, err := h.service.RetrieveFile(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer dl.Content.Close()

	contentType := dl.File.Filetype
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, dl.Size, contentType, dl.Content, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": dl.File.Filename}),
		"Cache-Control":       "no-cache, no-store, must-revalidate",
		"Pragma":              "no-cache",
		"Expires":             "0",
	})
}

func streamArchive(c *gin.Context, archive *Archive) {
	begin := func() {
		c.Header("Content-Type", "application/zip")
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, archive.Filename))
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Status(http.StatusOK)
	}

	n, err := archive.Stream(c.Request.Context(), c.Writer, begin)
	switch {
	case err == nil:
	case n == 0 && !c.Writer.Written():
		writeError(c, err)
	default:
		// headers are gone; the client sees a truncated body
		_ = c.Error(err)
		log.Printf("archive_stream_failed file=%s error=%q", archive.Filename, err)
	}
}

func writeError(c *gin.Context, err error) {
	var ruleErr *FileRuleError
	if errors.As(err, &ruleErr) {
		response.ErrorWithDetails(c, http.StatusBadRequest, errorCode(err), ruleErr.err.Error(), gin.H{
			"rule":     ruleErr.Rule,
			"filename": ruleErr.Filename,
			"detail":   ruleErr.Detail,
		})
		return
	}

	code := errorCode(err)
	switch code {
	case "NOT_FOUND":
		response.Error(c, http.StatusNotFound, code, "Resource not found")
	case "STORAGE_INCONSISTENCY":
		response.Error(c, http.StatusNotFound, code, "File is missing from storage")
	case "FORBIDDEN":
		response.Error(c, http.StatusForbidden, code, "Access denied")
	case "DEADLINE_PASSED":
		response.Error(c, http.StatusBadRequest, code, "Assignment deadline has passed")
	case "NO_FILES":
		response.Error(c, http.StatusBadRequest, code, "No files were uploaded")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func principalAndID(c *gin.Context) (domain.Principal, int64, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return domain.Principal{}, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return domain.Principal{}, 0, false
	}
	return p, id, true
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func closeAll(batch []FileInput) {
	for _, in := range batch {
		if cl, ok := in.Reader.(multipart.File); ok {
			_ = cl.Close()
		}
	}
}
