package dashboard

import (
	"net/http"
	"time"

	"assignportal/internal/domain"
	"assignportal/internal/middleware"
	"assignportal/internal/modules/assignment"
	"assignportal/internal/modules/auth"
	"assignportal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type RecentSubmission struct {
	ID           int64     `json:"id"`
	AssignmentID int64     `json:"assignment_id"`
	Assignment   string    `json:"assignment"`
	Student      string    `json:"student"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Response struct {
	Role               domain.UserRole                 `json:"role"`
	Counts             map[string]int64                `json:"counts"`
	RecentUsers        []auth.UserResponse             `json:"recent_users,omitempty"`
	RecentAssignments  []assignment.AssignmentResponse `json:"recent_assignments,omitempty"`
	RecentSubmissions  []RecentSubmission              `json:"recent_submissions,omitempty"`
	PendingAssignments []assignment.AssignmentResponse `json:"pending_assignments,omitempty"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/dashboard", h.Get)
}

func (h *Handler) Get(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	v, err := h.service.Get(c.Request.Context(), p)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load dashboard")
		return
	}
	response.Success(c, http.StatusOK, toResponse(v, time.Now()))
}

func toResponse(v *View, now time.Time) Response {
	out := Response{Role: v.Role}
	switch {
	case v.Admin != nil:
		out.Counts = map[string]int64{
			"users":   v.Admin.Counts.Users,
			"classes": v.Admin.Counts.Classes,
			"courses": v.Admin.Counts.Courses,
			"uploads": v.Admin.Counts.Uploads,
		}
		for i := range v.Admin.RecentUsers {
			out.RecentUsers = append(out.RecentUsers, auth.ToUserResponse(&v.Admin.RecentUsers[i]))
		}
		out.RecentSubmissions = recentSubmissions(v.Admin.Submissions)
	case v.Teacher != nil:
		out.Counts = map[string]int64{
			"classes":     v.Teacher.Counts.Classes,
			"courses":     v.Teacher.Counts.Courses,
			"assignments": v.Teacher.Counts.Assignments,
			"submissions": v.Teacher.Counts.Submissions,
		}
		for _, s := range v.Teacher.RecentAssignments {
			out.RecentAssignments = append(out.RecentAssignments, assignment.ToSummaryResponse(s, now))
		}
		out.RecentSubmissions = recentSubmissions(v.Teacher.Submissions)
	case v.Student != nil:
		out.Counts = map[string]int64{
			"classes":   v.Student.Counts.Classes,
			"pending":   int64(len(v.Student.Pending)),
			"completed": int64(v.Student.Completed),
			"uploads":   v.Student.Counts.Uploads,
		}
		for _, s := range v.Student.Pending {
			out.PendingAssignments = append(out.PendingAssignments, assignment.ToSummaryResponse(s, now))
		}
	}
	return out
}

func recentSubmissions(subs []domain.Submission) []RecentSubmission {
	out := make([]RecentSubmission, 0, len(subs))
	for _, s := range subs {
		r := RecentSubmission{ID: s.ID, AssignmentID: s.AssignmentID, UpdatedAt: s.UpdatedAt}
		if s.Assignment != nil {
			r.Assignment = s.Assignment.Title
		}
		if s.Student != nil {
			r.Student = s.Student.Username
		}
		out = append(out, r)
	}
	return out
}
