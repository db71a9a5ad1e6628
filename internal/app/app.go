// Package app assembles repositories, services and handlers into the HTTP router.
package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"assignportal/internal/config"
	"assignportal/internal/domain"
	"assignportal/internal/middleware"
	"assignportal/internal/modules/admin"
	"assignportal/internal/modules/assignment"
	"assignportal/internal/modules/auth"
	"assignportal/internal/modules/classes"
	"assignportal/internal/modules/course"
	"assignportal/internal/modules/dashboard"
	"assignportal/internal/modules/notification"
	"assignportal/internal/modules/submission"
	jwtsvc "assignportal/internal/pkg/jwt"
	"assignportal/internal/pkg/metrics"
	"assignportal/internal/repository"
	"assignportal/internal/storage"
)

type App struct {
	Router  *gin.Engine
	Hub     *notification.Hub
	JWT     *jwtsvc.Service
	Metrics *metrics.Recorder
}

// New wires every module against db and store and makes sure the built-in admin
// account exists.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, store *storage.Local) (*App, error) {
	rec := metrics.New()
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	authService := auth.NewService(userRepo, j)
	created, err := authService.EnsureAdmin(ctx, cfg.AdminPassword)
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("created default admin account username=%s", domain.AdminUsername)
	}
	authHandler := auth.NewHandler(authService, auth.CookieSettings{
		Name:     cfg.CookieName,
		Path:     cfg.CookiePath,
		Secure:   cfg.CookieSecure,
		SameSite: auth.ParseSameSite(cfg.CookieSameSite),
	})

	hub := notification.NewHub()
	wsHandler := notification.NewHandler(hub, j, userRepo, cfg.CORSAllowedOrigins)

	submissionHandler := submission.NewHandler(
		submission.NewService(assignmentRepo, classRepo, submissionRepo, store, hub, rec),
	)
	assignmentService := assignment.NewService(assignmentRepo, classRepo, courseRepo, submissionRepo, statsRepo, store)
	assignmentHandler := assignment.NewHandler(assignmentService)
	courseHandler := course.NewHandler(course.NewService(courseRepo, store))
	classHandler := classes.NewHandler(classes.NewService(classRepo, courseRepo, userRepo, store))
	adminHandler := admin.NewHandler(admin.NewService(userRepo, store))
	dashboardHandler := dashboard.NewHandler(dashboard.NewService(statsRepo, userRepo, submissionRepo, assignmentService))

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadMemoryMB << 20
	r.Use(gin.Logger(), middleware.RequestID(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_online": hub.OnlineCount()})
	})
	r.GET("/metrics", rec.Handler())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)

		ws := v1.Group("")
		ws.Use(middleware.OptionalAuth(j, userRepo, cfg.CookieName))
		wsHandler.RegisterRoutes(ws)

		// any authenticated user
		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j, userRepo, cfg.CookieName))
		{
			authHandler.RegisterProtectedRoutes(protected)
			dashboardHandler.RegisterRoutes(protected)
			submissionHandler.RegisterRoutes(protected)

			teacher := protected.Group("")
			teacher.Use(middleware.TeacherOnly())
			courseHandler.RegisterRoutes(teacher)
			classHandler.RegisterRoutes(teacher)
			assignmentHandler.RegisterRoutes(protected, teacher)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			adminHandler.RegisterRoutes(adminGroup)
		}
	}

	return &App{Router: r, Hub: hub, JWT: j, Metrics: rec}, nil
}
