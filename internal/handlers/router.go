package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/tarpaulin-service/internal/services"
	"github.com/SAP-F-2025/tarpaulin-service/internal/utils"
)

// HandlerConfig holds what the handlers need beyond the services
type HandlerConfig struct {
	// PublicBaseURL prefixes self, next, avatar and course links. Empty
	// means derive it from the request.
	PublicBaseURL string
	ImagesEnabled bool
}

type HandlerManager struct {
	serviceManager    services.ServiceManager
	authHandler       *AuthHandler
	userHandler       *UserHandler
	courseHandler     *CourseHandler
	enrollmentHandler *EnrollmentHandler
	imageHandler      *ImageHandler
	authMiddleware    *AuthMiddleware
	logger            utils.Logger
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger, config HandlerConfig) *HandlerManager {
	hm := &HandlerManager{
		serviceManager:    serviceManager,
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger, config.PublicBaseURL),
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger, config.PublicBaseURL),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		authMiddleware:    NewAuthMiddleware(serviceManager.Auth(), logger),
		logger:            logger,
	}
	if config.ImagesEnabled {
		hm.imageHandler = NewImageHandler(serviceManager.Image(), logger)
	}
	return hm
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Tarpaulin API is running!")
	})

	// Health check endpoint
	router.GET("/health", hm.health)

	requireAuth := hm.authMiddleware.RequireAuth()

	// User routes
	router.POST("/users/login", hm.authHandler.Login)
	users := router.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("", hm.userHandler.ListUsers)
		users.GET("/:id", hm.userHandler.GetUser)

		// Avatar routes - owner only
		users.POST("/:id/avatar", hm.userHandler.UploadAvatar)
		users.GET("/:id/avatar", hm.userHandler.GetAvatar)
		users.DELETE("/:id/avatar", hm.userHandler.DeleteAvatar)
	}

	// Course routes - reads are public
	courses := router.Group("/courses")
	{
		courses.GET("", hm.courseHandler.ListCourses)
		courses.GET("/:id", hm.courseHandler.GetCourse)

		courses.POST("", requireAuth, hm.courseHandler.CreateCourse)
		courses.PATCH("/:id", requireAuth, hm.courseHandler.UpdateCourse)
		courses.DELETE("/:id", requireAuth, hm.courseHandler.DeleteCourse)

		// Enrollment - admins and the course's instructor
		courses.PATCH("/:id/students", requireAuth, hm.enrollmentHandler.UpdateEnrollment)
		courses.GET("/:id/students", requireAuth, hm.enrollmentHandler.ListEnrollment)
		courses.GET("/:id/students/export", requireAuth, hm.enrollmentHandler.ExportRoster)
	}

	// Image routes - public
	if hm.imageHandler != nil {
		images := router.Group("/images")
		{
			images.POST("", hm.imageHandler.UploadImage)
			images.POST("/:name", hm.imageHandler.UploadImage)
			images.GET("/:name", hm.imageHandler.GetImage)
			images.DELETE("/:name", hm.imageHandler.DeleteImage)
		}
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.FromContext(c, hm.logger).Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "tarpaulin-service",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tarpaulin-service",
	})
}
