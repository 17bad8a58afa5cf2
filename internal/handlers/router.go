package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shikshya-edu/institute-service/internal/auth"
	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/services"
	"github.com/shikshya-edu/institute-service/internal/utils"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	userHandler     *UserHandler
	publicHandler   *PublicHandler
	adminHandler    *AdminHandler
	documentHandler *DocumentHandler
	authMiddleware  *JWTAuthMiddleware

	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens *auth.TokenManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:     NewUserHandler(serviceManager.User(), serviceManager.Subject(), logger),
		publicHandler:   NewPublicHandler(serviceManager.Subject(), serviceManager.Contact(), serviceManager.Admin(), logger),
		adminHandler:    NewAdminHandler(serviceManager.Admin(), serviceManager.ImportExport(), logger),
		documentHandler: NewDocumentHandler(serviceManager.Document(), logger),
		authMiddleware:  NewJWTAuthMiddleware(tokens),
		serviceManager:  serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Public routes
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", hm.authHandler.Register)
			authRoutes.POST("/login", hm.authHandler.Login)
			authRoutes.POST("/refresh", hm.authHandler.Refresh)
			authRoutes.POST("/change-password", hm.authMiddleware.AuthMiddleware(), hm.authHandler.ChangePassword)
			authRoutes.GET("/me", hm.authMiddleware.AuthMiddleware(), hm.userHandler.GetProfile)
		}

		v1.GET("/subjects", hm.publicHandler.ListSubjects)
		v1.GET("/subjects/:id", hm.publicHandler.GetSubject)
		v1.POST("/subjects/enroll", hm.authMiddleware.AuthMiddleware(), hm.userHandler.EnrollSubject)
		v1.POST("/subjects/unenroll", hm.authMiddleware.AuthMiddleware(), hm.userHandler.UnenrollSubject)
		v1.GET("/carousels", hm.publicHandler.ListCarousels)
		v1.POST("/contacts", hm.publicHandler.SubmitContact)

		// Authenticated routes
		profile := v1.Group("/profile")
		profile.Use(hm.authMiddleware.AuthMiddleware())
		{
			profile.GET("", hm.userHandler.GetProfile)
			profile.PUT("", hm.userHandler.UpdateProfile)
			profile.POST("/complete", hm.userHandler.CompleteProfile)
			profile.POST("/picture", hm.userHandler.UploadProfilePicture)
			profile.PUT("/enrollments", hm.userHandler.UpdateEnrollments)
			profile.GET("/subjects", hm.userHandler.ListEnrolledSubjects)
		}

		documents := v1.Group("/documents")
		documents.Use(hm.authMiddleware.AuthMiddleware())
		{
			documents.POST("", hm.documentHandler.Upload)
			documents.GET("", hm.documentHandler.List)
			documents.GET("/mine", hm.documentHandler.ListMine)
			documents.GET("/:id", hm.documentHandler.Get)
			documents.GET("/:id/download", hm.documentHandler.Download)
			documents.DELETE("/:id", hm.documentHandler.Delete)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			users := admin.Group("/users")
			{
				users.POST("", hm.adminHandler.CreateUser)
				users.GET("", hm.adminHandler.ListUsers)
				users.POST("/import", hm.adminHandler.ImportUsers)
				users.GET("/export", hm.adminHandler.ExportUsers)
				users.GET("/export.xlsx", hm.adminHandler.ExportUsersXLSX)
				users.GET("/:id", hm.adminHandler.GetUser)
				users.PUT("/:id", hm.adminHandler.UpdateUser)
				users.DELETE("/:id", hm.adminHandler.DeleteUser)
			}

			admin.GET("/enrolled-users", hm.adminHandler.ListEnrolledUsers)

			subjects := admin.Group("/subjects")
			{
				subjects.POST("", hm.adminHandler.CreateSubject)
				subjects.PUT("/:id", hm.adminHandler.UpdateSubject)
				subjects.DELETE("/:id", hm.adminHandler.DeleteSubject)
			}

			contacts := admin.Group("/contacts")
			{
				contacts.GET("", hm.adminHandler.ListContacts)
				contacts.GET("/:id", hm.adminHandler.GetContact)
				contacts.PUT("/:id", hm.adminHandler.UpdateContact)
				contacts.DELETE("/:id", hm.adminHandler.DeleteContact)
			}

			carousels := admin.Group("/carousels")
			{
				carousels.POST("", hm.adminHandler.CreateCarousel)
				carousels.PUT("/:id", hm.adminHandler.UpdateCarousel)
				carousels.DELETE("/:id", hm.adminHandler.DeleteCarousel)
			}

			admin.GET("/dashboard", hm.adminHandler.GetDashboardStats)
		}
	}
}

// HealthCheck reports service and dependency health
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK

	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   "institute-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
