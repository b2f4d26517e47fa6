package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evrim/counselbridge/internal/app/controllers"
	"github.com/evrim/counselbridge/internal/app/models"
	"github.com/evrim/counselbridge/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	connectionController *controllers.ConnectionController,
	adminController *controllers.AdminController,
	counselorController *controllers.CounselorController,
	statsController *controllers.StatsController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	counselors := v1.Group("/counselors")
	{
		counselors.GET("", counselorController.ListCounselors)
		counselors.GET("/:id", counselorController.GetCounselorByID)
	}

	stats := v1.Group("/stats")
	{
		stats.GET("/platform", statsController.GetPlatformStats)
	}

	// --- Authenticated student routes ---
	connections := v1.Group("/connections")
	connections.Use(authMiddleware.JWTAuth())
	{
		connections.POST("", connectionController.CreateConnection)
		connections.GET("", connectionController.ListConnections)
		connections.POST("/:id/cancel", connectionController.CancelConnection)
	}

	// --- Admin routes ---
	admin := v1.Group("/admin")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/connections", adminController.ListAllConnections)
		admin.GET("/connections/pending", adminController.ListPendingConnections)
		admin.GET("/connections/stats", adminController.GetConnectionStats)
		admin.POST("/connections/:id/approve", adminController.ApproveConnection)
		admin.POST("/connections/:id/reject", adminController.RejectConnection)
	}
}
