package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "veridoc/docs"
	"veridoc/internal/domain"
	"veridoc/internal/handler"
	"veridoc/internal/middleware"
	"veridoc/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	corsOrigins []string,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	fileH *handler.FileHandler,
	docH *handler.DocumentHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// File routes
	files := protected.Group("/files")
	files.POST("/upload", fileH.Upload)
	files.GET("", fileH.List)
	files.GET("/:id", fileH.GetByID)
	files.GET("/:id/document", docH.GetByFileID)
	files.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), fileH.Delete)

	// Document routes
	docs := protected.Group("/documents")
	docs.GET("", docH.List)
	docs.GET("/export/csv", exportH.ExportCSV)
	docs.GET("/export/xlsx", exportH.ExportXLSX)
	docs.GET("/:id", docH.GetByID)
	docs.POST("/:id/review", docH.Review)
	docs.GET("/:id/events", docH.ReviewTrail)
	docs.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), docH.Delete)

	return r
}
