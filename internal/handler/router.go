package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-gate/internal/config"
	"github.com/makkenzo/license-gate/internal/domain/apikey"
	"github.com/makkenzo/license-gate/internal/domain/user"
	"github.com/makkenzo/license-gate/internal/handler/dto"
	"github.com/makkenzo/license-gate/internal/handler/middleware"
	"github.com/makkenzo/license-gate/internal/ierr"
	"github.com/makkenzo/license-gate/internal/ratelimit"
	"github.com/makkenzo/license-gate/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterDeps struct {
	CORS           config.CORSConfig
	LicenseService *service.LicenseService
	AuthService    *service.AuthService
	APIKeyService  *service.APIKeyService
	UserService    *service.UserService
	APIKeyRepo     apikey.Repository
	Governor       *ratelimit.Governor
	HealthChecks   map[string]Pinger
	Logger         *zap.Logger
}

// NewRouter wires every HTTP route of the service onto a fresh gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	appLogger := deps.Logger

	healthHandler := NewHealthHandler(deps.HealthChecks, appLogger)
	checkHandler := NewCheckHandler(deps.LicenseService, appLogger)
	licenseHandler := NewLicenseHandler(deps.LicenseService, appLogger)
	authHandler := NewAuthHandler(deps.AuthService, appLogger)
	dashboardHandler := NewDashboardHandler(deps.LicenseService, appLogger)
	apiKeyHandler := NewAPIKeyHandler(deps.APIKeyService, appLogger)
	userHandler := NewUserHandler(deps.UserService, appLogger)

	authMiddleware := middleware.AuthMiddleware(deps.AuthService, appLogger)
	apiKeyAuthMiddleware := middleware.APIKeyAuthMiddleware(deps.APIKeyRepo, appLogger)
	rateLimitMiddleware := middleware.RateLimitMiddleware(deps.Governor, appLogger)
	errorMiddleware := middleware.ErrorHandlerMiddleware(appLogger)

	editors := middleware.RequireRole(user.RoleAdmin, user.RoleModerator)
	admins := middleware.RequireRole(user.RoleAdmin)

	router := gin.New()
	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logMsg := "Panic recovered"
		if err, ok := recovered.(string); ok {
			logMsg = fmt.Sprintf("%s: %s", logMsg, err)
		} else if err, ok := recovered.(error); ok {
			logMsg = fmt.Sprintf("%s: %v", logMsg, err)
		}
		appLogger.Error(logMsg, zap.Stack("stack"))

		_ = c.Error(ierr.ErrInternalServer)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.InternalError())
	}))

	router.Use(cors.New(cors.Config{
		AllowOrigins: deps.CORS.AllowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-API-Key",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(errorMiddleware)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	checkRoutes := router.Group("/api")
	{
		checkRoutes.GET("/check-license", rateLimitMiddleware, checkHandler.Check)
		checkRoutes.GET("/check-license-simple", apiKeyAuthMiddleware, checkHandler.Check)
	}

	authRoutes := router.Group("/api/v1/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}

	apiV1 := router.Group("/api/v1")
	{
		licenseRoutes := apiV1.Group("/licenses")
		licenseRoutes.Use(authMiddleware)
		{
			licenseRoutes.POST("", editors, licenseHandler.Create)
			licenseRoutes.GET("", editors, licenseHandler.List)
			licenseRoutes.GET("/:id", editors, licenseHandler.GetByID)
			licenseRoutes.PATCH("/:id", editors, licenseHandler.Update)
			licenseRoutes.DELETE("/:id", admins, licenseHandler.Delete)
			licenseRoutes.GET("/:id/logs", editors, licenseHandler.ListLogs)
		}
		dashboardRoutes := apiV1.Group("/dashboard")
		dashboardRoutes.Use(authMiddleware, editors)
		{
			dashboardRoutes.GET("/summary", dashboardHandler.GetSummary)
		}
		apiKeyRoutes := apiV1.Group("/apikeys")
		apiKeyRoutes.Use(authMiddleware, admins)
		{
			apiKeyRoutes.POST("", apiKeyHandler.Create)
			apiKeyRoutes.GET("", apiKeyHandler.List)
			apiKeyRoutes.DELETE("/:id", apiKeyHandler.Revoke)
		}
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(authMiddleware, admins)
		{
			userRoutes.POST("", userHandler.Create)
			userRoutes.GET("", userHandler.List)
			userRoutes.DELETE("/:id", userHandler.Delete)
		}
	}

	return router
}
