package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yeshwanthrajr/dataviz-api/internal/middleware"
	"github.com/yeshwanthrajr/dataviz-api/internal/service"
	"github.com/yeshwanthrajr/dataviz-api/internal/store"
	"github.com/yeshwanthrajr/dataviz-api/pkg/config"
	appErrors "github.com/yeshwanthrajr/dataviz-api/pkg/errors"
	"github.com/yeshwanthrajr/dataviz-api/pkg/logger"
	corsmiddleware "github.com/yeshwanthrajr/dataviz-api/pkg/middleware/cors"
	reqidmiddleware "github.com/yeshwanthrajr/dataviz-api/pkg/middleware/requestid"
	"github.com/yeshwanthrajr/dataviz-api/pkg/response"
)

// RouterDeps bundles everything the HTTP layer needs.
type RouterDeps struct {
	Config        *config.Config
	Logger        *zap.Logger
	Store         store.Store
	Auth          *service.AuthService
	Files         *service.FileService
	Charts        *service.ChartService
	AdminRequests *service.AdminRequestService
	Users         *service.UserService
	Stats         *service.StatsService
	Metrics       *service.MetricsService
}

// NewRouter builds the gin engine with all routes mounted under the API
// prefix, plus the operational endpoints at the root.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	if deps.Logger != nil {
		r.Use(logger.GinMiddleware(deps.Logger))
	}
	if len(deps.Config.CORS.AllowedOrigins) > 0 {
		r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	}
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := deps.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	authHandler := NewAuthHandler(deps.Auth)
	fileHandler := NewFileHandler(deps.Files)
	chartHandler := NewChartHandler(deps.Charts)
	adminRequestHandler := NewAdminRequestHandler(deps.AdminRequests)
	userHandler := NewUserHandler(deps.Users)
	statsHandler := NewStatsHandler(deps.Stats)

	authRequired := middleware.JWT(deps.Auth)

	api := r.Group(deps.Config.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		files := api.Group("/files", authRequired)
		{
			files.POST("/upload", fileHandler.Upload)
			files.GET("", fileHandler.List)
			files.GET("/pending", middleware.RequireAdmin(), fileHandler.ListPending)
			files.GET("/:id", fileHandler.Get)
			files.GET("/:id/export", fileHandler.Export)
			files.PATCH("/:id/approve", middleware.RequireAdmin(), fileHandler.Approve)
			files.PATCH("/:id/reject", middleware.RequireAdmin(), fileHandler.Reject)
		}

		charts := api.Group("/charts", authRequired)
		{
			charts.POST("", chartHandler.Create)
			charts.GET("", chartHandler.List)
			charts.GET("/file/:fileId", chartHandler.ListForFile)
		}

		adminRequests := api.Group("/admin-requests", authRequired)
		{
			adminRequests.POST("", adminRequestHandler.Create)
			adminRequests.GET("/pending", middleware.RequireSuperAdmin(), adminRequestHandler.ListPending)
			adminRequests.PATCH("/:id/approve", middleware.RequireSuperAdmin(), adminRequestHandler.Approve)
			adminRequests.PATCH("/:id/deny", middleware.RequireSuperAdmin(), adminRequestHandler.Deny)
		}

		users := api.Group("/users", authRequired)
		{
			users.GET("", middleware.RequireAdmin(), userHandler.List)
			users.PATCH("/:id/role", middleware.RequireSuperAdmin(), userHandler.UpdateRole)
		}

		stats := api.Group("/stats", authRequired)
		{
			stats.GET("/dashboard", statsHandler.Dashboard)
			stats.GET("/admin", middleware.RequireAdmin(), statsHandler.Admin)
			stats.GET("/superadmin", middleware.RequireSuperAdmin(), statsHandler.Superadmin)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	return r
}
