package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmcl/printrun/internal/server/handlers"
	"github.com/mmcl/printrun/internal/server/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Master     *handlers.MasterHandler
	Production *handlers.ProductionHandler
	Analytics  *handlers.AnalyticsHandler
	AI         *handlers.AIHandler
	Export     *handlers.ExportHandler
	Reports    *handlers.ReportHandler
	Health     *handlers.HealthHandler
}

// Options carries router settings taken from configuration.
type Options struct {
	Mode           string
	AllowedOrigins []string
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, authn middleware.Authenticator, opts Options, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Mode == "" {
		opts.Mode = gin.ReleaseMode
	}
	gin.SetMode(opts.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.ZapLogger(logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{".xlsx"})))
	r.Use(middleware.ErrorHandler(logger))

	r.NoRoute(middleware.NotFound())

	api := r.Group("/api")
	api.GET("/health", h.Health.Health)
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("", middleware.Auth(authn))
	admin := middleware.RequireAdmin()

	authGroup := secured.Group("/auth")
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", h.Auth.Me)
	authGroup.GET("/user/:id", h.Auth.User)

	master := secured.Group("/master")
	master.GET("/publications", h.Master.Publications)
	master.GET("/machines", h.Master.Machines)
	master.GET("/downtime-reasons", h.Master.DowntimeReasons)
	master.GET("/newsprint-types", h.Master.NewsprintTypes)
	master.GET("/locations", h.Master.Locations)

	prod := secured.Group("/production")
	prod.POST("/records", h.Production.Create)
	prod.GET("/records", h.Production.List)
	prod.GET("/records/filter", h.Production.List)
	prod.GET("/records/one-time", admin, h.Production.OneTime)
	prod.GET("/records/user/:user_id", h.Production.ListByUser)
	prod.GET("/records/:id", h.Production.Get)
	prod.PUT("/records/:id", h.Production.Update)
	prod.DELETE("/records/:id", h.Production.Delete)
	prod.GET("/admin/records", admin, h.Production.AdminList)
	prod.GET("/export", admin, h.Export.Export)
	prod.GET("/reports/daily", admin, h.Reports.Daily)
	prod.POST("/reports/daily", admin, h.Reports.Publish)

	an := prod.Group("/analytics", admin)
	an.GET("/po", h.Analytics.PO())
	an.GET("/print-orders", h.Analytics.PrintOrders())
	an.GET("/machine", h.Analytics.Machine())
	an.GET("/machine-detailed", h.Analytics.MachineDetailed())
	an.GET("/lprs", h.Analytics.LPRS())
	an.GET("/newsprint", h.Analytics.Newsprint())
	an.GET("/newsprint-kgs", h.Analytics.NewsprintKgs())
	an.GET("/plate-consumption", h.Analytics.PlateConsumption())
	an.GET("/downtime", h.Analytics.Downtime())
	an.GET("/machine-downtime", h.Analytics.MachineDowntime())
	an.GET("/downtime-by-machine", h.Analytics.DowntimeByMachine())
	an.GET("/print-duration", h.Analytics.PrintDuration())
	an.GET("/wastes", h.Analytics.Wastes())
	an.GET("/downtime-details/:reason_id", h.Analytics.DowntimeDetails)

	ai := secured.Group("/ai")
	ai.GET("/predictions", h.AI.Predictions)
	ai.GET("/recommendations", h.AI.Recommendations)
	ai.GET("/model-info", h.AI.ModelInfo)
	ai.GET("/health", h.AI.Health)
	ai.POST("/batch-analysis", admin, h.AI.BatchAnalysis)

	logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	return r
}
