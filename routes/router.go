package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/cppla/bootcamp-tracker/config"
	"github.com/cppla/bootcamp-tracker/controllers"
	"github.com/cppla/bootcamp-tracker/middleware"
	"github.com/cppla/bootcamp-tracker/services"
	"github.com/cppla/bootcamp-tracker/storage"
	"github.com/cppla/bootcamp-tracker/utils"
)

// Deps are the long lived collaborators handed to the router. Cache and Sessions may be nil.
type Deps struct {
	DB       *gorm.DB
	Store    storage.Store
	Cache    *utils.Cache
	Sessions *utils.SessionSigner
	// AccessLog receives one line per request; nil falls back to the application logger.
	AccessLog *zap.Logger
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())

	accessLog := deps.AccessLog
	if accessLog == nil {
		accessLog = utils.Logger
	}
	r.Use(ginzap.GinzapWithConfig(accessLog, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("request_id", middleware.GetRequestID(c))}
		},
	}))
	r.Use(ginzap.RecoveryWithZap(accessLog, true))

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Authorization", "Content-Type",
			controllers.AdminSecretHeader, controllers.UserIDHeader, middleware.RequestIDHeader,
		},
		ExposeHeaders:    []string{"Content-Length", controllers.SessionTokenHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if local, ok := deps.Store.(*storage.LocalStore); ok {
		r.Static(local.Prefix(), local.Dir())
	}

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	ledger := services.NewLedger(deps.DB, utils.Logger.Named("ledger"))
	users := services.NewUserDirectory(deps.DB, utils.Logger.Named("users"))
	policy := services.NewPolicy(cfg.AdminSecret)

	userController := controllers.NewUserController(users, deps.Cache, deps.Sessions)
	submissionController := controllers.NewSubmissionController(
		ledger, policy, deps.Store, deps.Cache, int64(cfg.MaxUploadMB)<<20,
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute).Middleware()

	r.POST("/login", limiter, userController.Login)
	r.GET("/users", userController.ListUsers)
	r.GET("/users/:id", userController.GetUser)
	r.GET("/rankings", userController.Rankings)
	r.GET("/submissions", submissionController.ListSubmissions)

	mutating := r.Group("")
	mutating.Use(limiter, middleware.Session(deps.Sessions))
	mutating.PATCH("/users/:id", userController.UpdateGender)
	mutating.POST("/submissions", submissionController.CreateSubmission)
	mutating.PUT("/submissions/:id", submissionController.UpdateSubmission)
	mutating.DELETE("/submissions/:id", submissionController.DeleteSubmission)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
