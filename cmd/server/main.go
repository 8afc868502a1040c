package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dustinwells/sprinter-leads/internal/admin"
	"github.com/dustinwells/sprinter-leads/internal/digest"
	"github.com/dustinwells/sprinter-leads/internal/enrichment"
	"github.com/dustinwells/sprinter-leads/internal/fraud"
	"github.com/dustinwells/sprinter-leads/internal/intake"
	"github.com/dustinwells/sprinter-leads/internal/notifications"
	"github.com/dustinwells/sprinter-leads/internal/replydrafts"
	"github.com/dustinwells/sprinter-leads/internal/review"
	"github.com/dustinwells/sprinter-leads/internal/submissions"
	"github.com/dustinwells/sprinter-leads/pkg/common"
	"github.com/dustinwells/sprinter-leads/pkg/config"
	"github.com/dustinwells/sprinter-leads/pkg/database"
	"github.com/dustinwells/sprinter-leads/pkg/httpclient"
	"github.com/dustinwells/sprinter-leads/pkg/logger"
	"github.com/dustinwells/sprinter-leads/pkg/middleware"
	"github.com/dustinwells/sprinter-leads/pkg/ratelimit"
	"github.com/dustinwells/sprinter-leads/pkg/redis"
	"github.com/dustinwells/sprinter-leads/pkg/validation"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load("leads")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to PostgreSQL
	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	logger.Info("Connected to PostgreSQL database")

	// Connect to Redis
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	registerValidators()

	// Repositories
	submissionsRepo := submissions.NewRepository(pool)
	reviewRepo := review.NewRepository(pool)
	draftsRepo := replydrafts.NewRepository(pool)

	// Enrichment pipeline
	geoClient := enrichment.NewGeoClient(
		httpclient.NewClient(cfg.Geo.BaseURL, cfg.Geo.GeoTimeout()),
		redisClient.Client,
		time.Duration(cfg.Geo.CacheTTLHours)*time.Hour,
	)
	enricher := enrichment.NewEnricher(
		geoClient,
		enrichment.NewDuplicateChecker(submissionsRepo, cfg.Site.SiteID),
	)

	sender := notifications.NewSendGridSender(cfg.SendGrid.BaseURL, cfg.SendGrid.APIKey)

	// Services and handlers
	intakeHandler := intake.NewHandler(intake.NewService(
		submissionsRepo, reviewRepo, enricher, sender, cfg.Site, cfg.SendGrid,
	))
	adminHandler := admin.NewHandler(
		admin.NewService(submissionsRepo, reviewRepo, cfg.Admin, cfg.Site.SiteID),
		cfg.Server.Environment == "production",
	)
	digestHandler := digest.NewHandler(digest.NewService(
		submissionsRepo, reviewRepo, draftsRepo, sender, redisClient.Client,
		cfg.SendGrid, cfg.Site,
	))
	draftsHandler := replydrafts.NewHandler(draftsRepo, cfg.Site.SiteID)

	// The public contact endpoint gets a much tighter limit than the rest
	// of the API; a lead form never sees legitimate bursts.
	cfg.RateLimit.EndpointOverrides = map[string]config.EndpointRateLimitConfig{
		"/api/contact": {AnonymousLimit: 5, AnonymousBurst: 2, WindowSeconds: 60},
	}
	limiter := ratelimit.NewLimiter(redisClient.Client, cfg.RateLimit)

	router := setupRouter(cfg, limiter, intakeHandler, adminHandler, digestHandler, draftsHandler,
		map[string]func() error{
			"postgres": func() error { return pool.Ping(context.Background()) },
			"redis":    func() error { return redisClient.Ping(context.Background()).Err() },
		})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Lead service starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt, then drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}

func setupRouter(
	cfg *config.Config,
	limiter *ratelimit.Limiter,
	intakeHandler *intake.Handler,
	adminHandler *admin.Handler,
	digestHandler *digest.Handler,
	draftsHandler *replydrafts.Handler,
	healthChecks map[string]func() error,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))
	router.Use(middleware.RequestTimeout(time.Duration(cfg.Server.WriteTimeout) * time.Second))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/health", common.HealthCheckWithDeps(cfg.Server.ServiceName, version, healthChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/contact",
			middleware.RateLimit(limiter, ratelimit.IdentityAnonymous),
			intakeHandler.Submit,
		)

		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/login", adminHandler.Login)
			adminGroup.POST("/logout", adminHandler.Logout)

			authed := adminGroup.Group("", middleware.AdminAuth(cfg.Admin.JWTSecret))
			{
				authed.GET("/submissions", adminHandler.List)
				authed.GET("/submissions/:id", adminHandler.Get)
				authed.PATCH("/submissions/:id", adminHandler.Update)
				authed.DELETE("/submissions/:id", adminHandler.Delete)
			}
		}

		// Endpoints for the scheduler and the mailbox automation
		cron := api.Group("/cron", middleware.CronAuth(cfg.Cron.Secret))
		{
			cron.GET("/digest", digestHandler.Run)
			cron.POST("/reply-drafts", draftsHandler.Record)
		}
	}

	return router
}

// registerValidators adds the request enum validators to Gin's binding engine.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	for tag, valid := range map[string]func(string) bool{
		"timeline":      submissions.ValidTimeline,
		"review_status": review.ValidStatus,
		"risk_flag":     fraud.ValidFlag,
	} {
		if err := validation.RegisterEnum(v, tag, valid); err != nil {
			logger.Fatal("Failed to register validator", zap.String("tag", tag), zap.Error(err))
		}
	}
}
