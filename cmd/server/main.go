package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/makkenzo/feedbackhub-api/internal/config"
	"github.com/makkenzo/feedbackhub-api/internal/embedtoken"
	"github.com/makkenzo/feedbackhub-api/internal/handler"
	"github.com/makkenzo/feedbackhub-api/internal/handler/middleware"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/makkenzo/feedbackhub-api/internal/payments"
	"github.com/makkenzo/feedbackhub-api/internal/service"
	"github.com/makkenzo/feedbackhub-api/internal/storage/postgres"
	"github.com/makkenzo/feedbackhub-api/internal/storage/redis"
	"github.com/makkenzo/feedbackhub-api/internal/tasks"
	"github.com/makkenzo/feedbackhub-api/internal/worker"
	"github.com/makkenzo/feedbackhub-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const widgetPathPrefix = "/api/v1/widget/"

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	sugarLogger := appLogger.Sugar()

	sugarLogger.Info("Starting application...")
	sugarLogger.Infof("Log level set to: %s", cfg.Log.Level)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := postgres.NewPgxPool(appCtx, &cfg.Database, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbPool.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(appCtx, dbPool, appLogger); err != nil {
			sugarLogger.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	redisClient, err := redis.NewRedisClient(appCtx, &cfg.Redis, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	limiterStore, err := redis.NewLimiterStore(redisClient)
	if err != nil {
		sugarLogger.Fatalf("Failed to create rate limiter store: %v", err)
	}

	asynqClient := asynq.NewClient(worker.RedisConnOpt(&cfg.Redis))
	defer asynqClient.Close()

	embedKey, err := embedtoken.DeriveKey(cfg.Embed.Secret)
	if err != nil {
		sugarLogger.Fatalf("Failed to derive embed token key: %v", err)
	}
	if embedKey == nil {
		sugarLogger.Warn("embed.secret is empty; embed tokens are unsigned and can be forged")
	}
	tokenService := embedtoken.NewService(embedKey, embedtoken.WithTTL(cfg.Embed.TTL))

	projectRepo := postgres.NewProjectRepository(dbPool, appLogger)
	feedbackRepo := postgres.NewFeedbackRepository(dbPool, appLogger)
	subscriptionRepo := postgres.NewSubscriptionRepository(dbPool, appLogger)

	authService, err := service.NewAuthService(appCtx, &cfg.Auth, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to initialize auth service: %v", err)
	}
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, appLogger)
	accessGuard := service.NewAccessGuard(projectRepo, subscriptionService, appLogger)
	projectService := service.NewProjectService(projectRepo, subscriptionService, accessGuard, cfg.Billing.MaxFreeProjects, appLogger)
	feedbackService := service.NewFeedbackService(projectRepo, feedbackRepo, appLogger)
	billingService := service.NewBillingService(
		payments.NewStripeGateway(&cfg.Billing, appLogger),
		subscriptionRepo,
		subscriptionService,
		tasks.NewEnqueuer(asynqClient, appLogger),
		cfg.Billing.PriceIDs(),
		appLogger,
	)

	healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"database": handler.PostgresCheck(dbPool),
		"redis":    handler.RedisCheck(redisClient),
	}, appLogger)
	projectHandler := handler.NewProjectHandler(projectService, tokenService, appLogger)
	widgetHandler := handler.NewWidgetHandler(feedbackService, appLogger)
	billingHandler := handler.NewBillingHandler(billingService, appLogger)

	authMiddleware := middleware.AuthMiddleware(authService, appLogger)
	embedAuthMiddleware := middleware.EmbedAuthMiddleware(tokenService, appLogger)
	errorMiddleware := middleware.ErrorHandlerMiddleware(appLogger)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
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
		c.Abort()
	}))
	router.Use(errorMiddleware)

	dashboardCORS := cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.DashboardOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
	// Widgets are embedded on arbitrary customer sites.
	widgetCORS := cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", middleware.EmbedTokenHeader},
		MaxAge:          12 * time.Hour,
	})

	router.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, widgetPathPrefix) {
			widgetCORS(c)
			return
		}
		dashboardCORS(c)
	})

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		projectRoutes := apiV1.Group("/projects", authMiddleware)
		{
			projectRoutes.POST("", projectHandler.Create)
			projectRoutes.GET("", projectHandler.List)
			projectRoutes.GET("/:id", projectHandler.GetByID)
			projectRoutes.POST("/:id/embed-token", projectHandler.IssueEmbedToken)
		}

		widgetRoutes := apiV1.Group("/widget")
		if cfg.RateLimit.WidgetClient != "" {
			clientRateLimitMiddleware, err := middleware.ClientRateLimitMiddleware(limiterStore, cfg.RateLimit.WidgetClient, appLogger)
			if err != nil {
				sugarLogger.Fatalf("Invalid widget client rate limit %q: %v", cfg.RateLimit.WidgetClient, err)
			}
			widgetRoutes.Use(clientRateLimitMiddleware)
		}
		widgetRoutes.Use(embedAuthMiddleware)
		if cfg.RateLimit.Widget != "" {
			rateLimitMiddleware, err := middleware.RateLimitMiddleware(limiterStore, cfg.RateLimit.Widget, appLogger)
			if err != nil {
				sugarLogger.Fatalf("Invalid widget rate limit %q: %v", cfg.RateLimit.Widget, err)
			}
			widgetRoutes.Use(rateLimitMiddleware)
		}
		{
			widgetRoutes.POST("/feedback", widgetHandler.SubmitFeedback)
		}

		billingRoutes := apiV1.Group("/billing")
		{
			billingRoutes.POST("/webhook", billingHandler.Webhook)

			billingRoutes.Use(authMiddleware)

			billingRoutes.GET("/subscription", billingHandler.Subscription)
			billingRoutes.POST("/checkout", billingHandler.Checkout)
			billingRoutes.POST("/portal", billingHandler.Portal)
		}
	}

	g, groupCtx := errgroup.WithContext(appCtx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		sugarLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugarLogger.Errorf("HTTP server ListenAndServe error: %v", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		sugarLogger.Info("HTTP server stopped listening.")
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		sugarLogger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			sugarLogger.Errorf("HTTP server graceful shutdown failed: %v", err)
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		sugarLogger.Info("HTTP server shutdown complete.")
		return nil
	})

	g.Go(func() error {
		handlers := worker.Handlers{
			SubscriptionEvents: tasks.NewSubscriptionEventHandler(billingService, appLogger),
			FreeTier:           tasks.NewFreeTierEnforcer(projectRepo, subscriptionService, cfg.Billing.MaxFreeProjects, appLogger),
		}
		if err := worker.RunWorkers(groupCtx, cfg, handlers, appLogger); err != nil {
			sugarLogger.Errorw("Asynq worker failed", zap.Error(err))
			return fmt.Errorf("asynq worker error: %w", err)
		}
		sugarLogger.Info("Asynq workers finished gracefully.")
		return nil
	})

	sugarLogger.Info("Application started. Waiting for interrupt signal (Ctrl+C) or component error...")

	waitErr := g.Wait()

	sugarLogger.Info("Shutdown sequence finished.")

	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) {
			sugarLogger.Info("Shutdown reason: Context canceled (likely due to OS signal).")
		} else {
			sugarLogger.Errorf("Application shutdown finished with unexpected error: %v", waitErr)
		}
	} else {
		sugarLogger.Info("Application shutdown successfully (all components finished without errors).")
	}

	sugarLogger.Info("Application exiting now.")
}
