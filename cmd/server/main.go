// Package main runs the registration and QR attendance HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thesachinyyadav/socio2026v2-sub000/config"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/attendance"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/auth"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/events"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/middleware"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/notifications"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/qrtoken"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/registrations"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/scanlog"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/users"
	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/database"
	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/queue"
	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/redis"
	"github.com/thesachinyyadav/socio2026v2-sub000/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	// Tokens signed with the built-in fallback are forgeable. Refuse to serve
	// production traffic with it; shout in every other environment.
	if cfg.QR.UsingFallback {
		if cfg.IsProduction() {
			logger.Fatal("QR_SIGNING_SECRET is required in production; refusing to start with the built-in fallback secret")
		}
		logger.Warn("QR_SIGNING_SECRET not set; using built-in development fallback, QR tokens are forgeable")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	codec := qrtoken.NewCodec(cfg.QR.Secret, cfg.QR.ValidityPeriod)
	verifier := auth.NewVerifier(cfg.JWT.Secret)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	notifier := notifications.NewNotifier(jobQueue)

	eventRepo := events.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	scanLogRepo := scanlog.NewRepository(pool)
	scanLogHandler := scanlog.NewHandler(scanLogRepo, logger)

	registrationRepo := registrations.NewRepository(pool)
	registrationService := registrations.NewService(eventRepo, userRepo, registrationRepo, codec, notifier, logger)
	registrationHandler := registrations.NewHandler(registrationService, logger)

	attendanceRepo := attendance.NewRepository(pool)
	attendanceService := attendance.NewService(codec, registrationRepo, attendanceRepo, scanLogRepo, logger)
	attendanceHandler := attendance.NewHandler(attendanceService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: registration and QR artifacts
	router.POST("/register", registrationHandler.Register)
	router.GET("/registrations/:id/qr", registrationHandler.GetQRImage)

	// Public but rate-limited: scanner devices are unauthenticated
	router.POST("/events/:eventId/scan-qr",
		middleware.RateLimit(cfg.RateLimit, rdb.Client, logger),
		attendanceHandler.Scan)

	// Admin (JWT from the external auth provider)
	admin := router.Group("")
	admin.Use(middleware.JWT(verifier), middleware.RequireRole("admin", "organizer"))
	{
		admin.POST("/events/:eventId/attendance", attendanceHandler.MarkBulk)
		admin.GET("/events/:eventId/attendance", attendanceHandler.Summary)
		admin.GET("/events/:eventId/registrations", registrationHandler.ListByEvent)
		admin.GET("/events/:eventId/scan-logs", scanLogHandler.ListByEvent)
		admin.DELETE("/registrations/:id", registrationHandler.Delete)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
