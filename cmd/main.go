package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Abdul-Aziz026/school-auth/internal/api/http/router"
	"github.com/Abdul-Aziz026/school-auth/internal/audit"
	"github.com/Abdul-Aziz026/school-auth/internal/config"
	"github.com/Abdul-Aziz026/school-auth/internal/email"
	"github.com/Abdul-Aziz026/school-auth/internal/limiter"
	"github.com/Abdul-Aziz026/school-auth/internal/lockout"
	"github.com/Abdul-Aziz026/school-auth/internal/logger"
	"github.com/Abdul-Aziz026/school-auth/internal/model"
	"github.com/Abdul-Aziz026/school-auth/internal/password"
	"github.com/Abdul-Aziz026/school-auth/internal/repository/postgres"
	"github.com/Abdul-Aziz026/school-auth/internal/server"
	"github.com/Abdul-Aziz026/school-auth/internal/service"
	"github.com/Abdul-Aziz026/school-auth/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	auditRepo := postgres.NewAuditLogRepository(db)

	auditSink := audit.NewSink(auditRepo, 256, logger)
	defer auditSink.Close()

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.Auth.AccessTTL, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.ClockSkew)
	hasher := password.NewHasher(cfg.Auth.PasswordHashCost)

	var loginLimiter model.LoginLimiter
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		loginLimiter = limiter.NewRedisLimiter(redisClient,
			cfg.Redis.LoginMaxAttempts, cfg.Redis.LoginWindow, cfg.Redis.LoginBlock)
	}

	var dispatcher model.EmailDispatcher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaDispatcher := email.NewKafkaDispatcher(cfg.Kafka.Brokers, cfg.Kafka.EmailTopic, cfg.Email)
		defer kafkaDispatcher.Close()
		dispatcher = email.NewBreakerDispatcher(kafkaDispatcher, logger)
	} else {
		dispatcher = email.NewLogDispatcher(logger)
	}

	tokenService := service.NewTokenService(userRepo, refreshTokenRepo, tokenManager, auditSink, cfg.Auth, logger)
	policy := lockout.Policy{
		MaxAttempts: cfg.Auth.MaxFailedLoginAttempts,
		Duration:    cfg.Auth.LockoutDuration,
	}
	authService := service.NewAuth(userRepo, hasher, tokenService, policy, loginLimiter, dispatcher, auditSink, logger)
	resetService := service.NewPasswordReset(userRepo, tokenService, hasher, dispatcher, auditSink, cfg.Auth, logger)

	handler := router.New(authService, tokenService, resetService, tokenService, db, logger)
	httpServer := server.NewHTTPServer(handler, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
