package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"homelist/internal/auth"
	"homelist/internal/config"
	apphttp "homelist/internal/http"
	"homelist/internal/ratelimit"
	"homelist/internal/repository/gormdb"
	rediscache "homelist/internal/repository/redis"
	"homelist/internal/service"
	"homelist/internal/storage"
	"homelist/internal/telemetry"
)

const serviceName = "homelist"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := telemetry.Setup(ctx, serviceName, cfg.Telemetry.Endpoint, cfg.Telemetry.Insecure, logger)

	db, err := gormdb.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer gormdb.Close(db)

	userRepo := gormdb.NewUserRepository(db)
	listingRepo := gormdb.NewListingRepository(db)
	tokenRepo := gormdb.NewTokenRepository(db)
	counterRepo := gormdb.NewCounterRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := listingRepo.Init(ctx); err != nil {
		logger.Fatalf("init listing repository: %v", err)
	}
	if err := tokenRepo.Init(ctx); err != nil {
		logger.Fatalf("init token repository: %v", err)
	}
	if err := counterRepo.Init(ctx); err != nil {
		logger.Fatalf("init counter repository: %v", err)
	}

	cache, err := rediscache.Open(cfg.Redis.URL)
	if err != nil {
		logger.Fatalf("open redis: %v", err)
	}
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		logger.Fatalf("ping redis: %v", err)
	}

	bootService := service.NewBootService(counterRepo)
	boots, err := bootService.RecordStartup(ctx)
	if err != nil {
		logger.Fatalf("record startup: %v", err)
	}
	logger.WithField("boot_count", boots).Info("starting")

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(userService, tokenRepo, cache, issuer, logger)
	var photoService service.PhotoService
	if storageSvc != nil {
		photoService = service.NewPhotoService(listingRepo, storageSvc, service.PhotoConfig{
			Bucket:    cfg.Storage.Bucket,
			KeyPrefix: cfg.Storage.KeyPrefix,
			URLExpiry: cfg.Storage.PresignTTL,
		})
	}
	listingService := service.NewListingService(listingRepo, photoService, logger)

	limiter := ratelimit.New(cfg.Auth.LoginRate, cfg.Auth.LoginWindow)
	go limiter.Run(ctx)

	gin.SetMode(gin.ReleaseMode)
	handler := apphttp.NewHandler(apphttp.Deps{
		Users:    userService,
		Auth:     authService,
		Listings: listingService,
		Photos:   photoService,
		Boot:     bootService,
		Cache:    cache,
		Limiter:  limiter,
		Logger:   logger,

		TrustedProxies: cfg.Server.TrustedProxies,
	})
	router, err := apphttp.NewRouter(handler)
	if err != nil {
		logger.Fatalf("build router: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warnf("telemetry shutdown: %v", err)
	}

	logger.Info("bye")
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// buildStorage returns nil when no bucket is configured; photo routes then
// answer 503.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Warn("storage bucket not set, listing photos disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
