package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"portfolio-hub/internal/auth"
	"portfolio-hub/internal/config"
	apphttp "portfolio-hub/internal/http"
	"portfolio-hub/internal/repository/sqlite"
	"portfolio-hub/internal/service"
	"portfolio-hub/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	projectRepo := sqlite.NewProjectRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := projectRepo.Init(ctx); err != nil {
		logger.Fatalf("init project repository: %v", err)
	}
	if err := commentRepo.Init(ctx); err != nil {
		logger.Fatalf("init comment repository: %v", err)
	}
	if err := activityRepo.Init(ctx); err != nil {
		logger.Fatalf("init activity repository: %v", err)
	}

	userService := service.NewUserService(userRepo, cfg.Owner.Email)
	projectService := service.NewProjectService(projectRepo, commentRepo)
	commentService := service.NewCommentService(commentRepo, projectRepo)
	activityService := service.NewActivityService(activityRepo, logger)

	seedOwner(ctx, cfg, userService, logger)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		projectService,
		commentService,
		activityService,
		tokens,
		storageSvc,
		cfg.Storage.Bucket,
		cfg.Storage.KeyPrefix,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	logger.Info("bye")
}

func seedOwner(ctx context.Context, cfg config.Config, users service.UserService, logger *logrus.Logger) {
	if strings.TrimSpace(cfg.Owner.Password) == "" {
		logger.Warn("owner password not configured, skipping owner seed")
		return
	}

	_, err := users.Register(ctx, service.RegisterInput{
		Name:     cfg.Owner.Name,
		Email:    cfg.Owner.Email,
		Password: cfg.Owner.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			return
		}
		logger.Warnf("seed owner account: %v", err)
		return
	}
	logger.Infof("seeded owner account %s", cfg.Owner.Email)
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("storage bucket not configured, uploads disabled")
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
