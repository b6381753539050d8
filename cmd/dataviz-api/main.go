package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/yeshwanthrajr/dataviz-api/api/swagger"
	"github.com/yeshwanthrajr/dataviz-api/internal/handler"
	"github.com/yeshwanthrajr/dataviz-api/internal/models"
	"github.com/yeshwanthrajr/dataviz-api/internal/service"
	"github.com/yeshwanthrajr/dataviz-api/internal/store"
	"github.com/yeshwanthrajr/dataviz-api/pkg/cache"
	"github.com/yeshwanthrajr/dataviz-api/pkg/config"
	"github.com/yeshwanthrajr/dataviz-api/pkg/logger"
	"github.com/yeshwanthrajr/dataviz-api/pkg/storage"
)

// @title DataViz API
// @version 0.1.0
// @description Spreadsheet upload, review and chart generation service
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to open store", "driver", cfg.Storage.Driver, "error", err)
	}
	defer st.Close() //nolint:errcheck

	if err := ensureSuperadmin(context.Background(), st, cfg, logr); err != nil {
		logr.Sugar().Fatalw("failed to bootstrap superadmin", "error", err)
	}

	uploads, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "dir", cfg.Storage.UploadDir, "error", err)
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
		} else {
			cacheSvc = service.NewCacheService(cache.NewStore(client), metrics, cfg.Stats.CacheTTL, logr)
		}
	}

	auth := service.NewAuthService(st, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	files := service.NewFileService(st, uploads, logr, metrics, cfg.Storage.MaxUploadBytes)
	charts := service.NewChartService(st, nil, logr, metrics)
	adminRequests := service.NewAdminRequestService(st, nil, logr)
	users := service.NewUserService(st, logr)
	stats := service.NewStatsService(st, uploads, cacheSvc, logr)

	r := handler.NewRouter(handler.RouterDeps{
		Config:        cfg,
		Logger:        logr,
		Store:         st,
		Auth:          auth,
		Files:         files,
		Charts:        charts,
		AdminRequests: adminRequests,
		Users:         users,
		Stats:         stats,
		Metrics:       metrics,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "driver", cfg.Storage.Driver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// ensureSuperadmin creates the configured superadmin account on first start
// so a fresh deployment always has one account able to review requests.
func ensureSuperadmin(ctx context.Context, st store.Store, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Bootstrap.SuperadminEmail == "" || cfg.Bootstrap.SuperadminPassword == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := st.GetUserByEmail(ctx, cfg.Bootstrap.SuperadminEmail); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Bootstrap.SuperadminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:        cfg.Bootstrap.SuperadminEmail,
		PasswordHash: string(hash),
		Name:         cfg.Bootstrap.SuperadminName,
		Role:         models.RoleSuperAdmin,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		return err
	}
	logr.Sugar().Infow("bootstrapped superadmin account", "email", user.Email)
	return nil
}
