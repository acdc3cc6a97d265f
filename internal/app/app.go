// Package app wires infrastructure and feature modules for the binaries.
package app

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"go-leave/internal/config"
	"go-leave/internal/db/migrate"
	"go-leave/internal/metrics"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const connectRetries = 5

// Infra holds the long-lived connections shared by every module.
type Infra struct {
	Config  *config.Config
	Logger  *zap.Logger
	GormDB  *gorm.DB
	SQLDB   *sql.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics
}

// Connect opens Postgres and, when withRedis is set, Redis.
func Connect(cfg *config.Config, logger *zap.Logger, withRedis bool) (*Infra, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DatabaseDSN(), connectRetries, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	infra := &Infra{Config: cfg, Logger: logger, GormDB: gormDB, SQLDB: sqlDB, Metrics: metrics.New()}
	if !withRedis {
		return infra, nil
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, connectRetries, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	infra.Redis = rdb
	return infra, nil
}

func (i *Infra) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.Logger.Warn("close redis failed", zap.Error(err))
		}
	}
	if i.SQLDB != nil {
		if err := i.SQLDB.Close(); err != nil {
			i.Logger.Warn("close database failed", zap.Error(err))
		}
	}
}

// BuildRouter returns the API engine with every module mounted under /api.
func BuildRouter(infra *Infra) (*gin.Engine, error) {
	cfg := infra.Config
	if cfg.AutoMigrate {
		if err := migrate.Run(cfg.DatabaseURL(), migrate.DirectionUp); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		infra.Logger.Info("migrations applied")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.ContextLogger(infra.Logger),
		infra.Metrics.HTTP(),
	)

	router.GET("/health", healthHandler(infra, time.Now()))
	router.GET("/metrics", gin.WrapH(infra.Metrics.Handler()))

	if err := registerModules(router.Group("/api"), infra); err != nil {
		return nil, err
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Route " + c.Request.URL.Path + " not found",
			"code":    "NOT_FOUND",
		})
	})
	return router, nil
}
