package app

import (
	"time"

	"go-leave/internal/auth"
	"go-leave/internal/dashboard"
	"go-leave/internal/department"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"
	"go-leave/internal/ratelimit"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"
	"go-leave/internal/session"
	"go-leave/internal/shared/cache"
	"go-leave/internal/shared/counter"
	"go-leave/internal/shared/token"
	"go-leave/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const idempotencyTTL = 24 * time.Hour

func registerModules(api *gin.RouterGroup, in *Infra) error {
	cfg := in.Config
	logger := in.Logger

	allocations, err := leave.ParseAllocations(cfg.LeaveAllocations)
	if err != nil {
		return err
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = uuid.NewString() + uuid.NewString()
		logger.Warn("JWT_SECRET not set, using an ephemeral secret; tokens will not survive a restart")
	}

	// --- Infrastructure adapters ---
	appCache := cache.New(in.Redis, logger)
	tokens := token.NewIssuer(jwtSecret, cfg.JWTAccessTTL)
	sessionStore := session.NewRedisStore(in.Redis, cfg.SessionTTL, cfg.MaxSessionsPerUser,
		session.WithEvictionHook(in.Metrics.SessionsEvicted),
		session.WithLogger(logger),
	)
	sessions := session.NewManager(sessionStore, cfg.SessionIdleTimeout, logger)
	limiter := ratelimit.NewRedisLimiter(in.Redis, logger)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer, rbac.Policy, logger)
	if err != nil {
		return err
	}

	// --- Repositories ---
	userRepo := user.NewRepository(in.GormDB)
	departmentRepo := department.NewRepository(in.GormDB)
	leaveRepo := leave.NewRepository(in.GormDB)
	dashboardRepo := dashboard.NewRepository(in.GormDB)
	counterRepo := counter.NewRepository(in.GormDB)
	outboxRepo := kafka.NewOutboxRepository(in.SQLDB)

	// --- Services ---
	authService := auth.NewService(in.SQLDB, userRepo, outboxRepo, sessions, tokens, auth.Options{
		BcryptCost: cfg.BcryptCost,
	}, logger)
	userService := user.NewService(userRepo, logger)
	departmentService := department.NewService(in.SQLDB, departmentRepo, appCache, logger)
	leaveService := leave.NewService(in.SQLDB, leaveRepo, counterRepo, outboxRepo, appCache, leave.Options{
		Allocations: allocations,
		Rollover:    leave.NewRolloverPolicy(cfg.LeaveCarryOverMax),
		ApproverTTL: cfg.CacheTTLApprovers,
		Metrics:     in.Metrics,
	}, logger)
	dashboardService := dashboard.NewService(dashboardRepo, appCache, cfg.CacheTTLDashboard, nil, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), logger)
	userHandler := user.NewHandler(userService, logger)
	departmentHandler := department.NewHandler(departmentService, logger)
	leaveHandler := leave.NewHandler(leaveService, rbacService, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, rbacService, logger)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Middleware ---
	authMW := middleware.AuthMiddleware(tokens, sessions)
	apiLimit := middleware.RateLimit(limiter, middleware.APIPreset(cfg.RateLimitAPI, cfg.RateLimitWindow), in.Metrics)
	authLimit := middleware.RateLimit(limiter, middleware.AuthPreset(cfg.RateLimitAuth, cfg.RateLimitWindow), in.Metrics)
	idempotency := middleware.Idempotency(in.Redis, idempotencyTTL)

	// --- Routes Registration ---
	api.Use(apiLimit)
	{
		auth.RegisterRoutes(api, authHandler, authMW, authLimit)
		user.RegisterRoutes(api, userHandler, rbacService, authMW)
		department.RegisterRoutes(api, departmentHandler, rbacService, authMW)
		leave.RegisterRoutes(api, leaveHandler, rbacService, authMW, idempotency)
		dashboard.RegisterRoutes(api, dashboardHandler, authMW)
		rbac.RegisterRoutes(api, rbacHandler, authMW)
	}

	logger.Info("modules registered", zap.Int("leave_types", len(allocations)))
	return nil
}
