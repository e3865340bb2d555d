package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bugtrail/accounts-api/internal/api/handler"
	"github.com/bugtrail/accounts-api/internal/api/middleware"
	"github.com/bugtrail/accounts-api/internal/core/service"
	"github.com/bugtrail/accounts-api/internal/infrastructure/config"
	mongodb "github.com/bugtrail/accounts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/bugtrail/accounts-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	listCache := redisdb.NewUserListCache(rdb)
	accountService := service.NewAccountService(userRepo, service.DefaultPasswordPolicy(), cfg.BcryptCost, log)
	tokenIssuer := service.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	userHandler := handler.NewUserHandler(accountService, userRepo, tokenIssuer, listCache, log)
	authMiddleware := middleware.Auth(tokenIssuer)

	// --- User routes ---
	users := e.Group("/users")
	users.GET("", userHandler.List)
	users.POST("/signup", userHandler.Signup)
	users.POST("/login", userHandler.Login)
	users.GET("/me", userHandler.Me, authMiddleware)
	users.GET("/email/:email", userHandler.GetByEmail)
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)
	users.PATCH("/:id/password", userHandler.ChangePassword)
	users.DELETE("/:id", userHandler.Delete)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
