package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/infield/user-service/docs" // swagger docs
	"github.com/infield/user-service/internal/api/handler"
	"github.com/infield/user-service/internal/api/middleware"
	"github.com/infield/user-service/internal/core/domain"
	"github.com/infield/user-service/internal/core/ports"
	"github.com/infield/user-service/internal/core/service"
	mongorepo "github.com/infield/user-service/internal/infrastructure/db/mongo"
	redisstore "github.com/infield/user-service/internal/infrastructure/db/redis"
)

const metricsSubsystem = "infield_users"

// Options holds the settings the router needs beyond its backing stores.
type Options struct {
	JWTSecret                 string
	JWTTTL                    time.Duration
	PhoneVerificationCooldown time.Duration
	// EnableSwagger serves the API docs under /swagger/*.
	EnableSwagger bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb redis.UniversalClient,
	notifier ports.PhoneNotifier,
	opts Options,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echoprometheus.NewMiddleware(metricsSubsystem))

	// --- Dependencies ---
	users := mongorepo.NewUserRepository(db)
	throttle := redisstore.NewVerificationThrottle(rdb)

	authService := service.NewAuthService(users, opts.JWTSecret, opts.JWTTTL)
	profileService := service.NewProfileService(users, notifier, throttle, opts.PhoneVerificationCooldown, log)
	directoryService := service.NewDirectoryService(users, log)
	ratingService := service.NewRatingService(users, log)

	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService)
	directoryHandler := handler.NewDirectoryHandler(directoryService)
	ratingHandler := handler.NewRatingHandler(ratingService)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", middleware.Auth(opts.JWTSecret), middleware.CurrentUser(users))
	agronomistOnly := middleware.RequireAccountType(domain.AccountAgronomist)

	me := v1.Group("/users/me")
	me.GET("", profileHandler.GetMe)
	me.PATCH("", profileHandler.EditMe)
	me.DELETE("", profileHandler.DeleteMe)
	me.POST("/skills", profileHandler.AddSkills, agronomistOnly)
	me.DELETE("/skills/specialty", profileHandler.RemoveSpecialty)
	me.DELETE("/skills/region", profileHandler.RemoveRegion)
	me.GET("/specialties", profileHandler.AvailableSpecialties, agronomistOnly)
	me.GET("/regions", profileHandler.AvailableRegions, agronomistOnly)
	me.POST("/phone/verification", profileHandler.RequestPhoneVerification)
	me.POST("/phone/confirm", profileHandler.ConfirmPhone)

	v1.GET("/users/search", directoryHandler.Search)
	v1.GET("/users/:id", directoryHandler.Get)
	v1.POST("/users/:id/rating", ratingHandler.Rate, middleware.RequireAccountType(domain.AccountFarmer))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(map[string]handler.DependencyCheck{
		"mongodb": handler.MongoCheck(db),
		"redis":   handler.RedisCheck(rdb),
	})

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())

	if opts.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}
