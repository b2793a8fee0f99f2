package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bidhaus/auction-api/internal/api/handler"
	"github.com/bidhaus/auction-api/internal/api/middleware"
	"github.com/bidhaus/auction-api/internal/core/service"
	"github.com/bidhaus/auction-api/internal/infrastructure/blob"
	mongodb "github.com/bidhaus/auction-api/internal/infrastructure/db/mongo"
	redisdb "github.com/bidhaus/auction-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auction"))

	// --- Dependencies ---
	authRepo := mongodb.NewAuthRepository(db)
	listingRepo := mongodb.NewListingRepository(db)
	imageStore, err := blob.NewGridFSStore(db)
	if err != nil {
		return nil, err
	}
	feedCache := redisdb.NewFeedCache(rdb, log)

	authService := service.NewAuthService(authRepo, jwtSecret, 24*time.Hour)
	ledgerService := service.NewLedgerService(listingRepo, authRepo, imageStore, feedCache, log)

	authHandler := handler.NewAuthHandler(authService)
	listingHandler := handler.NewListingHandler(ledgerService, imageStore)
	bidHandler := handler.NewBidHandler(ledgerService)
	requireAuth := middleware.Auth(jwtSecret)

	// --- Auth routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// --- Listing routes ---
	e.POST("/new-listing", listingHandler.Create, requireAuth)
	e.GET("/all-listings", listingHandler.ListAll)
	e.GET("/my-listings", listingHandler.ListMine)
	e.DELETE("/delete-listing", listingHandler.Delete, requireAuth)
	e.GET("/images/:ref", listingHandler.Image)

	// --- Bid / settlement routes ---
	e.POST("/post-bid", bidHandler.PlaceBid, requireAuth)
	e.POST("/sell-item", bidHandler.SellItem, requireAuth)
	e.GET("/bought-by-me", bidHandler.BoughtByMe)
	e.GET("/sold-by-me", bidHandler.SoldByMe)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
