package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/api"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/catalog"
	"github.com/nekogravitycat/stay-booking-backend/internal/payment"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/stay-booking-backend/internal/pricing"
	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
	"github.com/nekogravitycat/stay-booking-backend/internal/worker"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *logrus.Logger

	// DBPool backs the catalog and reservation store. Catalog and Repository
	// override it when set (tests, standalone runs).
	DBPool     *pgxpool.Pool
	Catalog    catalog.Catalog
	Repository reservation.Repository

	JWTSecret string
	JWTTTL    time.Duration

	Policy        reservation.Policy
	PricingPolicy pricing.Policy
	Clock         clock.Clock

	PendingTTL      time.Duration
	ExpiryInterval  time.Duration
	ExpiryBatchSize int

	CatalogCacheTTL  time.Duration
	CatalogCacheSize int64

	Notifier        reservation.Notifier
	Deduper         payment.Deduper
	WebhookVerifier *auth.KeyVerifier
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router             *gin.Engine
	JWTManager         *auth.JWTManager
	ReservationService reservation.Service
	Reconciler         *payment.Reconciler
	ExpiryWorker       *worker.PendingExpiryWorker

	catalogCache *catalog.CachedCatalog
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	// Init Components
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	calculator := pricing.NewCalculator(cfg.PricingPolicy)

	// Catalog Module
	var cachedCatalog *catalog.CachedCatalog
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.NewPgxRepository(cfg.DBPool)
	}
	if cfg.CatalogCacheTTL > 0 {
		cachedCatalog = catalog.NewCachedCatalog(cat, cfg.CatalogCacheTTL, cfg.CatalogCacheSize)
		cat = cachedCatalog
	}

	// Reservation Module
	repo := cfg.Repository
	if repo == nil {
		repo = reservation.NewPgxRepository(cfg.DBPool)
	}
	reservationService := reservation.NewService(repo, cat, calculator, cfg.Notifier, cfg.Clock, log, cfg.Policy)

	// Payment Module
	reconciler := payment.NewReconciler(reservationService, cfg.Deduper, log)

	// Background Workers
	expiryWorker := worker.NewPendingExpiryWorker(reservationService, cfg.ExpiryInterval, cfg.PendingTTL, cfg.ExpiryBatchSize, log)

	// API Router Config
	routerParams := api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		Logger:             log,
		ReservationService: reservationService,
		Reconciler:         reconciler,
		JWTManager:         jwtManager,
		WebhookVerifier:    cfg.WebhookVerifier,
		PendingTTL:         cfg.PendingTTL,
		ExpiryBatchSize:    cfg.ExpiryBatchSize,
	}
	if cfg.DBPool != nil {
		routerParams.Pinger = cfg.DBPool
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:             router,
		JWTManager:         jwtManager,
		ReservationService: reservationService,
		Reconciler:         reconciler,
		ExpiryWorker:       expiryWorker,
		catalogCache:       cachedCatalog,
	}
}

// Close releases background resources owned by the container.
func (c *Container) Close() {
	if c.catalogCache != nil {
		c.catalogCache.Stop()
	}
}
