package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/payment"
	paymentHttp "github.com/nekogravitycat/stay-booking-backend/internal/payment/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
	reservationHttp "github.com/nekogravitycat/stay-booking-backend/internal/reservation/http"
)

// Config holds the dependencies needed to build the router.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       logrus.FieldLogger

	ReservationService reservation.Service
	Reconciler         *payment.Reconciler
	JWTManager         *auth.JWTManager
	WebhookVerifier    *auth.KeyVerifier
	Pinger             Pinger

	PendingTTL      time.Duration
	ExpiryBatchSize int
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: Logs one structured entry per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logger.RequestLogger(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:8081", // Swagger
	}
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// operatorMiddleware: Further checks if the authenticated user is an operator.
	operatorMiddleware := RequireOperator()
	// webhookMiddleware: Checks the payment provider's shared key.
	webhookMiddleware := auth.WebhookKeyRequired(cfg.WebhookVerifier)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	reservationHandler := reservationHttp.NewHandler(cfg.ReservationService)
	paymentHandler := paymentHttp.NewHandler(cfg.Reconciler)
	opsHandler := NewOpsHandler(cfg.Pinger, cfg.ReservationService, cfg.PendingTTL, cfg.ExpiryBatchSize)

	r.GET("/healthz", opsHandler.Health)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		reservationHttp.RegisterRoutes(v1, reservationHandler, authMiddleware)
		paymentHttp.RegisterRoutes(v1, paymentHandler, webhookMiddleware)

		admin := v1.Group("/admin", authMiddleware, operatorMiddleware)
		admin.POST("/expire-pending", opsHandler.ExpirePending)
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
