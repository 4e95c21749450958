package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	Logger *slog.Logger

	// ServiceName names the server spans.
	ServiceName string

	HealthHandler   *handlers.HealthHandler
	QuoteHandler    *handlers.QuoteHandler
	TransferHandler *handlers.TransferHandler
	SyncHandler     *handlers.SyncHandler

	// Timeout bounds every /api/v1 request. Zero disables it.
	Timeout time.Duration

	// CORSOrigins enables CORS for a browser front end. Empty disables it.
	CORSOrigins []string
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. CORS - answer preflights before anything is logged (when origins are set)
//  3. Request ID - generate/extract request ID
//  4. Correlation ID - propagate the transaction id
//  5. OpenTelemetry - tracing and metrics
//  6. Logging - request logging (skips /-/ probes)
//  7. Timeout - request deadline on /api/v1 only
//
// Route groups:
//   - /-/ (internal): probes, build info and Prometheus metrics
//   - /api/v1/: collection, sync and conflict endpoints
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(middleware.Recovery(cfg.Logger))

	if len(cfg.CORSOrigins) > 0 {
		engine.Use(newCORS(cfg.CORSOrigins))
	}

	engine.Use(
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging(cfg.Logger))

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	setupAPIRoutes(apiV1, cfg)
}

func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(rg)
	}

	if cfg.TransferHandler != nil {
		cfg.TransferHandler.RegisterTransferRoutes(rg)
	}

	if cfg.SyncHandler != nil {
		cfg.SyncHandler.RegisterSyncRoutes(rg)
	}
}

// newCORS allows the quote widget's origins to drive the API. The id and
// export headers are exposed so a browser client can read them.
func newCORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", middleware.HeaderRequestID, middleware.HeaderCorrelationID},
		ExposeHeaders: []string{
			middleware.HeaderRequestID,
			middleware.HeaderCorrelationID,
			handlers.HeaderExportCount,
			"Content-Disposition",
		},
		MaxAge: 12 * time.Hour,
	})
}
