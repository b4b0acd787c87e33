package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	custrepo "beira/internal/repository/customer"
	msgrepo "beira/internal/repository/message"
	orderrepo "beira/internal/repository/order"
	productrepo "beira/internal/repository/product"
	settingrepo "beira/internal/repository/setting"
	"beira/internal/service/syncer"
)

// EtsyConnector drives the Etsy OAuth connect flow.
type EtsyConnector interface {
	Begin(ctx context.Context) (string, error)
	Complete(ctx context.Context, state, code string) error
}

// Deps carries everything the handlers need.
type Deps struct {
	Customers custrepo.Repository
	Products  productrepo.Repository
	Orders    orderrepo.Repository
	Messages  msgrepo.Repository
	Settings  settingrepo.Repository

	Syncs *syncer.Service
	// EtsyConnect is nil when the Etsy app credentials are not configured.
	EtsyConnect EtsyConnector
	// SquareConfigured reports whether a static Square token is present in
	// the environment; a token in the settings store also counts.
	SquareConfigured bool
}

// buildRouter wires routes for the dashboard API.
func buildRouter(logger *logrus.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	{
		api.GET("/orders", h.listOrders)
		api.GET("/orders/recent", h.recentOrders)
		api.GET("/orders/:platform/:orderID", h.getOrder)
		api.POST("/orders/square/:orderID/fulfillment", h.pushFulfillment)

		api.GET("/customers", h.listCustomers)
		api.GET("/customers/:id", h.getCustomer)

		api.GET("/products", h.listProducts)

		api.GET("/settings", h.getSettings)
		api.PUT("/settings/square-token", h.putSquareToken)

		api.POST("/sync/etsy/orders", h.syncEtsyOrders)
		api.POST("/sync/square/orders", h.syncSquareOrders)
		api.POST("/sync/square/catalog", h.syncSquareCatalog)

		api.GET("/connect/etsy", h.connectEtsy)
		api.GET("/connect/etsy/callback", h.etsyCallback)
	}

	return router
}

type handlers struct {
	deps   Deps
	logger *logrus.Logger
}
