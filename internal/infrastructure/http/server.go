package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	handlers "github.com/ledgerbridge/booksync/internal/adapter/handler/http"
	"github.com/ledgerbridge/booksync/internal/config"
	"github.com/ledgerbridge/booksync/internal/domain/connector"
	"github.com/ledgerbridge/booksync/internal/infrastructure/database"
	"github.com/ledgerbridge/booksync/internal/infrastructure/oauthstate"
	"github.com/ledgerbridge/booksync/internal/middleware/auth"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

type Server struct {
	config     *config.Config
	logger     *zap.Logger
	echo       *echo.Echo
	repos      *database.Repositories
	connectors connector.Resolver
	redis      *redis.Client
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories, connectors connector.Resolver, redisClient *redis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE},
	}))

	return &Server{
		config:     cfg,
		logger:     logger,
		echo:       e,
		repos:      repos,
		connectors: connectors,
		redis:      redisClient,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "booksync",
		})
	})

	// Usecases
	states := oauthstate.NewStore(s.redis, s.logger)
	tokens := usecase.NewTokenService(s.repos.Connection, s.connectors, s.logger)
	reconciler := usecase.NewReconciler(
		s.repos.Customer, s.repos.Vendor, s.repos.Item,
		s.repos.Invoice, s.repos.Bill, s.repos.Account, s.logger)
	syncService := usecase.NewSyncService(s.repos.Connection, s.connectors, tokens, reconciler, s.logger)
	connectionService := usecase.NewConnectionService(s.repos.Connection, s.connectors, states, s.logger)
	writeService := usecase.NewWriteService(
		s.repos.Connection, s.connectors, tokens,
		s.repos.Customer, s.repos.Vendor, s.repos.Item,
		s.repos.Invoice, s.repos.Bill, s.logger)

	// Handlers
	connectionHandler := handlers.NewConnectionHandler(connectionService, s.logger)
	syncHandler := handlers.NewSyncHandler(syncService, s.logger)
	customerHandler := handlers.NewCustomerHandler(writeService, s.logger)
	vendorHandler := handlers.NewVendorHandler(writeService, s.logger)
	itemHandler := handlers.NewItemHandler(writeService, s.logger)
	invoiceHandler := handlers.NewInvoiceHandler(writeService, s.logger)
	billHandler := handlers.NewBillHandler(writeService, s.logger)

	// JWT middleware configuration. Only the OAuth callbacks are exempt:
	// they are hit by the platform's redirect, not by an authenticated
	// client. Requesting an authorize URL still requires a token.
	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
			"/api/v1/connect/quickbooks/callback",
			"/api/v1/connect/xero/callback",
		},
	}

	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))

	// OAuth connect flow
	v1.GET("/connect/:platform/url", connectionHandler.GetAuthorizeURL)
	v1.GET("/connect/:platform/callback", connectionHandler.HandleCallback)

	// Connections
	v1.GET("/connections", connectionHandler.ListConnections)
	v1.GET("/connections/:id", connectionHandler.GetConnection)
	v1.DELETE("/connections/:id", connectionHandler.Disconnect)

	// Sync
	v1.POST("/sync/:platform", syncHandler.SyncAll)
	v1.POST("/sync/:platform/:entity", syncHandler.SyncEntity)

	// Customers
	v1.POST("/customers", customerHandler.CreateCustomer)
	v1.GET("/customers/:id", customerHandler.GetCustomer)
	v1.PUT("/customers/:id", customerHandler.UpdateCustomer)
	v1.PATCH("/customers/:id/status", customerHandler.SetCustomerStatus)

	// Vendors
	v1.POST("/vendors", vendorHandler.CreateVendor)
	v1.GET("/vendors/:id", vendorHandler.GetVendor)
	v1.PUT("/vendors/:id", vendorHandler.UpdateVendor)
	v1.PATCH("/vendors/:id/status", vendorHandler.SetVendorStatus)

	// Items
	v1.POST("/items", itemHandler.CreateItem)
	v1.GET("/items/:id", itemHandler.GetItem)
	v1.PUT("/items/:id", itemHandler.UpdateItem)
	v1.PATCH("/items/:id/status", itemHandler.SetItemStatus)

	// Invoices
	v1.POST("/invoices", invoiceHandler.CreateInvoice)
	v1.GET("/invoices/:id", invoiceHandler.GetInvoice)
	v1.PUT("/invoices/:id", invoiceHandler.UpdateInvoice)
	v1.DELETE("/invoices/:id", invoiceHandler.DeleteInvoice)

	// Bills
	v1.POST("/bills", billHandler.CreateBill)
	v1.GET("/bills/:id", billHandler.GetBill)
	v1.PUT("/bills/:id", billHandler.UpdateBill)
}
