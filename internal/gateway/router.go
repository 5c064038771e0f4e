// Package gateway assembles the local HTTP front-end: the shape a kiosk or
// BFF deployment uses to expose session, cart and dashboard data to a
// rendering layer.
package gateway

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/nappylocks/client-sdk/internal/core/domain"
	"github.com/nappylocks/client-sdk/internal/core/ports"
	"github.com/nappylocks/client-sdk/internal/gateway/handler"
	"github.com/nappylocks/client-sdk/internal/guard"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(sessions ports.SessionStore, cart ports.CartStore, catalog ports.CatalogGateway, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("nappylocks"))

	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(sessions)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Session ---
	sessionHandler := handler.NewSessionHandler(sessions)
	e.GET("/session", sessionHandler.Current)
	e.POST("/session/login", sessionHandler.Login)
	e.POST("/session/register", sessionHandler.Register)
	e.POST("/session/logout", sessionHandler.Logout)
	e.PUT("/session/profile", sessionHandler.UpdateProfile)
	e.POST("/session/reset-password", sessionHandler.ResetPassword)

	// --- Cart (no guard: an absent cart is a safe default) ---
	cartHandler := handler.NewCartHandler(cart)
	e.GET("/cart", cartHandler.Get)
	e.POST("/cart/items", cartHandler.AddItem)
	e.PUT("/cart/items/:id", cartHandler.UpdateQuantity)
	e.DELETE("/cart/items/:id", cartHandler.RemoveItem)
	e.DELETE("/cart", cartHandler.Clear)

	// --- Catalog and role-scoped dashboards ---
	dashboards := handler.NewDashboardHandler(catalog, sessions)
	e.GET("/products", dashboards.Products)

	account := e.Group("/account", guard.Middleware(sessions, domain.RoleClient))
	account.GET("/appointments", dashboards.Appointments)

	salon := e.Group("/salon", guard.Middleware(sessions, domain.RoleManager))
	salon.GET("/appointments", dashboards.Appointments)

	admin := e.Group("/admin", guard.Middleware(sessions, domain.RoleSuperAdmin))
	admin.GET("/overview", dashboards.Overview)

	return e
}
