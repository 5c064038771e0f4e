package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nappylocks/client-sdk/internal/core/domain"
	"github.com/nappylocks/client-sdk/internal/core/ports"
)

// DashboardHandler proxies the read-only data the role-scoped dashboards
// display. Routes mounting it sit behind the guard middleware; by the time a
// request lands here the session is authenticated and correctly privileged.
type DashboardHandler struct {
	catalog  ports.CatalogGateway
	sessions ports.SessionReader
}

func NewDashboardHandler(catalog ports.CatalogGateway, sessions ports.SessionReader) *DashboardHandler {
	return &DashboardHandler{catalog: catalog, sessions: sessions}
}

// Products serves the public catalog.
func (h *DashboardHandler) Products(c echo.Context) error {
	products, err := h.catalog.Products(c.Request().Context())
	if err != nil {
		return err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

// Appointments serves the caller's bookings under their bearer token.
func (h *DashboardHandler) Appointments(c echo.Context) error {
	snap := h.sessions.Snapshot()
	if !snap.IsAuthenticated {
		return domain.ErrNotAuthenticated
	}

	appts, err := h.catalog.Appointments(c.Request().Context(), snap.Token)
	if err != nil {
		return err
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}
	return c.JSON(http.StatusOK, appts)
}

type overviewResponse struct {
	Products     int         `json:"products"`
	Appointments int         `json:"appointments"`
	Session      domain.Role `json:"viewing_as"`
}

// Overview aggregates headline counts for the super-admin dashboard.
func (h *DashboardHandler) Overview(c echo.Context) error {
	snap := h.sessions.Snapshot()
	if !snap.IsAuthenticated {
		return domain.ErrNotAuthenticated
	}

	products, err := h.catalog.Products(c.Request().Context())
	if err != nil {
		return err
	}
	appts, err := h.catalog.Appointments(c.Request().Context(), snap.Token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, overviewResponse{
		Products:     len(products),
		Appointments: len(appts),
		Session:      snap.Role(),
	})
}
