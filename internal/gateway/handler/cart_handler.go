package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nappylocks/client-sdk/internal/core/domain"
	"github.com/nappylocks/client-sdk/internal/core/ports"
	"github.com/nappylocks/client-sdk/internal/gateway/metrics"
)

// CartHandler exposes the persisted cart over the local gateway.
type CartHandler struct {
	cart ports.CartStore
}

func NewCartHandler(cart ports.CartStore) *CartHandler {
	return &CartHandler{cart: cart}
}

type addItemRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Name      string  `json:"name"       validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	ImageURL  string  `json:"image_url"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice float64           `json:"total_price"`
}

func (h *CartHandler) response() cartResponse {
	items := h.cart.Items()
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartResponse{
		Items:      items,
		TotalItems: h.cart.TotalItems(),
		TotalPrice: h.cart.TotalPrice(),
	}
}

// Get returns the current cart with derived totals.
func (h *CartHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.response())
}

// AddItem adds one unit of a product, merging with an existing line.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	h.cart.AddItem(c.Request().Context(), domain.CartItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		ImageURL:  req.ImageURL,
	})
	metrics.CartMutationsTotal.WithLabelValues("add").Inc()
	return c.JSON(http.StatusCreated, h.response())
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	h.cart.UpdateQuantity(c.Request().Context(), c.Param("id"), req.Quantity)
	metrics.CartMutationsTotal.WithLabelValues("update_quantity").Inc()
	return c.JSON(http.StatusOK, h.response())
}

// RemoveItem deletes a line; no-op when absent.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	h.cart.RemoveItem(c.Request().Context(), c.Param("id"))
	metrics.CartMutationsTotal.WithLabelValues("remove").Inc()
	return c.JSON(http.StatusOK, h.response())
}

// Clear empties the cart.
func (h *CartHandler) Clear(c echo.Context) error {
	h.cart.Clear(c.Request().Context())
	metrics.CartMutationsTotal.WithLabelValues("clear").Inc()
	return c.NoContent(http.StatusNoContent)
}
