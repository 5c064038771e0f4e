package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nappylocks/client-sdk/internal/core/domain"
	"github.com/nappylocks/client-sdk/internal/core/ports"
)

// CartSlot is the storage slot holding the persisted cart.
const CartSlot = "nappylocks-cart"

// CartService is the persisted shopping cart. It shares the slot-storage
// substrate with the session store but never touches the network, and needs
// no loading gate: an absent cart is a safe default, not a security hazard.
type CartService struct {
	storage ports.StateStorage
	slot    string
	log     zerolog.Logger

	mu       sync.Mutex
	items    []domain.CartItem
	hydrated bool
}

// NewCartService builds an empty cart over the given storage.
func NewCartService(storage ports.StateStorage, log zerolog.Logger) *CartService {
	return &CartService{
		storage: storage,
		slot:    CartSlot,
		log:     log.With().Str("component", "cart").Logger(),
	}
}

// Hydrate restores the persisted cart. Idempotent; a missing or corrupt slot
// yields an empty cart.
func (c *CartService) Hydrate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hydrated {
		return
	}
	c.hydrated = true

	data, err := c.storage.Load(ctx, c.slot)
	if err != nil {
		if !errors.Is(err, domain.ErrSlotEmpty) {
			c.log.Warn().Err(err).Msg("cart slot unreadable, starting empty")
		}
		return
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		c.log.Warn().Err(err).Msg("cart slot corrupt, starting empty")
		return
	}
	c.items = items
}

// AddItem appends the item with quantity 1, or increments the quantity when
// the product is already in the cart. Product identifiers stay unique.
func (c *CartService) AddItem(ctx context.Context, item domain.CartItem) {
	c.mu.Lock()
	found := false
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		item.Quantity = 1
		c.items = append(c.items, item)
	}
	c.mu.Unlock()

	c.persist(ctx)
}

// RemoveItem deletes the matching entry; no-op when absent.
func (c *CartService) RemoveItem(ctx context.Context, productID string) {
	c.mu.Lock()
	c.removeLocked(productID)
	c.mu.Unlock()

	c.persist(ctx)
}

// UpdateQuantity sets the quantity for a product. A quantity of zero or less
// removes the item: a zero or negative line must never survive in the cart.
func (c *CartService) UpdateQuantity(ctx context.Context, productID string, qty int) {
	c.mu.Lock()
	if qty <= 0 {
		c.removeLocked(productID)
	} else {
		for i := range c.items {
			if c.items[i].ProductID == productID {
				c.items[i].Quantity = qty
				break
			}
		}
	}
	c.mu.Unlock()

	c.persist(ctx)
}

// Clear resets the cart to an empty sequence.
func (c *CartService) Clear(ctx context.Context) {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	c.persist(ctx)
}

// Items returns a copy of the cart lines in insertion order.
func (c *CartService) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// TotalItems sums quantities across all lines.
func (c *CartService) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice sums unit price times quantity with plain float semantics;
// rounding is a display concern.
func (c *CartService) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0.0
	for _, it := range c.items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

func (c *CartService) removeLocked(productID string) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *CartService) persist(ctx context.Context) {
	c.mu.Lock()
	items := c.items
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	c.mu.Unlock()
	if err != nil {
		c.log.Error().Err(err).Msg("cart encode failed")
		return
	}
	if err := c.storage.Save(ctx, c.slot, data); err != nil {
		c.log.Warn().Err(err).Msg("cart persist failed")
	}
}
