package ports

import (
	"context"

	"github.com/nappylocks/client-sdk/internal/core/domain"
)

// SessionStore is the full session surface: the hydration-safe read side
// plus every credential-affecting operation. Operations resolve to a
// success flag; failures never propagate as errors.
type SessionStore interface {
	SessionReader

	Hydrate(ctx context.Context)
	Login(ctx context.Context, identifier, password string) bool
	Register(ctx context.Context, in RegisterInput) bool
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, in ProfileUpdate) bool
	ResetPassword(ctx context.Context, email string) bool
}

// CartStore is the persisted shopping cart surface.
type CartStore interface {
	Hydrate(ctx context.Context)
	AddItem(ctx context.Context, item domain.CartItem)
	RemoveItem(ctx context.Context, productID string)
	UpdateQuantity(ctx context.Context, productID string, qty int)
	Clear(ctx context.Context)
	Items() []domain.CartItem
	TotalItems() int
	TotalPrice() float64
}
