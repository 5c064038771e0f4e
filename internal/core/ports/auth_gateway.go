package ports

import (
	"context"

	"github.com/nappylocks/client-sdk/internal/core/domain"
)

// AuthResult is the payload of a successful login or register call.
type AuthResult struct {
	User  domain.User
	Token string
}

// RegisterInput carries the fields the registration endpoint accepts.
type RegisterInput struct {
	Username  string
	Email     string
	Telephone string
	Password  string
}

// ProfileUpdate carries the subset of user fields the profile endpoint
// accepts. Zero-valued fields are omitted from the request.
type ProfileUpdate struct {
	Username  string
	Email     string
	Telephone string
	AvatarURL string
}

// AuthGateway is the remote REST API as consumed by the session service.
// The API is a black box: this interface is the whole contract.
type AuthGateway interface {
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	UpdateProfile(ctx context.Context, token string, in ProfileUpdate) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
}

// CatalogGateway serves the read-only data the dashboards display.
type CatalogGateway interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Appointments(ctx context.Context, token string) ([]domain.Appointment, error)
}
