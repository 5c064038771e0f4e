// Package api implements the HTTP client for the remote NappyLocks REST API.
// The API owns all business logic (pricing, stock, scheduling, account
// storage); this package only moves JSON and surfaces failures as errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nappylocks/client-sdk/internal/core/domain"
	"github.com/nappylocks/client-sdk/internal/core/ports"
)

const defaultRequestTimeout = 15 * time.Second

// HTTPClient abstracts outbound HTTP execution so tests can stub transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the remote API. It implements ports.AuthGateway and
// ports.CatalogGateway.
type Client struct {
	baseURL string
	http    HTTPClient
	log     zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger to the client.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a Client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultRequestTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is an application-level rejection: the server answered with a
// non-2xx status and, usually, a message for the user.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

type authEnvelope struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type userEnvelope struct {
	User domain.User `json:"user"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Telephone string `json:"telephone,omitempty"`
	Password  string `json:"password"`
}

type profileRequest struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	Telephone string `json:"telephone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type resetRequest struct {
	Email string `json:"email"`
}

// Login authenticates against POST /login.
func (c *Client) Login(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	var env authEnvelope
	err := c.do(ctx, http.MethodPost, "/login", "", loginRequest{Identifier: identifier, Password: password}, &env)
	if err != nil {
		return nil, err
	}
	if env.Token == "" || env.User.ID == "" {
		return nil, fmt.Errorf("login: malformed response body")
	}
	return &ports.AuthResult{User: env.User, Token: env.Token}, nil
}

// Register creates an account against POST /register. The server assigns the
// default role.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	req := registerRequest{
		Username:  in.Username,
		Email:     in.Email,
		Telephone: in.Telephone,
		Password:  in.Password,
	}
	var env authEnvelope
	if err := c.do(ctx, http.MethodPost, "/register", "", req, &env); err != nil {
		return nil, err
	}
	if env.Token == "" || env.User.ID == "" {
		return nil, fmt.Errorf("register: malformed response body")
	}
	return &ports.AuthResult{User: env.User, Token: env.Token}, nil
}

// UpdateProfile sends partial user fields to PUT /me1 under the bearer token.
func (c *Client) UpdateProfile(ctx context.Context, token string, in ports.ProfileUpdate) (*domain.User, error) {
	req := profileRequest{
		Username:  in.Username,
		Email:     in.Email,
		Telephone: in.Telephone,
		AvatarURL: in.AvatarURL,
	}
	var env userEnvelope
	if err := c.do(ctx, http.MethodPut, "/me1", token, req, &env); err != nil {
		return nil, err
	}
	if env.User.ID == "" {
		return nil, fmt.Errorf("update profile: malformed response body")
	}
	user := env.User
	return &user, nil
}

// RequestPasswordReset fires POST /reset-password. Whether the email exists
// is deliberately not observable here.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/reset-password", "", resetRequest{Email: email}, nil)
}

// Products fetches the catalog from GET /products.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/products", "", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Appointments fetches the caller's bookings from GET /appointments.
func (c *Client) Appointments(ctx context.Context, token string) ([]domain.Appointment, error) {
	var appts []domain.Appointment
	if err := c.get(ctx, "/appointments", token, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.rejection(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, token, nil, out)
}

// rejection turns a non-2xx response into an *APIError, keeping the server's
// message when one is present.
func (c *Client) rejection(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: "request failed"}

	var env messageEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Message != "" {
		apiErr.Message = env.Message
	}

	c.log.Debug().
		Int("status", apiErr.Status).
		Str("message", apiErr.Message).
		Msg("api rejection")

	return apiErr
}
