package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nappylocks/client-sdk/internal/core/ports"
	"github.com/nappylocks/client-sdk/internal/gateway/metrics"
)

// SessionHandler exposes the session store over the local gateway.
type SessionHandler struct {
	sessions ports.SessionStore
}

func NewSessionHandler(sessions ports.SessionStore) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type registerRequest struct {
	Username  string `json:"username"  validate:"required,min=3"`
	Email     string `json:"email"     validate:"required,email"`
	Telephone string `json:"telephone" validate:"omitempty,min=7"`
	Password  string `json:"password"  validate:"required,min=8"`
}

type profileRequest struct {
	Username  string `json:"username"   validate:"omitempty,min=3"`
	Email     string `json:"email"      validate:"omitempty,email"`
	Telephone string `json:"telephone"  validate:"omitempty,min=7"`
	AvatarURL string `json:"avatar_url"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type sessionResponse struct {
	User            any  `json:"user,omitempty"`
	IsAuthenticated bool `json:"is_authenticated"`
	IsLoading       bool `json:"is_loading"`
}

func (h *SessionHandler) snapshotResponse() sessionResponse {
	snap := h.sessions.Snapshot()
	resp := sessionResponse{
		IsAuthenticated: snap.IsAuthenticated,
		IsLoading:       snap.IsLoading,
	}
	if snap.User != nil {
		resp.User = snap.User
	}
	return resp
}

// Current returns the hydration-safe session view.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snapshotResponse())
}

// Login signs the user in against the remote API.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if !h.sessions.Login(c.Request().Context(), req.Identifier, req.Password) {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "login failed"})
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return c.JSON(http.StatusOK, h.snapshotResponse())
}

// Register creates an account and signs the new user in.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Profile fields and password"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	in := ports.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Telephone: req.Telephone,
		Password:  req.Password,
	}
	if !h.sessions.Register(c.Request().Context(), in) {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "registration failed"})
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return c.JSON(http.StatusCreated, h.snapshotResponse())
}

// Logout clears the session. Always succeeds, even offline.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	metrics.AuthAttemptsTotal.WithLabelValues("logout", "success").Inc()
	return c.NoContent(http.StatusNoContent)
}

// UpdateProfile sends partial profile fields to the remote API.
//
// @Summary      Update profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      profileRequest  true  "Partial profile fields"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /session/profile [put]
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if !h.sessions.Snapshot().IsAuthenticated {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	in := ports.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		Telephone: req.Telephone,
		AvatarURL: req.AvatarURL,
	}
	if !h.sessions.UpdateProfile(c.Request().Context(), in) {
		metrics.AuthAttemptsTotal.WithLabelValues("update_profile", "failure").Inc()
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "profile update failed"})
	}

	metrics.AuthAttemptsTotal.WithLabelValues("update_profile", "success").Inc()
	return c.JSON(http.StatusOK, h.snapshotResponse())
}

// ResetPassword requests a password reset email. Always answers 202 so the
// endpoint cannot be used to probe which emails exist.
//
// @Summary      Request password reset
// @Tags         session
// @Accept       json
// @Success      202
// @Failure      400   {object}  map[string]string
// @Router       /session/reset-password [post]
func (h *SessionHandler) ResetPassword(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	h.sessions.ResetPassword(c.Request().Context(), req.Email)
	metrics.AuthAttemptsTotal.WithLabelValues("reset_password", "success").Inc()
	return c.NoContent(http.StatusAccepted)
}
