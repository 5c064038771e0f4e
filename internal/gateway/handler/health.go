package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nappylocks/client-sdk/internal/core/ports"
)

// HealthHandler handles GET /health — liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready — readiness probe. The gateway
// is ready once persisted state has been restored; until then every guarded
// answer would be a placeholder.
type ReadinessHandler struct {
	sessions ports.SessionReader
}

func NewReadinessHandler(sessions ports.SessionReader) *ReadinessHandler {
	return &ReadinessHandler{sessions: sessions}
}

type readinessResponse struct {
	Status    string `json:"status"`
	Hydration string `json:"hydration"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	if h.sessions.HasHydrated() {
		return c.JSON(http.StatusOK, readinessResponse{Status: "ok", Hydration: "complete"})
	}
	return c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "loading", Hydration: "in_progress"})
}
