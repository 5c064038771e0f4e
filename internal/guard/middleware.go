package guard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nappylocks/client-sdk/internal/core/domain"
	"github.com/nappylocks/client-sdk/internal/core/ports"
	"github.com/nappylocks/client-sdk/internal/gateway/metrics"
)

// Middleware gates an echo route on session state. While hydration is in
// flight it answers 503 with Retry-After instead of redirecting, because no
// trustworthy decision exists yet. Rejections redirect exactly once per
// request: unauthenticated viewers to the login route, wrong-role viewers to
// the home route.
func Middleware(reader ports.SessionReader, required domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := Evaluate(reader.Snapshot(), required)
			metrics.GuardDecisionsTotal.WithLabelValues(d.State.String()).Inc()

			switch d.State {
			case AwaitingHydration:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			case Unauthenticated, WrongRole:
				return c.Redirect(http.StatusFound, d.Redirect)
			}
			return next(c)
		}
	}
}
