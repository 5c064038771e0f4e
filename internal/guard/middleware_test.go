package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nappylocks/client-sdk/internal/core/domain"
)

// stubReader implements ports.SessionReader for guard tests.
type stubReader struct {
	snap      domain.SessionSnapshot
	hydrated  bool
	observers []*func()
}

func (s *stubReader) Snapshot() domain.SessionSnapshot { return s.snap }

func (s *stubReader) HasHydrated() bool { return s.hydrated }

func (s *stubReader) OnFinishHydration(fn func()) func() {
	if s.hydrated {
		fn()
		return func() {}
	}
	ref := &fn
	s.observers = append(s.observers, ref)
	return func() { *ref = func() {} }
}

func (s *stubReader) finish() {
	s.hydrated = true
	for _, ref := range s.observers {
		(*ref)()
	}
	s.observers = nil
}

func invoke(t *testing.T, reader *stubReader, required domain.Role) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Middleware(reader, required)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func TestMiddleware_AwaitingHydration(t *testing.T) {
	reader := &stubReader{snap: domain.SessionSnapshot{IsLoading: true}}

	rec, called := invoke(t, reader, domain.RoleAdmin)
	if called {
		t.Fatalf("next handler must not run while hydrating")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Fatalf("no redirect may be issued while hydrating, got %q", loc)
	}
}

func TestMiddleware_Unauthenticated(t *testing.T) {
	reader := &stubReader{hydrated: true}

	rec, called := invoke(t, reader, "")
	if called {
		t.Fatalf("next handler must not run unauthenticated")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != LoginRoute {
		t.Fatalf("expected redirect to %q, got %q", LoginRoute, loc)
	}
}

func TestMiddleware_WrongRole(t *testing.T) {
	reader := &stubReader{hydrated: true, snap: authedSnapshot(domain.RoleClient)}

	rec, called := invoke(t, reader, domain.RoleAdmin)
	if called {
		t.Fatalf("protected content must never render for the wrong role")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != HomeRoute {
		t.Fatalf("expected redirect to %q, got %q", HomeRoute, loc)
	}
}

func TestMiddleware_Authorized(t *testing.T) {
	reader := &stubReader{hydrated: true, snap: authedSnapshot(domain.RoleManager)}

	rec, called := invoke(t, reader, domain.RoleManager)
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
