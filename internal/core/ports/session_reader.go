package ports

import "github.com/nappylocks/client-sdk/internal/core/domain"

// SessionReader is the hydration-safe read side of the session store. The
// guard and every UI surface depend on this instead of the store itself, so
// nothing outside the session service can mutate session state.
type SessionReader interface {
	// Snapshot never reports IsAuthenticated while IsLoading is true.
	Snapshot() domain.SessionSnapshot

	// HasHydrated reports whether restoration has completed this process.
	HasHydrated() bool

	// OnFinishHydration registers a callback fired exactly once when
	// hydration completes (immediately if it already has). The returned
	// function unsubscribes and is safe to call more than once.
	OnFinishHydration(fn func()) (unsubscribe func())
}
