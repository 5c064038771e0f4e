// Package guard gates protected surfaces on session state and role. The
// decision logic is a pure function over a hydration-safe snapshot, so HTTP
// middleware, the CLI and tests all share one state machine.
package guard

import (
	"github.com/nappylocks/client-sdk/internal/core/domain"
	"github.com/nappylocks/client-sdk/internal/core/ports"
)

// State is the guard's position for a given snapshot and role requirement.
type State int

const (
	// AwaitingHydration: persisted state is still being restored. No
	// redirect decision may be made yet; render a neutral loading signal.
	AwaitingHydration State = iota
	// Unauthenticated: hydration finished and nobody is signed in.
	Unauthenticated
	// WrongRole: signed in, but the session role does not satisfy the
	// route's requirement.
	WrongRole
	// Authorized: the protected content may be served.
	Authorized
)

func (s State) String() string {
	switch s {
	case AwaitingHydration:
		return "awaiting_hydration"
	case Unauthenticated:
		return "unauthenticated"
	case WrongRole:
		return "wrong_role"
	case Authorized:
		return "authorized"
	}
	return "unknown"
}

// Redirect targets for the two terminal rejection states.
const (
	LoginRoute = "/login"
	HomeRoute  = "/"
)

// Decision pairs a guard state with the redirect it mandates, if any.
type Decision struct {
	State    State
	Redirect string
}

// Evaluate derives the guard decision from a snapshot and an optional
// required role. An empty requirement admits any authenticated user.
// Super-admins pass every requirement; no other role implies another.
//
// Evaluate is stateless: callers re-run it whenever hydration status,
// session identity or the requirement changes.
func Evaluate(snap domain.SessionSnapshot, required domain.Role) Decision {
	if snap.IsLoading {
		return Decision{State: AwaitingHydration}
	}
	if !snap.IsAuthenticated {
		return Decision{State: Unauthenticated, Redirect: LoginRoute}
	}
	if required != "" && snap.Role() != required && snap.Role() != domain.RoleSuperAdmin {
		return Decision{State: WrongRole, Redirect: HomeRoute}
	}
	return Decision{State: Authorized}
}

// AfterHydration runs fn with the guard decision as soon as hydration has
// completed, immediately when it already has. The returned cancel function
// tears the subscription down; callers must invoke it when the consuming
// surface goes away so listeners do not pile up across remounts.
func AfterHydration(reader ports.SessionReader, required domain.Role, fn func(Decision)) (cancel func()) {
	return reader.OnFinishHydration(func() {
		fn(Evaluate(reader.Snapshot(), required))
	})
}
