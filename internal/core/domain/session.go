package domain

// Session is the in-memory record of the current authenticated user. It is
// owned exclusively by the session service; everything else reads it through
// a SessionSnapshot.
//
// Invariant: IsAuthenticated == (User != nil && Token != "").
type Session struct {
	User            *User  `json:"user,omitempty"`
	Token           string `json:"token,omitempty"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// NewAuthenticatedSession builds a session from a login/register response.
func NewAuthenticatedSession(user User, token string) Session {
	u := user
	return Session{User: &u, Token: token, IsAuthenticated: true}
}

// EmptySession is the logged-out state.
func EmptySession() Session {
	return Session{}
}

// Consistent reports whether the session respects the authentication
// invariant. All mutation paths set user and token together, so a false
// return means the persisted slot was tampered with or torn.
func (s Session) Consistent() bool {
	return s.IsAuthenticated == (s.User != nil && s.Token != "")
}

// HydrationState tracks restoration of persisted state into memory.
// It only ever moves forward: NotStarted → InProgress → Complete.
type HydrationState int32

const (
	HydrationNotStarted HydrationState = iota
	HydrationInProgress
	HydrationComplete
)

func (h HydrationState) String() string {
	switch h {
	case HydrationNotStarted:
		return "not_started"
	case HydrationInProgress:
		return "in_progress"
	case HydrationComplete:
		return "complete"
	}
	return "unknown"
}

// SessionSnapshot is the hydration-safe read view handed to consumers.
// While IsLoading is true the snapshot reports IsAuthenticated == false no
// matter what the underlying session holds, so no consumer can act on state
// that has not been restored yet.
type SessionSnapshot struct {
	User            *User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
}

// Role returns the session role, or the empty Role when logged out.
func (s SessionSnapshot) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}
