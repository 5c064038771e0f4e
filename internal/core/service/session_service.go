package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/nappylocks/client-sdk/internal/core/domain"
	"github.com/nappylocks/client-sdk/internal/core/ports"
)

// SessionSlot is the storage slot holding the persisted session.
const SessionSlot = "nappylocks-auth"

// persistedSession is the public subset of session state written to storage.
// IsAuthenticated is derived on restore, never persisted.
type persistedSession struct {
	User  *domain.User `json:"user,omitempty"`
	Token string       `json:"token,omitempty"`
}

// SessionService is the single source of truth for the current session. It
// orchestrates every credential-affecting call to the remote API, persists
// the result, and owns the hydration lifecycle. All other components read it
// through ports.SessionReader.
//
// Operations follow a boolean contract: network and application failures are
// logged and reported as false, never raised to the caller.
type SessionService struct {
	gateway  ports.AuthGateway
	storage  ports.StateStorage
	slot     string
	log      zerolog.Logger
	validate *validator.Validate

	mu        sync.Mutex
	session   domain.Session
	hydration domain.HydrationState

	// seq supersedes in-flight credential calls: logout and every new call
	// bump it, and a response only applies while its sequence is current.
	seq uint64

	observers map[int]func()
	nextObs   int
}

// NewSessionService builds a session store over the given gateway and
// storage. The session starts empty and not hydrated.
func NewSessionService(gateway ports.AuthGateway, storage ports.StateStorage, log zerolog.Logger) *SessionService {
	return &SessionService{
		gateway:   gateway,
		storage:   storage,
		slot:      SessionSlot,
		log:       log.With().Str("component", "session").Logger(),
		validate:  validator.New(),
		observers: make(map[int]func()),
	}
}

// Hydrate restores the persisted session into memory. It is idempotent: only
// the first call runs the restoration, later calls return immediately.
// Missing, corrupt or expired state degrades to a logged-out session; a
// broken slot must never crash the client.
func (s *SessionService) Hydrate(ctx context.Context) {
	s.mu.Lock()
	if s.hydration != domain.HydrationNotStarted {
		s.mu.Unlock()
		return
	}
	s.hydration = domain.HydrationInProgress
	startSeq := s.seq
	s.mu.Unlock()

	restored := s.loadPersisted(ctx)

	s.mu.Lock()
	// A login or logout that landed while the slot was being read is newer
	// than anything on disk; the restored state loses.
	if s.seq == startSeq {
		s.session = restored
	}
	s.hydration = domain.HydrationComplete
	fired := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fired = append(fired, fn)
	}
	s.observers = make(map[int]func())
	s.mu.Unlock()

	for _, fn := range fired {
		fn()
	}
}

func (s *SessionService) loadPersisted(ctx context.Context) domain.Session {
	data, err := s.storage.Load(ctx, s.slot)
	if err != nil {
		if !errors.Is(err, domain.ErrSlotEmpty) {
			s.log.Warn().Err(err).Msg("session slot unreadable, starting logged out")
		}
		return domain.EmptySession()
	}

	var ps persistedSession
	if err := json.Unmarshal(data, &ps); err != nil {
		s.log.Warn().Err(err).Msg("session slot corrupt, starting logged out")
		return domain.EmptySession()
	}
	if ps.User == nil || ps.Token == "" {
		return domain.EmptySession()
	}
	if tokenExpired(ps.Token, time.Now()) {
		s.log.Info().Str("user_id", ps.User.ID).Msg("persisted token expired, starting logged out")
		return domain.EmptySession()
	}
	return domain.NewAuthenticatedSession(*ps.User, ps.Token)
}

// HasHydrated reports whether restoration has completed this process.
func (s *SessionService) HasHydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydration == domain.HydrationComplete
}

// OnFinishHydration registers fn to run exactly once when hydration
// completes. If it already has, fn runs immediately. The returned function
// removes the registration and is safe to call repeatedly.
func (s *SessionService) OnFinishHydration(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	if s.hydration == domain.HydrationComplete {
		s.mu.Unlock()
		fn()
		return func() {}
	}
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the hydration-safe read view. Until hydration completes
// the snapshot reports IsLoading and forces IsAuthenticated to false, so no
// consumer can act on a session that has not been restored yet.
func (s *SessionService) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.SessionSnapshot{
		Token:           s.session.Token,
		IsAuthenticated: s.session.IsAuthenticated,
		IsLoading:       s.hydration != domain.HydrationComplete,
	}
	if s.session.User != nil {
		u := *s.session.User
		snap.User = &u
	}
	if snap.IsLoading {
		snap.IsAuthenticated = false
	}
	return snap
}

type loginInput struct {
	Identifier string `validate:"required"`
	Password   string `validate:"required"`
}

// Login authenticates against the remote API. On success the session is set
// atomically (user, token and flag together) and persisted; on any failure
// the prior session is left untouched.
func (s *SessionService) Login(ctx context.Context, identifier, password string) bool {
	if err := s.validate.Struct(loginInput{Identifier: identifier, Password: password}); err != nil {
		s.log.Debug().Err(err).Msg("login input rejected")
		return false
	}

	seq := s.beginCredentialCall()

	res, err := s.gateway.Login(ctx, identifier, password)
	if err != nil {
		s.logGatewayFailure("login", err)
		return false
	}

	return s.commit(ctx, seq, func(sess *domain.Session) {
		*sess = domain.NewAuthenticatedSession(res.User, res.Token)
	})
}

type registerInput struct {
	Username  string `validate:"required,min=3"`
	Email     string `validate:"required,email"`
	Telephone string `validate:"omitempty,min=7"`
	Password  string `validate:"required,min=8"`
}

// Register creates an account and signs the new user in. The server assigns
// the default role. Same atomicity and failure contract as Login.
func (s *SessionService) Register(ctx context.Context, in ports.RegisterInput) bool {
	input := registerInput{
		Username:  in.Username,
		Email:     in.Email,
		Telephone: in.Telephone,
		Password:  in.Password,
	}
	if err := s.validate.Struct(input); err != nil {
		s.log.Debug().Err(err).Msg("register input rejected")
		return false
	}

	seq := s.beginCredentialCall()

	res, err := s.gateway.Register(ctx, in)
	if err != nil {
		s.logGatewayFailure("register", err)
		return false
	}

	return s.commit(ctx, seq, func(sess *domain.Session) {
		*sess = domain.NewAuthenticatedSession(res.User, res.Token)
	})
}

// Logout clears the session unconditionally. It never touches the network
// and must succeed offline; a failing slot delete only leaves stale bytes
// that the next hydration will overwrite or discard.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.seq++
	s.session = domain.EmptySession()
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.slot); err != nil {
		s.log.Warn().Err(err).Msg("session slot delete failed")
	}
}

type profileInput struct {
	Username  string `validate:"omitempty,min=3"`
	Email     string `validate:"omitempty,email"`
	Telephone string `validate:"omitempty,min=7"`
}

// UpdateProfile sends partial profile fields to the remote API. It requires
// an existing token and returns false immediately, without a network call,
// when there is none. The merged user is applied optimistically and reverted
// if the server rejects the update.
func (s *SessionService) UpdateProfile(ctx context.Context, in ports.ProfileUpdate) bool {
	input := profileInput{Username: in.Username, Email: in.Email, Telephone: in.Telephone}
	if err := s.validate.Struct(input); err != nil {
		s.log.Debug().Err(err).Msg("profile input rejected")
		return false
	}

	s.mu.Lock()
	if s.session.Token == "" || s.session.User == nil {
		s.mu.Unlock()
		return false
	}
	token := s.session.Token
	current := *s.session.User
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	tentative := current.Merge(domain.User{
		Username:  in.Username,
		Email:     in.Email,
		Telephone: in.Telephone,
		AvatarURL: in.AvatarURL,
	})

	err := Reconcile(ctx,
		func() domain.User { return current },
		func(u domain.User) { s.setUser(seq, u) },
		tentative,
		func(ctx context.Context) (domain.User, error) {
			updated, err := s.gateway.UpdateProfile(ctx, token, in)
			if err != nil {
				return domain.User{}, err
			}
			return *updated, nil
		},
	)
	if err != nil {
		s.logGatewayFailure("update_profile", err)
		return false
	}

	return s.persistCurrent(ctx, seq)
}

type resetInput struct {
	Email string `validate:"required,email"`
}

// ResetPassword fires the reset request and resolves true regardless of the
// server's answer, so callers cannot probe which emails exist. Whether that
// enumeration-prevention is load-bearing upstream is unverified; the
// observable contract is kept as-is.
func (s *SessionService) ResetPassword(ctx context.Context, email string) bool {
	if err := s.validate.Struct(resetInput{Email: email}); err != nil {
		s.log.Debug().Err(err).Msg("reset input rejected")
		return false
	}

	if err := s.gateway.RequestPasswordReset(ctx, email); err != nil {
		s.logGatewayFailure("reset_password", err)
	}
	return true
}

// beginCredentialCall allocates a sequence number for a credential-mutating
// call. Any later call or logout invalidates it.
func (s *SessionService) beginCredentialCall() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// commit applies mutate and re-persists the session, unless a newer call or
// a logout superseded seq while the response was in flight.
func (s *SessionService) commit(ctx context.Context, seq uint64, mutate func(*domain.Session)) bool {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.log.Info().Uint64("seq", seq).Msg("stale auth response discarded")
		return false
	}
	mutate(&s.session)
	snapshot := persistedSession{User: s.session.User, Token: s.session.Token}
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return true
}

// setUser swaps the session user in memory only, keeping token and flag.
// No-op when seq is stale.
func (s *SessionService) setUser(seq uint64, u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq || !s.session.IsAuthenticated {
		return
	}
	s.session.User = &u
}

// persistCurrent writes the in-memory session to storage if seq is still
// current.
func (s *SessionService) persistCurrent(ctx context.Context, seq uint64) bool {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return false
	}
	snapshot := persistedSession{User: s.session.User, Token: s.session.Token}
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return true
}

// persist writes the public subset to the slot. A failed write is logged and
// otherwise ignored: in-memory state stays authoritative and there is no
// cross-store transaction to roll back.
func (s *SessionService) persist(ctx context.Context, snapshot persistedSession) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.log.Error().Err(err).Msg("session encode failed")
		return
	}
	if err := s.storage.Save(ctx, s.slot, data); err != nil {
		s.log.Warn().Err(err).Msg("session persist failed")
	}
}

func (s *SessionService) logGatewayFailure(op string, err error) {
	s.log.Warn().Err(err).Str("operation", op).Msg("gateway call failed")
}

// tokenExpired peeks at JWT expiry without verifying the signature. Tokens
// that are not JWTs or carry no expiry stay opaque and are kept.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
