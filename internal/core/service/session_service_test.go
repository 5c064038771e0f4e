package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/nappylocks/client-sdk/internal/core/domain"
	"github.com/nappylocks/client-sdk/internal/core/ports"
)

type stubGateway struct {
	loginFn    func(ctx context.Context, identifier, password string) (*ports.AuthResult, error)
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	updateFn   func(ctx context.Context, token string, in ports.ProfileUpdate) (*domain.User, error)
	resetFn    func(ctx context.Context, email string) error
}

func (s *stubGateway) Login(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	if s.loginFn == nil {
		return nil, errors.New("login not stubbed")
	}
	return s.loginFn(ctx, identifier, password)
}

func (s *stubGateway) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if s.registerFn == nil {
		return nil, errors.New("register not stubbed")
	}
	return s.registerFn(ctx, in)
}

func (s *stubGateway) UpdateProfile(ctx context.Context, token string, in ports.ProfileUpdate) (*domain.User, error) {
	if s.updateFn == nil {
		return nil, errors.New("update not stubbed")
	}
	return s.updateFn(ctx, token, in)
}

func (s *stubGateway) RequestPasswordReset(ctx context.Context, email string) error {
	if s.resetFn == nil {
		return errors.New("reset not stubbed")
	}
	return s.resetFn(ctx, email)
}

type memStorage struct {
	mu        sync.Mutex
	slots     map[string][]byte
	saveErr   error
	loadErr   error
	deleteErr error
}

func newMemStorage() *memStorage {
	return &memStorage{slots: make(map[string][]byte)}
}

func (m *memStorage) Save(_ context.Context, slot string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.slots[slot] = cp
	return nil
}

func (m *memStorage) Load(_ context.Context, slot string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	data, ok := m.slots[slot]
	if !ok {
		return nil, domain.ErrSlotEmpty
	}
	return data, nil
}

func (m *memStorage) Delete(_ context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.slots, slot)
	return nil
}

func testUser() domain.User {
	return domain.User{
		ID:       "u1",
		Email:    "a@b.com",
		Username: "alice",
		Role:     domain.RoleClient,
	}
}

func okLoginGateway(t *testing.T) *stubGateway {
	t.Helper()
	return &stubGateway{
		loginFn: func(_ context.Context, identifier, _ string) (*ports.AuthResult, error) {
			u := testUser()
			u.Email = identifier
			return &ports.AuthResult{User: u, Token: "abc"}, nil
		},
	}
}

func hydrated(t *testing.T, svc *SessionService) {
	t.Helper()
	svc.Hydrate(context.Background())
}

func TestSessionService_Login_Success(t *testing.T) {
	store := newMemStorage()
	svc := NewSessionService(okLoginGateway(t), store, zerolog.Nop())
	hydrated(t, svc)

	if !svc.Login(context.Background(), "a@b.com", "secret") {
		t.Fatalf("expected login to succeed")
	}

	snap := svc.Snapshot()
	if !snap.IsAuthenticated {
		t.Fatalf("expected authenticated snapshot")
	}
	if snap.User == nil || snap.User.Email != "a@b.com" {
		t.Fatalf("unexpected user: %+v", snap.User)
	}
	if snap.Token != "abc" {
		t.Fatalf("unexpected token: %q", snap.Token)
	}
	if _, ok := store.slots[SessionSlot]; !ok {
		t.Fatalf("expected session to be persisted")
	}
}

func TestSessionService_Login_Failure_LeavesSessionUntouched(t *testing.T) {
	gw := okLoginGateway(t)
	svc := NewSessionService(gw, newMemStorage(), zerolog.Nop())
	hydrated(t, svc)

	if !svc.Login(context.Background(), "a@b.com", "secret") {
		t.Fatalf("initial login failed")
	}

	gw.loginFn = func(context.Context, string, string) (*ports.AuthResult, error) {
		return nil, errors.New("bad credentials")
	}
	if svc.Login(context.Background(), "x@y.com", "wrong") {
		t.Fatalf("expected failed login to return false")
	}

	snap := svc.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil || snap.User.Email != "a@b.com" {
		t.Fatalf("failed login mutated session: %+v", snap)
	}
}

func TestSessionService_Login_InvalidInput_SkipsGateway(t *testing.T) {
	called := false
	gw := &stubGateway{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			called = true
			return nil, errors.New("should not be reached")
		},
	}
	svc := NewSessionService(gw, newMemStorage(), zerolog.Nop())
	hydrated(t, svc)

	if svc.Login(context.Background(), "", "secret") {
		t.Fatalf("expected false for empty identifier")
	}
	if svc.Login(context.Background(), "a@b.com", "") {
		t.Fatalf("expected false for empty password")
	}
	if called {
		t.Fatalf("gateway must not be called for invalid input")
	}
}

func TestSessionService_InvariantHoldsAcrossOperations(t *testing.T) {
	gw := okLoginGateway(t)
	svc := NewSessionService(gw, newMemStorage(), zerolog.Nop())

	check := func(step string) {
		snap := svc.Snapshot()
		got := snap.IsAuthenticated
		want := snap.User != nil && snap.Token != "" && !snap.IsLoading
		if got != want {
			t.Fatalf("%s: invariant violated: %+v", step, snap)
		}
	}

	check("before hydration")
	hydrated(t, svc)
	check("after hydration")
	svc.Login(context.Background(), "a@b.com", "secret")
	check("after login")
	svc.Logout(context.Background())
	check("after logout")
}

func TestSessionService_Logout_AlwaysSucceeds(t *testing.T) {
	store := newMemStorage()
	store.deleteErr = errors.New("disk is gone")
	svc := NewSessionService(okLoginGateway(t), store, zerolog.Nop())
	hydrated(t, svc)

	svc.Login(context.Background(), "a@b.com", "secret")
	svc.Logout(context.Background())

	snap := svc.Snapshot()
	if snap.IsAuthenticated || snap.User != nil || snap.Token != "" {
		t.Fatalf("logout left session state behind: %+v", snap)
	}
}

func TestSessionService_HydrationOrdering(t *testing.T) {
	store := newMemStorage()
	u := testUser()
	seedSession(t, store, &u, "restored-token")

	svc := NewSessionService(&stubGateway{}, store, zerolog.Nop())

	before := svc.Snapshot()
	if !before.IsLoading {
		t.Fatalf("expected IsLoading before hydration")
	}
	if before.IsAuthenticated {
		t.Fatalf("must never report authenticated before hydration completes")
	}

	hydrated(t, svc)

	after := svc.Snapshot()
	if after.IsLoading {
		t.Fatalf("expected IsLoading false after hydration")
	}
	if !after.IsAuthenticated || after.Token != "restored-token" {
		t.Fatalf("restored session not visible: %+v", after)
	}
}

func TestSessionService_Hydrate_Idempotent(t *testing.T) {
	store := newMemStorage()
	u := testUser()
	seedSession(t, store, &u, "tok")

	svc := NewSessionService(&stubGateway{}, store, zerolog.Nop())
	svc.Hydrate(context.Background())
	first := svc.Snapshot()

	// A second call must not re-run restoration or clobber later state.
	svc.Hydrate(context.Background())
	second := svc.Snapshot()

	if first.IsAuthenticated != second.IsAuthenticated || first.Token != second.Token {
		t.Fatalf("second hydrate changed state: %+v vs %+v", first, second)
	}
}

func TestSessionService_Hydrate_CorruptSlot(t *testing.T) {
	store := newMemStorage()
	store.slots[SessionSlot] = []byte("{not json")

	svc := NewSessionService(&stubGateway{}, store, zerolog.Nop())
	hydrated(t, svc)

	snap := svc.Snapshot()
	if snap.IsAuthenticated || snap.IsLoading {
		t.Fatalf("corrupt slot must hydrate to logged-out: %+v", snap)
	}
}

func TestSessionService_Hydrate_TornSlot(t *testing.T) {
	// Token without user violates the session invariant; hydration must
	// refuse it rather than restore a half-session.
	store := newMemStorage()
	seedSession(t, store, nil, "orphan-token")

	svc := NewSessionService(&stubGateway{}, store, zerolog.Nop())
	hydrated(t, svc)

	snap := svc.Snapshot()
	if snap.IsAuthenticated || snap.Token != "" {
		t.Fatalf("torn slot must hydrate to logged-out: %+v", snap)
	}
}

func TestSessionService_Hydrate_ExpiredTokenDiscarded(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	store := newMemStorage()
	u := testUser()
	seedSession(t, store, &u, signed)

	svc := NewSessionService(&stubGateway{}, store, zerolog.Nop())
	hydrated(t, svc)

	if snap := svc.Snapshot(); snap.IsAuthenticated {
		t.Fatalf("expired token must hydrate to logged-out: %+v", snap)
	}
}

func TestSessionService_Hydrate_OpaqueTokenKept(t *testing.T) {
	store := newMemStorage()
	u := testUser()
	seedSession(t, store, &u, "not-a-jwt")

	svc := NewSessionService(&stubGateway{}, store, zerolog.Nop())
	hydrated(t, svc)

	if snap := svc.Snapshot(); !snap.IsAuthenticated {
		t.Fatalf("opaque tokens must be restored as-is: %+v", snap)
	}
}

func TestSessionService_RoundTrip(t *testing.T) {
	store := newMemStorage()
	svc := NewSessionService(okLoginGateway(t), store, zerolog.Nop())
	hydrated(t, svc)
	svc.Login(context.Background(), "a@b.com", "secret")

	// Fresh process over the same storage.
	fresh := NewSessionService(&stubGateway{}, store, zerolog.Nop())
	hydrated(t, fresh)

	got := fresh.Snapshot()
	want := svc.Snapshot()
	if !got.IsAuthenticated || got.Token != want.Token {
		t.Fatalf("round trip lost state: %+v vs %+v", got, want)
	}
	if got.User == nil || want.User == nil || *got.User != *want.User {
		t.Fatalf("round trip lost user: %+v vs %+v", got.User, want.User)
	}
}

func TestSessionService_OnFinishHydration(t *testing.T) {
	store := newMemStorage()
	svc := NewSessionService(&stubGateway{}, store, zerolog.Nop())

	fired := 0
	svc.OnFinishHydration(func() { fired++ })

	removed := 0
	unsubscribe := svc.OnFinishHydration(func() { removed++ })
	unsubscribe()
	unsubscribe() // must be safe to call again

	hydrated(t, svc)

	if fired != 1 {
		t.Fatalf("expected callback to fire exactly once, fired %d", fired)
	}
	if removed != 0 {
		t.Fatalf("unsubscribed callback fired %d times", removed)
	}

	// Late subscribers run immediately.
	late := 0
	svc.OnFinishHydration(func() { late++ })
	if late != 1 {
		t.Fatalf("late subscriber should fire immediately, fired %d", late)
	}
}

func TestSessionService_StaleLoginDiscardedAfterLogout(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &stubGateway{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			close(started)
			<-release
			return &ports.AuthResult{User: testUser(), Token: "stale"}, nil
		},
	}
	svc := NewSessionService(gw, newMemStorage(), zerolog.Nop())
	hydrated(t, svc)

	done := make(chan bool, 1)
	go func() {
		done <- svc.Login(context.Background(), "a@b.com", "secret")
	}()

	// Logout while the login response is still in flight, then let the
	// response land. Logout must win.
	<-started
	svc.Logout(context.Background())
	close(release)

	if <-done {
		t.Fatalf("superseded login must report failure")
	}
	if snap := svc.Snapshot(); snap.IsAuthenticated {
		t.Fatalf("stale login response re-authenticated a logged-out user: %+v", snap)
	}
}

func TestSessionService_UpdateProfile_RequiresToken(t *testing.T) {
	called := false
	gw := &stubGateway{
		updateFn: func(context.Context, string, ports.ProfileUpdate) (*domain.User, error) {
			called = true
			return nil, errors.New("should not be reached")
		},
	}
	svc := NewSessionService(gw, newMemStorage(), zerolog.Nop())
	hydrated(t, svc)

	if svc.UpdateProfile(context.Background(), ports.ProfileUpdate{Username: "newname"}) {
		t.Fatalf("expected false without a token")
	}
	if called {
		t.Fatalf("gateway must not be called without a token")
	}
}

func TestSessionService_UpdateProfile_RevertsOnFailure(t *testing.T) {
	gw := okLoginGateway(t)
	svc := NewSessionService(gw, newMemStorage(), zerolog.Nop())
	hydrated(t, svc)
	svc.Login(context.Background(), "a@b.com", "secret")

	gw.updateFn = func(context.Context, string, ports.ProfileUpdate) (*domain.User, error) {
		return nil, errors.New("server rejected")
	}
	if svc.UpdateProfile(context.Background(), ports.ProfileUpdate{Username: "newname"}) {
		t.Fatalf("expected false on gateway failure")
	}
	if snap := svc.Snapshot(); snap.User.Username != "alice" {
		t.Fatalf("failed update left tentative state applied: %+v", snap.User)
	}
}

func TestSessionService_UpdateProfile_AppliesServerUser(t *testing.T) {
	gw := okLoginGateway(t)
	svc := NewSessionService(gw, newMemStorage(), zerolog.Nop())
	hydrated(t, svc)
	svc.Login(context.Background(), "a@b.com", "secret")

	gw.updateFn = func(_ context.Context, token string, in ports.ProfileUpdate) (*domain.User, error) {
		if token != "abc" {
			t.Fatalf("expected bearer token to be forwarded, got %q", token)
		}
		u := testUser()
		u.Email = "a@b.com"
		u.Username = in.Username
		return &u, nil
	}
	if !svc.UpdateProfile(context.Background(), ports.ProfileUpdate{Username: "newname"}) {
		t.Fatalf("expected update to succeed")
	}
	snap := svc.Snapshot()
	if snap.User.Username != "newname" {
		t.Fatalf("server user not applied: %+v", snap.User)
	}
	if !snap.IsAuthenticated || snap.Token != "abc" {
		t.Fatalf("update must not disturb token or flag: %+v", snap)
	}
}

func TestSessionService_ResetPassword_AlwaysTrue(t *testing.T) {
	gw := &stubGateway{
		resetFn: func(context.Context, string) error {
			return errors.New("network down")
		},
	}
	svc := NewSessionService(gw, newMemStorage(), zerolog.Nop())
	hydrated(t, svc)

	if !svc.ResetPassword(context.Background(), "a@b.com") {
		t.Fatalf("reset must resolve true even when the request fails")
	}
}

func seedSession(t *testing.T, store *memStorage, user *domain.User, token string) {
	t.Helper()
	data, err := json.Marshal(persistedSession{User: user, Token: token})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	store.slots[SessionSlot] = data
}
