package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-intern-portal/credentials/repofake"
	"github.com/jrsteele09/go-intern-portal/portalapi"
	"github.com/jrsteele09/go-intern-portal/session"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "a@b.com"
	testPassword = "secret1"
	tokenKey     = "token"
)

type fakeBackend struct {
	mu sync.Mutex

	verifyIdentity portalapi.Identity
	verifyErr      error
	verifyGate     chan struct{} // when set, VerifyToken waits on it
	verifyCalls    atomic.Int32
	verifiedTokens []string

	loginToken string
	loginErr   error
	loginCalls atomic.Int32

	signupResult portalapi.SignupResult
	signupErr    error
	signupCalls  atomic.Int32
}

func (f *fakeBackend) VerifyToken(ctx context.Context, accessToken string) (portalapi.Identity, error) {
	f.verifyCalls.Add(1)
	f.mu.Lock()
	f.verifiedTokens = append(f.verifiedTokens, accessToken)
	gate := f.verifyGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return portalapi.Identity{}, ctx.Err()
		}
	}
	return f.verifyIdentity, f.verifyErr
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) (string, error) {
	f.loginCalls.Add(1)
	return f.loginToken, f.loginErr
}

func (f *fakeBackend) Signup(_ context.Context, _, _ string) (portalapi.SignupResult, error) {
	f.signupCalls.Add(1)
	return f.signupResult, f.signupErr
}

func newStore(t *testing.T, api *fakeBackend) (*session.Store, *repofake.FakeCredentialRepo) {
	t.Helper()
	creds := repofake.NewFakeCredentialRepo()
	return session.New(api, creds), creds
}

func TestBootstrapWithoutToken(t *testing.T) {
	api := &fakeBackend{}
	store, _ := newStore(t, api)

	require.True(t, store.Snapshot().Loading())
	require.Equal(t, session.DecisionDefer, session.Decide(store.Snapshot()))

	require.NoError(t, store.Bootstrap(context.Background()))

	snap := store.Snapshot()
	require.False(t, snap.Loading())
	require.Nil(t, snap.Identity)
	require.Equal(t, session.DecisionRedirect, session.Decide(snap))
	require.Zero(t, api.verifyCalls.Load(), "no token, no verification request")
}

func TestBootstrapRestoresSession(t *testing.T) {
	api := &fakeBackend{verifyIdentity: portalapi.Identity{Email: testEmail, FullName: "Ada"}}
	store, creds := newStore(t, api)
	require.NoError(t, creds.Set(context.Background(), tokenKey, "persisted-token"))

	require.NoError(t, store.Bootstrap(context.Background()))

	snap := store.Snapshot()
	require.False(t, snap.Loading())
	require.NotNil(t, snap.Identity)
	require.Equal(t, api.verifyIdentity, *snap.Identity)
	require.Equal(t, session.DecisionAllow, session.Decide(snap))
	require.Equal(t, []string{"persisted-token"}, api.verifiedTokens)
	require.True(t, creds.Has(tokenKey))
}

func TestBootstrapFailureClearsToken(t *testing.T) {
	failures := map[string]error{
		"status":    &portalapi.APIError{Status: 401, Detail: "Token expired"},
		"transport": &portalapi.TransportError{Op: "verify", Err: errors.New("connection refused")},
		"malformed": portalapi.ErrMalformedReply,
	}
	for name, failure := range failures {
		t.Run(name, func(t *testing.T) {
			api := &fakeBackend{verifyErr: failure}
			store, creds := newStore(t, api)
			require.NoError(t, creds.Set(context.Background(), tokenKey, "stale"))

			require.NoError(t, store.Bootstrap(context.Background()))

			snap := store.Snapshot()
			require.False(t, snap.Loading())
			require.Nil(t, snap.Identity)
			require.False(t, creds.Has(tokenKey))
			require.Equal(t, session.DecisionRedirect, session.Decide(snap))
			require.EqualValues(t, 1, api.verifyCalls.Load(), "no retry")
		})
	}
}

func TestBootstrapRunsOnce(t *testing.T) {
	api := &fakeBackend{verifyIdentity: portalapi.Identity{Email: testEmail}}
	store, creds := newStore(t, api)
	require.NoError(t, creds.Set(context.Background(), tokenKey, "tok"))

	require.NoError(t, store.Bootstrap(context.Background()))
	require.ErrorIs(t, store.Bootstrap(context.Background()), session.ErrBootstrapStarted)
	require.ErrorIs(t, store.Start(context.Background()), session.ErrBootstrapStarted)
	require.EqualValues(t, 1, api.verifyCalls.Load())
}

func TestStartClaimsBeforeReturning(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeBackend{verifyIdentity: portalapi.Identity{Email: testEmail}, verifyGate: gate}
	store, creds := newStore(t, api)
	require.NoError(t, creds.Set(context.Background(), tokenKey, "tok"))

	require.NoError(t, store.Start(context.Background()))
	require.ErrorIs(t, store.Bootstrap(context.Background()), session.ErrBootstrapStarted)

	// While verification is in flight the guard defers, whatever identity says.
	snap := store.Snapshot()
	require.True(t, snap.Loading())
	require.Equal(t, session.DecisionDefer, session.Decide(snap))

	close(gate)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, store.Wait(ctx))
	require.Equal(t, session.DecisionAllow, session.Decide(store.Snapshot()))
}

func TestWaitHonoursContext(t *testing.T) {
	store, _ := newStore(t, &fakeBackend{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.Wait(ctx), context.Canceled)
}

func TestLoginPersistsTokenAndIdentity(t *testing.T) {
	exp := time.Date(2031, 1, 2, 3, 4, 5, 0, time.UTC)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": testEmail, "exp": exp.Unix()}).
		SignedString([]byte("k"))
	require.NoError(t, err)

	api := &fakeBackend{loginToken: raw}
	store, creds := newStore(t, api)
	require.NoError(t, store.Bootstrap(context.Background()))

	require.NoError(t, store.Login(context.Background(), testEmail, testPassword))

	stored, err := creds.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	require.Equal(t, raw, stored)

	snap := store.Snapshot()
	require.Equal(t, testEmail, snap.Identity.Identifier())
	require.True(t, snap.ExpiresAt.Equal(exp))
	require.Equal(t, session.DecisionAllow, session.Decide(snap))
	require.EqualValues(t, 1, api.loginCalls.Load())
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	api := &fakeBackend{loginErr: &portalapi.APIError{Status: 400, Detail: "Invalid credentials"}}
	store, creds := newStore(t, api)
	require.NoError(t, store.Bootstrap(context.Background()))
	before := store.Snapshot()

	err := store.Login(context.Background(), testEmail, "wrong1")
	require.EqualError(t, err, "Invalid credentials")
	require.Equal(t, before, store.Snapshot())
	require.False(t, creds.Has(tokenKey))
}

func TestLoginFailureFallbackMessage(t *testing.T) {
	api := &fakeBackend{loginErr: &portalapi.TransportError{Op: "login", Err: errors.New("timeout")}}
	store, _ := newStore(t, api)

	require.EqualError(t, store.Login(context.Background(), testEmail, testPassword), "Login failed")
}

func TestLoginPersistFailure(t *testing.T) {
	api := &fakeBackend{loginToken: "tok"}
	store, creds := newStore(t, api)
	require.NoError(t, store.Bootstrap(context.Background()))
	creds.Err = errors.New("disk full")

	require.Error(t, store.Login(context.Background(), testEmail, testPassword))
	require.Nil(t, store.Snapshot().Identity)
}

// slowRepo holds Set until release is closed.
type slowRepo struct {
	*repofake.FakeCredentialRepo
	setStarted chan struct{}
	release    chan struct{}
}

func (r *slowRepo) Set(ctx context.Context, key, value string) error {
	close(r.setStarted)
	<-r.release
	return r.FakeCredentialRepo.Set(ctx, key, value)
}

func TestSnapshotDoesNotWaitForPersistence(t *testing.T) {
	creds := &slowRepo{
		FakeCredentialRepo: repofake.NewFakeCredentialRepo(),
		setStarted:         make(chan struct{}),
		release:            make(chan struct{}),
	}
	store := session.New(&fakeBackend{loginToken: "tok"}, creds)
	require.NoError(t, store.Bootstrap(context.Background()))

	loginErr := make(chan error, 1)
	go func() {
		loginErr <- store.Login(context.Background(), testEmail, testPassword)
	}()
	<-creds.setStarted

	snapped := make(chan session.Snapshot, 1)
	go func() {
		snapped <- store.Snapshot()
	}()
	select {
	case snap := <-snapped:
		require.Nil(t, snap.Identity, "identity is set only after the token is stored")
	case <-time.After(time.Second):
		t.Fatal("Snapshot blocked behind the credential write")
	}

	close(creds.release)
	require.NoError(t, <-loginErr)
	require.Equal(t, testEmail, store.Snapshot().Identity.Identifier())
	require.True(t, creds.Has(tokenKey))
}

func TestLogoutClearsTokenAndIdentity(t *testing.T) {
	api := &fakeBackend{loginToken: "tok"}
	store, creds := newStore(t, api)
	require.NoError(t, store.Bootstrap(context.Background()))
	require.NoError(t, store.Login(context.Background(), testEmail, testPassword))
	require.Equal(t, session.DecisionAllow, session.Decide(store.Snapshot()))

	require.NoError(t, store.Logout(context.Background()))

	snap := store.Snapshot()
	require.Nil(t, snap.Identity)
	require.False(t, creds.Has(tokenKey))
	require.Equal(t, session.DecisionRedirect, session.Decide(snap))
	require.Zero(t, api.verifyCalls.Load(), "logout makes no request")
}

func TestSignupDoesNotTouchSession(t *testing.T) {
	api := &fakeBackend{signupResult: portalapi.SignupResult{Message: "User created successfully"}}
	store, creds := newStore(t, api)
	require.NoError(t, store.Bootstrap(context.Background()))
	before := store.Snapshot()

	result, err := store.Signup(context.Background(), "new@b.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, "User created successfully", result.Message)
	require.Equal(t, before, store.Snapshot())
	require.False(t, creds.Has(tokenKey))
	require.EqualValues(t, 1, api.signupCalls.Load())
}

func TestSignupErrorMessageIsServerDetail(t *testing.T) {
	api := &fakeBackend{signupErr: &portalapi.APIError{Status: 400, Detail: "Email taken"}}
	store, _ := newStore(t, api)

	_, err := store.Signup(context.Background(), testEmail, testPassword)
	require.EqualError(t, err, "Email taken")
}

func TestSignupErrorMessagePreference(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"transport", &portalapi.TransportError{Op: "signup", Err: errors.New("connection refused")}, "connection refused"},
		{"status", &portalapi.APIError{Status: 503}, "request failed with status code 503"},
		{"unknown", errors.New(""), "Signup failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newStore(t, &fakeBackend{signupErr: tt.err})
			_, err := store.Signup(context.Background(), testEmail, testPassword)
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestGuestDoesNotGrantAccess(t *testing.T) {
	store, _ := newStore(t, &fakeBackend{})
	require.NoError(t, store.Bootstrap(context.Background()))

	store.EnterAsGuest()

	snap := store.Snapshot()
	require.True(t, snap.Guest)
	require.Nil(t, snap.Identity)
	require.Equal(t, session.DecisionRedirect, session.Decide(snap))
}

func TestLoginDuringVerificationWins(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeBackend{verifyErr: &portalapi.APIError{Status: 401}, verifyGate: gate, loginToken: "fresh"}
	store, creds := newStore(t, api)
	require.NoError(t, creds.Set(context.Background(), tokenKey, "stale"))
	require.NoError(t, store.Start(context.Background()))

	require.NoError(t, store.Login(context.Background(), testEmail, testPassword))
	close(gate)
	require.NoError(t, store.Wait(context.Background()))

	stored, err := creds.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	require.Equal(t, "fresh", stored, "late verification failure must not delete the new token")
	require.Equal(t, testEmail, store.Snapshot().Identity.Identifier())
}

func TestLogoutDuringVerificationWins(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeBackend{verifyIdentity: portalapi.Identity{Email: testEmail}, verifyGate: gate}
	store, creds := newStore(t, api)
	require.NoError(t, creds.Set(context.Background(), tokenKey, "tok"))
	require.NoError(t, store.Start(context.Background()))

	require.NoError(t, store.Logout(context.Background()))
	close(gate)
	require.NoError(t, store.Wait(context.Background()))

	require.Nil(t, store.Snapshot().Identity)
	require.False(t, creds.Has(tokenKey))
}

func TestWithCredentialKey(t *testing.T) {
	creds := repofake.NewFakeCredentialRepo()
	store := session.New(&fakeBackend{loginToken: "tok"}, creds, session.WithCredentialKey("portal-token"))
	require.NoError(t, store.Login(context.Background(), testEmail, testPassword))
	require.True(t, creds.Has("portal-token"))
	require.False(t, creds.Has(tokenKey))
}
