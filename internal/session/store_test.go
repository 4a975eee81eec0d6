package session

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/pot-cli/internal/adapters/secrets/memory"
	"github.com/bnema/pot-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	users     map[string]domain.User
	loginErr  error
	updateErr error
	meCalls   []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: map[string]domain.User{
		"tok-amara": {ID: "u1", FullName: "Amara Okafor", Email: "a@x.com"},
	}}
}

func (f *fakeAuth) Register(_ context.Context, reg domain.Registration) (string, domain.User, error) {
	user := domain.User{ID: "u9", FullName: reg.Profile.FullName, Email: reg.Email}
	f.users["tok-new"] = user
	return "tok-new", user, nil
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (string, domain.User, error) {
	if f.loginErr != nil {
		return "", domain.User{}, f.loginErr
	}
	for token, user := range f.users {
		if user.Email == email {
			return token, user, nil
		}
	}
	return "", domain.User{}, domain.ErrUnauthenticated
}

func (f *fakeAuth) Me(_ context.Context, token string) (domain.User, error) {
	f.meCalls = append(f.meCalls, token)
	user, ok := f.users[token]
	if !ok {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return user, nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, update domain.ProfileUpdate) (domain.User, error) {
	if f.updateErr != nil {
		return domain.User{}, f.updateErr
	}
	return domain.User{ID: "u1", FullName: update.Profile.FullName, Title: update.Profile.Title}, nil
}

func recordSessions(store *Store) *[]domain.Session {
	var seen []domain.Session
	store.Subscribe(func(s domain.Session) { seen = append(seen, s) })
	return &seen
}

func TestRestoreWithoutPersistedTokenStaysSignedOut(t *testing.T) {
	t.Parallel()

	auth := newFakeAuth()
	store := New(auth, memory.NewStore(), nil)

	got := store.Restore(context.Background())
	assert.False(t, got.Authenticated())
	assert.Empty(t, auth.meCalls)
}

func TestRestoreValidatesPersistedToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	secrets := memory.NewStore()
	require.NoError(t, secrets.Put(ctx, TokenKey, "tok-amara"))

	auth := newFakeAuth()
	store := New(auth, secrets, nil)

	got := store.Restore(ctx)
	require.True(t, got.Authenticated())
	assert.Equal(t, domain.UserID("u1"), got.UserID())
	assert.Equal(t, "tok-amara", store.Token())
	assert.Equal(t, []string{"tok-amara"}, auth.meCalls)
}

func TestRestoreClearsRejectedTokenSilently(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	secrets := memory.NewStore()
	require.NoError(t, secrets.Put(ctx, TokenKey, "expired"))

	store := New(newFakeAuth(), secrets, nil)
	got := store.Restore(ctx)

	assert.False(t, got.Authenticated())
	assert.True(t, got.Consistent())
	_, err := secrets.Get(ctx, TokenKey)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestLoginSetsTokenAndUserTogether(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	secrets := memory.NewStore()
	store := New(newFakeAuth(), secrets, nil)
	seen := recordSessions(store)

	got, err := store.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "tok-amara", got.Token)

	require.Len(t, *seen, 1)
	assert.True(t, (*seen)[0].Authenticated())
	assert.Equal(t, "Amara Okafor", (*seen)[0].User.FullName)

	persisted, err := secrets.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-amara", persisted)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	t.Parallel()

	auth := newFakeAuth()
	auth.loginErr = errors.New("boom")
	store := New(auth, memory.NewStore(), nil)
	seen := recordSessions(store)

	_, err := store.Login(context.Background(), "a@x.com", "pw")
	require.Error(t, err)
	assert.False(t, store.Current().Authenticated())
	assert.Empty(t, *seen)
}

func TestRegisterValidatesBeforeCallingServer(t *testing.T) {
	t.Parallel()

	store := New(newFakeAuth(), memory.NewStore(), nil)

	_, err := store.Register(context.Background(), domain.Registration{Email: "a@x.com", Password: "pw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full name is required")

	got, err := store.Register(context.Background(), domain.Registration{
		Email:    "n@x.com",
		Password: "pw123456",
		Profile:  domain.ProfileFields{FullName: "New Person"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-new", got.Token)
	assert.Equal(t, "New Person", got.User.FullName)
}

func TestUpdateProfileRequiresSession(t *testing.T) {
	t.Parallel()

	store := New(newFakeAuth(), memory.NewStore(), nil)
	_, err := store.UpdateProfile(context.Background(), domain.ProfileUpdate{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUpdateProfileReplacesUserKeepsToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New(newFakeAuth(), memory.NewStore(), nil)
	_, err := store.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	user, err := store.UpdateProfile(ctx, domain.ProfileUpdate{Profile: domain.ProfileFields{FullName: "Amara O.", Title: "CIO"}})
	require.NoError(t, err)
	assert.Equal(t, "CIO", user.Title)
	assert.Equal(t, "tok-amara", store.Token())
	assert.Equal(t, "Amara O.", store.Current().User.FullName)
}

func TestLogoutClearsEverythingAndNotifies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	secrets := memory.NewStore()
	store := New(newFakeAuth(), secrets, nil)
	_, err := store.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	seen := recordSessions(store)

	store.Logout(ctx)

	require.Len(t, *seen, 1)
	assert.False(t, (*seen)[0].Authenticated())
	assert.Empty(t, store.Token())
	_, err = secrets.Get(ctx, TokenKey)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestInvalidateIsNoopWhenSignedOut(t *testing.T) {
	t.Parallel()

	store := New(newFakeAuth(), memory.NewStore(), nil)
	seen := recordSessions(store)

	store.Invalidate(context.Background())
	assert.Empty(t, *seen)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	t.Parallel()

	store := New(newFakeAuth(), memory.NewStore(), nil)
	calls := 0
	unsubscribe := store.Subscribe(func(domain.Session) { calls++ })

	store.Logout(context.Background())
	unsubscribe()
	store.Logout(context.Background())

	assert.Equal(t, 1, calls)
}
