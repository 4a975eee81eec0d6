package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/pot-cli/internal/adapters/secrets/memory"
	passstore "github.com/bnema/pot-cli/internal/adapters/secrets/pass"
	"github.com/bnema/pot-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenKey = "pot/session_token"

type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) Get(context.Context, string) (string, error) {
	f.calls++
	return "", f.err
}

func (f *failingStore) Put(context.Context, string, string) error {
	f.calls++
	return f.err
}

func (f *failingStore) Delete(context.Context, string) error {
	f.calls++
	return f.err
}

func TestNewStoreRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, memory.NewStore())
	require.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStore(memory.NewStore(), nil)
	require.ErrorIs(t, err, errNilFallbackStore)
}

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := memory.NewStore()
	fallback := memory.NewStore()
	require.NoError(t, primary.Put(context.Background(), tokenKey, "from-pass"))
	require.NoError(t, fallback.Put(context.Background(), tokenKey, "from-file"))
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	value, err := store.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetFallsBackWhenPassUnavailable(t *testing.T) {
	t.Parallel()

	fallback := memory.NewStore()
	require.NoError(t, fallback.Put(context.Background(), tokenKey, "from-file"))
	store, err := NewStore(&failingStore{err: passstore.ErrUnavailable}, fallback)
	require.NoError(t, err)

	value, err := store.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetReportsNotFoundWhenNeitherBackendHasKey(t *testing.T) {
	t.Parallel()

	store, err := NewStore(memory.NewStore(), memory.NewStore())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreGetReturnsCombinedErrorWhenBothBackendsFail(t *testing.T) {
	t.Parallel()

	store, err := NewStore(&failingStore{err: errors.New("pass failed")}, &failingStore{err: errors.New("file failed")})
	require.NoError(t, err)

	_, err = store.Get(context.Background(), tokenKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "primary backend")
	assert.ErrorContains(t, err, "pass failed")
	assert.ErrorContains(t, err, "file failed")
}

func TestStorePutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	fallback := memory.NewStore()
	store, err := NewStore(&failingStore{err: errors.New("pass failed")}, fallback)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), tokenKey, "tok"))

	value, err := fallback.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", value)
}

func TestStoreDeleteClearsBothBackends(t *testing.T) {
	t.Parallel()

	primary := memory.NewStore()
	fallback := memory.NewStore()
	require.NoError(t, primary.Put(context.Background(), tokenKey, "a"))
	require.NoError(t, fallback.Put(context.Background(), tokenKey, "b"))
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), tokenKey))

	_, err = primary.Get(context.Background(), tokenKey)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
	_, err = fallback.Get(context.Background(), tokenKey)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreDeleteToleratesUnavailablePass(t *testing.T) {
	t.Parallel()

	store, err := NewStore(&failingStore{err: passstore.ErrUnavailable}, memory.NewStore())
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), tokenKey))
}

func TestStoreGetDoesNotFallbackOnCanceledContextError(t *testing.T) {
	t.Parallel()

	fallback := &failingStore{}
	store, err := NewStore(&failingStore{err: context.Canceled}, fallback)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fallback.calls)
}
