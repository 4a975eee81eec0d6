package ports

import "context"

// SecretStore persists small opaque values such as the session token.
// Get returns an error wrapping domain.ErrSecretNotFound when the key is absent.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
