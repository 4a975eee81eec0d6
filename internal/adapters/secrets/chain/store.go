package chain

import (
	"context"
	"errors"
	"fmt"
	"io"

	filestore "github.com/bnema/pot-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/pot-cli/internal/adapters/secrets/pass"
	"github.com/bnema/pot-cli/internal/domain"
	"github.com/bnema/pot-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

// Store writes to the primary backend when it can and reads from whichever backend holds
// the key. Delete clears both so a stale copy can never be restored later.
type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
	logger   logrus.FieldLogger
}

type Option func(*Store)

// WithLogger reports every fallback at debug level, which is how a missing pass setup
// shows up in the log file.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

func NewStore(primary ports.SecretStore, fallback ports.SecretStore, opts ...Option) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Store{primary: primary, fallback: fallback, logger: discard}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("component", "secrets")
	return s, nil
}

// NewPassFirstWithFileFallback keeps the session token in pass when it is installed and
// initialized, and in a 0600 file below fileRoot otherwise.
func NewPassFirstWithFileFallback(fileRoot string, opts ...Option) (*Store, error) {
	return NewStore(passstore.NewStore(), filestore.NewStore(fileRoot), opts...)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}
	s.logger.WithError(err).WithField("key", key).Debug("primary store put failed, using fallback")

	fallbackErr := s.fallback.Put(ctx, key, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}
	if !errors.Is(err, domain.ErrSecretNotFound) {
		s.logger.WithError(err).WithField("key", key).Debug("primary store get failed, using fallback")
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return fallbackValue, nil
	}
	if errors.Is(err, domain.ErrSecretNotFound) || errors.Is(err, passstore.ErrUnavailable) {
		return "", fallbackErr
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if shouldSkipFallback(err) {
		return err
	}
	if errors.Is(err, passstore.ErrUnavailable) {
		err = nil
	}

	fallbackErr := s.fallback.Delete(ctx, key)

	switch {
	case err == nil && fallbackErr == nil:
		return nil
	case err != nil && fallbackErr != nil:
		return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
	case err != nil:
		return fmt.Errorf("primary backend delete failed: %w", err)
	default:
		return fmt.Errorf("fallback backend delete failed: %w", fallbackErr)
	}
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
