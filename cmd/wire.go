package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bnema/pot-cli/internal/adapters/httpapi"
	chainstore "github.com/bnema/pot-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/pot-cli/internal/adapters/secrets/file"
	memorystore "github.com/bnema/pot-cli/internal/adapters/secrets/memory"
	passstore "github.com/bnema/pot-cli/internal/adapters/secrets/pass"
	"github.com/bnema/pot-cli/internal/adapters/tui"
	potapp "github.com/bnema/pot-cli/internal/app"
	"github.com/bnema/pot-cli/internal/config"
	"github.com/bnema/pot-cli/internal/logging"
	"github.com/bnema/pot-cli/internal/ports"
	"github.com/bnema/pot-cli/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type app struct {
	cfg     config.Config
	store   *potapp.App
	client  *httpapi.Client
	secrets ports.SecretStore
	logger  *logrus.Logger
	logFile io.Closer
	runTUI  func(ctx context.Context, store *potapp.App, location string) error
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logFile, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	secrets, err := newSecretStore(cfg, logger)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("wire secret store: %w", err)
	}

	client, err := httpapi.New(cfg.APIBaseURL,
		httpapi.WithRequestTimeout(cfg.APITimeout),
		httpapi.WithLogger(logger),
		httpapi.WithUserAgent("pot-cli/"+version.Version),
	)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("wire api client: %w", err)
	}

	store := potapp.New(client, secrets, potapp.Options{
		ChatPollInterval:     cfg.ChatPollInterval,
		PeerPollInterval:     cfg.PeerPollInterval,
		PreserveUnsavedEdits: cfg.PreserveUnsavedEdits,
		NotifyDuration:       cfg.NotifyDuration,
		Logger:               logger,
	})

	return &app{
		cfg:     cfg,
		store:   store,
		client:  client,
		secrets: secrets,
		logger:  logger,
		logFile: logFile,
		runTUI: func(ctx context.Context, store *potapp.App, location string) error {
			return tui.Run(ctx, store, location)
		},
	}, nil
}

func newSecretStore(cfg config.Config, logger *logrus.Logger) (ports.SecretStore, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	secretsDir := filepath.Join(dir, "secrets")

	switch cfg.TokenStore {
	case config.TokenStorePass:
		return passstore.NewStore(), nil
	case config.TokenStoreFile:
		return filestore.NewStore(secretsDir), nil
	case config.TokenStoreMemory:
		return memorystore.NewStore(), nil
	default:
		return chainstore.NewPassFirstWithFileFallback(secretsDir, chainstore.WithLogger(logger))
	}
}
