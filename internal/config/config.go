package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	configDirName   = "pot"
	configFileMode  = 0o600
	configDirMode   = 0o700
	envPrefix       = "POT"
	tempFilePattern = ".config-*.toml.tmp"

	KeyAPIBaseURL           = "api.base_url"
	KeyAPITimeout           = "api.timeout"
	KeyChatPollInterval     = "chat.poll_interval"
	KeyChatPeerPollInterval = "chat.peer_poll_interval"
	KeyNotifyDuration       = "notify.duration"
	KeyLogLevel             = "log.level"
	KeyLogFormat            = "log.format"
	KeyLogFile              = "log.file"
	KeyPreserveUnsavedEdits = "dashboard.preserve_unsaved_edits"
	KeyTokenStore           = "session.token_store"
)

// Token stores accepted by session.token_store.
const (
	TokenStoreChain  = "chain"
	TokenStorePass   = "pass"
	TokenStoreFile   = "file"
	TokenStoreMemory = "memory"
)

var ErrConfigExists = errors.New("config file already exists")

type Config struct {
	Path string

	APIBaseURL           string
	APITimeout           time.Duration
	ChatPollInterval     time.Duration
	PeerPollInterval     time.Duration
	NotifyDuration       time.Duration
	LogLevel             string
	LogFormat            string
	LogFile              string
	PreserveUnsavedEdits bool
	TokenStore           string
}

// Dir is ~/.config/pot. HOME is honored so tests can point it at a temp dir.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName), nil
}

func defaults(dir string) map[string]any {
	return map[string]any{
		KeyAPIBaseURL:           "http://127.0.0.1:8000",
		KeyAPITimeout:           "15s",
		KeyChatPollInterval:     "4s",
		KeyChatPeerPollInterval: "7s",
		KeyNotifyDuration:       "1850ms",
		KeyLogLevel:             "info",
		KeyLogFormat:            "text",
		KeyLogFile:              filepath.Join(dir, "pot.log"),
		KeyPreserveUnsavedEdits: false,
		KeyTokenStore:           TokenStoreChain,
	}
}

// Load reads config.toml from Dir, applies POT_* environment overrides and validates
// the result. A missing file is not an error.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	for key, value := range defaults(dir) {
		cfg.SetDefault(key, value)
	}
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(dir)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	loaded := Config{
		Path:                 cfg.ConfigFileUsed(),
		APIBaseURL:           strings.TrimSpace(cfg.GetString(KeyAPIBaseURL)),
		APITimeout:           cfg.GetDuration(KeyAPITimeout),
		ChatPollInterval:     cfg.GetDuration(KeyChatPollInterval),
		PeerPollInterval:     cfg.GetDuration(KeyChatPeerPollInterval),
		NotifyDuration:       cfg.GetDuration(KeyNotifyDuration),
		LogLevel:             strings.ToLower(strings.TrimSpace(cfg.GetString(KeyLogLevel))),
		LogFormat:            strings.ToLower(strings.TrimSpace(cfg.GetString(KeyLogFormat))),
		LogFile:              strings.TrimSpace(cfg.GetString(KeyLogFile)),
		PreserveUnsavedEdits: cfg.GetBool(KeyPreserveUnsavedEdits),
		TokenStore:           strings.ToLower(strings.TrimSpace(cfg.GetString(KeyTokenStore))),
	}
	if loaded.Path == "" {
		loaded.Path = filepath.Join(dir, configName+"."+configType)
	}

	if err := loaded.Validate(); err != nil {
		return Config{}, err
	}
	return loaded, nil
}

func (c Config) Validate() error {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", KeyAPIBaseURL, c.APIBaseURL)
	}

	for key, value := range map[string]time.Duration{
		KeyAPITimeout:           c.APITimeout,
		KeyChatPollInterval:     c.ChatPollInterval,
		KeyChatPeerPollInterval: c.PeerPollInterval,
		KeyNotifyDuration:       c.NotifyDuration,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", key, value)
		}
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported %s %q", KeyLogFormat, c.LogFormat)
	}

	switch c.TokenStore {
	case TokenStoreChain, TokenStorePass, TokenStoreFile, TokenStoreMemory:
	default:
		return fmt.Errorf("unsupported %s %q", KeyTokenStore, c.TokenStore)
	}

	return nil
}

type fileSchema struct {
	API       apiSchema       `toml:"api"`
	Chat      chatSchema      `toml:"chat"`
	Notify    notifySchema    `toml:"notify"`
	Log       logSchema       `toml:"log"`
	Dashboard dashboardSchema `toml:"dashboard"`
	Session   sessionSchema   `toml:"session"`
}

type apiSchema struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

type chatSchema struct {
	PollInterval     string `toml:"poll_interval"`
	PeerPollInterval string `toml:"peer_poll_interval"`
}

type notifySchema struct {
	Duration string `toml:"duration"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type dashboardSchema struct {
	PreserveUnsavedEdits bool `toml:"preserve_unsaved_edits"`
}

type sessionSchema struct {
	TokenStore string `toml:"token_store"`
}

func toSchema(c Config) fileSchema {
	return fileSchema{
		API:       apiSchema{BaseURL: c.APIBaseURL, Timeout: c.APITimeout.String()},
		Chat:      chatSchema{PollInterval: c.ChatPollInterval.String(), PeerPollInterval: c.PeerPollInterval.String()},
		Notify:    notifySchema{Duration: c.NotifyDuration.String()},
		Log:       logSchema{Level: c.LogLevel, Format: c.LogFormat, File: c.LogFile},
		Dashboard: dashboardSchema{PreserveUnsavedEdits: c.PreserveUnsavedEdits},
		Session:   sessionSchema{TokenStore: c.TokenStore},
	}
}

// Write stores c at c.Path. An existing file is only replaced when force is set.
func Write(c Config, force bool) error {
	if c.Path == "" {
		return errors.New("config path is empty")
	}
	if !force {
		if _, err := os.Stat(c.Path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, c.Path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(toSchema(c))
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(c.Path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tempName, c.Path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}
