package config

import (
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const configFileName = "modsync"

// Config holds the configuration options for the application.
type Config struct {
	Destination  string      `yaml:"destination,omitempty"`
	ManifestURL  string      `yaml:"manifestUrl,omitempty"`
	Workers      int         `yaml:"workers,omitempty"`
	Digest       string      `yaml:"digest,omitempty"`
	AtomicWrites bool        `yaml:"atomicWrites,omitempty"`
	HistoryFile  string      `yaml:"historyFile,omitempty"`
	LogFile      string      `yaml:"logFile,omitempty"`
	Http         *HttpConfig `yaml:"http,omitempty"`
}

// HttpConfig holds configuration options for fetching files.
type HttpConfig struct {
	UserAgent  string        `yaml:"userAgent,omitempty"`
	MaxRetries int           `yaml:"maxRetries,omitempty"`
	RetryDelay time.Duration `yaml:"retryDelay,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
}

// Path returns the location of the configuration file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, configFileName)
}

// GetConfig reads the configuration file and returns a Config struct.
// If the configuration file does not exist, it returns the default configuration.
func GetConfig() (*Config, error) {
	return GetConfigFrom(Path())
}

// GetConfigFrom is GetConfig for an explicit file.
func GetConfigFrom(configFilePath string) (*Config, error) {
	defaults := DefaultConfig()

	b, err := os.ReadFile(configFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &defaults, nil
		}

		return nil, err
	}

	if len(b) == 0 {
		return &defaults, nil
	}

	var cfg Config

	err = yaml.Unmarshal(b, &cfg)
	if err != nil {
		return nil, err
	}

	httpCfg := zeroOr(cfg.Http, defaults.Http)

	return &Config{
		Destination:  zeroOr(cfg.Destination, defaults.Destination),
		ManifestURL:  zeroOr(cfg.ManifestURL, defaults.ManifestURL),
		Workers:      zeroOr(cfg.Workers, defaults.Workers),
		Digest:       zeroOr(cfg.Digest, defaults.Digest),
		AtomicWrites: zeroOr(cfg.AtomicWrites, defaults.AtomicWrites),
		HistoryFile:  zeroOr(cfg.HistoryFile, defaults.HistoryFile),
		LogFile:      zeroOr(cfg.LogFile, defaults.LogFile),
		Http: &HttpConfig{
			UserAgent:  zeroOr(httpCfg.UserAgent, defaults.Http.UserAgent),
			MaxRetries: zeroOr(httpCfg.MaxRetries, defaults.Http.MaxRetries),
			RetryDelay: zeroOr(httpCfg.RetryDelay, defaults.Http.RetryDelay),
			Timeout:    zeroOr(httpCfg.Timeout, defaults.Http.Timeout),
		},
	}, nil
}

func DefaultConfig() Config {
	return Config{
		Destination:  destination,
		Workers:      workers,
		Digest:       digestAlgorithm,
		AtomicWrites: atomicWrites,
		HistoryFile:  historyFile,
		Http: &HttpConfig{
			UserAgent:  userAgent,
			MaxRetries: maxRetries,
			RetryDelay: retryDelay,
			Timeout:    headerTimeout,
		},
	}
}

// zeroOr returns def if v is the zero value for its type.
func zeroOr[T any](v, def T) T {
	if reflect.ValueOf(v).IsZero() {
		return def
	}

	return v
}
