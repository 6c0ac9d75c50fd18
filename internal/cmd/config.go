package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/nutrient-dws/client-go/pkg/dws"
	"github.com/nutrient-dws/client-go/pkg/transport"
)

// Config is the CLI configuration file (~/.dws.yaml by default). The
// DWS_API_KEY and DWS_BASE_URL environment variables take precedence.
type Config struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// loadConfig reads the config file at path, falling back to ~/.dws.yaml.
// A missing file is not an error; environment variables still apply.
func loadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".dws.yaml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if key := os.Getenv("DWS_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if baseURL := os.Getenv("DWS_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return cfg, nil
}

// newClient builds a library client from the CLI configuration.
func newClient(configPath string, verbose bool) (*dws.Client, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured; set DWS_API_KEY or api_key in ~/.dws.yaml")
	}

	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "dws",
		Level:  level,
		Output: os.Stderr,
	})

	return dws.New(transport.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}, dws.WithLogger(logger))
}
