// Package config handles mothertree configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file
// (mothertree.yaml), then MOTHERTREE_* environment variables. Load applies
// the layers in that order; Validate checks the result before use.
//
// Environment variables:
//   - MOTHERTREE_EXPORT_DIR        corpus JSON export directory
//   - MOTHERTREE_DATA_DIR          prebuilt corpus store directory
//   - MOTHERTREE_ENFORCE_CONTAINER require same container on reparent
//   - MOTHERTREE_ALLOW_ROOTIFY     permit detaching clauses into roots
//   - MOTHERTREE_MAX_DEPTH         mother-chain depth bound (0 = unbounded)
//   - MOTHERTREE_HTTP_ADDRESS      HTTP bind address
//   - MOTHERTREE_HTTP_PORT         HTTP port
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all mothertree settings.
type Config struct {
	// Corpus settings: where the clause data comes from.
	Corpus CorpusConfig `yaml:"corpus"`
	// Rules are the structural policies enforced on mutations.
	Rules RulesConfig `yaml:"rules"`
	// Server settings for the HTTP API.
	Server ServerConfig `yaml:"server"`
}

// CorpusConfig locates the clause corpus.
type CorpusConfig struct {
	// ExportDir is the directory holding clauses.json (JSON export).
	ExportDir string `yaml:"export_dir"`
	// DataDir is the prebuilt corpus store directory. When it exists and
	// holds data, serve prefers it over re-decoding the export.
	DataDir string `yaml:"data_dir"`
}

// RulesConfig mirrors the mutation validator's policies.
type RulesConfig struct {
	// EnforceContainer requires child and new mother to share a container.
	EnforceContainer bool `yaml:"enforce_container"`
	// AllowRootify permits rootify operations.
	AllowRootify bool `yaml:"allow_rootify"`
	// MaxDepth bounds the mother-chain length; 0 means unbounded.
	MaxDepth int `yaml:"max_depth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address        string        `yaml:"address"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	EnableCORS     bool          `yaml:"enable_cors"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	MaxRequestSize int64         `yaml:"max_request_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{
			DataDir: "./data",
		},
		Rules: RulesConfig{
			EnforceContainer: false,
			AllowRootify:     true,
			MaxDepth:         0,
		},
		Server: ServerConfig{
			Address:        "0.0.0.0",
			Port:           8470,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			IdleTimeout:    120 * time.Second,
			EnableCORS:     true,
			CORSOrigins:    []string{"*"},
			MaxRequestSize: 10 * 1024 * 1024,
		},
	}
}

// Load builds the effective configuration: defaults, overlaid with the YAML
// file at path (skipped when path is empty or the file does not exist),
// overlaid with environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; fall through to env.
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides settings from MOTHERTREE_* environment variables.
func (c *Config) applyEnv() {
	c.Corpus.ExportDir = envString("MOTHERTREE_EXPORT_DIR", c.Corpus.ExportDir)
	c.Corpus.DataDir = envString("MOTHERTREE_DATA_DIR", c.Corpus.DataDir)
	c.Rules.EnforceContainer = envBool("MOTHERTREE_ENFORCE_CONTAINER", c.Rules.EnforceContainer)
	c.Rules.AllowRootify = envBool("MOTHERTREE_ALLOW_ROOTIFY", c.Rules.AllowRootify)
	c.Rules.MaxDepth = envInt("MOTHERTREE_MAX_DEPTH", c.Rules.MaxDepth)
	c.Server.Address = envString("MOTHERTREE_HTTP_ADDRESS", c.Server.Address)
	c.Server.Port = envInt("MOTHERTREE_HTTP_PORT", c.Server.Port)
}

// Validate checks the configuration for values the process cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.Port)
	}
	if c.Rules.MaxDepth < 0 {
		return fmt.Errorf("max_depth cannot be negative: %d", c.Rules.MaxDepth)
	}
	if c.Server.MaxRequestSize <= 0 {
		return fmt.Errorf("max_request_size must be positive: %d", c.Server.MaxRequestSize)
	}
	if c.Corpus.ExportDir == "" && c.Corpus.DataDir == "" {
		return fmt.Errorf("no corpus source: set corpus.export_dir or corpus.data_dir")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
