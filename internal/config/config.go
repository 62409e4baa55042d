package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models axiom.yml.
type Config struct {
	Planner struct {
		Model     string `yaml:"model"`
		APIKeyEnv string `yaml:"api_key_env"`
		BaseURL   string `yaml:"base_url"`
	} `yaml:"planner"`
	Sync struct {
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token"`
	} `yaml:"sync"`
	Server struct {
		Addr         string `yaml:"addr"`
		BasePath     string `yaml:"base_path"`
		JWTSecretEnv string `yaml:"jwt_secret_env"`
	} `yaml:"server"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create it with axiom config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the defaults when no config file exists.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Planner.Model == "" {
		return fmt.Errorf("config.planner.model is required")
	}
	if c.Planner.APIKeyEnv == "" {
		return fmt.Errorf("config.planner.api_key_env is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	return nil
}

// APIKey resolves the planner API key from the configured env var.
func (c *Config) APIKey() string {
	return os.Getenv(c.Planner.APIKeyEnv)
}

// JWTSecret resolves the API signing secret; empty disables auth.
func (c *Config) JWTSecret() string {
	if c.Server.JWTSecretEnv == "" {
		return ""
	}
	return os.Getenv(c.Server.JWTSecretEnv)
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "axiom.yml")
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// FromYAML parses and validates config from raw YAML bytes. Unset fields
// fall back to the defaults before validation.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `planner:
  model: gemini-2.0-flash
  api_key_env: GEMINI_API_KEY
  base_url: ""

sync:
  base_url: ""
  token: ""

server:
  addr: :8787
  base_path: /api
  jwt_secret_env: AXIOM_JWT_SECRET
`
