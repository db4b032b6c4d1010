// Package config manages energia configuration with YAML persistence,
// environment overrides, and optional hot-reload of the config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Vision    VisionConfig    `yaml:"vision"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Firestore FirestoreConfig `yaml:"firestore"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// VisionConfig controls the image analysis client.
type VisionConfig struct {
	APIKey     string        `yaml:"api_key"`
	Endpoint   string        `yaml:"endpoint"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// NarrativeConfig controls meditation guidance generation.
type NarrativeConfig struct {
	APIKey          string        `yaml:"api_key"`
	Model           string        `yaml:"model"`
	BackendURL      string        `yaml:"backend_url"` // optional relay server
	Timeout         time.Duration `yaml:"timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	Temperature     float64       `yaml:"temperature"`
	TopP            float64       `yaml:"top_p"`
	TopK            int           `yaml:"top_k"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
}

// FirestoreConfig controls remote persistence.
type FirestoreConfig struct {
	ProjectID  string        `yaml:"project_id"`
	APIKey     string        `yaml:"api_key"`
	DatabaseID string        `yaml:"database_id"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LoggingConfig controls debug logging behavior.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir: filepath.Join(home, ".energia"),
		Vision: VisionConfig{
			Endpoint:   "https://vision.googleapis.com/v1/images:annotate",
			Timeout:    20 * time.Second,
			MaxRetries: 2,
		},
		Narrative: NarrativeConfig{
			Model:           "gemini-2.0-flash",
			Timeout:         25 * time.Second,
			MaxRetries:      3,
			Temperature:     0.9,
			TopP:            0.9,
			TopK:            40,
			MaxOutputTokens: 1024,
		},
		Firestore: FirestoreConfig{
			DatabaseID: "(default)",
			Timeout:    10 * time.Second,
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8790,
			RequestTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".energia", "config.yaml")
}

// Load reads configuration from path. A missing file yields defaults
// (with env overrides applied); a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Narrative.Temperature < 0 || c.Narrative.Temperature > 2 {
		return fmt.Errorf("narrative.temperature out of range: %v", c.Narrative.Temperature)
	}
	if c.Vision.MaxRetries < 0 || c.Narrative.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	return nil
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Narrative.APIKey = v
	}
	if v := os.Getenv("VISION_API_KEY"); v != "" {
		c.Vision.APIKey = v
	}
	if v := os.Getenv("FIRESTORE_PROJECT_ID"); v != "" {
		c.Firestore.ProjectID = v
	}
	if v := os.Getenv("FIRESTORE_API_KEY"); v != "" {
		c.Firestore.APIKey = v
	}
	if v := os.Getenv("ENERGIA_BACKEND_URL"); v != "" {
		c.Narrative.BackendURL = v
	}
	if v := os.Getenv("ENERGIA_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("ENERGIA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("ENERGIA_DEBUG"); v != "" {
		c.Logging.DebugMode = v == "1" || v == "true"
	}
}
