// Package config provides YAML-based configuration with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Storage  StorageConfig  `yaml:"storage"`
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	EnableCORS   bool   `yaml:"enableCORS"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"` // zero disables it; analyses can run for minutes
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
}

// EngineConfig locates and bounds the external inference engine.
type EngineConfig struct {
	PythonPath     string `yaml:"pythonPath"`
	InferenceDir   string `yaml:"inferenceDir"`
	Script         string `yaml:"script"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	MaxConcurrent  int    `yaml:"maxConcurrent"`
}

// StorageConfig contains scratch and history storage settings.
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	TempDirectory string `yaml:"tempDirectory"`
	HistoryDB     string `yaml:"historyDB"`    // empty keeps history in memory only
	MaxFileBytes  int64  `yaml:"maxFileBytes"` // zero disables the decoder's early size check
}

// AdvancedConfig contains logging and tuning options.
type AdvancedConfig struct {
	LogLevel             string `yaml:"logLevel"`
	EnableRequestLogging bool   `yaml:"enableRequestLogging"`
}

// envOverrides mirror the settings operators most often adjust in
// deployment without editing the config file.
type envOverrides struct {
	Port         int    `env:"STREAMEME_PORT"`
	BindAddress  string `env:"STREAMEME_BIND_ADDRESS"`
	PythonPath   string `env:"STREAMEME_ENGINE_PYTHON"`
	InferenceDir string `env:"STREAMEME_ENGINE_DIR"`
	DataDir      string `env:"STREAMEME_DATA_DIR"`
	LogLevel     string `env:"STREAMEME_LOG_LEVEL"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         9090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			ReadTimeout:  30,
			WriteTimeout: 0,
			IdleTimeout:  120,
			BodyLimit:    "2G",
		},
		Engine: EngineConfig{
			PythonPath:     "./.venv/bin/python",
			InferenceDir:   "../streameme_inference",
			Script:         "inference.py",
			TimeoutSeconds: 600,
			MaxConcurrent:  1,
		},
		Storage: StorageConfig{
			DataDirectory: "./data",
			TempDirectory: "./data/temp",
			HistoryDB:     "./data/history.duckdb",
			MaxFileBytes:  0,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file, creating it with
// defaults on first run, then applies environment overrides and resolves
// relative storage paths against the config file's directory.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		if err := cfg.applyEnvironmentOverrides(); err != nil {
			return nil, err
		}
		cfg.resolvePaths(filepath.Dir(configPath))
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(configPath))

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# streameme backend configuration\n# This file is auto-generated on first run\n\n")
	if err := os.WriteFile(configPath, append(header, output...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *AppConfig) applyEnvironmentOverrides() error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	if ov.Port != 0 {
		c.Server.Port = ov.Port
	}
	if ov.BindAddress != "" {
		c.Server.BindAddress = ov.BindAddress
	}
	if ov.PythonPath != "" {
		c.Engine.PythonPath = ov.PythonPath
	}
	if ov.InferenceDir != "" {
		c.Engine.InferenceDir = ov.InferenceDir
	}
	if ov.DataDir != "" {
		c.Storage.DataDirectory = ov.DataDir
		c.Storage.TempDirectory = filepath.Join(ov.DataDir, "temp")
		if c.Storage.HistoryDB != "" {
			c.Storage.HistoryDB = filepath.Join(ov.DataDir, "history.duckdb")
		}
	}
	if ov.LogLevel != "" {
		c.Advanced.LogLevel = ov.LogLevel
	}
	return nil
}

// resolvePaths converts relative storage paths to absolute ones based on
// the config file location. Engine paths are left alone: the python binary
// is resolved against the inference directory at invocation time.
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.TempDirectory) {
		c.Storage.TempDirectory = filepath.Join(configDir, c.Storage.TempDirectory)
	}
	if c.Storage.HistoryDB != "" && !filepath.IsAbs(c.Storage.HistoryDB) {
		c.Storage.HistoryDB = filepath.Join(configDir, c.Storage.HistoryDB)
	}
}

// GetServerAddr returns the server bind address.
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EngineTimeout returns the per-invocation engine timeout.
func (c *AppConfig) EngineTimeout() time.Duration {
	return time.Duration(c.Engine.TimeoutSeconds) * time.Second
}

// EnsureDirectories creates all necessary storage directories.
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.TempDirectory,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
