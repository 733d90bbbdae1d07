package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	dirName  = ".inboxdesk"
	fileName = "config.json"

	DefaultServer  = "http://localhost:8000"
	DefaultTimeout = 15 * time.Second
)

type Config struct {
	Version       int    `json:"version" mapstructure:"version"`
	Server        string `json:"server" mapstructure:"server"`
	APIKey        string `json:"api_key,omitempty" mapstructure:"api_key"`
	Timeout       string `json:"timeout,omitempty" mapstructure:"timeout"`
	LogLevel      string `json:"log_level,omitempty" mapstructure:"log_level"`
	DefaultFormat string `json:"default_format,omitempty" mapstructure:"default_format"`
	ConnectedAt   string `json:"connected_at,omitempty" mapstructure:"connected_at"`
}

var envKeys = []string{"server", "api_key", "timeout", "log_level", "default_format"}

// Path returns the nearest .inboxdesk/config.json walking up from the working
// directory, falling back to the one in the home directory.
func Path() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		dir := cwd
		for {
			candidate := filepath.Join(dir, dirName, fileName)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName, fileName), nil
}

func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(p)
}

// LoadFromPath reads the file at p if it exists; INBOXDESK_* environment
// variables override file values.
func LoadFromPath(p string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(p)
	v.SetConfigType("json")
	v.SetDefault("version", 1)
	v.SetDefault("server", DefaultServer)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("log_level", "warn")
	v.SetEnvPrefix("INBOXDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if _, err := os.Stat(p); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	return &c, nil
}

func Save(c *Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(c, p)
}

func SaveToPath(c *Config, p string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, append(b, '\n'), 0o600)
}

func (c *Config) SetServer(url, apiKey string) {
	c.Server = strings.TrimSuffix(strings.TrimSpace(url), "/")
	c.APIKey = strings.TrimSpace(apiKey)
	c.ConnectedAt = time.Now().UTC().Format(time.RFC3339)
}

func (c *Config) Disconnect() {
	c.Server = DefaultServer
	c.APIKey = ""
	c.ConnectedAt = ""
}

// RequestTimeout falls back to DefaultTimeout when the value is unset or invalid.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}
