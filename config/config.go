package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/tripcost/core/factory"
	"github.com/kilianp07/tripcost/core/metrics"
	"github.com/kilianp07/tripcost/infra/monitoring"
	"github.com/kilianp07/tripcost/infra/mqtt"
	"github.com/kilianp07/tripcost/infra/predictor"
)

type Config struct {
	Predictor   factory.ModuleConfig `json:"predictor"`
	Controller  ControllerConfig     `json:"controller"`
	Suggestions factory.ModuleConfig `json:"suggestions"`
	Metrics     metrics.Config       `json:"metrics"`
	Events      mqtt.Config          `json:"events"`
	Monitoring  monitoring.Config    `json:"monitoring"`
	Log         LogConfig            `json:"log"`
	Server      ServerConfig         `json:"server"`
}

// ControllerConfig tunes the request lifecycle.
type ControllerConfig struct {
	// SuccessWindowMS is how long the success flag stays raised.
	SuccessWindowMS int `json:"success_window_ms"`
}

// SetDefaults applies sane defaults.
func (c *ControllerConfig) SetDefaults() {
	if c.SuccessWindowMS <= 0 {
		c.SuccessWindowMS = 3000
	}
}

// SuccessWindow returns the window as a duration.
func (c ControllerConfig) SuccessWindow() time.Duration {
	return time.Duration(c.SuccessWindowMS) * time.Millisecond
}

// LogConfig selects the minimum log level.
type LogConfig struct {
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
		return nil
	}
	return fmt.Errorf("unknown log level %s", c.Level)
}

// ServerConfig holds listen addresses of the HTTP surfaces.
type ServerConfig struct {
	// Addr serves the session API.
	Addr string `json:"addr"`
	// MockAddr serves the mock prediction service.
	MockAddr string `json:"mock_addr"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.MockAddr == "" {
		c.MockAddr = ":5000"
	}
}

// Default returns a configuration usable without a file: HTTP predictor on
// the local mock service, static suggestions, no metrics, no MQTT.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	if c.Predictor.Type == "" {
		c.Predictor.Type = "http"
	}
	if c.Predictor.Type == "http" {
		if c.Predictor.Conf == nil {
			c.Predictor.Conf = map[string]any{}
		}
		if _, ok := c.Predictor.Conf["url"]; !ok {
			c.Predictor.Conf["url"] = predictor.DefaultURL
		}
	}
	if c.Suggestions.Type == "" {
		c.Suggestions.Type = "static"
	}
	c.Controller.SetDefaults()
	c.Metrics.SetDefaults()
	if c.Events.Enabled {
		c.Events.SetDefaults()
	}
	c.Log.SetDefaults()
	c.Server.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.Monitoring.Validate(); err != nil {
		return err
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	return nil
}

// Load reads path (YAML or JSON by extension), applies K_ environment
// overrides, defaults and validation. An empty path loads defaults and the
// environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
