package metrics

import "github.com/kilianp07/tripcost/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is where /metrics is served when a prometheus sink is
	// configured.
	PrometheusAddr string `json:"prometheus_addr"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9100"
	}
}

// HasSink reports whether a sink of the given type is configured.
func (c Config) HasSink(typ string) bool {
	for _, s := range c.Sinks {
		if s.Type == typ {
			return true
		}
	}
	return false
}
