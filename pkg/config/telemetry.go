package config

// TelemetryConfig configures the OpenTelemetry exporter, matching the
// teacher's pkg/telemetry.Config shape without the Storacha-specific
// analytics toggle.
type TelemetryConfig struct {
	ServiceName    string `mapstructure:"service_name" toml:"service_name,omitempty"`
	Disable        bool   `mapstructure:"disable" toml:"disable,omitempty"`
	PrometheusAddr string `mapstructure:"prometheus_addr" toml:"prometheus_addr,omitempty"`
}

func (t TelemetryConfig) Validate() error {
	return validateConfig(t)
}
