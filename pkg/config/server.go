package config

import (
	"fmt"
	"net/url"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("config")

// ServerConfig configures the HTTP server exposing the event stream and job
// query endpoints.
type ServerConfig struct {
	Port      uint   `mapstructure:"port" validate:"required,min=1,max=65535" flag:"port" toml:"port"`
	Host      string `mapstructure:"host" validate:"required" flag:"host" toml:"host"`
	PublicURL string `mapstructure:"public_url" validate:"omitempty,url" flag:"public-url" toml:"public_url"`
}

func (s ServerConfig) Validate() error {
	return validateConfig(s)
}

// ResolvedPublicURL parses PublicURL, falling back to http://host:port.
func (s ServerConfig) ResolvedPublicURL() (*url.URL, error) {
	if s.PublicURL != "" {
		u, err := url.Parse(s.PublicURL)
		if err != nil {
			return nil, fmt.Errorf("parsing public URL: %w", err)
		}
		return u, nil
	}
	log.Warnf("public URL not set, using http://%s:%d", s.Host, s.Port)
	u, err := url.Parse(fmt.Sprintf("http://%s:%d", s.Host, s.Port))
	if err != nil {
		return nil, fmt.Errorf("creating default public URL: %w", err)
	}
	return u, nil
}
