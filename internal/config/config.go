// Package config loads the vlyx.yml settings, with VLYX_* environment
// overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DefaultUserAgent is sent by the fetcher unless overridden
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0"

// Config maps the structure of vlyx.yml
type Config struct {
	Site struct {
		BaseURL string   `mapstructure:"base_url"`
		Origins []string `mapstructure:"origins"`
	} `mapstructure:"site"`
	Resolver struct {
		Mode    string `mapstructure:"mode"`
		APIBase string `mapstructure:"api_base"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"resolver"`
	HTTP struct {
		Timeout   time.Duration `mapstructure:"timeout"`
		UserAgent string        `mapstructure:"user_agent"`
		MaxBody   int64         `mapstructure:"max_body"`
	} `mapstructure:"http"`
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Log struct {
		Debug bool `mapstructure:"debug"`
	} `mapstructure:"log"`
}

// Load reads vlyx.yml from the current directory or $HOME/.config/vlyx, or
// from configFile when it is set. Only an explicit configFile has to exist.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("vlyx")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "vlyx"))
		}
	}

	// VLYX_HTTP_TIMEOUT overrides http.timeout
	v.SetEnvPrefix("VLYX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("site.base_url", "")
	v.SetDefault("site.origins", []string{})
	v.SetDefault("resolver.mode", "two-hop")
	v.SetDefault("resolver.api_base", "")
	v.SetDefault("resolver.api_key", "")
	v.SetDefault("http.timeout", "20s")
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.max_body", 8<<20)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.debug", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	return &cfg, nil
}

// Validate checks settings that would only fail later, mid-session
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Resolver.Mode)) {
	case "", "two-hop":
	case "direct":
		if strings.TrimSpace(c.Resolver.APIBase) == "" {
			return errors.New("resolver.mode=direct needs resolver.api_base")
		}
	default:
		return errors.Errorf("unknown resolver.mode %q", c.Resolver.Mode)
	}
	if c.HTTP.Timeout <= 0 {
		return errors.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// Origins returns the configured origins plus the base URL's own
func (c *Config) Origins() []string {
	out := make([]string, 0, len(c.Site.Origins)+1)
	if b := strings.TrimRight(strings.TrimSpace(c.Site.BaseURL), "/"); b != "" {
		out = append(out, b)
	}
	for _, o := range c.Site.Origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
