package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Reference ReferenceConfig `mapstructure:"reference"`
	Display   DisplayConfig   `mapstructure:"display"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Locator   LocatorConfig   `mapstructure:"locator"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// ReferenceConfig is the fixed point every ray is aimed at
type ReferenceConfig struct {
	Name string  `mapstructure:"name"`
	Lat  float64 `mapstructure:"lat"`
	Lng  float64 `mapstructure:"lng"`
}

func (r ReferenceConfig) Point() models.GeoPoint {
	return models.GeoPoint{Lat: r.Lat, Lng: r.Lng}
}

type DisplayConfig struct {
	Mode           string  `mapstructure:"mode"`
	LineLength     float64 `mapstructure:"line_length"`
	CircleRadius   float64 `mapstructure:"circle_radius"`
	CircleSegments int     `mapstructure:"circle_segments"`
}

type GeocoderConfig struct {
	// Provider is one of nominatim, gazetteer, postgis or chain
	Provider      string        `mapstructure:"provider"`
	BaseURL       string        `mapstructure:"base_url"`
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	GazetteerFile string        `mapstructure:"gazetteer_file"`
	PostGISDSN    string        `mapstructure:"postgis_dsn"`
}

type LocatorConfig struct {
	// Provider is one of static, ip or disabled
	Provider string        `mapstructure:"provider"`
	URL      string        `mapstructure:"url"`
	Lat      float64       `mapstructure:"lat"`
	Lng      float64       `mapstructure:"lng"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from an optional YAML file and environment
// variables. With an empty path, geobearing.yaml is looked up in the
// working directory and ~/.config/geobearing; a missing file is fine.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("reference.name", "Jerusalem")
	v.SetDefault("reference.lat", 31.7780)
	v.SetDefault("reference.lng", 35.2354)
	v.SetDefault("display.mode", string(models.GreatCircle))
	v.SetDefault("display.line_length", 5000.0)
	v.SetDefault("display.circle_radius", 1609.344)
	v.SetDefault("display.circle_segments", 64)
	v.SetDefault("geocoder.provider", "nominatim")
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "go-geo-bearing/1.0")
	v.SetDefault("geocoder.timeout", 10*time.Second)
	v.SetDefault("geocoder.gazetteer_file", "data/gazetteer.gob")
	v.SetDefault("geocoder.postgis_dsn", "")
	v.SetDefault("locator.provider", "ip")
	v.SetDefault("locator.url", "http://ip-api.com/json/")
	v.SetDefault("locator.lat", 0.0)
	v.SetDefault("locator.lng", 0.0)
	v.SetDefault("locator.timeout", 5*time.Second)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("log.level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("geobearing")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/geobearing")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// Environment variables: GEOBEARING_DISPLAY_LINE_LENGTH → display.line_length
	v.SetEnvPrefix("GEOBEARING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration values are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Reference.Lat < -90 || c.Reference.Lat > 90 {
		errs = append(errs, fmt.Sprintf("reference.lat must be -90..90, got %v", c.Reference.Lat))
	}
	if c.Reference.Lng < -180 || c.Reference.Lng > 180 {
		errs = append(errs, fmt.Sprintf("reference.lng must be -180..180, got %v", c.Reference.Lng))
	}
	if _, err := models.ParseBearingMode(c.Display.Mode); err != nil {
		errs = append(errs, fmt.Sprintf("display.mode: %v", err))
	}
	if c.Display.LineLength <= 0 {
		errs = append(errs, "display.line_length must be positive")
	}
	if c.Display.CircleRadius <= 0 {
		errs = append(errs, "display.circle_radius must be positive")
	}
	if c.Display.CircleSegments < 3 {
		errs = append(errs, "display.circle_segments must be at least 3")
	}

	switch c.Geocoder.Provider {
	case "nominatim", "chain":
		if c.Geocoder.BaseURL == "" {
			errs = append(errs, "geocoder.base_url is required")
		}
	case "gazetteer":
		if c.Geocoder.GazetteerFile == "" {
			errs = append(errs, "geocoder.gazetteer_file is required")
		}
	case "postgis":
		if c.Geocoder.PostGISDSN == "" {
			errs = append(errs, "geocoder.postgis_dsn is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("geocoder.provider must be nominatim, gazetteer, postgis or chain, got %q", c.Geocoder.Provider))
	}

	switch c.Locator.Provider {
	case "static":
		if c.Locator.Lat < -90 || c.Locator.Lat > 90 || c.Locator.Lng < -180 || c.Locator.Lng > 180 {
			errs = append(errs, "locator.lat/locator.lng out of range")
		}
	case "ip":
		if c.Locator.URL == "" {
			errs = append(errs, "locator.url is required")
		}
	case "disabled":
	default:
		errs = append(errs, fmt.Sprintf("locator.provider must be static, ip or disabled, got %q", c.Locator.Provider))
	}

	if c.Cache.Enabled && c.Cache.Addr == "" {
		errs = append(errs, "cache.addr is required when cache is enabled")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
