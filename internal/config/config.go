package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from file and env.
type Config struct {
	ServerPort string

	ForecastAPIURL     string
	ForecastAPITimeout time.Duration

	GeocodeAPIKey          string
	GeocodeReverseURL      string
	GeocodeAutocompleteURL string
	GeocodeAPITimeout      time.Duration

	SearchDebounce      time.Duration
	SearchMaxTextLength int

	GeolocationProvider  string // "static", "ip" or "none"
	GeolocationLatitude  *float64
	GeolocationLongitude *float64
	GeolocationIPAPIURL  string
	GeolocationTimeout   time.Duration

	CacheBackend string // "none", "in_memory", "memcached" or "redis"
	CacheTTL     time.Duration

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RedisAddr string
	RedisDB   int

	RequestTimeout time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout time.Duration
	InFlightTimeout time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port" toml:"port"`
	} `yaml:"server" toml:"server"`

	ForecastAPI struct {
		URL     string `yaml:"url" toml:"url"`
		Timeout string `yaml:"timeout" toml:"timeout"`
	} `yaml:"forecast_api" toml:"forecast_api"`

	GeocodeAPI struct {
		ReverseURL      string `yaml:"reverse_url" toml:"reverse_url"`
		AutocompleteURL string `yaml:"autocomplete_url" toml:"autocomplete_url"`
		Timeout         string `yaml:"timeout" toml:"timeout"`
	} `yaml:"geocode_api" toml:"geocode_api"`

	Search struct {
		Debounce      string `yaml:"debounce" toml:"debounce"`
		MaxTextLength int    `yaml:"max_text_length" toml:"max_text_length"`
	} `yaml:"search" toml:"search"`

	Geolocation struct {
		Provider  string   `yaml:"provider" toml:"provider"`
		Latitude  *float64 `yaml:"latitude" toml:"latitude"`
		Longitude *float64 `yaml:"longitude" toml:"longitude"`
		IPAPIURL  string   `yaml:"ip_api_url" toml:"ip_api_url"`
		Timeout   string   `yaml:"timeout" toml:"timeout"`
	} `yaml:"geolocation" toml:"geolocation"`

	Cache struct {
		Backend   string `yaml:"backend" toml:"backend"`
		TTL       string `yaml:"ttl" toml:"ttl"`
		Memcached struct {
			Addrs        string `yaml:"addrs" toml:"addrs"`
			Timeout      string `yaml:"timeout" toml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns" toml:"max_idle_conns"`
		} `yaml:"memcached" toml:"memcached"`
		Redis struct {
			Addr string `yaml:"addr" toml:"addr"`
			DB   int    `yaml:"db" toml:"db"`
		} `yaml:"redis" toml:"redis"`
	} `yaml:"cache" toml:"cache"`

	Request struct {
		Timeout string `yaml:"timeout" toml:"timeout"`
	} `yaml:"request" toml:"request"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps" toml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst" toml:"rate_limit_burst"`
	} `yaml:"reliability" toml:"reliability"`

	Shutdown struct {
		Timeout         string `yaml:"timeout" toml:"timeout"`
		InFlightTimeout string `yaml:"in_flight_timeout" toml:"in_flight_timeout"`
	} `yaml:"shutdown" toml:"shutdown"`
}

type secretsFile struct {
	GeocodeAPIKey string `yaml:"geocode_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev), falling
// back to config/{ENV_NAME}.toml, plus config/secrets.yaml. A .env file in the
// working directory is applied first without overriding the process env.
// The geocoding key comes from GEOCODE_API_KEY or the secrets file. Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	fc, err := readFileConfig(filepath.Join(cwd, "config"), env)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.GeocodeAPIKey = strings.TrimSpace(os.Getenv("GEOCODE_API_KEY"))
	if cfg.GeocodeAPIKey == "" {
		key, err := readSecrets(filepath.Join(cwd, "config", "secrets.yaml"))
		if err != nil {
			return nil, err
		}
		cfg.GeocodeAPIKey = key
	}
	if cfg.GeocodeAPIKey == "" {
		return nil, fmt.Errorf("GEOCODE_API_KEY required (set env or config/secrets.yaml geocode_api_key)")
	}

	cfg.ForecastAPIURL = fc.ForecastAPI.URL
	if cfg.ForecastAPIURL == "" {
		cfg.ForecastAPIURL = "https://api.open-meteo.com/v1/forecast"
	}
	cfg.ForecastAPITimeout = parseDurationOrZero(fc.ForecastAPI.Timeout, 0)

	cfg.GeocodeReverseURL = fc.GeocodeAPI.ReverseURL
	if cfg.GeocodeReverseURL == "" {
		cfg.GeocodeReverseURL = "https://api.geoapify.com/v1/geocode/reverse"
	}
	cfg.GeocodeAutocompleteURL = fc.GeocodeAPI.AutocompleteURL
	if cfg.GeocodeAutocompleteURL == "" {
		cfg.GeocodeAutocompleteURL = "https://api.geoapify.com/v1/geocode/autocomplete"
	}
	cfg.GeocodeAPITimeout = parseDurationOrZero(fc.GeocodeAPI.Timeout, 0)

	cfg.SearchDebounce = parseDuration(fc.Search.Debounce, 300*time.Millisecond)
	cfg.SearchMaxTextLength = fc.Search.MaxTextLength
	if cfg.SearchMaxTextLength <= 0 {
		cfg.SearchMaxTextLength = 200
	}

	cfg.GeolocationProvider = strings.TrimSpace(strings.ToLower(fc.Geolocation.Provider))
	if cfg.GeolocationProvider == "" {
		cfg.GeolocationProvider = "ip"
	}
	cfg.GeolocationLatitude = fc.Geolocation.Latitude
	cfg.GeolocationLongitude = fc.Geolocation.Longitude
	cfg.GeolocationIPAPIURL = fc.Geolocation.IPAPIURL
	cfg.GeolocationTimeout = parseDuration(fc.Geolocation.Timeout, 10*time.Second)

	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 10*time.Minute)
	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "in_memory"
	}
	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = strings.TrimSpace(fc.Cache.Redis.Addr)
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	cfg.RedisDB = fc.Cache.Redis.DB

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 5*time.Second)
	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 250
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.InFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFileConfig reads {env}.yaml from dir, or {env}.toml when no YAML file exists.
func readFileConfig(dir, env string) (fileConfig, error) {
	var fc fileConfig

	yamlPath := filepath.Join(dir, env+".yaml")
	data, err := os.ReadFile(yamlPath)
	if err == nil {
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fc, fmt.Errorf("parse config file %s: %w", yamlPath, err)
		}
		return fc, nil
	}
	if !os.IsNotExist(err) {
		return fc, fmt.Errorf("read config file: %w", err)
	}

	tomlPath := filepath.Join(dir, env+".toml")
	data, err = os.ReadFile(tomlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, fmt.Errorf("config file not found: %s (or %s)", yamlPath, tomlPath)
		}
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", tomlPath, err)
	}
	return fc, nil
}

func readSecrets(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}
	return strings.TrimSpace(sec.GeocodeAPIKey), nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Zero is returned as-is; upstream clients treat it as "no client-side deadline".
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	if cfg.ForecastAPITimeout < 0 {
		return fmt.Errorf("forecast_api.timeout must not be negative")
	}
	if cfg.GeocodeAPITimeout < 0 {
		return fmt.Errorf("geocode_api.timeout must not be negative")
	}
	switch cfg.CacheBackend {
	case "none", "in_memory", "memcached", "redis":
	default:
		return fmt.Errorf("cache.backend must be none, in_memory, memcached or redis, got %q", cfg.CacheBackend)
	}
	switch cfg.GeolocationProvider {
	case "static", "ip", "none":
	default:
		return fmt.Errorf("geolocation.provider must be static, ip or none, got %q", cfg.GeolocationProvider)
	}
	// Static coordinates may be left out entirely; the probe then reports the
	// platform as unsupported. A half-set or out-of-range pair is a mistake.
	if (cfg.GeolocationLatitude == nil) != (cfg.GeolocationLongitude == nil) {
		return fmt.Errorf("geolocation.latitude and geolocation.longitude must be set together")
	}
	if lat := cfg.GeolocationLatitude; lat != nil && (*lat < -90 || *lat > 90) {
		return fmt.Errorf("geolocation.latitude out of range: %v", *lat)
	}
	if lon := cfg.GeolocationLongitude; lon != nil && (*lon < -180 || *lon > 180) {
		return fmt.Errorf("geolocation.longitude out of range: %v", *lon)
	}
	return nil
}
