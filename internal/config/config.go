package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/habo/internal/validation"
)

// DevSessionSecret es el secreto por defecto fuera de prod. En prod Validate
// lo rechaza.
const DevSessionSecret = "habo-dev-session-secret"

type Config struct {
	App struct {
		// dev | production
		Env     string `yaml:"env"`
		Version string `yaml:"-"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	URLs struct {
		Backend       string `yaml:"backend"`
		BackendLocal  string `yaml:"backend_local"`
		Frontend      string `yaml:"frontend"`
		FrontendLocal string `yaml:"frontend_local"`
	} `yaml:"urls"`

	OIDC struct {
		ClientID        string        `yaml:"client_id"`
		ClientSecret    string        `yaml:"client_secret"`
		Domain          string        `yaml:"domain"`
		Region          string        `yaml:"region"`
		UserPoolID      string        `yaml:"user_pool_id"`
		DiscoveryURLs   []string      `yaml:"discovery_urls"`
		Scopes          []string      `yaml:"scopes"` // vacío = email openid phone
		HTTPTimeout     time.Duration `yaml:"http_timeout"`
		RetryMaxElapsed time.Duration `yaml:"retry_max_elapsed"`
	} `yaml:"oidc"`

	StateCache struct {
		Kind          string        `yaml:"kind"` // memory | redis
		TTL           time.Duration `yaml:"ttl"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
	} `yaml:"state_cache"`

	Session struct {
		Store         string        `yaml:"store"` // memory | redis | sqlite | postgres
		Secret        string        `yaml:"secret"`
		CookieName    string        `yaml:"cookie_name"`
		CookieDomain  string        `yaml:"cookie_domain"`
		TTL           time.Duration `yaml:"ttl"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
		RedisPrefix   string        `yaml:"redis_prefix"`
		SQLitePath    string        `yaml:"sqlite_path"`
		PostgresDSN   string        `yaml:"postgres_dsn"`
	} `yaml:"session"`

	JWT struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"jwt"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Chat struct {
		APIKey     string        `yaml:"api_key"`
		BaseURL    string        `yaml:"base_url"`
		RateLimit  int           `yaml:"rate_limit"`
		RateWindow time.Duration `yaml:"rate_window"`
	} `yaml:"chat"`

	Stocks struct {
		APIKey     string `yaml:"api_key"`
		BaseURL    string `yaml:"base_url"`
		RatePerMin int    `yaml:"rate_per_min"`
	} `yaml:"stocks"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee el YAML (opcional si path == ""), aplica defaults y después las
// variables de entorno. No valida: eso es Validate.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyEnvOverrides()
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":5001"
	}
	if c.URLs.BackendLocal == "" {
		c.URLs.BackendLocal = "http://localhost:5001"
	}
	if c.URLs.FrontendLocal == "" {
		c.URLs.FrontendLocal = "http://localhost:3000"
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = nonEmpty(c.URLs.Frontend, c.URLs.FrontendLocal)
	}
	if c.OIDC.HTTPTimeout <= 0 {
		c.OIDC.HTTPTimeout = 10 * time.Second
	}
	if c.OIDC.RetryMaxElapsed <= 0 {
		c.OIDC.RetryMaxElapsed = 15 * time.Minute
	}
	if c.StateCache.Kind == "" {
		c.StateCache.Kind = "memory"
	}
	if c.StateCache.TTL <= 0 {
		c.StateCache.TTL = 5 * time.Minute
	}
	if c.StateCache.SweepInterval <= 0 {
		c.StateCache.SweepInterval = 10 * time.Minute
	}
	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Session.Secret == "" && !c.IsProduction() {
		c.Session.Secret = DevSessionSecret
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Session.SweepInterval <= 0 {
		c.Session.SweepInterval = 15 * time.Minute
	}
	if c.Session.SQLitePath == "" {
		c.Session.SQLitePath = "data/sessions.db"
	}
	if c.JWT.TTL <= 0 {
		c.JWT.TTL = 24 * time.Hour
	}
	if c.Chat.RateLimit == 0 {
		c.Chat.RateLimit = 20
	}
	if c.Chat.RateWindow <= 0 {
		c.Chat.RateWindow = time.Minute
	}
	if c.Stocks.RatePerMin <= 0 {
		c.Stocks.RatePerMin = 60
	}
	if c.Log.Level == "" {
		if c.IsProduction() {
			c.Log.Level = "info"
		} else {
			c.Log.Level = "debug"
		}
	}
}

// IsProduction: APP_ENV/NODE_ENV = production|prod.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.App.Env) {
	case "production", "prod":
		return true
	}
	return false
}

func (c *Config) BackendURL() string {
	if c.IsProduction() {
		return strings.TrimRight(c.URLs.Backend, "/")
	}
	return strings.TrimRight(c.URLs.BackendLocal, "/")
}

func (c *Config) FrontendURL() string {
	if c.IsProduction() {
		return strings.TrimRight(c.URLs.Frontend, "/")
	}
	return strings.TrimRight(c.URLs.FrontendLocal, "/")
}

// RedirectURI es el callback registrado en el IdP.
func (c *Config) RedirectURI() string { return c.BackendURL() + "/auth/callback" }

// Validate junta todos los problemas en un solo error.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.OIDC.ClientID) == "" {
		errs = append(errs, errors.New("COGNITO_CLIENT_ID is required"))
	}
	hasPool := c.OIDC.Region != "" && c.OIDC.UserPoolID != ""
	if c.OIDC.Domain == "" && !hasPool && len(c.OIDC.DiscoveryURLs) == 0 {
		errs = append(errs, errors.New("COGNITO_DOMAIN or COGNITO_REGION+COGNITO_USER_POOL_ID is required"))
	}
	if err := validation.Scopes(c.OIDC.Scopes); err != nil {
		errs = append(errs, fmt.Errorf("OIDC_SCOPES: %w", err))
	}
	if c.IsProduction() {
		if c.Session.Secret == "" || c.Session.Secret == DevSessionSecret {
			errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
		}
		if c.URLs.Backend == "" || c.URLs.Frontend == "" {
			errs = append(errs, errors.New("BACKEND_URL and FRONTEND_URL are required in production"))
		}
	}
	switch c.Session.Store {
	case "memory", "redis", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store))
	}
	if c.Session.Store == "postgres" && c.Session.PostgresDSN == "" {
		errs = append(errs, errors.New("SESSION_POSTGRES_DSN is required for the postgres session store"))
	}
	if (c.Session.Store == "redis" || c.StateCache.Kind == "redis") && c.Redis.Addr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required for redis-backed stores"))
	}
	switch c.StateCache.Kind {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown STATE_CACHE_KIND %q", c.StateCache.Kind))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		return nonEmpty(strings.Split(s, ",")...), true
	}
	return nil, false
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// applyEnvOverrides: pisa el YAML con variables de entorno. Los nombres son
// los del deploy existente (.env del backend Node).
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("NODE_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + strings.TrimPrefix(strings.TrimSpace(v), ":")
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	// URLS
	if v, ok := getEnvStr("BACKEND_URL"); ok {
		c.URLs.Backend = v
	}
	if v, ok := getEnvStr("BACKEND_URL_LOCAL"); ok {
		c.URLs.BackendLocal = v
	}
	if v, ok := getEnvStr("FRONTEND_URL"); ok {
		c.URLs.Frontend = v
	}
	if v, ok := getEnvStr("FRONTEND_URL_LOCAL"); ok {
		c.URLs.FrontendLocal = v
	}

	// OIDC (Cognito)
	if v, ok := getEnvStr("COGNITO_CLIENT_ID"); ok {
		c.OIDC.ClientID = v
	}
	if v, ok := getEnvStr("COGNITO_CLIENT_SECRET"); ok {
		c.OIDC.ClientSecret = v
	}
	if v, ok := getEnvStr("COGNITO_DOMAIN"); ok {
		c.OIDC.Domain = v
	}
	if v, ok := getEnvStr("COGNITO_REGION"); ok {
		c.OIDC.Region = v
	}
	if v, ok := getEnvStr("COGNITO_USER_POOL_ID"); ok {
		c.OIDC.UserPoolID = v
	}
	if v, ok := getEnvCSV("OIDC_DISCOVERY_URLS"); ok {
		c.OIDC.DiscoveryURLs = v
	}
	if v, ok := getEnvStr("OIDC_SCOPES"); ok {
		c.OIDC.Scopes = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}
	if v, ok := getEnvDur("OIDC_HTTP_TIMEOUT"); ok {
		c.OIDC.HTTPTimeout = v
	}

	// STATE CACHE
	if v, ok := getEnvStr("STATE_CACHE_KIND"); ok {
		c.StateCache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvDur("STATE_CACHE_TTL"); ok {
		c.StateCache.TTL = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_SECRET"); ok {
		c.Session.Secret = v
	}
	if v, ok := getEnvStr("SESSION_STORE"); ok {
		c.Session.Store = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SESSION_COOKIE_DOMAIN"); ok {
		c.Session.CookieDomain = v
	}
	if v, ok := getEnvStr("SESSION_SQLITE_PATH"); ok {
		c.Session.SQLitePath = v
	}
	if v, ok := getEnvStr("SESSION_POSTGRES_DSN"); ok {
		c.Session.PostgresDSN = v
	}

	// REDIS
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}

	// CHAT (DeepSeek)
	if v, ok := getEnvStr("DEEPSEEK_API_KEY"); ok {
		c.Chat.APIKey = v
	}
	if v, ok := getEnvStr("DEEPSEEK_BASE_URL"); ok {
		c.Chat.BaseURL = v
	}
	if v, ok := getEnvInt("CHAT_RATE_LIMIT"); ok {
		c.Chat.RateLimit = v
	}

	// STOCKS (Finnhub)
	if v, ok := getEnvStr("FINNHUB_API_KEY"); ok {
		c.Stocks.APIKey = v
	}
	if v, ok := getEnvStr("FINNHUB_BASE_URL"); ok {
		c.Stocks.BaseURL = v
	}
	if v, ok := getEnvInt("FINNHUB_RATE_PER_MIN"); ok {
		c.Stocks.RatePerMin = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
}
