package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string `mapstructure:"APP_ENV"`
	AppPort     string `mapstructure:"APP_PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"` // через запятую
	// CIDR прокси через запятую; пусто: X-Forwarded-For не учитывается
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBScheme   string `mapstructure:"DB_SCHEME"`

	// --- S3 ---
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle bool   `mapstructure:"S3_PATH_STYLE"`

	// --- Redis / кеш (TTL в секундах) ---
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int    `mapstructure:"REDIS_DB"`
	RedisCacheTTL     int    `mapstructure:"REDIS_CACHE_TTL"`
	RedisUserCacheTTL int    `mapstructure:"REDIS_USER_CACHE_TTL"`
	RedisAICacheTTL   int    `mapstructure:"REDIS_AI_CACHE_TTL"`
	RateLimitBackend  string `mapstructure:"RATE_LIMIT_BACKEND"` // memory | redis

	// --- Auth ---
	AuthJWTSecret string        `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer    string        `mapstructure:"AUTH_ISSUER"`
	AuthTokenTTL  time.Duration `mapstructure:"AUTH_TOKEN_TTL"`

	// --- AI ---
	OpenAIAPIKey    string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel     string        `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL   string        `mapstructure:"OPENAI_BASE_URL"`
	GroqAPIKey      string        `mapstructure:"GROQ_API_KEY"`
	GroqModel       string        `mapstructure:"GROQ_MODEL"`
	GroqBaseURL     string        `mapstructure:"GROQ_BASE_URL"`
	GeminiAPIKey    string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel     string        `mapstructure:"GEMINI_MODEL"`
	GeminiBaseURL   string        `mapstructure:"GEMINI_BASE_URL"`
	AIParseProvider string        `mapstructure:"AI_PARSE_PROVIDER"`
	AIWriteProvider string        `mapstructure:"AI_WRITE_PROVIDER"`
	AITimeout       time.Duration `mapstructure:"AI_TIMEOUT"`
}

var defaults = map[string]any{
	"APP_ENV":              "development",
	"APP_PORT":             ":8000",
	"LOG_LEVEL":            "info",
	"CORS_ORIGINS":         "http://localhost:3000,http://localhost:5173",
	"DB_HOST":              "localhost",
	"DB_PORT":              5432,
	"DB_SCHEME":            "public",
	"S3_REGION":            "us-east-1",
	"S3_BUCKET":            "resumes",
	"S3_PATH_STYLE":        true,
	"REDIS_DB":             0,
	"REDIS_CACHE_TTL":      3600,
	"REDIS_USER_CACHE_TTL": 1800,
	"REDIS_AI_CACHE_TTL":   7200,
	"RATE_LIMIT_BACKEND":   "memory",
	"AUTH_ISSUER":          "resume-builder",
	"AUTH_TOKEN_TTL":       "24h",
	"OPENAI_MODEL":         "gpt-4o-mini",
	"GROQ_MODEL":           "llama-3.3-70b-versatile",
	"GEMINI_MODEL":         "gemini-2.0-flash",
	"AI_PARSE_PROVIDER":    "gemini",
	"AI_WRITE_PROVIDER":    "openai",
	"AI_TIMEOUT":           "30s",
}

var secrets = []string{"DB_PASSWORD", "S3_ACCESS_KEY", "S3_SECRET_KEY", "REDIS_PASSWORD",
	"AUTH_JWT_SECRET", "OPENAI_API_KEY", "GROQ_API_KEY", "GEMINI_API_KEY"}

// String реализует интерфейс Stringer; секреты маскируются
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	line := func(k string, v any) { sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v)) }
	secret := func(k, v string) {
		if v != "" {
			line(k, "********")
		} else {
			line(k, "(empty)")
		}
	}

	line("AppEnv", c.AppEnv)
	line("AppPort", c.AppPort)
	line("LogLevel", c.LogLevel)
	line("CORSOrigins", c.CORSOrigins)
	line("TrustedProxies", c.TrustedProxies)

	line("DBHost", c.DBHost)
	line("DBPort", c.DBPort)
	line("DBUser", c.DBUser)
	line("DBName", c.DBName)
	line("DBScheme", c.DBScheme)
	secret("DBPassword", c.DBPassword)

	// S3
	line("S3Endpoint", c.S3Endpoint)
	line("S3Region", c.S3Region)
	line("S3Bucket", c.S3Bucket)
	secret("S3AccessKey", c.S3AccessKey)
	secret("S3SecretKey", c.S3SecretKey)
	line("S3UseSSL", c.S3UseSSL)
	line("S3PathStyle", c.S3PathStyle)

	// Redis
	line("RedisAddr", c.RedisAddr)
	line("RedisDB", c.RedisDB)
	secret("RedisPassword", c.RedisPassword)
	line("RedisCacheTTL", c.RedisCacheTTL)
	line("RedisUserCacheTTL", c.RedisUserCacheTTL)
	line("RedisAICacheTTL", c.RedisAICacheTTL)
	line("RateLimitBackend", c.RateLimitBackend)

	// Auth
	line("AuthIssuer", c.AuthIssuer)
	line("AuthTokenTTL", c.AuthTokenTTL)
	secret("AuthJWTSecret", c.AuthJWTSecret)

	// AI
	secret("OpenAIAPIKey", c.OpenAIAPIKey)
	line("OpenAIModel", c.OpenAIModel)
	secret("GroqAPIKey", c.GroqAPIKey)
	line("GroqModel", c.GroqModel)
	secret("GeminiAPIKey", c.GeminiAPIKey)
	line("GeminiModel", c.GeminiModel)
	line("AIParseProvider", c.AIParseProvider)
	line("AIWriteProvider", c.AIWriteProvider)
	line("AITimeout", c.AITimeout)

	return sb.String()
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Загружаем .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	for k, def := range defaults {
		v.SetDefault(k, def)
	}

	// Регистрируем интересующие ключи окружения
	keys := []string{
		"DB_USER", "DB_PASSWORD", "DB_NAME",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_USE_SSL",
		"REDIS_ADDR", "REDIS_PASSWORD", "TRUSTED_PROXIES",
		"AUTH_JWT_SECRET",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "GROQ_API_KEY", "GROQ_BASE_URL",
		"GEMINI_API_KEY", "GEMINI_BASE_URL",
	}
	keys = append(keys, secrets...)
	for k := range defaults {
		keys = append(keys, k)
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AuthJWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	switch c.RateLimitBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be memory or redis, got %q", c.RateLimitBackend)
	}
	if c.RateLimitBackend == "redis" && c.RedisAddr == "" {
		return errors.New("RATE_LIMIT_BACKEND=redis requires REDIS_ADDR")
	}
	if _, err := c.Proxies(); err != nil {
		return err
	}
	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// Origins: CORS_ORIGINS списком.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Proxies: TRUSTED_PROXIES списком сетей. Одиночный адрес считается /32 (/128).
func (c *Config) Proxies() ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, s := range strings.Split(c.TrustedProxies, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			addr, err := netip.ParseAddr(s)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address %q", s)
			}
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: invalid CIDR %q", s)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

// CacheTTLs: TTL кеша по категориям, в секундах из окружения.
func (c *Config) CacheTTLs() (generic, user, ai time.Duration) {
	return time.Duration(c.RedisCacheTTL) * time.Second,
		time.Duration(c.RedisUserCacheTTL) * time.Second,
		time.Duration(c.RedisAICacheTTL) * time.Second
}
