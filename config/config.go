package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Steam    SteamConfig    `mapstructure:"steam"`
	Cache    CacheConfig    `mapstructure:"cache"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Tts      TtsConfig      `mapstructure:"tts"`
	Share    ShareConfig    `mapstructure:"share"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	BaseURL        string   `mapstructure:"base_url"` // used for OpenID return_to and share links
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// FrontendURL is where sign-in and sign-out land. Empty means the pages
	// served by this process.
	FrontendURL string `mapstructure:"frontend_url"`
}

type AuthConfig struct {
	SessionSecret string `mapstructure:"session_secret"`
	OpenIDURL     string `mapstructure:"openid_url"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite3" or "pgx"
	DSN    string `mapstructure:"dsn"`
}

// ResolvedDriver returns the configured driver, except that a postgres URL
// DSN (as DATABASE_URL usually is) always selects pgx.
func (d DatabaseConfig) ResolvedDriver() string {
	dsn := strings.ToLower(strings.TrimSpace(d.DSN))
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx"
	}
	if d.Driver == "" {
		return "sqlite3"
	}
	return d.Driver
}

type SteamConfig struct {
	APIKey           string  `mapstructure:"api_key"`
	APIBaseURL       string  `mapstructure:"api_base_url"`
	StoreBaseURL     string  `mapstructure:"store_base_url"`
	SteamSpyBaseURL  string  `mapstructure:"steamspy_base_url"`
	CommunityBaseURL string  `mapstructure:"community_base_url"`
	Timeout          int     `mapstructure:"timeout"` // seconds
	RateLimit        float64 `mapstructure:"rate_limit"`
	RateBurst        int     `mapstructure:"rate_burst"`
	BadgeLimit       int     `mapstructure:"badge_limit"`
}

func (s SteamConfig) RequestTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

type CacheConfig struct {
	Backend   string `mapstructure:"backend"` // "memory" or "redis"
	RedisAddr string `mapstructure:"redis_addr"`
	Prefix    string `mapstructure:"prefix"`
}

// LLM provider selection
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "gemini", "openai", "ollama" or "none"
}

type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`   // Optional, defaults to OpenAI API
	MaxTokens int    `mapstructure:"max_tokens"` // Optional, defaults to model's max
	Timeout   int    `mapstructure:"timeout"`
	JSONMode  bool   `mapstructure:"json_mode"`
}

// Gemini is reached through its OpenAI-compatible endpoint.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type TtsConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Voice           string `mapstructure:"voice"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type ShareConfig struct {
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
	// TrustedProxies lists the addresses or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed. Everyone else is keyed by peer address.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Mode  string `mapstructure:"mode"` // "dev" or "prod"
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Bare env names kept for existing deployments
	v.BindEnv("steam.api_key", "STEAM_API_KEY")
	v.BindEnv("gemini.api_key", "GOOGLE_API_KEY")
	v.BindEnv("database.dsn", "DATABASE_URL")
	v.BindEnv("auth.session_secret", "SECRET_KEY")
	v.BindEnv("cache.redis_addr", "REDIS_ADDR")
	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")

	v.SetEnvPrefix("STEAMWRAPPED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// Config file not found, use defaults
	}

	// Local overrides, ignored by git
	v.SetConfigName("config.local")
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})
	v.SetDefault("server.frontend_url", "")

	v.SetDefault("auth.session_secret", "dev-key-please-change")
	v.SetDefault("auth.openid_url", "https://steamcommunity.com/openid/login")

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "./steamwrapped.db")

	v.SetDefault("steam.api_base_url", "https://api.steampowered.com")
	v.SetDefault("steam.store_base_url", "https://store.steampowered.com")
	v.SetDefault("steam.steamspy_base_url", "https://steamspy.com")
	v.SetDefault("steam.community_base_url", "https://steamcommunity.com")
	v.SetDefault("steam.timeout", 10)
	v.SetDefault("steam.rate_limit", 10)
	v.SetDefault("steam.rate_burst", 20)
	v.SetDefault("steam.badge_limit", 10)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.prefix", "steamwrapped")

	v.SetDefault("llm.provider", "gemini")

	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("gemini.timeout", 20)

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", 30)
	v.SetDefault("openai.max_tokens", 200)

	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2")
	v.SetDefault("ollama.timeout", 30)

	v.SetDefault("tts.enabled", false)
	v.SetDefault("tts.voice", "en-US-Chirp-HD-F")

	v.SetDefault("share.rate_limit", 1)
	v.SetDefault("share.rate_burst", 5)
	v.SetDefault("share.trusted_proxies", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.mode", "dev")
}
