package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Spoonacular SpoonacularConfig `mapstructure:"spoonacular"`
	DeepL       DeepLConfig       `mapstructure:"deepl"`
	Translation TranslationConfig `mapstructure:"translation"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Recipe      RecipeConfig      `mapstructure:"recipe"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	DedupWindow time.Duration     `mapstructure:"dedup_window"`
	LogLevel    string            `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SpoonacularConfig 食譜搜尋 API 設定
type SpoonacularConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryWait     time.Duration `mapstructure:"retry_wait"`
	FindNumber    int           `mapstructure:"find_number"`
	ComplexNumber int           `mapstructure:"complex_number"`
}

// DeepLConfig 翻譯 API 設定
type DeepLConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	RetryWait  time.Duration `mapstructure:"retry_wait"`
}

// TranslationConfig 翻譯快取設定
type TranslationConfig struct {
	Backend    string `mapstructure:"backend"`     // memory 或 redis
	MaxEntries int    `mapstructure:"max_entries"` // 0 表示不限
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// RecipeConfig 食譜比對設定
type RecipeConfig struct {
	MinIngredients  int    `mapstructure:"min_ingredients"`
	ScoreMode       string `mapstructure:"score_mode"`
	IncludeCatchAll bool   `mapstructure:"include_catch_all"`
	TierCap         int    `mapstructure:"tier_cap"`
	FanoutLimit     int    `mapstructure:"fanout_limit"`
}

// DatabaseConfig 資料庫設定
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// AuthConfig 身分驗證設定
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時改用環境變數）
	_ = godotenv.Load()

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("spoonacular.api_key", "SPOONACULAR_API_KEY")
	_ = v.BindEnv("deepl.api_key", "DEEPL_API_KEY")
	_ = v.BindEnv("translation.backend", "TRANSLATION_BACKEND")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.driver", "DB_DRIVER")
	_ = v.BindEnv("database.dsn", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("recipe.min_ingredients", "MIN_INGREDIENTS")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.port", "PORT")

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "taste-trip-api")

	// 伺服器設定
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "60s")

	// Spoonacular 設定
	v.SetDefault("spoonacular.base_url", "https://api.spoonacular.com")
	v.SetDefault("spoonacular.timeout", "15s")
	v.SetDefault("spoonacular.retry_count", 2)
	v.SetDefault("spoonacular.retry_wait", "500ms")
	v.SetDefault("spoonacular.find_number", 100)
	v.SetDefault("spoonacular.complex_number", 5)

	// DeepL 設定
	v.SetDefault("deepl.url", "https://api-free.deepl.com/v2/translate")
	v.SetDefault("deepl.timeout", "10s")
	v.SetDefault("deepl.retry_count", 1)
	v.SetDefault("deepl.retry_wait", "300ms")

	// 翻譯快取設定
	v.SetDefault("translation.backend", "memory")
	v.SetDefault("translation.max_entries", 0)

	// Redis 設定
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "translation")
	v.SetDefault("redis.ttl", "0s")

	// 食譜比對設定
	v.SetDefault("recipe.min_ingredients", 2)
	v.SetDefault("recipe.score_mode", "coverage")
	v.SetDefault("recipe.include_catch_all", false)
	v.SetDefault("recipe.tier_cap", 5)
	v.SetDefault("recipe.fanout_limit", 8)

	// 資料庫設定
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "taste_trip.db")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證食譜比對設定
	if config.Recipe.MinIngredients < 1 {
		return fmt.Errorf("recipe min_ingredients must be at least 1")
	}
	if config.Recipe.TierCap < 1 {
		return fmt.Errorf("recipe tier_cap must be at least 1")
	}
	if config.Recipe.FanoutLimit < 1 {
		return fmt.Errorf("recipe fanout_limit must be at least 1")
	}
	switch config.Recipe.ScoreMode {
	case "coverage", "api_counts":
	default:
		return fmt.Errorf("unknown recipe score_mode %q", config.Recipe.ScoreMode)
	}

	// 驗證快取設定
	switch config.Translation.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown translation backend %q", config.Translation.Backend)
	}
	if config.Translation.MaxEntries < 0 {
		return fmt.Errorf("invalid translation max_entries")
	}

	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", config.Database.Driver)
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
