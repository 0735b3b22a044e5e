package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	Redis     RedisConfig
	SQLite    SQLiteConfig
	Providers ProvidersConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type CacheConfig struct {
	MaxSize          int
	DefaultTTLMillis int
	SweepIntervalSec int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type SQLiteConfig struct {
	Path string
}

type ProvidersConfig struct {
	Adzuna        AdzunaConfig
	StackExchange StackExchangeConfig
}

type AdzunaConfig struct {
	AppID      string
	APIKey     string
	BaseURL    string
	Country    string
	Window     string
	TimeoutSec int
}

type StackExchangeConfig struct {
	Key        string
	Site       string
	BaseURL    string
	Window     string
	TimeoutSec int
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/skillcompass")

	viper.SetEnvPrefix("SKILLCOMPASS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Cache.MaxSize <= 0 {
		return nil, fmt.Errorf("cache.maxSize must be positive, got %d", config.Cache.MaxSize)
	}
	if config.Cache.DefaultTTLMillis <= 0 {
		return nil, fmt.Errorf("cache.defaultTTLMillis must be positive, got %d", config.Cache.DefaultTTLMillis)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("cache.maxSize", 500)
	viper.SetDefault("cache.defaultTTLMillis", 3600000)
	viper.SetDefault("cache.sweepIntervalSec", 300)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("sqlite.path", "./data/skillcompass.db")

	viper.SetDefault("providers.adzuna.baseURL", "https://api.adzuna.com/v1/api/jobs")
	viper.SetDefault("providers.adzuna.country", "us")
	viper.SetDefault("providers.adzuna.window", "30d")
	viper.SetDefault("providers.adzuna.timeoutSec", 10)

	viper.SetDefault("providers.stackexchange.baseURL", "https://api.stackexchange.com/2.3")
	viper.SetDefault("providers.stackexchange.site", "stackoverflow")
	viper.SetDefault("providers.stackexchange.window", "30d")
	viper.SetDefault("providers.stackexchange.timeoutSec", 10)

	viper.SetDefault("ratelimit.maxRequestsPerMinute", 60)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
