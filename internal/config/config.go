package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type OpenAIConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

type AnalysisConfig struct {
	DefaultPeriodDays int `mapstructure:"default_period_days"`
	DefaultClusters   int `mapstructure:"default_clusters"`
}

type JobsConfig struct {
	DailyInterval time.Duration `mapstructure:"daily_interval"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
}

// Load reads configuration from an optional config.yaml in the working
// directory, overridable by CLASSPULSE_* environment variables
// (e.g. CLASSPULSE_OPENAI_API_KEY, CLASSPULSE_MONGO_URI).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "classpulse")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("http.port", "8080")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.timeout", 30*time.Second)
	v.SetDefault("openai.max_retries", 3)
	v.SetDefault("analysis.default_period_days", 30)
	v.SetDefault("analysis.default_clusters", 5)
	v.SetDefault("jobs.daily_interval", 24*time.Hour)
	v.SetDefault("jobs.max_concurrent", 4)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("classpulse")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LLMEnabled reports whether a provider key is configured.
func (c *Config) LLMEnabled() bool {
	return c.OpenAI.APIKey != ""
}
