package config

import (
	"strings"
	"sync"

	"campus-scheduler/core/logger"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
}

// MutationConfig controls the coordinator. TimeoutSeconds bounds the network
// leg of every ticket; expiry forces a rollback so a ticket can never stay
// open forever.
type MutationConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mutation MutationConfig `mapstructure:"mutation"`
}

var (
	mu       sync.RWMutex
	instance *Config
)

// Load reads configuration from config.yaml (optional) and environment
// variables (prefix CS_, dots become underscores: CS_UPSTREAM_BASE_URL).
func Load() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("CS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "dev")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("upstream.base_url", "http://localhost:8080/api")
	v.SetDefault("upstream.timeout_seconds", 30)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.access_ttl_minutes", 60)
	v.SetDefault("mutation.timeout_seconds", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		logger.Info("Config:Load:NoConfigFile", "detail", "using env and defaults")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return err
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()
	return nil
}

func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// GetSafe returns the config and whether Load has run.
func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

// Set replaces the config instance. Used by tests.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}
