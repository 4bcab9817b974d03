package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode string `mapstructure:"mode"`
	Port int    `mapstructure:"port"`

	// Media server credentials shared with the SFU deployment.
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`

	// AdminSecret guards the /admin group; empty disables it.
	AdminSecret string `mapstructure:"admin_secret"`

	// SFU endpoints: REST admin API and the websocket signal URL.
	SFUAPIURL string `mapstructure:"sfu_api_url"`
	SFUWSURL  string `mapstructure:"sfu_ws_url"`

	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`

	// Viewer settings.
	TokendURL string `mapstructure:"tokend_url"`
	PageSize  int    `mapstructure:"page_size"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("sfu_api_url", "http://127.0.0.1:7880")
	v.SetDefault("sfu_ws_url", "ws://127.0.0.1:7880")
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("cache_ttl", "5s")
	v.SetDefault("tokend_url", "http://127.0.0.1:3001")
	v.SetDefault("page_size", 4)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
