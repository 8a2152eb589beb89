package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Server struct {
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	Log struct {
		Level  string `mapstructure:"level"`
		Pretty bool   `mapstructure:"pretty"`
	} `mapstructure:"log"`
	Chat struct {
		URL        string        `mapstructure:"url"`
		Timeout    time.Duration `mapstructure:"timeout"`
		MaxRetries int           `mapstructure:"max_retries"`
		Backoff    time.Duration `mapstructure:"backoff"`
	} `mapstructure:"chat"`
	Engine struct {
		StartDelay   time.Duration `mapstructure:"start_delay"`
		StepDuration time.Duration `mapstructure:"step_duration"`
	} `mapstructure:"engine"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment.
// A missing config file is not an error; defaults cover every key.
func LoadConfig(path string) (*Config, error) {
	setDefaults()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", false)
	viper.SetDefault("chat.url", "http://localhost:8000/api/chat")
	viper.SetDefault("chat.timeout", 30*time.Second)
	viper.SetDefault("chat.max_retries", 2)
	viper.SetDefault("chat.backoff", time.Second)
	viper.SetDefault("engine.start_delay", 100*time.Millisecond)
	viper.SetDefault("engine.step_duration", 2*time.Second)
	viper.SetDefault("tls.enable", false)
}
