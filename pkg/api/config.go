package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Jobs   JobConfig
	CORS   CORSConfig
}

type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type JobConfig struct {
	MaxWorkers      int
	JobTimeout      time.Duration
	CleanupInterval time.Duration
	ResultTTL       time.Duration
	LogLevel        string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LoadConfig reads defaults, then the optional config file, then SBM_*
// environment variables (SBM_SERVER_ADDRESS, SBM_JOBS_MAX_WORKERS, ...).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("jobs.max_workers", 4)
	v.SetDefault("jobs.job_timeout", 10*time.Minute)
	v.SetDefault("jobs.cleanup_interval", 5*time.Minute)
	v.SetDefault("jobs.result_ttl", time.Hour)
	v.SetDefault("jobs.log_level", "warn")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetEnvPrefix("SBM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Address:      v.GetString("server.address"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Jobs: JobConfig{
			MaxWorkers:      v.GetInt("jobs.max_workers"),
			JobTimeout:      v.GetDuration("jobs.job_timeout"),
			CleanupInterval: v.GetDuration("jobs.cleanup_interval"),
			ResultTTL:       v.GetDuration("jobs.result_ttl"),
			LogLevel:        v.GetString("jobs.log_level"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
	}

	if cfg.Jobs.MaxWorkers < 1 {
		return nil, fmt.Errorf("jobs.max_workers must be positive, got %d", cfg.Jobs.MaxWorkers)
	}
	return cfg, nil
}
