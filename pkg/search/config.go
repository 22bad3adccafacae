package search

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid search configuration")

// Config manages sweep configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Hierarchy and sampler parameters
	v.SetDefault("algorithm.block_counts", []int{3})
	v.SetDefault("algorithm.eps", 0.1)
	v.SetDefault("algorithm.beta", 1.0)
	v.SetDefault("algorithm.max_sweeps", 100)
	v.SetDefault("algorithm.min_accept_rate", 0.01)
	v.SetDefault("algorithm.random_seed", time.Now().UnixNano())
	v.SetDefault("algorithm.remove_empty", true)

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_progress", true)

	v.SetDefault("analysis.track_moves", false)
	v.SetDefault("analysis.output_file", "moves.jsonl")

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for algorithm parameters
func (c *Config) BlockCounts() []int     { return c.v.GetIntSlice("algorithm.block_counts") }
func (c *Config) Eps() float64           { return c.v.GetFloat64("algorithm.eps") }
func (c *Config) Beta() float64          { return c.v.GetFloat64("algorithm.beta") }
func (c *Config) MaxSweeps() int         { return c.v.GetInt("algorithm.max_sweeps") }
func (c *Config) MinAcceptRate() float64 { return c.v.GetFloat64("algorithm.min_accept_rate") }
func (c *Config) RandomSeed() int64      { return c.v.GetInt64("algorithm.random_seed") }
func (c *Config) RemoveEmpty() bool      { return c.v.GetBool("algorithm.remove_empty") }

func (c *Config) LogLevel() string     { return c.v.GetString("logging.level") }
func (c *Config) EnableProgress() bool { return c.v.GetBool("logging.enable_progress") }

func (c *Config) EnableMoveTracking() bool   { return c.v.GetBool("analysis.track_moves") }
func (c *Config) TrackingOutputFile() string { return c.v.GetString("analysis.output_file") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Validate checks the sampler parameters before any level is built
func (c *Config) Validate() error {
	counts := c.BlockCounts()
	if len(counts) == 0 {
		return fmt.Errorf("%w: algorithm.block_counts is empty", ErrInvalidConfig)
	}
	for i, k := range counts {
		if k < 1 {
			return fmt.Errorf("%w: block count %d of level %d", ErrInvalidConfig, k, i+1)
		}
	}
	if c.Eps() < 0 {
		return fmt.Errorf("%w: negative eps %g", ErrInvalidConfig, c.Eps())
	}
	if c.Beta() < 0 {
		return fmt.Errorf("%w: negative beta %g", ErrInvalidConfig, c.Beta())
	}
	if c.MaxSweeps() < 1 {
		return fmt.Errorf("%w: max_sweeps must be positive", ErrInvalidConfig)
	}
	return nil
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "sbm").Logger()
}
