package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// Config holds all configuration for the application
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Learning LearningConfig `mapstructure:"learning"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Training TrainingConfig `mapstructure:"training"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Play     PlayConfig     `mapstructure:"play"`
}

// GameConfig holds board and game length settings
type GameConfig struct {
	Grid GridConfig `mapstructure:"grid"`
	// MaxHalfMoves caps a game. 0 means twice the number of cells.
	MaxHalfMoves int `mapstructure:"max_half_moves"`
}

// GridConfig holds the board dimensions
type GridConfig struct {
	Files int `mapstructure:"files"`
	Ranks int `mapstructure:"ranks"`
}

// LearningConfig holds value table seeding and outcome rewards
type LearningConfig struct {
	SeedValue  float64 `mapstructure:"seed_value"`
	WinReward  float64 `mapstructure:"win_reward"`
	LossReward float64 `mapstructure:"loss_reward"`
	DrawReward float64 `mapstructure:"draw_reward"`
}

// StorageConfig holds value table persistence settings
type StorageConfig struct {
	Type       string `mapstructure:"type"`
	Path       string `mapstructure:"path"`
	FlushEvery int    `mapstructure:"flush_every"`
}

// TrainingConfig holds bulk self-play settings
type TrainingConfig struct {
	Games     int    `mapstructure:"games"`
	EpochSize int    `mapstructure:"epoch_size"`
	Workers   int    `mapstructure:"workers"`
	LogEvery  int    `mapstructure:"log_every"`
	RNGSeed   uint64 `mapstructure:"rng_seed"`
	StatsFile string `mapstructure:"stats_file"`
	// MonitorInterval is how often run metrics are logged. 0 disables monitoring.
	MonitorInterval time.Duration `mapstructure:"monitor_interval"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PlayConfig holds settings for the interactive terminal game
type PlayConfig struct {
	HumanSide string `mapstructure:"human_side"`
	MaxGames  int    `mapstructure:"max_games"`
}

// Grid returns the configured board dimensions
func (c *Config) Grid() core.Grid {
	return core.Grid{Files: c.Game.Grid.Files, Ranks: c.Game.Grid.Ranks}
}

// HumanSide returns the side the human plays in the terminal game
func (c *Config) HumanSide() (core.Side, error) {
	return core.ParseSide(c.Play.HumanSide)
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.grid.files", 3)
	v.SetDefault("game.grid.ranks", 3)
	v.SetDefault("game.max_half_moves", 0)

	// Learning defaults
	v.SetDefault("learning.seed_value", 20.0)
	v.SetDefault("learning.win_reward", 1.0)
	v.SetDefault("learning.loss_reward", -1.0)
	v.SetDefault("learning.draw_reward", 0.0)

	// Storage defaults
	v.SetDefault("storage.type", "file")
	v.SetDefault("storage.path", "q_table.json")
	v.SetDefault("storage.flush_every", 1)

	// Training defaults
	v.SetDefault("training.games", 1000)
	v.SetDefault("training.epoch_size", 100)
	v.SetDefault("training.workers", 1)
	v.SetDefault("training.log_every", 100)
	v.SetDefault("training.rng_seed", 1)
	v.SetDefault("training.stats_file", "")
	v.SetDefault("training.monitor_interval", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Play defaults
	v.SetDefault("play.human_side", "white")
	v.SetDefault("play.max_games", 16)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/pawnrl")
	}

	v.SetEnvPrefix("PAWNRL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !missingConfig(err) {
		return fmt.Errorf("error reading config file: %w", err)
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// missingConfig reports whether ReadInConfig failed only because there was no file to read.
// Defaults apply in that case; a file that exists but does not parse is an error.
func missingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml from dir over the loaded configuration
func LoadEnvironmentConfig(dir, env string) error {
	if env == "" {
		return nil
	}

	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
		// No overlay for this environment
		return nil
	}

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}

	return Validate(cfg)
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	// Re-unmarshal to update struct
	v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return v.GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. An edit that fails to decode or
// validate is reported through onError and the running config is left as it was.
func WatchConfig(onChange func(fsnotify.Event), onError func(fsnotify.Event, error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := reload(); err != nil {
			if onError != nil {
				onError(e, err)
			}
			return
		}
		if onChange != nil {
			onChange(e)
		}
	})
	v.WatchConfig()
}

// reload decodes the current viper state into a fresh Config and swaps it in only if it validates
func reload() error {
	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode reloaded config: %w", err)
	}
	if err := Validate(next); err != nil {
		return fmt.Errorf("reloaded config rejected: %w", err)
	}
	*cfg = *next
	return nil
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if err := c.Grid().Validate(); err != nil {
		return fmt.Errorf("game.grid: %w", err)
	}
	if c.Game.MaxHalfMoves < 0 {
		return fmt.Errorf("game.max_half_moves must be non-negative")
	}

	finite := func(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
	if !finite(c.Learning.SeedValue) {
		return fmt.Errorf("learning.seed_value must be finite")
	}
	if !finite(c.Learning.WinReward) || !finite(c.Learning.LossReward) || !finite(c.Learning.DrawReward) {
		return fmt.Errorf("learning rewards must be finite")
	}
	if c.Learning.WinReward <= c.Learning.LossReward {
		return fmt.Errorf("learning.win_reward must be greater than learning.loss_reward")
	}

	switch c.Storage.Type {
	case "file":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for file storage")
		}
	case "none":
	default:
		return fmt.Errorf("storage.type must be one of file, none (got %q)", c.Storage.Type)
	}
	if c.Storage.FlushEvery < 1 {
		return fmt.Errorf("storage.flush_every must be at least 1")
	}

	if c.Training.Games < 0 {
		return fmt.Errorf("training.games must be non-negative")
	}
	if c.Training.EpochSize < 1 {
		return fmt.Errorf("training.epoch_size must be at least 1")
	}
	if c.Training.Workers < 1 {
		return fmt.Errorf("training.workers must be at least 1")
	}
	if c.Training.LogEvery < 0 {
		return fmt.Errorf("training.log_every must be non-negative")
	}
	if c.Training.MonitorInterval < 0 {
		return fmt.Errorf("training.monitor_interval must be non-negative")
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}

	if _, err := core.ParseSide(c.Play.HumanSide); err != nil {
		return fmt.Errorf("play.human_side: %w", err)
	}
	if c.Play.MaxGames < 1 {
		return fmt.Errorf("play.max_games must be at least 1")
	}

	return nil
}
