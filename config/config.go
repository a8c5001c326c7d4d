package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/dimaq12/minesweeper/models"
)

// CustomConfig holds the player-defined board used by the Custom difficulty.
type CustomConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	Mines  int `mapstructure:"mines"`
}

// Config holds all runtime configuration for a game session.
// Values are populated from .minesweeper.yaml, MINESWEEPER_* env vars, and CLI flags.
type Config struct {
	SaveDir    string       `mapstructure:"save_dir"`
	ScoresPath string       `mapstructure:"scores_path"`
	LogDir     string       `mapstructure:"log_dir"`
	Difficulty string       `mapstructure:"difficulty"`
	Custom     CustomConfig `mapstructure:"custom"`
	Seed       uint64       `mapstructure:"seed"` // 0 picks a time-based seed
	Verbose    bool         `mapstructure:"verbose"`
}

// SetDefaults registers the built-in defaults with viper.
func SetDefaults() {
	viper.SetDefault("save_dir", "saves")
	viper.SetDefault("scores_path", "minesweeper_scores.db")
	viper.SetDefault("log_dir", "logs")
	viper.SetDefault("difficulty", models.Easy)
	viper.SetDefault("custom.width", 9)
	viper.SetDefault("custom.height", 9)
	viper.SetDefault("custom.mines", 10)
	viper.SetDefault("seed", 0)
	viper.SetDefault("verbose", false)
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and validates it.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the difficulty label and, for Custom, the board limits.
// It canonicalises the label's spelling.
func (c *Config) Validate() error {
	label, err := models.NormalizeLabel(c.Difficulty)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Difficulty = label
	if label == models.Custom {
		if err := models.ValidateCustom(c.Custom.Width, c.Custom.Height, c.Custom.Mines); err != nil {
			return fmt.Errorf("config: custom board: %w", err)
		}
	}
	return nil
}

// Board returns the difficulty the configuration selects.
func (c Config) Board() (models.Difficulty, error) {
	if d, ok := models.PresetFor(c.Difficulty); ok {
		return d, nil
	}
	return models.CustomDifficulty(c.Custom.Width, c.Custom.Height, c.Custom.Mines)
}
