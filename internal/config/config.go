// Package config loads all settings from the environment (a .env file is
// honored when present).
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`
	ReferenceTZ   string `env:"REFERENCE_TZ" envDefault:"Australia/Melbourne"`
	Port          int    `env:"PORT" envDefault:"10000"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Document store. "sqlite" keeps everything local; "github" stores the
	// documents as files in a repository.
	StoreBackend string        `env:"STORE_BACKEND" envDefault:"sqlite"`
	SQLitePath   string        `env:"SQLITE_PATH" envDefault:"commandant.db"`
	GitHubToken  string        `env:"GITHUB_TOKEN"`
	GitHubOwner  string        `env:"GITHUB_USERNAME"`
	GitHubRepo   string        `env:"GITHUB_REPO"`
	LedgerKey    string        `env:"GITHUB_FILE_PATH" envDefault:"get_status.json"`
	MetaKey      string        `env:"METADATA_FILE_PATH" envDefault:"bot_metadata.json"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"10s"`

	// Channels the bot cares about.
	EvidenceChannel    string `env:"EVIDENCE_CHANNEL" envDefault:"evidence"`
	LeaderboardChannel string `env:"LEADERBOARD_CHANNEL" envDefault:"leaderboard"`
	GoalsChannel       string `env:"GOALS_CHANNEL" envDefault:"goals"`
	LeaderboardChatID  int64  `env:"LEADERBOARD_CHAT_ID"`
	GoalsChatID        int64  `env:"GOALS_CHAT_ID"`

	// Domain knobs.
	OnTrackRatio    float64       `env:"ON_TRACK_RATIO" envDefault:"0.85"`
	AtRiskRatio     float64       `env:"AT_RISK_RATIO" envDefault:"0.5"`
	MaxWeeklyMisses int           `env:"MAX_WEEKLY_MISSES" envDefault:"2"`
	NagHour         int           `env:"NAG_HOUR" envDefault:"9"`
	CheckInterval   time.Duration `env:"CHECK_INTERVAL" envDefault:"1h"`
	DayCutoverHour  int           `env:"DAY_CUTOVER_HOUR" envDefault:"4"`
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.StoreBackend != "sqlite" && c.StoreBackend != "github" {
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.StoreBackend == "github" && (c.GitHubToken == "" || c.GitHubOwner == "" || c.GitHubRepo == "") {
		return fmt.Errorf("config: github backend needs GITHUB_TOKEN, GITHUB_USERNAME and GITHUB_REPO")
	}
	if c.NagHour < 0 || c.NagHour > 23 {
		return fmt.Errorf("config: NAG_HOUR %d out of range", c.NagHour)
	}
	if c.DayCutoverHour < 0 || c.DayCutoverHour > 23 {
		return fmt.Errorf("config: DAY_CUTOVER_HOUR %d out of range", c.DayCutoverHour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the reference timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReferenceTZ)
	if err != nil {
		return nil, fmt.Errorf("config: bad REFERENCE_TZ %q: %w", c.ReferenceTZ, err)
	}
	return loc, nil
}
