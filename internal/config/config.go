package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

type Config struct {
	TelegramBot  TelegramBot
	FootballData FootballData
	Gemini       Gemini
	Store        Store
	Game         Game
	Scheduler    Scheduler
	HTTP         HTTP
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN" required:"true"`
	ChatID int64  `envconfig:"CHAT_ID" required:"true"`
}

type FootballData struct {
	Token       string        `envconfig:"FOOTBALL_DATA_TOKEN"`
	BaseURL     string        `envconfig:"FOOTBALL_DATA_URL" default:"https://api.football-data.org/v4"`
	Competition string        `envconfig:"FOOTBALL_DATA_COMPETITION" default:"PL"`
	Timeout     time.Duration `envconfig:"FOOTBALL_DATA_TIMEOUT" default:"10s"`
}

type Gemini struct {
	APIKey string `envconfig:"GEMINI_API_KEY"`
	Model  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	Season string `envconfig:"SEASON" default:"2024/25"`
}

type Store struct {
	Path string `envconfig:"STORE_PATH" default:"survivor.db"`
	Key  string `envconfig:"STORE_KEY" default:"pl-survivor-v4"`
}

type Game struct {
	EntryCost     int           `envconfig:"ENTRY_COST" default:"10"`
	MaxEntries    int           `envconfig:"MAX_ENTRIES" default:"2"`
	StartingCoins int           `envconfig:"STARTING_COINS" default:"50"`
	LockWindow    time.Duration `envconfig:"LOCK_WINDOW" default:"1h"`
}

type Scheduler struct {
	RefreshCron  string `envconfig:"REFRESH_CRON" default:"*/30 * * * *"`
	ReminderCron string `envconfig:"REMINDER_CRON" default:"0 18 * * 5"`
	Timezone     string `envconfig:"TIMEZONE" default:"Europe/London"`
}

type HTTP struct {
	Addr string `envconfig:"HTTP_ADDR" default:":80"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Game.EntryCost < 0 {
		return fmt.Errorf("ENTRY_COST must not be negative, got %d", c.Game.EntryCost)
	}
	if c.Game.MaxEntries < 1 {
		return fmt.Errorf("MAX_ENTRIES must be at least 1, got %d", c.Game.MaxEntries)
	}
	if c.Game.LockWindow < 0 {
		return fmt.Errorf("LOCK_WINDOW must not be negative, got %s", c.Game.LockWindow)
	}
	if _, err := cron.ParseStandard(c.Scheduler.RefreshCron); err != nil {
		return fmt.Errorf("REFRESH_CRON: %w", err)
	}
	if _, err := cron.ParseStandard(c.Scheduler.ReminderCron); err != nil {
		return fmt.Errorf("REMINDER_CRON: %w", err)
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}
