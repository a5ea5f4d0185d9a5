// Package config manages application configuration from a YAML file,
// BOT_* environment variables and default values.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration. Values can be set via
// environment variables prefixed with BOT_ (e.g., BOT_TELEGRAM_TOKEN) or
// through config.yaml.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Purge     PurgeConfig     `mapstructure:"purge"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log verbosity and format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and the owner allowed to run commands.
type TelegramConfig struct {
	Token       string `mapstructure:"token"         validate:"required"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"required,gt=0"`

	// BotInfo is filled at startup from getMe.
	BotInfo *models.User `mapstructure:"-" validate:"-"`
}

// DatabaseConfig locates the message log and bounds how long entries are kept.
type DatabaseConfig struct {
	Path      string        `mapstructure:"path"      validate:"required"`
	Retention time.Duration `mapstructure:"retention" validate:"min=1h"`
}

// PurgeConfig tunes the purge engine and the pacing of delete calls.
type PurgeConfig struct {
	BatchSize   int           `mapstructure:"batch_size"   validate:"min=1,max=100"`
	PageSize    int           `mapstructure:"page_size"    validate:"min=1,max=1000"`
	GracePeriod time.Duration `mapstructure:"grace_period" validate:"min=0s,max=1m"`
	Timeout     time.Duration `mapstructure:"timeout"      validate:"min=1s,max=1h"`
	DeleteRate  float64       `mapstructure:"delete_rate"  validate:"gt=0,max=30"`
	DeleteBurst int           `mapstructure:"delete_burst" validate:"min=1,max=30"`
}

// GeminiConfig configures the translation client. An empty APIKey disables
// translation.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	ModelName         string        `mapstructure:"model_name"          validate:"required"`
	Temperature       float32       `mapstructure:"temperature"         validate:"min=0,max=2"`
	MaxRetries        int           `mapstructure:"max_retries"         validate:"min=0,max=10"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
	TargetLanguage    string        `mapstructure:"target_language"     validate:"required"`
	Timeout           time.Duration `mapstructure:"timeout"             validate:"min=1s,max=10m"`
}

// SchedulerConfig lists the scheduled tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task and sets its cron schedule (seconds field allowed).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MetricsConfig sets the listen address of the /metrics and /health server.
// An empty address disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// MessagesConfig holds every user-facing text.
type MessagesConfig struct {
	Welcome              string `mapstructure:"welcome"                 validate:"required"`
	Help                 string `mapstructure:"help"                    validate:"required"`
	ErrorUnauthorizedMsg string `mapstructure:"error_unauthorized_msg" validate:"required"`
	ErrorGeneralMsg      string `mapstructure:"error_general_msg"      validate:"required"`

	PurgeCompleteMsg string `mapstructure:"purge_complete_msg" validate:"required,contains=%d"`
	PurgeNoReplyMsg  string `mapstructure:"purge_no_reply_msg" validate:"required"`
	PurgeNotFoundMsg string `mapstructure:"purge_not_found_msg" validate:"required"`
	PurgeBusyMsg     string `mapstructure:"purge_busy_msg"     validate:"required"`
	PurgeFailedMsg   string `mapstructure:"purge_failed_msg"   validate:"required"`

	TranslateNoTextMsg       string `mapstructure:"translate_no_text_msg"       validate:"required"`
	TranslateWorkingMsg      string `mapstructure:"translate_working_msg"       validate:"required"`
	TranslateSameLanguageMsg string `mapstructure:"translate_same_language_msg" validate:"required"`
	TranslateFailedMsg       string `mapstructure:"translate_failed_msg"        validate:"required"`
	TranslateDisabledMsg     string `mapstructure:"translate_disabled_msg"      validate:"required"`
}
