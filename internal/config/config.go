// Package config defines the global configuration structure for the
// TaskStudy notification engine. Configuration is loaded once at process
// initialization and is immutable thereafter. It follows 12-Factor App
// principles by strictly separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File
//
// Any missing required value or invalid format causes the application to
// fail immediately on startup.
package config

import (
	"time"

	"taskstudy/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once during
// process initialization and never modified. Sub-components receive only
// the specific config subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server    ServerConfig
	Database  DatabaseConfig
	Email     EmailConfig
	Telegram  TelegramConfig
	WhatsApp  WhatsAppConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// EmailConfig holds Brevo credentials and the sender identity.
type EmailConfig struct {
	BrevoAPIKey SecretString `envconfig:"BREVO_API_KEY" validate:"required"`

	// From accepts a bare address or the "Name <address>" form.
	From string `envconfig:"SMTP_FROM" default:"TaskStudy <notifications@taskstudy.app>"`
}

// TelegramConfig holds the bot credentials. An empty token disables the
// channel.
type TelegramConfig struct {
	BotToken SecretString `envconfig:"TELEGRAM_BOT_TOKEN"`

	// DefaultChatID receives operator test messages when a user chat is not
	// specified.
	DefaultChatID string `envconfig:"TELEGRAM_DEFAULT_CHAT_ID"`
}

// WhatsAppConfig holds the webhook relay settings. An empty URL disables
// the channel.
type WhatsAppConfig struct {
	WebhookURL string       `envconfig:"WHATSAPP_WEBHOOK_URL" validate:"omitempty,url"`
	AuthToken  SecretString `envconfig:"WHATSAPP_WEBHOOK_TOKEN"`
}

// SchedulerConfig holds the trigger authentication and pass cadence.
type SchedulerConfig struct {
	// CronSecret authenticates POST /v1/scheduler/run. When unset, the
	// endpoint refuses all triggers.
	CronSecret SecretString `envconfig:"CRON_SECRET"`

	// TickInterval is the cadence of the built-in scheduler loop. Zero
	// disables the loop, leaving the HTTP trigger as the only entry point.
	TickInterval time.Duration `envconfig:"SCHEDULER_TICK_INTERVAL" default:"1h"`

	// PassTimeout bounds one full scheduler pass.
	PassTimeout time.Duration `envconfig:"SCHEDULER_PASS_TIMEOUT" default:"10m"`
}
