package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultDBPath      = "storage.db"
	DefaultDBRetention = 72 * time.Hour // bots cannot delete messages older than 48h

	DefaultPurgeBatchSize   = 100 // Telegram's deleteMessages limit
	DefaultPurgePageSize    = 100
	DefaultPurgeGracePeriod = 3 * time.Second
	DefaultPurgeTimeout     = 10 * time.Minute
	DefaultPurgeDeleteRate  = 1.0 // deleteMessages calls per second
	DefaultPurgeDeleteBurst = 3

	DefaultGeminiModel          = "gemini-2.0-flash"
	DefaultGeminiTemperature    = 0.2
	DefaultGeminiMaxRetries     = 2
	DefaultGeminiRetryDelay     = 2
	DefaultGeminiTargetLanguage = "English"
	DefaultGeminiTimeout        = time.Minute
)

// setDefaults registers default values for every optional parameter.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	// Registered so BOT_TELEGRAM_* env variables are picked up.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.retention", DefaultDBRetention)

	v.SetDefault("purge.batch_size", DefaultPurgeBatchSize)
	v.SetDefault("purge.page_size", DefaultPurgePageSize)
	v.SetDefault("purge.grace_period", DefaultPurgeGracePeriod)
	v.SetDefault("purge.timeout", DefaultPurgeTimeout)
	v.SetDefault("purge.delete_rate", DefaultPurgeDeleteRate)
	v.SetDefault("purge.delete_burst", DefaultPurgeDeleteBurst)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("gemini.retry_delay_seconds", DefaultGeminiRetryDelay)
	v.SetDefault("gemini.target_language", DefaultGeminiTargetLanguage)
	v.SetDefault("gemini.timeout", DefaultGeminiTimeout)

	v.SetDefault("scheduler.tasks", map[string]any{
		"sql_maintenance":   map[string]any{"enabled": true, "schedule": "0 0 4 * * *"},
		"history_retention": map[string]any{"enabled": true, "schedule": "0 30 * * * *"},
	})

	v.SetDefault("metrics.addr", "")

	v.SetDefault("messages.welcome", "👋 Userbot is running. Send /help to list the commands.")
	v.SetDefault("messages.help", "/purge - reply to a message to delete it and everything after it\n/trt [text] - translate the replied message or the given text\n/help - show this message")
	v.SetDefault("messages.error_unauthorized_msg", "🚫 Access denied. Please contact the administrator.")
	v.SetDefault("messages.error_general_msg", "❌ An error occurred. Please try again later.")

	v.SetDefault("messages.purge_complete_msg", "Purge complete! Purged %d messages.")
	v.SetDefault("messages.purge_no_reply_msg", "ℹ️ Reply to the first message you want to purge.")
	v.SetDefault("messages.purge_not_found_msg", "🔍 I have no record of that message, so I cannot purge from it.")
	v.SetDefault("messages.purge_busy_msg", "⏳ A purge is already running in this chat.")
	v.SetDefault("messages.purge_failed_msg", "❌ Purge stopped before finishing. Some messages may remain.")

	v.SetDefault("messages.translate_no_text_msg", "ℹ️ Reply to a text message or give me something to translate.")
	v.SetDefault("messages.translate_working_msg", "Translating...")
	v.SetDefault("messages.translate_same_language_msg", "The text is already in the target language.")
	v.SetDefault("messages.translate_failed_msg", "❌ Translation failed. Please try again later.")
	v.SetDefault("messages.translate_disabled_msg", "Translation is not configured.")
}
