package config

const (
	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Tasks shown per listing page
	TasksPerPage = 10

	// Invoice code length (hex prefix of a UUID)
	InvoiceCodeLen = 8

	// Shortened task name length in inline buttons
	TaskButtonNameLen = 40
)

// Platforms an employer can pick when creating a task.
var Platforms = []string{"google", "yandex", "2gis", "telegram", "avito"}
