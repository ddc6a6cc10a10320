package settings

// DB config keys and defaults for runtime settings.
const (
	// RiddlePromptKey is the DB config key for the generation prompt.
	RiddlePromptKey = "RIDDLE_PROMPT"
	// MaxGenerationsPerDayKey overrides the per-client daily ceiling.
	MaxGenerationsPerDayKey = "MAX_GENERATIONS_PER_DAY"
	// DailyRiddleHourKey overrides the local hour of the scheduled riddle.
	DailyRiddleHourKey = "DAILY_RIDDLE_HOUR"

	// DefaultRiddlePrompt is the fallback generation prompt.
	DefaultRiddlePrompt = "Generate a unique and interesting riddle with its answer. " +
		"Respond with JSON in this format: { \"question\": \"the riddle question\", \"answer\": \"the riddle answer\" }"
)
