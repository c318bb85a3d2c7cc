package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required for the server
	AnthropicAPIKey       string
	GoogleCredentialsFile string

	// Optional with defaults
	HTTPPort          int
	ServerURL         string
	DBPath            string
	Timezone          string
	ClaudeModel       string
	ClaudeTemperature float64
	HistoryWindow     int
	OpenAIAPIKey      string
	TTSModel          string
	TTSVoice          string
	TTSSpeed          float64
	AllowedOrigin     string
	LogLevel          string
	DevMode           bool
}

func LoadFromEnv() *Config {
	cfg := &Config{
		// Required
		AnthropicAPIKey:       os.Getenv("ANTHROPIC_API_KEY"),
		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),

		// Optional with defaults
		HTTPPort:          getEnvAsIntOrDefault("DONNA_HTTP_PORT", 8080),
		ServerURL:         getEnvOrDefault("DONNA_SERVER_URL", "http://localhost:8080"),
		DBPath:            getEnvOrDefault("DONNA_DB_PATH", "./donna.db"),
		Timezone:          getEnvOrDefault("DONNA_TIMEZONE", "America/New_York"),
		ClaudeModel:       getEnvOrDefault("DONNA_CLAUDE_MODEL", "claude-3-5-haiku-20241022"),
		ClaudeTemperature: getEnvAsFloatOrDefault("DONNA_CLAUDE_TEMPERATURE", 0.1),
		HistoryWindow:     getEnvAsIntOrDefault("DONNA_HISTORY_WINDOW", 4),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		TTSModel:          getEnvOrDefault("DONNA_TTS_MODEL", "tts-1"),
		TTSVoice:          getEnvOrDefault("DONNA_TTS_VOICE", "nova"),
		TTSSpeed:          getEnvAsFloatOrDefault("DONNA_TTS_SPEED", 1.0),
		AllowedOrigin:     getEnvOrDefault("DONNA_ALLOWED_ORIGIN", "*"),
		LogLevel:          getEnvOrDefault("DONNA_LOG_LEVEL", "info"),
		DevMode:           getEnvAsBoolOrDefault("DONNA_DEV_MODE", false),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
