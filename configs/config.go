package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port           string
	Environment    string
	GeminiAPIKey   string
	GeminiModel    string
	RunDays        int
	AIDays         int
	MaxWorkers     int
	OutputPath     string
	ExportXLSXPath string
	AreasFile      string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		RunDays:        getEnvInt("RUN_DAYS", 90),
		AIDays:         getEnvInt("AI_DAYS", 7),
		MaxWorkers:     getEnvInt("MAX_WORKERS", 4),
		OutputPath:     getEnv("OUTPUT_PATH", "assets/eagle_eye_data.json"),
		ExportXLSXPath: getEnv("EXPORT_XLSX_PATH", ""),
		AreasFile:      getEnv("AREAS_FILE", ""),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
