package config

import (
	"os"
)

type Config struct {
	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	RedisHost        string
	RedisPort        string
	SessionSecret    string
	GinMode          string
	DirectoryBaseURL string
	DirectoryAPIKey  string
	OpenAIAPIKey     string
}

func Load() *Config {
	return &Config{
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "wildcare"),
		DBPassword:       getEnv("DB_PASSWORD", "wildcare"),
		DBName:           getEnv("DB_NAME", "wildlife_rehab"),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		SessionSecret:    getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		DirectoryBaseURL: getEnv("DIRECTORY_BASE_URL", "https://directory.example.com"),
		DirectoryAPIKey:  getEnv("DIRECTORY_API_KEY", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
