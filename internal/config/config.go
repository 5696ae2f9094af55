package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string
	DBDebug    bool
	ServerPort string
	CORSOrigin string
}

// WebConfig configures the browser-facing client application.
type WebConfig struct {
	Port       string
	APIURL     string
	APITimeout time.Duration
	StaleTime  time.Duration
	GCTime     time.Duration
	Retry      int
}

func Load() *Config {
	loadDotEnv()

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "tasks_user"),
		DBPassword: getEnv("DB_PASSWORD", "tasks_pass"),
		DBName:     getEnv("DB_NAME", "tasks_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "tasks.db"),
		DBDebug:    getEnvBool("DB_DEBUG", false),
		ServerPort: getEnv("PORT", "3001"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}
}

func LoadWeb() *WebConfig {
	loadDotEnv()

	return &WebConfig{
		Port:       getEnv("WEB_PORT", "3000"),
		APIURL:     getEnv("API_URL", "http://localhost:3001"),
		APITimeout: getEnvDuration("API_TIMEOUT", 10*time.Second),
		StaleTime:  getEnvDuration("QUERY_STALE_TIME", 5*time.Minute),
		GCTime:     getEnvDuration("QUERY_GC_TIME", 10*time.Minute),
		Retry:      getEnvInt("QUERY_RETRY", 1),
	}
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using %t", key, value, defaultVal)
		return defaultVal
	}
	return parsed
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		log.Printf("⚠️  Invalid %s=%q, using %d", key, value, defaultVal)
		return defaultVal
	}
	return parsed
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		log.Printf("⚠️  Invalid %s=%q, using %s", key, value, defaultVal)
		return defaultVal
	}
	return parsed
}
