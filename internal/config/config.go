package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI            string
	DBName              string
	JWTSecret           string
	SessionTTL          time.Duration
	ResetTokenTTL       time.Duration
	RequestTimeout      time.Duration
	RabbitURL           string
	ResetQueue          string
	Port                string
	StoreDriver         string
	LogLevel            string
	Timezone            string
	RegistrationEnabled bool
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	return Config{
		MongoURI:            getEnvOrDefault("MONGO_URI", ""),
		DBName:              getEnvOrDefault("DB_NAME", "carrete"),
		JWTSecret:           getEnvOrDefault("JWT_SECRET", ""),
		SessionTTL:          getDurationEnv("SESSION_TTL", 12, time.Hour),
		ResetTokenTTL:       getDurationEnv("RESET_TOKEN_TTL", 60, time.Minute),
		RequestTimeout:      getDurationEnv("REQUEST_TIMEOUT", 5, time.Second),
		RabbitURL:           getEnvOrDefault("RABBIT_URL", ""),
		ResetQueue:          getEnvOrDefault("RESET_QUEUE", "password_reset_emails"),
		Port:                getEnvOrDefault("PORT", "8080"),
		StoreDriver:         strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverMongo)),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		Timezone:            getEnvOrDefault("TIMEZONE", ""),
		RegistrationEnabled: getBoolEnv("REGISTRATION_ENABLED", true),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
