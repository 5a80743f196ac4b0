package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	DataDir         string
	MongoURI        string
	MongoDB         string
	JWTSecret       string
	JWTExpiration   time.Duration
	RecaptchaSecret string
}

func Load() *Config {
	// Best-effort; env vars win over .env entries.
	_ = godotenv.Load()

	return &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		DataDir:         getEnv("DATA_DIR", "./data"),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDB:         getEnv("MONGO_DB", "blooddb"),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration:   24 * time.Hour,
		RecaptchaSecret: getEnv("RECAPTCHA_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
