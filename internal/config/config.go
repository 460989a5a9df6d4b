package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every runtime setting the server needs.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	TokenExpiry time.Duration

	OpenAIAPIKey string
	OpenAIModel  string
}

// LoadConfig reads settings from the environment, loading .env first when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment variables")
	}

	expiry := 24 * time.Hour
	if raw := os.Getenv("TOKEN_EXPIRY"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			logrus.WithField("TOKEN_EXPIRY", raw).Warn("Invalid token expiry, using default 24h")
		} else {
			expiry = parsed
		}
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:       getEnv("DB_NAME", "studytrack"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenExpiry:  expiry,
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
