package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every runtime setting the server needs, loaded from the
// environment (optionally seeded from a .env file).
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	TokenExpiry time.Duration
	BaseURL     string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

// LoadConfig reads configuration from the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("No .env file found, relying on environment variables")
	}

	expiryHours := 24
	if v := os.Getenv("TOKEN_EXPIRY_HOURS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			logrus.WithError(err).Warn("Invalid TOKEN_EXPIRY_HOURS, using default")
		} else {
			expiryHours = parsed
		}
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:              getEnv("DB_NAME", "campusshare"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenExpiry:         time.Duration(expiryHours) * time.Hour,
		BaseURL:             getEnv("BASE_URL", "http://localhost:8080"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
