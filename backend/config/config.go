package config

import (
	"log"
	"os"
	"strconv"
	"time"

	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string
	LogMode    string
	ServerPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string

	// RedisAddr empty keeps analytics locks in-process.
	RedisAddr string

	RateLimitMax    int
	RateLimitWindow time.Duration

	// StudyLocation decides which calendar day a submission counts toward.
	StudyLocation *time.Location
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	loc, err := time.LoadLocation(getEnv("STUDY_TIMEZONE", "UTC"))
	if err != nil {
		return nil, err
	}

	return &Config{
		AppEnv:          getEnv("APP_ENV", "production"),
		LogMode:         getEnv("LOG_MODE", "prod"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DBDriver:        getEnv("DB_DRIVER", "postgres"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "exam_platform"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		StudyLocation:   loc,
	}, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
