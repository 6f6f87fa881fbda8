package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	ServerPort     string
	JWTSecret      string
	JWTExpiry      time.Duration
	Location       *time.Location
	AlertPoll      time.Duration
	MigrateOnStart bool
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "todoshare_user"),
		DBPassword:     getEnv("DB_PASSWORD", "todoshare_pass"),
		DBName:         getEnv("DB_NAME", "todoshare_db"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry:      time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 72)) * time.Hour,
		Location:       getEnvLocation("TIMEZONE", time.UTC),
		AlertPoll:      time.Duration(getEnvInt("ALERT_POLL_SECONDS", 30)) * time.Second,
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),
	}
}

// DSN is the keyword/value connection string understood by the postgres driver
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSSLMode
}

// MigrateURL is the same database addressed for golang-migrate's pgx v5 driver
func (c *Config) MigrateURL() string {
	return "pgx5://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort +
		"/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("⚠️  Invalid %s=%q, using %d", key, value, defaultVal)
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using %t", key, value, defaultVal)
		return defaultVal
	}
	return b
}

func getEnvLocation(key string, defaultVal *time.Location) *time.Location {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal
	}
	loc, err := time.LoadLocation(value)
	if err != nil {
		log.Printf("⚠️  Unknown time zone %q, using %s", value, defaultVal)
		return defaultVal
	}
	return loc
}
