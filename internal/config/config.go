package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL   string
	TelegramToken string
	AdminChatID   int64
	RulesFile     string
	CalendarFile  string
	Workers       int
	SampleLimit   int
	LogLevel      logrus.Level
}

// Load reads the process environment, optionally seeded from a .env file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading env variables: %w", err)
	}

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "timesheet.db"),
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		RulesFile:     getEnv("RULES_FILE", ""),
		CalendarFile:  getEnv("CALENDAR_FILE", ""),
	}

	invalid := make([]string, 0, 4)

	chatID, err := getEnvAsInt("ADMIN_CHAT_ID", 0)
	if err != nil {
		invalid = append(invalid, "ADMIN_CHAT_ID")
	}
	cfg.AdminChatID = chatID

	workers, err := getEnvAsInt("WORKERS", 4)
	if err != nil || workers < 1 {
		invalid = append(invalid, "WORKERS")
	}
	cfg.Workers = int(workers)

	samples, err := getEnvAsInt("REPORT_SAMPLE_LIMIT", 25)
	if err != nil || samples < 0 {
		invalid = append(invalid, "REPORT_SAMPLE_LIMIT")
	}
	cfg.SampleLimit = int(samples)

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		invalid = append(invalid, "LOG_LEVEL")
	}
	cfg.LogLevel = level

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// NotificationsEnabled reports whether run digests can be pushed to Telegram.
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramToken != "" && c.AdminChatID != 0
}

// NewLogger builds the logger shared by services and repositories.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(c.LogLevel)
	return logger
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) (int64, error) {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal, nil
	}

	return strconv.ParseInt(valStr, 10, 64)
}
