/*
Package config loads server configuration from the environment.

PURPOSE:
  Centralizes every tunable in one struct. Values come from environment
  variables with sensible defaults, optionally seeded from a .env file
  so local development doesn't need exported shells.

VARIABLES:
  PORT                       HTTP server port (default 8080)
  DB_PATH                    SQLite database path (default leavedesk.db,
                             ":memory:" for in-memory)
  LOG_LEVEL                  zerolog level name (default info)
  EXCLUDE_PUBLIC_HOLIDAYS    Count public holidays as non-working days
                             when computing request durations (default false)
  HOLIDAY_REGION             Region whose holidays feed the calendar
  ROLLOVER_CRON              Cron spec for the automatic year-end rollover
                             job (empty disables the scheduler)

SEE ALSO:
  - cmd/server/main.go: The only consumer
*/
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting for the server.
type Config struct {
	Port            int
	DBPath          string
	LogLevel        string
	LogFilePath     string
	CORSOrigins     string
	ExcludeHolidays bool
	HolidayRegion   string
	RolloverCron    string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first if present; a missing file is
// not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            getEnvInt("PORT", 8080),
		DBPath:          getEnvString("DB_PATH", "leavedesk.db"),
		LogLevel:        getEnvString("LOG_LEVEL", "info"),
		LogFilePath:     getEnvString("LOG_FILE_PATH", ""),
		CORSOrigins:     getEnvString("CORS_ORIGINS", "*"),
		ExcludeHolidays: getEnvBool("EXCLUDE_PUBLIC_HOLIDAYS", false),
		HolidayRegion:   getEnvString("HOLIDAY_REGION", ""),
		RolloverCron:    getEnvString("ROLLOVER_CRON", ""),
	}
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}
