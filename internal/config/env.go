package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"casewall/internal/logger"
)

// LoadEnv loads a .env file from the working directory when present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using system environment variables")
	}
}

func GetEnvString(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func GetEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func GetEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func (c *Config) applyEnv() {
	c.Store.Backend = GetEnvString("CASEWALL_STORE", c.Store.Backend)
	c.Store.Path = GetEnvString("CASEWALL_DATA", c.Store.Path)
	c.Extract.Provider = GetEnvString("CASEWALL_PROVIDER", c.Extract.Provider)
	c.Extract.Model = GetEnvString("CASEWALL_MODEL", c.Extract.Model)
	c.Extract.BaseURL = GetEnvString("CASEWALL_BASE_URL", c.Extract.BaseURL)
	c.Extract.MaxRetries = GetEnvInt("CASEWALL_MAX_RETRIES", c.Extract.MaxRetries)
	c.Log.Debug = GetEnvBool("CASEWALL_DEBUG", c.Log.Debug)
}
