package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Google Sheets
	GoogleSheetID         string
	GoogleSheetName       string
	InsightsSheetName     string
	GoogleCredentialsJSON string
	GoogleCredentialsFile string

	// SQLite
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Worker
	InsightsInterval time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		GoogleSheetID:         getEnv("GOOGLE_SHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", "DragonSpend"),
		InsightsSheetName:     getEnv("INSIGHTS_SHEET_NAME", "Insights"),
		GoogleCredentialsJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_CREDENTIALS", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_SERVICE_ACCOUNT_CREDENTIALS_FILE", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/dragonspend.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "dragonspend"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		InsightsInterval: getEnvDuration("INSIGHTS_INTERVAL", 5*time.Minute),
	}
}

// Validate collects every configuration problem instead of failing on the
// first one, so an operator can fix a deployment in a single pass.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory", "sheets", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [memory sheets sqlite]", c.DataBackend))
	}

	if c.DataBackend == "sheets" {
		if c.GoogleSheetID == "" {
			errs = append(errs, "GOOGLE_SHEET_ID is required when using the sheets backend")
		}
		if c.GoogleSheetName == "" {
			errs = append(errs, "GOOGLE_SHEET_NAME cannot be empty when using the sheets backend")
		}
		if c.GoogleCredentialsJSON == "" && c.GoogleCredentialsFile == "" {
			errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_CREDENTIALS or GOOGLE_SERVICE_ACCOUNT_CREDENTIALS_FILE must be provided for the sheets backend")
		}
		if c.GoogleCredentialsFile != "" {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("service account credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLITE_DB_PATH cannot be empty when using the sqlite backend")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.InsightsInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid insights interval %v: must be at least 1 second", c.InsightsInterval))
	} else if c.InsightsInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid insights interval %v: must be at most 24 hours", c.InsightsInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
