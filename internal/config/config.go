package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// GroupMe
	GroupMeToken string
	GroupMeBotID string
	BotName      string

	// Landlord identity shown in replies
	LandlordName   string
	LandlordVenmo  string
	LandlordPayPal string
	AuditSheetURL  string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Billing
	BillingURL          string
	StaticRentCents     int64
	StaticUtilityCents  int64
	ReminderCheckPeriod time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		GroupMeToken: getEnv("GROUPME_TOKEN", ""),
		GroupMeBotID: getEnv("GROUPME_BOT_ID", ""),
		BotName:      getEnv("BOT_NAME", "RentBot"),

		LandlordName:   getEnv("LANDLORD_GROUPME_NAME", ""),
		LandlordVenmo:  getEnv("LANDLORD_VENMO", ""),
		LandlordPayPal: getEnv("LANDLORD_PAYPAL", ""),
		AuditSheetURL:  getEnv("AUDIT_SHEET_URL", ""),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/rentbot.db"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Ledger"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "rentbot"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "fetch_charges"),

		BillingURL:          getEnv("BILLING_URL", ""),
		StaticRentCents:     getEnvInt64("STATIC_RENT_CENTS", 0),
		StaticUtilityCents:  getEnvInt64("STATIC_UTILITY_CENTS", 0),
		ReminderCheckPeriod: getEnvDuration("REMINDER_CHECK_PERIOD", time.Hour),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.GroupMeBotID == "" {
		errors = append(errors, "GROUPME_BOT_ID is required")
	}
	if c.LandlordName == "" {
		errors = append(errors, "LANDLORD_GROUPME_NAME is required")
	}

	// Validate data backend
	validBackends := []string{"memory", "sheets", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate Google Sheets configuration if backend is sheets
	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate billing URL if provided
	if c.BillingURL != "" {
		if parsedURL, err := url.Parse(c.BillingURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid billing URL '%s': %v", c.BillingURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid billing URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	if c.StaticRentCents < 0 || c.StaticUtilityCents < 0 {
		errors = append(errors, "static charge amounts cannot be negative")
	}

	if c.ReminderCheckPeriod < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid reminder check period %v: must be at least 1 minute", c.ReminderCheckPeriod))
	} else if c.ReminderCheckPeriod > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid reminder check period %v: must be at most 24 hours", c.ReminderCheckPeriod))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
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
