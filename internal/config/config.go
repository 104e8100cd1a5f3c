package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port string

	// Storage. Driver selects the backend: postgres, sqlite3, or memory
	// (demo mode, no persistence). The DB_* defaults match the historical
	// deployment; their absence is never fatal.
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// StrictStorage disables the masking of storage failures in the
	// conversation flow. With it off (the default), a failed pending-invoice
	// lookup is answered with one invoice at DefaultInvoiceAmount instead of
	// an error. That fallback can surface stale or fabricated totals and
	// exists only for compatibility with the original deployment.
	StrictStorage bool

	DefaultCustomerName  string
	DefaultInvoiceAmount float64

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	CustomerPhone     string

	StripeAPIKeyLive string
	StripeAPIKeyTest string
	PaymentCurrency  string

	Environment string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8000"),
		DBDriver:             getEnv("DB_DRIVER", "postgres"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "root"),
		DBPassword:           getEnv("DB_PASSWORD", ""),
		DBName:               getEnv("DB_NAME", "verisure_demo"),
		DBSSLMode:            getEnv("DB_SSLMODE", "disable"),
		SQLitePath:           getEnv("SQLITE_PATH", "cobranza.db"),
		StrictStorage:        getEnvBool("STRICT_STORAGE", false),
		DefaultCustomerName:  getEnv("DEFAULT_CUSTOMER_NAME", "Dennis Kangme"),
		DefaultInvoiceAmount: getEnvFloat("DEFAULT_INVOICE_AMOUNT", 55000),
		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber:    getEnv("TWILIO_PHONE_NUMBER", ""),
		CustomerPhone:        getEnv("CUSTOMER_PHONE", "+56912345678"),
		StripeAPIKeyLive:     getEnv("STRIPE_API_KEY_LIVE", ""),
		StripeAPIKeyTest:     getEnv("STRIPE_API_KEY_TEST", "sk_test"),
		PaymentCurrency:      getEnv("PAYMENT_CURRENCY", "clp"),
		Environment:          getEnv("ENV", "development"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite3", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// SMSEnabled reports whether the Twilio confirmation path is configured.
func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

// StripeKey returns the API key for the current environment.
func (c *Config) StripeKey() string {
	if c.Environment == "production" {
		return c.StripeAPIKeyLive
	}
	return c.StripeAPIKeyTest
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
