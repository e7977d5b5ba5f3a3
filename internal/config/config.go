package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBDriver string
	DBConn   string
	LogLevel string

	// Billing tariffs
	UEDCLRate      int64
	NSWCRate       int64
	SecurityFee    int64
	GarbageFee     int64
	CurrencyPhrase string

	// Signed invoice links, disabled when the secret is empty
	LinkSecret string
	LinkTTL    time.Duration

	TariffFeedURL         string
	TariffRefreshSchedule string

	// Unpaid rent digest, disabled when the schedule is empty
	ReminderSchedule string
	LandlordEmail    string
	SenderEmail      string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		DBConn:                getEnv("DB_CONN", "file:tenants.db?_busy_timeout=5000"),
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
		CurrencyPhrase:        getEnv("CURRENCY_PHRASE", "Shillings Only"),
		LinkSecret:            getEnv("INVOICE_LINK_SECRET", ""),
		TariffFeedURL:         getEnv("TARIFF_FEED_URL", ""),
		TariffRefreshSchedule: getEnv("TARIFF_REFRESH_SCHEDULE", "@daily"),
		ReminderSchedule:      getEnv("REMINDER_SCHEDULE", ""),
		LandlordEmail:         getEnv("LANDLORD_EMAIL", ""),
		SenderEmail:           getEnv("SENDER_EMAIL", ""),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              getEnv("SMTP_PORT", "587"),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
	}

	var err error
	if cfg.UEDCLRate, err = getEnvInt("UEDCL_RATE", 1200); err != nil {
		return nil, err
	}
	if cfg.NSWCRate, err = getEnvInt("NSWC_RATE", 7000); err != nil {
		return nil, err
	}
	if cfg.SecurityFee, err = getEnvInt("SECURITY_FEE", 20000); err != nil {
		return nil, err
	}
	if cfg.GarbageFee, err = getEnvInt("GARBAGE_FEE", 5000); err != nil {
		return nil, err
	}
	if cfg.LinkTTL, err = getEnvDuration("INVOICE_LINK_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", c.DBDriver)
	}
	if c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	for name, v := range map[string]int64{
		"UEDCL_RATE":   c.UEDCLRate,
		"NSWC_RATE":    c.NSWCRate,
		"SECURITY_FEE": c.SecurityFee,
		"GARBAGE_FEE":  c.GarbageFee,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.LinkSecret != "" && c.LinkTTL <= 0 {
		return fmt.Errorf("INVOICE_LINK_TTL must be positive")
	}
	if c.ReminderSchedule != "" {
		if c.LandlordEmail == "" {
			return fmt.Errorf("LANDLORD_EMAIL is required when REMINDER_SCHEDULE is set")
		}
		if c.SenderEmail == "" {
			return fmt.Errorf("SENDER_EMAIL is required when REMINDER_SCHEDULE is set")
		}
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when REMINDER_SCHEDULE is set")
		}
	}
	return nil
}

// MailEnabled reports whether enough SMTP settings are present to send mail.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.LandlordEmail != "" && c.SenderEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int64) (int64, error) {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
