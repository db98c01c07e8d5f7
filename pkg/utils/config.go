package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Booking  BookingConfig
	Broker   BrokerConfig
}

type AppConfig struct {
	Name               string
	Port               string
	Debug              bool
	LogPath            string
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32

	// Driver is "postgres" or "memory".
	Driver       string
	TxMaxRetries int
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	AdminEmails []string
}

type BookingConfig struct {
	BalanceModel        string
	SlotIntervalMinutes int
	WindowStartHour     int
	WindowEndHour       int
	Timezone            string
	AdminUpcomingLimit  int
}

type BrokerConfig struct {
	URL        string
	Exchange   string
	Queue      string
	RoutingKey string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "walk-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("STORAGE_DRIVER", "postgres")
	viper.SetDefault("TX_MAX_RETRIES", 3)
	viper.SetDefault("BALANCE_MODEL", "tokens")
	viper.SetDefault("SLOT_INTERVAL_MINUTES", 15)
	viper.SetDefault("SLOT_WINDOW_START_HOUR", 12)
	viper.SetDefault("SLOT_WINDOW_END_HOUR", 24)
	viper.SetDefault("SLOT_TIMEZONE", "UTC")
	viper.SetDefault("ADMIN_UPCOMING_LIMIT", 100)
	viper.SetDefault("PAYMENT_EXCHANGE", "payments")
	viper.SetDefault("PAYMENT_QUEUE", "walk-booking.payment-confirmed")
	viper.SetDefault("PAYMENT_ROUTING_KEY", "payment.confirmed")

	// .env is optional, the environment alone is enough in containers
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:               viper.GetString("APP_NAME"),
			Port:               viper.GetString("PORT"),
			Debug:              viper.GetBool("DEBUG"),
			LogPath:            viper.GetString("LOG_PATH"),
			CORSAllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			Name:         viper.GetString("DB_NAME"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASS"),
			MaxConns:     viper.GetInt32("DB_MAX_CONNS"),
			Driver:       strings.ToLower(viper.GetString("STORAGE_DRIVER")),
			TxMaxRetries: viper.GetInt("TX_MAX_RETRIES"),
		},
		Auth: AuthConfig{
			JWTSecret:   viper.GetString("JWT_SECRET"),
			JWTIssuer:   viper.GetString("JWT_ISSUER"),
			AdminEmails: splitList(strings.ToLower(viper.GetString("ADMIN_EMAILS"))),
		},
		Booking: BookingConfig{
			BalanceModel:        viper.GetString("BALANCE_MODEL"),
			SlotIntervalMinutes: viper.GetInt("SLOT_INTERVAL_MINUTES"),
			WindowStartHour:     viper.GetInt("SLOT_WINDOW_START_HOUR"),
			WindowEndHour:       viper.GetInt("SLOT_WINDOW_END_HOUR"),
			Timezone:            viper.GetString("SLOT_TIMEZONE"),
			AdminUpcomingLimit:  viper.GetInt("ADMIN_UPCOMING_LIMIT"),
		},
		Broker: BrokerConfig{
			URL:        viper.GetString("RABBIT_URL"),
			Exchange:   viper.GetString("PAYMENT_EXCHANGE"),
			Queue:      viper.GetString("PAYMENT_QUEUE"),
			RoutingKey: viper.GetString("PAYMENT_ROUTING_KEY"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORAGE_DRIVER must be postgres or memory, got %q", c.Database.Driver)
	}
	if c.Database.TxMaxRetries < 0 {
		return errors.New("TX_MAX_RETRIES must not be negative")
	}

	switch c.Booking.BalanceModel {
	case "tokens", "free_walk":
	default:
		return fmt.Errorf("BALANCE_MODEL must be tokens or free_walk, got %q", c.Booking.BalanceModel)
	}

	b := c.Booking
	if b.SlotIntervalMinutes <= 0 {
		return errors.New("SLOT_INTERVAL_MINUTES must be positive")
	}
	if b.WindowStartHour < 0 || b.WindowEndHour > 24 || b.WindowStartHour >= b.WindowEndHour {
		return fmt.Errorf("slot window %d-%d is empty", b.WindowStartHour, b.WindowEndHour)
	}
	if (b.WindowEndHour-b.WindowStartHour)*60%b.SlotIntervalMinutes != 0 {
		return errors.New("slot window must be a whole number of slot intervals")
	}
	if _, err := b.Location(); err != nil {
		return err
	}
	if b.AdminUpcomingLimit <= 0 {
		return errors.New("ADMIN_UPCOMING_LIMIT must be positive")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

func (b BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("SLOT_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (a AuthConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, admin := range a.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
