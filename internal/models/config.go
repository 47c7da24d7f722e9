package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Backend     string
	Database    DatabaseConfig
	Postgres    PostgresConfig
	Formance    FormanceConfig
	Server      ServerConfig
	Auth        AuthConfig
	Events      EventsConfig
	RewardsFile string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path             string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	ConnMaxIdleTime  time.Duration
	PingTimeout      time.Duration
	CreateDummyUsers bool
}

// PostgresConfig holds settings for the Postgres ledger backend
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	PingTimeout  time.Duration
}

// FormanceConfig holds settings for the Formance ledger backend
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	EnableH2C       bool
}

// AuthConfig holds token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// EventsConfig holds event publisher settings. No brokers means events are only logged.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

// RewardsConfig holds the reward rules loaded from the rewards file
type RewardsConfig struct {
	CheckinTitle      string
	CheckinReward     decimal.Decimal
	Location          *time.Location
	MinWithdrawal     decimal.Decimal
	SignUpBonus       decimal.Decimal
	ReferralBonus     decimal.Decimal
	WithdrawalMethods []WithdrawalMethod
}
