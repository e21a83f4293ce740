package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Ledger   LedgerConfig
	Formance FormanceConfig
	Rates    RateFeedConfig
	Transfer TransferConfig
	Notifier NotifierConfig
	Server   ServerConfig
	Jobs     JobsConfig
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

// LedgerConfig selects the balance/history backend ("sqlite" or "formance")
type LedgerConfig struct {
	Backend string
}

// FormanceConfig holds Formance Stack connection settings
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// RateFeedConfig holds exchange-rate simulation settings
type RateFeedConfig struct {
	UpdateInterval   time.Duration
	MaxDeviation     float64
	MaxTickMovement  float64
	CurrenciesFile   string
	BusinessDayStart int
	BusinessDayEnd   int
}

// TransferConfig holds send/withdraw settlement settings
type TransferConfig struct {
	SettlementDelay    time.Duration
	PeerSuccessRate    float64
	BankSuccessRate    float64
	NoteMaxLength      int
	PersistenceRetries int
}

// NotifierConfig selects where settlement events are published
type NotifierConfig struct {
	Kind       string
	AMQPURL    string
	Exchange   string
	RoutingKey string
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	ListenAddr      string
	ShutdownTimeout time.Duration
}

// JobsConfig holds background job schedules
type JobsConfig struct {
	ReconcileSchedule string
}
