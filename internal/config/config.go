package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/recurring/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment   DeploymentConfig   `mapstructure:"deployment" validate:"required"`
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Logging      LoggingConfig      `mapstructure:"logging" validate:"required"`
	Postgres     PostgresConfig     `mapstructure:"postgres" validate:"required"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Providers    ProvidersConfig    `mapstructure:"providers" validate:"required"`
	Billing      BillingConfig      `mapstructure:"billing" validate:"required"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Notification NotificationConfig `mapstructure:"notification"`
	Identity     IdentityConfig     `mapstructure:"identity"`
	Sentry       SentryConfig       `mapstructure:"sentry"`
	Pyroscope    PyroscopeConfig    `mapstructure:"pyroscope"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

// RedisConfig backs the webhook replay guard. When disabled an in-process cache is used.
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url" validate:"required_if=Enabled true"`
	// KeyPrefix namespaces replay guard keys
	KeyPrefix string `mapstructure:"key_prefix"`
}

type ProvidersConfig struct {
	Xendit XenditConfig `mapstructure:"xendit"`
	Stripe StripeConfig `mapstructure:"stripe"`
	// Timeout bounds every outbound provider call
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`
	// MaxRetries bounds checkout retries on provider errors
	MaxRetries int `mapstructure:"max_retries" validate:"min=0,max=10"`
	// RetryInitialInterval is the first checkout backoff delay
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	// ReplayTTL is how long a webhook idempotency token is remembered
	ReplayTTL time.Duration `mapstructure:"replay_ttl"`
	// RequestsPerSecond throttles calls to provider APIs, zero means unlimited
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"min=0"`
}

type XenditConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	CallbackToken string `mapstructure:"callback_token"`
	BaseURL       string `mapstructure:"base_url"`
	SuccessURL    string `mapstructure:"success_url"`
	FailureURL    string `mapstructure:"failure_url"`
}

// IsConfigured reports whether outbound calls can be made
func (c XenditConfig) IsConfigured() bool {
	return c.SecretKey != ""
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
}

func (c StripeConfig) IsConfigured() bool {
	return c.SecretKey != ""
}

type BillingConfig struct {
	TrialDays int `mapstructure:"trial_days" validate:"min=1"`
	// SuspensionThreshold failed payments within SuspensionWindow expire a subscription
	SuspensionThreshold   int           `mapstructure:"suspension_threshold" validate:"min=1"`
	SuspensionWindow      time.Duration `mapstructure:"suspension_window" validate:"required"`
	Timezone              string        `mapstructure:"timezone"`
	BulkActivationWorkers int           `mapstructure:"bulk_activation_workers" validate:"min=1"`
	DefaultCurrency       string        `mapstructure:"default_currency" validate:"required,len=3"`
	CatalogCacheTTL       time.Duration `mapstructure:"catalog_cache_ttl"`
}

// Location returns the timezone the H-1 expiry windows are computed in
func (c BillingConfig) Location() *time.Location {
	return types.LoadLocation(c.Timezone)
}

type SchedulerConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	TrialExpirySpec      string `mapstructure:"trial_expiry_spec"`
	EnterpriseExpirySpec string `mapstructure:"enterprise_expiry_spec"`
	AutoExpireSpec       string `mapstructure:"auto_expire_spec"`
}

// NotificationConfig represents the configuration of the notification dispatch
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Topic   string `mapstructure:"topic"`
	// Endpoint receives every notification as a JSON POST. Notifications are only logged when empty.
	Endpoint        string            `mapstructure:"endpoint"`
	Headers         map[string]string `mapstructure:"headers"`
	MaxRetries      int               `mapstructure:"max_retries"`
	InitialInterval time.Duration     `mapstructure:"initial_interval"`
	MaxInterval     time.Duration     `mapstructure:"max_interval"`
	Multiplier      float64           `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration     `mapstructure:"max_elapsed_time"`
	// Svix delivers notifications as webhooks instead of Endpoint when enabled
	Svix SvixConfig `mapstructure:"svix"`
}

type SvixConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AuthToken string `mapstructure:"auth_token" validate:"required_if=Enabled true"`
	BaseURL   string `mapstructure:"base_url"`
	AppID     string `mapstructure:"app_id" validate:"required_if=Enabled true"`
}

// IdentityConfig seeds the static account directory
type IdentityConfig struct {
	// Operators are accounts allowed to call operator-only routes and that receive enterprise expiry notices
	Operators []string `mapstructure:"operators"`
	// Roles maps account ids to an explicit role, everyone else is a MEMBER
	Roles map[string]string `mapstructure:"roles"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// PyroscopeConfig enables continuous profiling
type PyroscopeConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	ServerAddress   string   `mapstructure:"server_address" validate:"required_if=Enabled true"`
	ApplicationName string   `mapstructure:"application_name"`
	BasicAuthUser   string   `mapstructure:"basic_auth_user"`
	BasicAuthPass   string   `mapstructure:"basic_auth_password"`
	SampleRate      uint32   `mapstructure:"sample_rate"`
	DisableGCRuns   bool     `mapstructure:"disable_gc_runs"`
	ProfileTypes    []string `mapstructure:"profile_types"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional and only meant for local development
	_ = godotenv.Load()

	v := viper.New()

	// Modify config paths to ensure config.yaml is found
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/recurring")

	// Set up environment variables support
	v.SetEnvPrefix("RECURRING")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("redis.key_prefix", "recurring:webhook:")
	v.SetDefault("providers.timeout", "15s")
	v.SetDefault("providers.max_retries", 3)
	v.SetDefault("providers.retry_initial_interval", "500ms")
	v.SetDefault("providers.replay_ttl", "72h")
	v.SetDefault("providers.xendit.base_url", "https://api.xendit.co")
	v.SetDefault("billing.trial_days", types.DefaultTrialDays)
	v.SetDefault("billing.suspension_threshold", 3)
	v.SetDefault("billing.suspension_window", "720h")
	v.SetDefault("billing.timezone", "Asia/Jakarta")
	v.SetDefault("billing.bulk_activation_workers", 8)
	v.SetDefault("billing.default_currency", types.CurrencyIDR)
	v.SetDefault("billing.catalog_cache_ttl", "5m")
	v.SetDefault("scheduler.trial_expiry_spec", "0 9 * * *")
	v.SetDefault("scheduler.enterprise_expiry_spec", "5 9 * * *")
	v.SetDefault("scheduler.auto_expire_spec", "15 * * * *")
	v.SetDefault("pyroscope.application_name", "recurring")
	v.SetDefault("pyroscope.sample_rate", 100)
	v.SetDefault("notification.topic", "billing.notifications")
	v.SetDefault("notification.max_retries", 3)
	v.SetDefault("notification.initial_interval", "1s")
	v.SetDefault("notification.max_interval", "10s")
	v.SetDefault("notification.multiplier", 2.0)
	v.SetDefault("notification.max_elapsed_time", "1m")
	v.SetDefault("sentry.sample_rate", 1.0)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Providers: ProvidersConfig{
			Timeout:              15 * time.Second,
			MaxRetries:           3,
			RetryInitialInterval: 500 * time.Millisecond,
			ReplayTTL:            72 * time.Hour,
		},
		Billing: BillingConfig{
			TrialDays:             types.DefaultTrialDays,
			SuspensionThreshold:   3,
			SuspensionWindow:      30 * 24 * time.Hour,
			Timezone:              "UTC",
			BulkActivationWorkers: 4,
			DefaultCurrency:       types.CurrencyIDR,
			CatalogCacheTTL:       5 * time.Minute,
		},
		Notification: NotificationConfig{
			Enabled:         true,
			Topic:           "billing.notifications",
			MaxRetries:      3,
			InitialInterval: time.Second,
			MaxInterval:     10 * time.Second,
			Multiplier:      2,
			MaxElapsedTime:  time.Minute,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
