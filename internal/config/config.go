package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// PAYOUT_MODE_POOL delivers payouts from an in-process worker pool
	PAYOUT_MODE_POOL = "pool"
	// PAYOUT_MODE_TEMPORAL delivers payouts through Temporal workflows
	PAYOUT_MODE_TEMPORAL = "temporal"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// URIConfig holds token URI resolver configuration
type URIConfig struct {
	IPFSGateways    []string      `mapstructure:"ipfs_gateways"`
	ArweaveGateways []string      `mapstructure:"arweave_gateways"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m", "1h"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m", "30m"
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	// URL is optional; notifications are only published when it is set
	URL             string        `mapstructure:"url"`
	StreamName      string        `mapstructure:"stream_name"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	ReconnectWait   time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName  string        `mapstructure:"connection_name"`
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"`
}

// TemporalConfig holds Temporal configuration
type TemporalConfig struct {
	HostPort                           string  `mapstructure:"host_port"`
	Namespace                          string  `mapstructure:"namespace"`
	PayoutTaskQueue                    string  `mapstructure:"payout_task_queue"`
	MaxConcurrentActivityExecutionSize int     `mapstructure:"max_concurrent_activity_execution_size"`
	WorkerActivitiesPerSecond          float64 `mapstructure:"worker_activities_per_second"`
	MaxConcurrentActivityTaskPollers   int     `mapstructure:"max_concurrent_activity_task_pollers"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds

	// CORSAllowedOrigins restricts browser origins, empty allows any origin
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// RateLimitConfig holds the per-client request rate limit of the API
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	// RedisAddr enables the distributed limiter shared by all API replicas
	RedisAddr           string        `mapstructure:"redis_addr"`
	RedisPassword       string        `mapstructure:"redis_password"`
	RedisDB             int           `mapstructure:"redis_db"`
	RedisKeyPrefix      string        `mapstructure:"redis_key_prefix"`
	EnableLocalFallback bool          `mapstructure:"enable_local_fallback"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
}

// MarketplaceConfig holds the fee settings of the marketplace
type MarketplaceConfig struct {
	PlatformOwner           string `mapstructure:"platform_owner"`
	PlatformFeeBps          uint64 `mapstructure:"platform_fee_bps"`
	DefaultRoyaltyBps       uint64 `mapstructure:"default_royalty_bps"`
	FreezePlatformFeeAtMint bool   `mapstructure:"freeze_platform_fee_at_mint"`
	EventBufferSize         int    `mapstructure:"event_buffer_size"`
}

// PayoutConfig holds payout delivery configuration
type PayoutConfig struct {
	Mode            string        `mapstructure:"mode"`
	PoolSize        int           `mapstructure:"pool_size"`
	QueueSize       int           `mapstructure:"queue_size"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	TransferTimeout time.Duration `mapstructure:"transfer_timeout"`
}

// CustodyConfig holds the custody service configuration.
// An empty URL logs transfers instead of sending them.
type CustodyConfig struct {
	URL     string        `mapstructure:"url"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PayoutSweeperConfig holds configuration for the stale payout sweeper
type PayoutSweeperConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
	BatchSize  int           `mapstructure:"batch_size"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Temporal    TemporalConfig    `mapstructure:"temporal"`
	Auth        AuthConfig        `mapstructure:"auth"`
	URI         URIConfig         `mapstructure:"uri"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Payout      PayoutConfig      `mapstructure:"payout"`
	Custody     CustodyConfig     `mapstructure:"custody"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig    `mapstructure:",squash"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Temporal      TemporalConfig      `mapstructure:"temporal"`
	Payout        PayoutConfig        `mapstructure:"payout"`
	Custody       CustodyConfig       `mapstructure:"custody"`
	PayoutSweeper PayoutSweeperConfig `mapstructure:"payout_sweeper"`
}

// WorkerPayoutConfig holds configuration for worker-payout
type WorkerPayoutConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Temporal   TemporalConfig `mapstructure:"temporal"`
	Payout     PayoutConfig   `mapstructure:"payout"`
	Custody    CustodyConfig  `mapstructure:"custody"`
}

// setCommonDefaults sets the defaults shared by every binary
func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.payout_task_queue", "marketplace-payouts")
	v.SetDefault("payout.mode", PAYOUT_MODE_POOL)
	v.SetDefault("payout.pool_size", 4)
	v.SetDefault("payout.queue_size", 1024)
	v.SetDefault("payout.max_attempts", 5)
	v.SetDefault("payout.initial_interval", "1s")
	v.SetDefault("payout.max_interval", "1m")
	v.SetDefault("payout.transfer_timeout", "30s")
	v.SetDefault("custody.timeout", "15s")
}

// readConfig reads the config file, tolerating a missing one
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("nats.stream_name", "MARKETPLACE_EVENTS")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "ff-marketplace-api")
	v.SetDefault("nats.duplicate_window", "2m")
	v.SetDefault("uri.ipfs_gateways", []string{"https://ipfs.io", "https://cloudflare-ipfs.com"})
	v.SetDefault("uri.arweave_gateways", []string{"https://arweave.net"})
	v.SetDefault("uri.timeout", "5s")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("rate_limit.redis_key_prefix", "ff-marketplace:ratelimit:")
	v.SetDefault("rate_limit.enable_local_fallback", true)
	v.SetDefault("rate_limit.health_check_interval", "30s")
	v.SetDefault("marketplace.platform_fee_bps", 100)
	v.SetDefault("marketplace.default_royalty_bps", 500)
	v.SetDefault("marketplace.freeze_platform_fee_at_mint", false)
	v.SetDefault("marketplace.event_buffer_size", 64)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Marketplace.PlatformOwner == "" {
		return nil, errors.New("marketplace.platform_owner is required")
	}
	if err := cfg.Payout.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("payout_sweeper.interval", "1m")
	v.SetDefault("payout_sweeper.stale_after", "5m")
	v.SetDefault("payout_sweeper.batch_size", 100)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}
	if err := cfg.Payout.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWorkerPayoutConfig loads configuration for worker-payout
func LoadWorkerPayoutConfig(configFile string, envPath string) (*WorkerPayoutConfig, error) {
	v := configureViper("worker-payout", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("payout.mode", PAYOUT_MODE_TEMPORAL)
	v.SetDefault("temporal.max_concurrent_activity_execution_size", 20)
	v.SetDefault("temporal.worker_activities_per_second", 20)
	v.SetDefault("temporal.max_concurrent_activity_task_pollers", 2)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg WorkerPayoutConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c *PayoutConfig) validate() error {
	switch c.Mode {
	case PAYOUT_MODE_POOL, PAYOUT_MODE_TEMPORAL:
		return nil
	default:
		return fmt.Errorf("unsupported payout.mode: %q", c.Mode)
	}
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/sweeper/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_MARKETPLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.duplicate_window",
		// Temporal
		"temporal.host_port",
		"temporal.namespace",
		"temporal.payout_task_queue",
		"temporal.max_concurrent_activity_execution_size",
		"temporal.worker_activities_per_second",
		"temporal.max_concurrent_activity_task_pollers",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_allowed_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// URI
		"uri.ipfs_gateways",
		"uri.arweave_gateways",
		"uri.timeout",
		// Rate limit
		"rate_limit.enabled",
		"rate_limit.requests_per_second",
		"rate_limit.burst",
		"rate_limit.redis_addr",
		"rate_limit.redis_password",
		"rate_limit.redis_db",
		"rate_limit.redis_key_prefix",
		"rate_limit.enable_local_fallback",
		"rate_limit.health_check_interval",
		// Marketplace
		"marketplace.platform_owner",
		"marketplace.platform_fee_bps",
		"marketplace.default_royalty_bps",
		"marketplace.freeze_platform_fee_at_mint",
		"marketplace.event_buffer_size",
		// Payout
		"payout.mode",
		"payout.pool_size",
		"payout.queue_size",
		"payout.max_attempts",
		"payout.initial_interval",
		"payout.max_interval",
		"payout.transfer_timeout",
		// Custody
		"custody.url",
		"custody.secret",
		"custody.timeout",
		// Payout sweeper
		"payout_sweeper.interval",
		"payout_sweeper.stale_after",
		"payout_sweeper.batch_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
