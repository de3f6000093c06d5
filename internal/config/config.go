package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Redis      RedisConfig      `yaml:"redis"`
	Email      EmailConfig      `yaml:"email"`
	Booking    BookingConfig    `yaml:"booking"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit ServerRateLimit `yaml:"rate_limit"`
}

type ServerRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// MongoConfig drives the persistence gateway. All timeouts are seconds;
// the connect timeout bounds one dial attempt, the ping timeout the
// liveness probe, the op timeout every record operation.
type MongoConfig struct {
	URI               string `yaml:"uri"`
	Database          string `yaml:"database"`
	ConnectTimeout    int    `yaml:"connect_timeout_seconds"`
	PingTimeout       int    `yaml:"ping_timeout_seconds"`
	OpTimeout         int    `yaml:"op_timeout_seconds"`
	MaxRetries        int    `yaml:"max_retries"`
	InitialDelay      int    `yaml:"initial_delay_seconds"`
	ReconnectInterval int    `yaml:"reconnect_interval_seconds"`
	ReconnectRetries  int    `yaml:"reconnect_retries"`
}

func (c MongoConfig) ConnectTimeoutDur() time.Duration { return seconds(c.ConnectTimeout) }
func (c MongoConfig) PingTimeoutDur() time.Duration    { return seconds(c.PingTimeout) }
func (c MongoConfig) OpTimeoutDur() time.Duration      { return seconds(c.OpTimeout) }
func (c MongoConfig) InitialDelayDur() time.Duration   { return seconds(c.InitialDelay) }
func (c MongoConfig) ReconnectIntervalDur() time.Duration {
	return seconds(c.ReconnectInterval)
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type EmailConfig struct {
	APIKey      string `yaml:"api_key"`
	From        string `yaml:"from"`
	AdminEmail  string `yaml:"admin_email"`
	SendTimeout int    `yaml:"send_timeout_seconds"`
}

func (c EmailConfig) SendTimeoutDur() time.Duration { return seconds(c.SendTimeout) }

type BookingConfig struct {
	Timezone     string `yaml:"timezone"`
	SlotCacheTTL int    `yaml:"slot_cache_ttl_seconds"`
}

func (c BookingConfig) SlotCacheTTLDur() time.Duration { return seconds(c.SlotCacheTTL) }

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; env vars may come from the environment directly.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before parsing.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("mongo uri is required")
	}
	if c.Mongo.Database == "" {
		return errors.New("mongo database is required")
	}
	if c.Booking.Timezone != "" {
		if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
			return fmt.Errorf("invalid booking timezone %q: %w", c.Booking.Timezone, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "appointd"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "appointd"
	}
	if c.Mongo.ConnectTimeout == 0 {
		c.Mongo.ConnectTimeout = 15
	}
	if c.Mongo.PingTimeout == 0 {
		c.Mongo.PingTimeout = 3
	}
	if c.Mongo.OpTimeout == 0 {
		c.Mongo.OpTimeout = 8
	}
	if c.Mongo.MaxRetries == 0 {
		c.Mongo.MaxRetries = 5
	}
	if c.Mongo.InitialDelay == 0 {
		c.Mongo.InitialDelay = 2
	}
	if c.Mongo.ReconnectInterval == 0 {
		c.Mongo.ReconnectInterval = 30
	}
	if c.Mongo.ReconnectRetries == 0 {
		c.Mongo.ReconnectRetries = 3
	}
	if c.Email.SendTimeout == 0 {
		c.Email.SendTimeout = 10
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "Africa/Kigali"
	}
	if c.Booking.SlotCacheTTL == 0 {
		c.Booking.SlotCacheTTL = 30
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
