package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"checklist-safety/common/config"
)

const (
	DataSourcePostgres = "postgres"
	DataSourceSupabase = "supabase"

	TriggerModePolling = "polling"
	TriggerModeEvents  = "events"
)

// Config checklist board service configuration
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig
	Supabase config.SupabaseConfig

	// DataSource "postgres" or "supabase"
	DataSource string

	HTTP struct {
		Addr string
	}

	MQTTEnabled    bool
	MQTTAlertTopic string

	Board struct {
		MaxInspectionsPerEquipment int
		// LookbackDays inspections older than this are not loaded; 0 loads everything
		LookbackDays int
		Timezone     string
		CacheTTL     time.Duration

		// TriggerMode "polling" or "events"
		TriggerMode string

		Polling struct {
			Interval int // seconds
		}

		// Redis Streams
		EventStream   string
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "checklist")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTTEnabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "checklist-board")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))
	cfg.MQTTAlertTopic = getEnv("MQTT_ALERT_TOPIC", "checklist/alerts")

	cfg.DataSource = getEnv("DATA_SOURCE", DataSourcePostgres)
	cfg.Supabase.LoadFromEnv("SUPABASE")
	cfg.Supabase.Timeout = time.Duration(getEnvInt("SUPABASE_TIMEOUT_SECONDS", 15)) * time.Second

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Board.MaxInspectionsPerEquipment = getEnvInt("BOARD_MAX_INSPECTIONS", 12)
	cfg.Board.LookbackDays = getEnvInt("BOARD_LOOKBACK_DAYS", 90)
	cfg.Board.Timezone = getEnv("BOARD_TIMEZONE", "America/Sao_Paulo")
	cfg.Board.CacheTTL = time.Duration(getEnvInt("BOARD_CACHE_TTL_SECONDS", 60)) * time.Second
	cfg.Board.TriggerMode = getEnv("BOARD_TRIGGER_MODE", TriggerModePolling)
	cfg.Board.Polling.Interval = getEnvInt("BOARD_POLLING_INTERVAL", 60)
	cfg.Board.EventStream = getEnv("CHECKLIST_EVENT_STREAM", "checklist:events")
	cfg.Board.ConsumerGroup = getEnv("CHECKLIST_CONSUMER_GROUP", "checklist-board-group")
	cfg.Board.ConsumerName = getEnv("CHECKLIST_CONSUMER_NAME", "checklist-board-1")
	cfg.Board.BatchSize = getEnvInt("CHECKLIST_BATCH_SIZE", 10)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	switch c.DataSource {
	case DataSourcePostgres:
	case DataSourceSupabase:
		if c.Supabase.URL == "" || c.Supabase.APIKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_API_KEY are required when DATA_SOURCE=%s", DataSourceSupabase)
		}
	default:
		return fmt.Errorf("unsupported data source: %s", c.DataSource)
	}

	switch c.Board.TriggerMode {
	case TriggerModePolling, TriggerModeEvents:
	default:
		return fmt.Errorf("unsupported trigger mode: %s", c.Board.TriggerMode)
	}

	if _, err := time.LoadLocation(c.Board.Timezone); err != nil {
		return fmt.Errorf("invalid BOARD_TIMEZONE %q: %w", c.Board.Timezone, err)
	}
	return nil
}

// Location board timezone, UTC when it cannot be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Board.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}
