package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected DB_HOST default 'localhost', got '%s'", cfg.Database.Host)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("Expected DB_PORT default 5432, got %d", cfg.Database.Port)
	}

	if cfg.Database.Database != "checklist" {
		t.Errorf("Expected DB_NAME default 'checklist', got '%s'", cfg.Database.Database)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Expected REDIS_ADDR default 'localhost:6379', got '%s'", cfg.Redis.Addr)
	}

	if cfg.DataSource != DataSourcePostgres {
		t.Errorf("Expected DATA_SOURCE default 'postgres', got '%s'", cfg.DataSource)
	}

	if cfg.Board.TriggerMode != TriggerModePolling {
		t.Errorf("Expected BOARD_TRIGGER_MODE default 'polling', got '%s'", cfg.Board.TriggerMode)
	}

	if cfg.Board.MaxInspectionsPerEquipment != 12 {
		t.Errorf("Expected max inspections default 12, got %d", cfg.Board.MaxInspectionsPerEquipment)
	}

	if cfg.Board.CacheTTL != 60*time.Second {
		t.Errorf("Expected cache TTL default 60s, got %s", cfg.Board.CacheTTL)
	}

	if cfg.Board.EventStream != "checklist:events" {
		t.Errorf("Expected CHECKLIST_EVENT_STREAM default 'checklist:events', got '%s'", cfg.Board.EventStream)
	}

	if cfg.MQTTEnabled {
		t.Errorf("Expected MQTT disabled by default")
	}

	if cfg.MQTTAlertTopic != "checklist/alerts" {
		t.Errorf("Expected MQTT_ALERT_TOPIC default 'checklist/alerts', got '%s'", cfg.MQTTAlertTopic)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PORT", "6543")
	os.Setenv("DATA_SOURCE", "supabase")
	os.Setenv("SUPABASE_URL", "https://project.supabase.co")
	os.Setenv("SUPABASE_API_KEY", "anon")
	os.Setenv("BOARD_TRIGGER_MODE", "events")
	os.Setenv("BOARD_MAX_INSPECTIONS", "5")
	os.Setenv("BOARD_TIMEZONE", "UTC")
	os.Setenv("MQTT_ENABLED", "true")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.Port != 6543 {
		t.Errorf("Expected DB_PORT 6543, got %d", cfg.Database.Port)
	}

	if cfg.Supabase.URL != "https://project.supabase.co" {
		t.Errorf("Expected SUPABASE_URL from env, got '%s'", cfg.Supabase.URL)
	}

	if cfg.Board.TriggerMode != TriggerModeEvents {
		t.Errorf("Expected trigger mode 'events', got '%s'", cfg.Board.TriggerMode)
	}

	if cfg.Board.MaxInspectionsPerEquipment != 5 {
		t.Errorf("Expected max inspections 5, got %d", cfg.Board.MaxInspectionsPerEquipment)
	}

	if cfg.Location() != time.UTC {
		t.Errorf("Expected UTC location, got %s", cfg.Location())
	}

	if !cfg.MQTTEnabled {
		t.Errorf("Expected MQTT enabled")
	}
}

func TestLoad_InvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown data source":  {"DATA_SOURCE": "mongo"},
		"supabase without key": {"DATA_SOURCE": "supabase", "SUPABASE_URL": "https://x.supabase.co"},
		"unknown trigger mode": {"BOARD_TRIGGER_MODE": "cron"},
		"unknown timezone":     {"BOARD_TIMEZONE": "Mars/Olympus"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range env {
				os.Setenv(k, v)
			}
			defer os.Clearenv()

			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s", name)
			}
		})
	}
}
