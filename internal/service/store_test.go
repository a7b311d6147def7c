package service

import (
	"testing"

	"checklist-safety/internal/config"
	"checklist-safety/internal/supabase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenStore_Supabase(t *testing.T) {
	cfg := &config.Config{DataSource: config.DataSourceSupabase}
	cfg.Supabase.URL = "https://example.supabase.co"
	cfg.Supabase.APIKey = "anon-key"

	store, db, err := OpenStore(cfg, zap.NewNop())

	require.NoError(t, err)
	assert.Nil(t, db)
	assert.IsType(t, &supabase.Client{}, store)
}

func TestOpenStore_UnsupportedSource(t *testing.T) {
	cfg := &config.Config{DataSource: "sqlite"}

	_, _, err := OpenStore(cfg, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported data source")
}
