package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	rediscommon "checklist-safety/common/redis"
	"checklist-safety/internal/aggregator"
	"checklist-safety/internal/config"
	"checklist-safety/internal/consumer"
	"checklist-safety/internal/models"
	"checklist-safety/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func testConfig(mode string) *config.Config {
	cfg := &config.Config{DataSource: config.DataSourcePostgres}
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Board.MaxInspectionsPerEquipment = 12
	cfg.Board.Timezone = "UTC"
	cfg.Board.CacheTTL = time.Minute
	cfg.Board.TriggerMode = mode
	cfg.Board.Polling.Interval = 3600
	cfg.Board.EventStream = "checklist:events"
	cfg.Board.ConsumerGroup = "checklist-board-group"
	cfg.Board.ConsumerName = "checklist-board-test"
	cfg.Board.BatchSize = 10
	return cfg
}

func testStore() *repository.MemoryStore {
	today := time.Now().UTC().Format(time.RFC3339)
	return repository.NewMemoryStore(
		[]models.Equipment{{ID: "e1", Name: "Ponte A", KP: "100", Sector: "Manutenção"}},
		[]models.Inspection{{
			ID:               "i1",
			EquipmentID:      strPtr("e1"),
			InspectionDate:   strPtr(today),
			ChecklistAnswers: json.RawMessage(`[{"question": "O sistema de freios do guincho está funcionando?", "answer": "Não"}]`),
		}},
		nil,
		nil,
	)
}

func cachedStats(client *redis.Client) (string, bool) {
	raw, err := client.Get(context.Background(), aggregator.StatsCacheKey).Result()
	if err != nil {
		return "", false
	}
	return raw, true
}

func runService(t *testing.T, svc *BoardService) (cancel func()) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	return func() {
		cancelCtx()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("service did not stop")
		}
		require.NoError(t, svc.Stop(context.Background()))
	}
}

func TestBoardService_PollingModeBuildsOnStartup(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := testStore()

	svc := NewBoardServiceWithDeps(testConfig(config.TriggerModePolling), zap.NewNop(), Dependencies{
		Store:       store,
		RedisClient: client,
	})
	stop := runService(t, svc)
	defer stop()

	assert.Eventually(t, func() bool {
		_, ok := cachedStats(client)
		return ok
	}, 3*time.Second, 20*time.Millisecond)

	raw, _ := cachedStats(client)
	assert.JSONEq(t, `{"sector_count":1,"equipment_count":1,"inspections_today":1,"inspections_with_problems_today":1}`, raw)
	assert.Len(t, store.Alerts(), 1)
}

func TestBoardService_EventModeRefreshesOnEvent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := testStore()
	cfg := testConfig(config.TriggerModeEvents)

	svc := NewBoardServiceWithDeps(cfg, zap.NewNop(), Dependencies{
		Store:       store,
		RedisClient: client,
	})
	stop := runService(t, svc)
	defer stop()

	require.Eventually(t, func() bool {
		_, ok := cachedStats(client)
		return ok
	}, 3*time.Second, 20*time.Millisecond)

	store.AddInspection(models.Inspection{
		ID:               "i2",
		EquipmentID:      strPtr("e1"),
		InspectionDate:   strPtr(time.Now().UTC().Format(time.RFC3339)),
		ChecklistAnswers: json.RawMessage(`[]`),
	})
	_, err := rediscommon.PublishJSONToStream(context.Background(), client, cfg.Board.EventStream, consumer.ChecklistEvent{
		EventType:    consumer.EventInspectionSubmitted,
		InspectionID: "i2",
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		raw, ok := cachedStats(client)
		if !ok {
			return false
		}
		var stats struct {
			InspectionsToday int `json:"inspections_today"`
		}
		return json.Unmarshal([]byte(raw), &stats) == nil && stats.InspectionsToday == 2
	}, 8*time.Second, 50*time.Millisecond)
}
