package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"checklist-safety/internal/alertrules"
	"checklist-safety/internal/board"
	"checklist-safety/internal/evaluator"
	"checklist-safety/internal/models"
	"checklist-safety/internal/notifier"
	"checklist-safety/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Snapshot one build of the inspection board
type Snapshot struct {
	Board         InspectionBoard `json:"board"`
	Stats         board.Stats     `json:"stats"`
	GeneratedAt   time.Time       `json:"generated_at"`
	AlertCount    int             `json:"alert_count"`
	NewAlertCount int             `json:"new_alert_count"`
}

// Options board settings
type Options struct {
	MaxInspectionsPerEquipment int
	LookbackDays               int // 0 loads every inspection
	Location                   *time.Location
	Now                        func() time.Time
}

// BoardAggregator loads checklist data, evaluates it and keeps the board cache fresh
type BoardAggregator struct {
	source    repository.DataSource
	alerts    repository.AlertStore
	engine    *alertrules.Engine
	cache     *CacheManager
	publisher notifier.Publisher
	opts      Options
	logger    *zap.Logger

	// one refresh at a time
	mu sync.Mutex
}

// NewBoardAggregator alerts and publisher may be nil
func NewBoardAggregator(
	source repository.DataSource,
	alerts repository.AlertStore,
	engine *alertrules.Engine,
	cache *CacheManager,
	publisher notifier.Publisher,
	opts Options,
	logger *zap.Logger,
) *BoardAggregator {
	if publisher == nil {
		publisher = notifier.NopNotifier{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BoardAggregator{
		source:    source,
		alerts:    alerts,
		engine:    engine,
		cache:     cache,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
	}
}

type loadedData struct {
	equipments  []models.Equipment
	inspections []models.Inspection
	template    []models.ChecklistTemplateQuestion
	orders      []models.MaintenanceOrder
}

func (a *BoardAggregator) load(ctx context.Context, now time.Time) (*loadedData, error) {
	var since time.Time
	if a.opts.LookbackDays > 0 {
		since = now.AddDate(0, 0, -a.opts.LookbackDays)
	}

	data := &loadedData{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.equipments, err = a.source.ListEquipment(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.inspections, err = a.source.ListInspections(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		data.template, err = a.source.ListChecklistTemplate(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.orders, err = a.source.ListOpenOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load checklist data: %w", err)
	}
	return data, nil
}

// Refresh rebuilds the board from the data source. Alert persistence,
// publishing and caching failures are logged and do not fail the refresh.
func (a *BoardAggregator) Refresh(ctx context.Context) (*Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	started := time.Now()
	now := a.opts.Now()

	data, err := a.load(ctx, now)
	if err != nil {
		return nil, err
	}

	ev := evaluator.New(a.engine, data.template, a.logger).WithOpenOrders(data.orders)
	evaluated := ev.EvaluateAll(data.inspections)

	built := board.Build(board.Params[evaluator.EvaluatedInspection]{
		Equipments:                 equipmentSources(data.equipments),
		Inspections:                evaluated,
		MaxInspectionsPerEquipment: a.opts.MaxInspectionsPerEquipment,
		Accessors:                  inspectionAccessors{},
		Now:                        func() time.Time { return now },
		Location:                   a.opts.Location,
	})

	snap := &Snapshot{
		Board:       built,
		Stats:       board.CalculateStats(built),
		GeneratedAt: now,
	}

	var records []models.AlertRecord
	for _, in := range evaluated {
		records = append(records, evaluator.BuildAlertRecords(in, now)...)
	}
	snap.AlertCount = len(records)

	if a.alerts != nil && len(records) > 0 {
		inserted, err := a.alerts.SaveAlerts(ctx, records)
		if err != nil {
			a.logger.Error("Failed to save alerts", zap.Int("alert_count", len(records)), zap.Error(err))
		} else {
			snap.NewAlertCount = len(inserted)
			if len(inserted) > 0 {
				if err := a.publisher.PublishAlerts(ctx, inserted); err != nil {
					a.logger.Error("Failed to publish alerts", zap.Int("alert_count", len(inserted)), zap.Error(err))
				}
			}
		}
	}

	if a.cache != nil {
		if err := a.cache.SaveSnapshot(ctx, snap); err != nil {
			a.logger.Warn("Failed to cache inspection board", zap.Error(err))
		}
	}

	a.logger.Info("Inspection board refreshed",
		zap.Int("sector_count", snap.Stats.SectorCount),
		zap.Int("equipment_count", snap.Stats.EquipmentCount),
		zap.Int("inspection_count", len(data.inspections)),
		zap.Int("inspections_today", snap.Stats.InspectionsToday),
		zap.Int("alert_count", snap.AlertCount),
		zap.Int("new_alert_count", snap.NewAlertCount),
		zap.Duration("elapsed", time.Since(started)),
	)

	return snap, nil
}

// Current cached snapshot, rebuilt on a miss
func (a *BoardAggregator) Current(ctx context.Context) (*Snapshot, error) {
	if a.cache != nil {
		snap, err := a.cache.LoadSnapshot(ctx)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			a.logger.Warn("Failed to read inspection board cache", zap.Error(err))
		}
	}
	return a.Refresh(ctx)
}

// Stats cached stats, rebuilt on a miss
func (a *BoardAggregator) Stats(ctx context.Context) (*board.Stats, error) {
	if a.cache != nil {
		stats, err := a.cache.LoadStats(ctx)
		if err == nil {
			return stats, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			a.logger.Warn("Failed to read inspection board stats cache", zap.Error(err))
		}
	}
	snap, err := a.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return &snap.Stats, nil
}

// Engine rule engine used for evaluation
func (a *BoardAggregator) Engine() *alertrules.Engine {
	return a.engine
}
