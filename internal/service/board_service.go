package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"checklist-safety/common/database"
	mqttcommon "checklist-safety/common/mqtt"
	rediscommon "checklist-safety/common/redis"
	"checklist-safety/internal/aggregator"
	"checklist-safety/internal/alertrules"
	"checklist-safety/internal/config"
	"checklist-safety/internal/consumer"
	httpapi "checklist-safety/internal/http"
	"checklist-safety/internal/notifier"
	"checklist-safety/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Dependencies external resources of the board service
type Dependencies struct {
	Store       repository.Store
	RedisClient *redis.Client
	// Publisher nil disables alert notifications
	Publisher notifier.Publisher
}

// BoardService inspection board service
type BoardService struct {
	config        *config.Config
	logger        *zap.Logger
	db            *sql.DB
	redisClient   *redis.Client
	mqttClient    *mqttcommon.Client
	aggregator    *aggregator.BoardAggregator
	eventConsumer *consumer.EventConsumer
	server        *Server
}

// NewBoardService connects the data source, Redis and MQTT from cfg
func NewBoardService(cfg *config.Config, logger *zap.Logger) (*BoardService, error) {
	store, db, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var publisher notifier.Publisher
	var mqttClient *mqttcommon.Client
	if cfg.MQTTEnabled {
		if c, err := mqttcommon.NewClient(&cfg.MQTT); err == nil {
			mqttClient = c
			publisher = notifier.NewMQTTNotifier(c, cfg.MQTTAlertTopic, c.QoS(), logger)
			logger.Info("MQTT alert notifications enabled", zap.String("topic", cfg.MQTTAlertTopic))
		} else {
			logger.Warn("MQTT enabled but connection failed, alerts will not be published", zap.Error(err))
		}
	}

	svc := NewBoardServiceWithDeps(cfg, logger, Dependencies{
		Store:       store,
		RedisClient: redisClient,
		Publisher:   publisher,
	})
	svc.db = db
	svc.mqttClient = mqttClient
	return svc, nil
}

// NewBoardServiceWithDeps assembles the service around already opened resources
func NewBoardServiceWithDeps(cfg *config.Config, logger *zap.Logger, deps Dependencies) *BoardService {
	engine := alertrules.NewEngine(alertrules.DefaultRuleSet())

	var cacheManager *aggregator.CacheManager
	if deps.RedisClient != nil {
		cacheManager = aggregator.NewCacheManager(aggregator.NewRedisKVStore(deps.RedisClient), cfg.Board.CacheTTL, logger)
	}

	agg := aggregator.NewBoardAggregator(
		deps.Store,
		deps.Store,
		engine,
		cacheManager,
		deps.Publisher,
		aggregator.Options{
			MaxInspectionsPerEquipment: cfg.Board.MaxInspectionsPerEquipment,
			LookbackDays:               cfg.Board.LookbackDays,
			Location:                   cfg.Location(),
		},
		logger,
	)

	var eventConsumer *consumer.EventConsumer
	if cfg.Board.TriggerMode == config.TriggerModeEvents && deps.RedisClient != nil {
		eventConsumer = consumer.NewEventConsumer(
			deps.RedisClient,
			agg,
			logger,
			cfg.Board.EventStream,
			cfg.Board.ConsumerGroup,
			cfg.Board.ConsumerName,
			int64(cfg.Board.BatchSize),
			0,
		)
	}

	router := httpapi.NewRouter(
		httpapi.NewBoardHandler(agg, logger),
		httpapi.NewAlertRulesHandler(engine, logger),
		logger,
	)

	return &BoardService{
		config:        cfg,
		logger:        logger,
		redisClient:   deps.RedisClient,
		aggregator:    agg,
		eventConsumer: eventConsumer,
		server:        NewServer(cfg.HTTP.Addr, router, logger),
	}
}

// Aggregator board pipeline used by the service
func (s *BoardService) Aggregator() *aggregator.BoardAggregator {
	return s.aggregator
}

// Start serves HTTP and keeps the board fresh until ctx is done
func (s *BoardService) Start(ctx context.Context) error {
	s.logger.Info("Starting checklist board service",
		zap.String("trigger_mode", s.config.Board.TriggerMode),
		zap.String("data_source", s.config.DataSource),
		zap.String("timezone", s.config.Board.Timezone),
	)

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- s.server.Start()
	}()

	modeErr := make(chan error, 1)
	go func() {
		switch s.config.Board.TriggerMode {
		case config.TriggerModePolling:
			modeErr <- s.startPollingMode(ctx)
		case config.TriggerModeEvents:
			modeErr <- s.startEventDrivenMode(ctx)
		default:
			modeErr <- fmt.Errorf("unsupported trigger mode: %s", s.config.Board.TriggerMode)
		}
	}()

	select {
	case err := <-httpErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case err := <-modeErr:
		return err
	}
}

// startPollingMode rebuilds the board on a fixed interval
func (s *BoardService) startPollingMode(ctx context.Context) error {
	interval := time.Duration(s.config.Board.Polling.Interval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting polling mode", zap.Duration("interval", interval))

	s.refresh(ctx, "startup")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.refresh(ctx, "polling")
		}
	}
}

// startEventDrivenMode rebuilds on checklist events plus once a day
func (s *BoardService) startEventDrivenMode(ctx context.Context) error {
	s.logger.Info("Starting event-driven mode")

	if s.eventConsumer == nil {
		return fmt.Errorf("event consumer not initialized")
	}

	s.refresh(ctx, "startup")
	go s.startDailyRefresh(ctx)

	return s.eventConsumer.Start(ctx)
}

// startDailyRefresh rebuilds at midnight in the board timezone, when every
// "today" flag on the board changes
func (s *BoardService) startDailyRefresh(ctx context.Context) {
	loc := s.config.Location()
	for {
		now := time.Now().In(loc)
		next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
		timer := time.NewTimer(next.Sub(now))

		s.logger.Debug("Next daily board refresh", zap.Time("next_run", next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.refresh(ctx, "daily")
		}
	}
}

func (s *BoardService) refresh(ctx context.Context, reason string) {
	if _, err := s.aggregator.Refresh(ctx); err != nil {
		s.logger.Error("Failed to refresh inspection board",
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}

// Stop shuts down HTTP and closes every connection
func (s *BoardService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping checklist board service")

	if err := s.server.Stop(ctx); err != nil {
		s.logger.Error("Error stopping HTTP server", zap.Error(err))
	}

	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	if s.redisClient != nil {
		if err := rediscommon.Close(s.redisClient); err != nil {
			s.logger.Error("Error closing redis connection", zap.Error(err))
		}
	}

	if err := database.Close(s.db); err != nil {
		s.logger.Error("Error closing database connection", zap.Error(err))
	}

	s.logger.Info("Checklist board service stopped")
	return nil
}
