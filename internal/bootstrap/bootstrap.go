package bootstrap

import (
	"adledger-server/internal/config"
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"adledger-server/internal/store/memory"
	"adledger-server/internal/userlock"
	"context"
	"fmt"
	"time"

	adminHandler "adledger-server/internal/admin/handler"
	adminProcessor "adledger-server/internal/admin/processor"
	"adledger-server/internal/clients/coingecko"
	kafkaClient "adledger-server/internal/clients/kafka"
	redisClient "adledger-server/internal/clients/redis"
	"adledger-server/internal/clients/telegram"
	"adledger-server/internal/events"
	ledgerHandler "adledger-server/internal/ledger/handler"
	ledgerProcessor "adledger-server/internal/ledger/processor"
	pricingHandler "adledger-server/internal/pricing/handler"
	pricingProcessor "adledger-server/internal/pricing/processor"
	"adledger-server/internal/ratelimit"
	statsWorker "adledger-server/internal/workers/stats"
)

const (
	rateLimitCleanupInterval = 10 * time.Minute
	activeUsersInterval      = 5 * time.Minute
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Repository store.Repository
	Logger     *observability.Logger

	// Handlers
	LedgerHandler  ledgerHandler.Handler
	AdminHandler   adminHandler.Handler
	PricingHandler pricingHandler.Handler

	// Middleware
	RateLimiter *ratelimit.Service

	// Background workers
	StatsWorker *statsWorker.Worker

	// Clients (for cleanup)
	PostgresStore *store.Store
	RedisClient   *redisClient.Client
	KafkaProducer *kafkaClient.Producer
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Initialize repository
	if err := deps.initRepository(ctx, cfg, logger); err != nil {
		return nil, err
	}

	// Initialize Redis (optional)
	var err error
	deps.RedisClient, err = redisClient.NewClient(cfg.Redis, logger)
	if err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Initialize Kafka producer (optional)
	publisher := events.NewPublisher(nil, logger)
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		deps.KafkaProducer = kafkaClient.NewProducer(kafkaClient.ProducerConfig{
			Brokers: brokers,
			Topic:   cfg.Kafka.Topic,
		}, logger)
		publisher = events.NewPublisher(deps.KafkaProducer, logger)
	} else {
		logger.Info(ctx, "KAFKA_BROKERS not set, ledger events will not be published")
	}

	// Initialize Telegram client (optional unless membership is enforced)
	telegramClient, err := telegram.NewClient(cfg.Telegram, cfg.Admin.TelegramID, logger)
	if err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	var membership ledgerProcessor.MembershipChecker
	var requestNotifier ledgerProcessor.WithdrawalNotifier
	var processedNotifier adminProcessor.WithdrawalNotifier
	if telegramClient != nil {
		requestNotifier = telegramClient
		processedNotifier = telegramClient
		if cfg.Telegram.RequireMembership {
			membership = telegramClient
		}
	}

	locks := userlock.New()

	// Initialize ledger processor and handler
	ledgerProc := ledgerProcessor.New(
		deps.Repository,
		locks,
		membership,
		publisher,
		requestNotifier,
		logger,
		ledgerProcessor.Config{
			Location:          cfg.Ledger.Location,
			MinWithdrawal:     cfg.Ledger.MinWithdrawal,
			MembershipTimeout: cfg.Ledger.MembershipTimeout,
		},
	)
	deps.LedgerHandler = ledgerHandler.New(ledgerProc, logger)

	// Initialize admin processor and handler
	adminProc := adminProcessor.New(
		deps.Repository,
		ledgerProc,
		locks,
		publisher,
		processedNotifier,
		logger,
		adminProcessor.Config{AdminID: cfg.Admin.TelegramID},
	)
	deps.AdminHandler = adminHandler.New(adminProc, logger)

	// Initialize price feed
	priceProc := pricingProcessor.New(
		coingecko.NewClient(cfg.PriceFeed.URL, logger),
		deps.RedisClient,
		cfg.PriceFeed.CacheTTL,
		logger,
	)
	deps.PricingHandler = pricingHandler.New(priceProc, logger)

	// Initialize rate limiter
	deps.RateLimiter = ratelimit.NewService(deps.RedisClient, cfg.RateLimit, logger)
	deps.RateLimiter.StartCleanup(ctx, rateLimitCleanupInterval)

	// Initialize active users worker
	deps.StatsWorker = statsWorker.New(deps.Repository, logger, activeUsersInterval)

	return deps, nil
}

func (d *Dependencies) initRepository(ctx context.Context, cfg *config.Config, logger *observability.Logger) error {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg, err := store.New(cfg.Database.ConnectionString(), logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		d.PostgresStore = &pg
		d.Repository = &pg
	default:
		logger.Warn(ctx, "using in-memory storage, data will not survive a restart")
		d.Repository = memory.New()
	}

	logger.Info(ctx, "storage initialized", observability.Field{Key: "driver", Value: cfg.Storage.Driver})
	return nil
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	ctx := context.Background()
	if d.KafkaProducer != nil {
		if err := d.KafkaProducer.Close(); err != nil {
			d.Logger.WarnWithError(ctx, "failed to close kafka producer", err)
		}
	}
	if err := d.RedisClient.Close(); err != nil {
		d.Logger.WarnWithError(ctx, "failed to close redis client", err)
	}
	if d.PostgresStore != nil {
		if err := d.PostgresStore.Close(); err != nil {
			d.Logger.WarnWithError(ctx, "failed to close database", err)
		}
	}
}
