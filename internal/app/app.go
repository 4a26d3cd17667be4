package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/dropship-sync/internal/cfg"
	v1Grpc "github.com/DRSN-tech/dropship-sync/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/dropship-sync/internal/delivery/v1/http"
	"github.com/DRSN-tech/dropship-sync/internal/infrastructure/auth"
	"github.com/DRSN-tech/dropship-sync/internal/infrastructure/clock"
	"github.com/DRSN-tech/dropship-sync/internal/infrastructure/kafka"
	"github.com/DRSN-tech/dropship-sync/internal/infrastructure/market"
	minioInfra "github.com/DRSN-tech/dropship-sync/internal/infrastructure/minio"
	"github.com/DRSN-tech/dropship-sync/internal/infrastructure/supplier"
	s3Repo "github.com/DRSN-tech/dropship-sync/internal/repository/minio"
	"github.com/DRSN-tech/dropship-sync/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/dropship-sync/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/dropship-sync/internal/repository/redis"
	redisConv "github.com/DRSN-tech/dropship-sync/internal/repository/redis/converter"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/clients"
	"github.com/DRSN-tech/dropship-sync/pkg/closer"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/jitter"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/DRSN-tech/dropship-sync/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout       = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	forcedCloseWindow = 3 * time.Second
	topicTimeout      = 10 * time.Second
)

// App держит все компоненты сервиса и порядок их остановки.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	outbox  *kafka.OutboxWorker
	tokens  *auth.TokenStore

	// отменяется при остановке, прерывает фоновые задачи
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(forcedCloseWindow),
	}
	a.bgCtx, a.bgCancel = context.WithCancel(context.Background())

	if err := a.init(); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(ctx); closeErr != nil {
			log.Warnf("cleanup after failed init: %v", closeErr)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	cfg, log := a.cfg, a.logger
	clk := clock.NewSystemClock(time.UTC)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	// === PostgreSQL ===
	db, err := initPGDB(ctx, log, cfg)
	if err != nil {
		return err
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	itemRepo := pgdb.NewItemRepo(db.Pool, pgdbConv.ItemConverterImpl{})
	accountRepo := pgdb.NewAccountRepo(db.Pool, pgdbConv.AccountConverterImpl{})
	historyRepo := pgdb.NewSyncHistoryRepo(db.Pool, pgdbConv.SyncHistoryConverterImpl{})
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverterImpl{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverterImpl{})

	// === Redis ===
	redisClient := clients.NewRedisClient(cfg.Redis)
	if err := redisClient.Ping(ctx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("redis", redisClient.Close)
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.ItemConverterImpl{}, cfg.Redis, log)

	// === Kafka ===
	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		log.Errorf(err, "failed to initialize kafka producer")
		return err
	}
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(topicTimeout); err != nil {
		log.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
	}

	a.outbox = kafka.NewOutboxWorker(outboxRepo, log, producer, postgres.DSN(cfg.Db))
	a.closer.Add("outbox worker", func(context.Context) error {
		a.outbox.Stop()
		return nil
	})

	// === MinIO ===
	var snapshots usecase.SnapshotInfra
	if cfg.Pipeline.ArchiveSnapshots {
		// удаление частей прерывается только после ожидания в closer
		cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
		a.closer.Add("snapshot context", func(context.Context) error {
			cleanupCancel()
			return nil
		})

		snapshotInfra, err := initSnapshots(ctx, cleanupCtx, log, cfg, clk)
		if err != nil {
			return err
		}
		a.closer.Add("snapshot cleanup", snapshotInfra.WaitForCleanup)
		snapshots = snapshotInfra
	}

	// === Внешние API ===
	a.tokens = auth.NewTokenStore(accountRepo, clk, log, auth.RefreshPolicy{
		Buffer:      cfg.Token.RefreshBuffer,
		MaxAttempts: cfg.Token.MaxAttempts,
		Backoff: jitter.Backoff{
			Base:   cfg.Token.BaseDelay,
			Max:    cfg.Token.MaxDelay,
			Factor: cfg.Token.JitterFactor,
		},
		Timeout:         cfg.Token.RefreshTimeout,
		JanitorInterval: cfg.Token.JanitorInterval,
	})
	supplierClient := supplier.NewClient(supplier.Config(*cfg.Supplier), accountRepo, a.tokens, clk, log)
	marketClient := market.NewClient(market.Config(*cfg.Market), clk, log)

	// === Use cases ===
	ledger := usecase.NewLedger(historyRepo, outboxRepo, db.TxManager(), clk, log)
	ingestUC := usecase.NewIngestUC(supplierClient, itemRepo, categoryRepo, cacheRepo, snapshots, ledger, clk, log,
		cfg.Pipeline.IngestConcurrency)
	normalizeUC := usecase.NewNormalizeUC(itemRepo, cacheRepo, usecase.NewNormalizationRules(cfg.Pipeline.MinMarginRate),
		ledger, clk, log, cfg.Pipeline.NormalizeBatch)
	publishUC := usecase.NewPublishUC(marketClient, itemRepo, accountRepo, cacheRepo, ledger, clk, log,
		cfg.Pipeline.MinSuccessRate)
	updateUC := usecase.NewMarketUpdateUC(marketClient, itemRepo, accountRepo, cacheRepo, ledger, clk, log,
		cfg.Pipeline.MinSuccessRate, cfg.Pipeline.UpdateConcurrency)
	ordersUC := usecase.NewCollectOrdersUC(supplierClient, ledger, clk, log, cfg.Pipeline.OrderConcurrency)
	historyUC := usecase.NewSyncHistoryUC(historyRepo)

	// === Delivery ===
	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.grpcSrv.RegisterServices(historyUC)
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	r := chi.NewRouter()
	v1Http.NewRouter(r, log).Init(ingestUC, normalizeUC, publishUC, updateUC, ordersUC, historyUC)
	a.httpSrv = v1Http.NewServer(r, cfg.Http, log)
	a.closer.Add("http server", a.httpSrv.Stop)

	return nil
}

// Run запускает серверы и фоновые задачи и блокируется до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	log := a.logger

	a.outbox.Start(a.bgCtx)
	go a.tokens.Run(a.bgCtx)

	errCh := make(chan error, 2)
	go func() {
		log.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server", err)
		}
	}()
	go func() {
		if err := a.httpSrv.Start(); err != nil {
			errCh <- e.Wrap("HTTP server", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		log.Errorf(appErr, "server fatal error")
	case <-shutdown:
		log.Infof("Received shutdown signal, stopping gracefully...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// фоновые задачи останавливаются раньше закрытия ресурсов
	a.bgCancel()
	if err := a.closer.Close(ctx); err != nil {
		log.Errorf(err, "shutdown finished with errors")
		if appErr == nil {
			appErr = err
		}
	}

	log.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

func initSnapshots(ctx, cleanupCtx context.Context, logger logger.Logger, cfg *config.Config, clk usecase.Clock) (*minioInfra.SnapshotInfrastructure, error) {
	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		logger.Errorf(err, "failed to initialize minio client")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := clients.EnsureBucket(ctx, minioClient, cfg.Minio.BucketName); err != nil {
		logger.Errorf(err, "failed to initialize MinIO bucket")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	repo := s3Repo.NewSnapshotRepo(minioClient, cfg.Minio)
	return minioInfra.NewSnapshotInfrastructure(repo, cfg.Minio, clk, logger, cleanupCtx), nil
}
