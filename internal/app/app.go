package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/price-backend/internal/cfg"
	v1Http "github.com/DRSN-tech/price-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/price-backend/internal/infrastructure/kafka"
	"github.com/DRSN-tech/price-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/price-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/price-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/price-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/price-backend/internal/usecase"
	"github.com/DRSN-tech/price-backend/pkg/clients"
	"github.com/DRSN-tech/price-backend/pkg/closer"
	"github.com/DRSN-tech/price-backend/pkg/e"
	"github.com/DRSN-tech/price-backend/pkg/logger"
	"github.com/DRSN-tech/price-backend/pkg/postgres"
	"github.com/DRSN-tech/price-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout        = 10 * time.Second
	topicCreateTimeout = 10 * time.Second
)

// App связывает конфигурацию, хранилища, фоновые процессы и HTTP-сервер.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv      *v1Http.Server
	outboxWorker *kafka.OutboxWorker
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(cfg.Http.ShutdownTimeout),
	}

	if err := a.init(); err != nil {
		// освобождаем то, что успели поднять
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(ctx); closeErr != nil {
			log.Warnf("cleanup after failed init: %v", closeErr)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err := initPGDB(ctx, a.logger, a.cfg)
	if err != nil {
		return err
	}
	a.closer.AddFunc("postgres", db.Close)

	txManager, err := tr.NewManager(db.Pool)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize transaction manager")
		return e.Wrap(whereami.WhereAmI(), err)
	}

	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverter{})
	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
	priceRepo := pgdb.NewProductPriceRepo(db.Pool, pgdbConv.ProductPriceConverter{})
	historyRepo := pgdb.NewPriceHistoryRepo(db.Pool, pgdbConv.PriceHistoryConverter{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})

	redisClient := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	if err := redisClient.Ping(ctx); err != nil {
		a.logger.Errorf(err, "failed to connect to redis")
		return e.Wrap(whereami.WhereAmI(), err)
	}

	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.AveragePriceConverter{}, a.cfg.Redis, a.logger)
	limiter := redis.NewRateLimiter(redisClient, a.cfg.RateLimit)

	producer, err := kafka.NewProducer(a.logger, a.cfg.Kafka)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize kafka producer")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })

	if err := producer.EnsureTopic(topicCreateTimeout); err != nil {
		// топик может создать и сам брокер; публикация переживёт ретраями
		a.logger.Warnf("failed to ensure kafka topic %q: %v", a.cfg.Kafka.Topic, err)
	}

	a.outboxWorker = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, a.cfg.Outbox, db.Dsn)

	recorder := usecase.NewHistoryRecorder(historyRepo, outboxRepo, kafka.NewHistoryEventEncoder(), a.logger)
	priceUC := usecase.NewPriceUC(txManager, productRepo, categoryRepo, priceRepo, recorder, cacheRepo, a.logger)
	catalogUC := usecase.NewCatalogUC(txManager, categoryRepo, productRepo, priceRepo, recorder, cacheRepo, a.logger)
	averageUC := usecase.NewAveragePriceUC(categoryRepo, priceRepo, cacheRepo, a.logger)

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger).Init(v1Http.UseCases{
		Catalog: catalogUC,
		Price:   priceUC,
		Average: averageUC,
		History: recorder,
	}, limiter, a.cfg.RateLimit, db)

	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)

	return nil
}

// Run запускает сервер и фоновые процессы и блокируется до сигнала остановки или фатальной ошибки.
func (a *App) Run() error {
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	a.outboxWorker.Start(workerCtx)
	// регистрируется последним, значит останавливается первым после HTTP
	a.closer.AddFunc("outbox worker", func() {
		workerCancel()
		a.outboxWorker.Stop()
	})
	a.closer.Add("http server", a.httpSrv.Stop)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case sig := <-shutdown:
		a.logger.Infof("received %s, stopping gracefully...", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Http.ShutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown error")
		if appErr == nil {
			appErr = err
		}
	}

	a.logger.Infof("application shutdown complete")
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
