// Package app wires configuration into repositories, use cases and
// integrations. Both the gRPC service and the CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/config"
	"github.com/fekuna/omnipos-fulfillment-service/internal/allocation"
	"github.com/fekuna/omnipos-fulfillment-service/internal/broker"
	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/fekuna/omnipos-fulfillment-service/internal/event"
	"github.com/fekuna/omnipos-fulfillment-service/internal/i18n"
	"github.com/fekuna/omnipos-fulfillment-service/internal/lock"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order"
	orderH "github.com/fekuna/omnipos-fulfillment-service/internal/order/handler"
	orderRepoPkg "github.com/fekuna/omnipos-fulfillment-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-fulfillment-service/internal/order/usecase"
	"github.com/fekuna/omnipos-fulfillment-service/internal/reconcile"
	syncH "github.com/fekuna/omnipos-fulfillment-service/internal/reconcile/handler"
	syncRepoPkg "github.com/fekuna/omnipos-fulfillment-service/internal/reconcile/repository"
	syncUCPkg "github.com/fekuna/omnipos-fulfillment-service/internal/reconcile/usecase"
	"github.com/fekuna/omnipos-fulfillment-service/internal/rpc"
	"github.com/fekuna/omnipos-fulfillment-service/internal/source"
	"github.com/fekuna/omnipos-fulfillment-service/internal/source/file"
	"github.com/fekuna/omnipos-fulfillment-service/internal/source/shopify"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task"
	taskH "github.com/fekuna/omnipos-fulfillment-service/internal/task/handler"
	taskListenerPkg "github.com/fekuna/omnipos-fulfillment-service/internal/task/listener"
	taskRepoPkg "github.com/fekuna/omnipos-fulfillment-service/internal/task/repository"
	taskUCPkg "github.com/fekuna/omnipos-fulfillment-service/internal/task/usecase"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type App struct {
	Config     *config.Config
	Logger     logger.ZapLogger
	DB         *sqlx.DB
	Translator *i18n.Translator

	Tasks  task.UseCase
	Orders order.UseCase
	Sync   reconcile.UseCase

	closers []func() error
}

// NewLogger builds the logger the way the service and CLI share it:
// console output in development, JSON otherwise.
func NewLogger(cfg *config.Config) logger.ZapLogger {
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
	}
	return logger.NewZapLogger(logConfig)
}

// New opens the store and wires every use case. Optional integrations are
// skipped when their configuration is empty.
func New(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	// 1. Database
	db, err := database.Open(&database.Config{
		Driver:          cfg.Database.Driver,
		SQLitePath:      cfg.Database.SQLitePath,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)
	log.Info("Connected to database", zap.String("driver", db.DriverName()))

	// 2. i18n
	tr, err := i18n.New()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Translator = tr

	// 3. Lock
	locker, err := a.newLocker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 4. Events out
	publisher := a.newPublisher()

	// 5. Order source
	src, err := NewOrderSource(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 6. Repositories
	taskRepo := taskRepoPkg.NewSQLRepository(db)
	orderRepo := orderRepoPkg.NewSQLRepository(db)
	syncRepo := syncRepoPkg.NewSQLRepository(db)

	// 7. Use cases
	tx := database.NewTransactor(db)
	taskStore := taskUCPkg.NewTaskStore(taskRepo)
	engine := allocation.NewEngine(orderRepo, log)

	a.Tasks = taskUCPkg.NewTaskUseCase(taskStore, taskRepo, engine, tx, locker, publisher, log)
	a.Orders = orderUCPkg.NewOrderUseCase(orderRepo, taskStore, tx, locker, log)
	a.Sync = syncUCPkg.NewSyncUseCase(src, orderRepo, taskStore, syncRepo, tx, locker, log)

	return a, nil
}

// NewOrderSource returns the Shopify client when a shop is configured and the
// snapshot file reader otherwise.
func NewOrderSource(cfg *config.Config) (source.OrderSource, error) {
	if cfg.Shopify.ShopDomain == "" {
		return file.New(cfg.Shopify.SnapshotFile), nil
	}
	client, err := shopify.New(&shopify.Config{
		ShopDomain:  cfg.Shopify.ShopDomain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     time.Duration(cfg.Shopify.Timeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("shopify source: %w", err)
	}
	return client, nil
}

func (a *App) newLocker(ctx context.Context) (lock.Locker, error) {
	if a.Config.Redis.Addr == "" {
		return lock.NewLocalLocker(), nil
	}

	redisCfg := &lock.RedisConfig{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
		TTL:      time.Duration(a.Config.Redis.LockTTL) * time.Second,
		Retries:  a.Config.Redis.LockRetries,
	}
	client, err := lock.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, err
	}
	locker := lock.NewRedisLocker(client, redisCfg, a.Logger)
	a.closers = append(a.closers, locker.Close)
	a.Logger.Info("Connected to Redis", zap.String("addr", redisCfg.Addr))
	return locker, nil
}

func (a *App) newPublisher() event.Publisher {
	if len(a.Config.Kafka.Brokers) == 0 {
		return event.NopPublisher{}
	}

	producer := broker.NewProducer(&broker.Config{
		Brokers: a.Config.Kafka.Brokers,
		Topic:   a.Config.Kafka.FulfillmentTopic,
	})
	a.closers = append(a.closers, producer.Close)
	a.Logger.Info("Kafka producer ready",
		zap.Strings("brokers", a.Config.Kafka.Brokers),
		zap.String("topic", a.Config.Kafka.FulfillmentTopic),
	)
	return event.NewKafkaPublisher(producer)
}

// NewProductionListener returns nil when no brokers are configured.
func (a *App) NewProductionListener() *taskListenerPkg.ProductionListener {
	if len(a.Config.Kafka.Brokers) == 0 {
		return nil
	}

	consumer := broker.NewConsumer(&broker.Config{
		Brokers: a.Config.Kafka.Brokers,
		Topic:   a.Config.Kafka.ProductionTopic,
		GroupID: a.Config.Kafka.GroupID,
	})
	a.closers = append(a.closers, consumer.Close)
	a.Logger.Info("Connected to Kafka consumer",
		zap.Strings("brokers", a.Config.Kafka.Brokers),
		zap.String("topic", a.Config.Kafka.ProductionTopic),
	)
	return taskListenerPkg.NewProductionListener(consumer, a.Tasks, a.Logger)
}

// RegisterServices adds the task, order and sync services to s.
func (a *App) RegisterServices(s grpc.ServiceRegistrar) {
	errs := rpc.NewErrorMapper(a.Translator, a.Logger)
	taskH.NewTaskHandler(a.Tasks, errs, a.Logger).Register(s)
	orderH.NewOrderHandler(a.Orders, errs, a.Logger).Register(s)
	syncH.NewSyncHandler(a.Sync, errs, a.Logger).Register(s)
}

// Close releases integrations in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
