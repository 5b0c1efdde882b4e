// Package main - точка входа демона Campus Conduct Hub.
//
// conductd владеет журналом баллов поведения: пакетные записи и
// удаления, решения по апелляциям, читающие представления через Redis
// и периодический аудит целостности журнала.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: PostgreSQL, Redis, event bus, scheduler
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-conduct-hub/config"

	// Application layer
	"github.com/campus-hub/campus-conduct-hub/internal/application/command"
	"github.com/campus-hub/campus-conduct-hub/internal/application/eventhandler"
	"github.com/campus-hub/campus-conduct-hub/internal/application/query"

	// Domain layer
	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/operator"

	// Infrastructure layer
	"github.com/campus-hub/campus-conduct-hub/internal/infrastructure/messaging"
	"github.com/campus-hub/campus-conduct-hub/internal/infrastructure/persistence/postgres"
	"github.com/campus-hub/campus-conduct-hub/internal/infrastructure/persistence/redis"
	"github.com/campus-hub/campus-conduct-hub/internal/infrastructure/scheduler"
	"github.com/campus-hub/campus-conduct-hub/internal/infrastructure/scheduler/jobs"
	"github.com/campus-hub/campus-conduct-hub/internal/infrastructure/service"

	"github.com/campus-hub/campus-conduct-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting campus conduct hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. МИГРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("checking database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var viewCache *redis.ViewCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, read views disabled", logger.Err(err))
		} else {
			defer cache.Close()
			viewCache = redis.NewViewCache(cache)
			log.Info("redis connection established")
		}
	}

	// Инвалидация кеша - best-effort: ретраи и circuit breaker, но
	// ошибка никогда не проваливает мутацию журнала.
	var invalidator *service.ResilientInvalidator
	if viewCache != nil {
		invalidator = service.NewResilientInvalidator(viewCache, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// Аудит-лог: каждое доменное событие оставляет строку в журнале.
	auditTrail := eventhandler.NewAuditTrailHandler(log, eventhandler.DefaultAuditTrailConfig())
	if err := eventBus.SubscribeAll(auditTrail); err != nil {
		return fmt.Errorf("subscribe audit trail: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. РЕПОЗИТОРИИ И ОБРАБОТЧИКИ
	// ─────────────────────────────────────────────────────────────────────────
	txManager := postgres.NewTxManager(dbConn)
	studentRepo := postgres.NewStudentRepository(dbConn)
	recordRepo := postgres.NewRecordRepository(dbConn)
	appealRepo := postgres.NewAppealRepository(dbConn)
	operatorRepo := postgres.NewOperatorRepository(dbConn)

	if err := seedAdminOperator(ctx, operatorRepo, cfg.Bootstrap, log); err != nil {
		return fmt.Errorf("failed to seed admin operator: %w", err)
	}

	// Typed nils must not leak into the interface fields, the handlers
	// treat a nil interface as "no cache".
	var cacheInvalidator conduct.CacheInvalidator
	var readCache conduct.ViewCache
	if viewCache != nil {
		cacheInvalidator = invalidator
		readCache = viewCache
	}

	addRecords := command.NewAddRecordsHandler(txManager, cacheInvalidator, eventBus, log)
	deleteRecords := command.NewDeleteRecordsHandler(txManager, cacheInvalidator, eventBus, log)
	decideAppeal := command.NewDecideAppealHandler(txManager, cacheInvalidator, eventBus, log)
	fileAppeal := command.NewFileAppealHandler(txManager, eventBus, log)

	getScore := query.NewGetStudentScoreHandler(studentRepo, recordRepo, readCache, log)
	listRecords := query.NewListRecordsHandler(recordRepo, readCache)
	listAppeals := query.NewListAppealsHandler(appealRepo)

	app := &application{
		addRecords:    addRecords,
		deleteRecords: deleteRecords,
		decideAppeal:  decideAppeal,
		fileAppeal:    fileAppeal,
		getScore:      getScore,
		listRecords:   listRecords,
		listAppeals:   listAppeals,
	}

	// Suppress unused variable warning: the admin transport consumes
	// the application once it lands.
	_ = app

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ПЛАНИРОВЩИК И АУДИТ ЖУРНАЛА
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(log)

	if cfg.Audit.Enabled {
		auditJob := jobs.NewAuditLedgerJob(studentRepo, recordRepo, eventBus, cfg.Audit.PageSize, log)
		if err := sched.Register(auditJob, scheduler.Every(cfg.Audit.Interval)); err != nil {
			return fmt.Errorf("failed to register audit job: %w", err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		log.Info("stopping scheduler...")
		_ = sched.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("campus conduct hub is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", logger.String("signal", sig.String()))

	log.Info("starting graceful shutdown...",
		logger.Duration("timeout", cfg.App.ShutdownTimeout),
	)

	log.Info("shutdown completed successfully")
	return nil
}

// seedAdminOperator создаёт первого администратора на пустой базе.
// Сид пропускается, если учётные данные не заданы или оператор уже есть.
func seedAdminOperator(ctx context.Context, repo *postgres.OperatorRepository, cfg config.BootstrapConfig, log *logger.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := repo.GetByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, operator.ErrOperatorNotFound) {
		return err
	}

	admin, err := operator.NewOperator(operator.NewOperatorParams{
		ID:          uuid.New().String(),
		Username:    cfg.AdminUsername,
		DisplayName: cfg.AdminUsername,
		Password:    cfg.AdminPassword,
		Role:        operator.RoleAdmin,
	})
	if err != nil {
		return err
	}

	if err := repo.Create(ctx, admin); err != nil {
		if errors.Is(err, operator.ErrOperatorAlreadyExists) {
			return nil
		}
		return err
	}

	log.Info("seeded admin operator", logger.OperatorName(admin.Username))
	return nil
}

// application bundles the wired use-case handlers.
type application struct {
	addRecords    *command.AddRecordsHandler
	deleteRecords *command.DeleteRecordsHandler
	decideAppeal  *command.DecideAppealHandler
	fileAppeal    *command.FileAppealHandler
	getScore      *query.GetStudentScoreHandler
	listRecords   *query.ListRecordsHandler
	listAppeals   *query.ListAppealsHandler
}
