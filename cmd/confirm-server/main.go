package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"wallet-confirm/internal/dialog"
	"wallet-confirm/internal/enrich"
	"wallet-confirm/internal/handler"
	"wallet-confirm/internal/model"
	"wallet-confirm/internal/registry"
	"wallet-confirm/internal/server"
	"wallet-confirm/internal/service"
	"wallet-confirm/internal/service/confirm"
	"wallet-confirm/internal/service/dispatch"
	"wallet-confirm/internal/service/mq"
	"wallet-confirm/internal/state"
	"wallet-confirm/internal/worker"
	"wallet-confirm/internal/worker/tasks"
	"wallet-confirm/pkg/cache"
	"wallet-confirm/pkg/config"
	"wallet-confirm/pkg/database"
	"wallet-confirm/pkg/logger"
	"wallet-confirm/pkg/utils/lock"
	"wallet-confirm/pkg/validator"
)

func main() {
	// 0. 初始化 Config
	config.Init()
	cfg := config.Global

	// 1. 初始化 Logger
	logger.Init(cfg.App.Env)
	defer logger.Sync()
	validator.Init()

	// 2. 连接 Redis (未配置地址时使用进程内的缓存和锁)
	var (
		rdb    *redis.Client
		store  cache.Cache = cache.NewMemoryCache(10*time.Minute, 10*time.Minute)
		locker lock.DistributedLock = lock.NewLocalLock()
	)
	// 注册表跨实例共享，只读写 Redis，不经过本地 L1
	stateCache := store
	if cfg.Redis.Addr != "" {
		var err error
		rdb, err = database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		remote := cache.NewRedisCache(rdb)
		store = cache.NewMultiLevelCache(store, remote)
		stateCache = remote
		locker = lock.NewRedisLock(rdb)
	}

	// 3. 连接数据库 (可选，用于生命周期记账)
	var db *gorm.DB
	var records tasks.RecordStore = tasks.LogRecordStore{}
	if cfg.DB.Enabled {
		var err error
		db, err = database.ConnectPostgres(database.PostgresDSN(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port))
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		if cfg.App.Env == "development" {
			logger.Info("开发环境: 自动迁移 Schema (GORM AutoMigrate)...")
			if err := db.AutoMigrate(model.AllModels()...); err != nil {
				logger.Fatal("数据库自动迁移失败", zap.Error(err))
			}
		}
		records = tasks.NewGormRecordStore(db, cfg.Kafka.Topic)
	}

	// 4. 生命周期副作用调度
	lifecycle := tasks.NewLifecycleHandler(records)
	var scheduler worker.Scheduler
	var stopWorker func()
	if cfg.Worker.Mode == "asynq" && cfg.Redis.Addr != "" {
		logger.Info("使用 asynq 调度生命周期任务...")
		client := worker.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		srv := worker.NewServer(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Worker.Concurrency, lifecycle)
		srv.Start()
		scheduler = client
		stopWorker = func() {
			srv.Stop()
			_ = client.Close()
		}
	} else {
		logger.Info("使用进程内调度器执行生命周期任务...")
		local := worker.NewLocalScheduler(lifecycle)
		scheduler = local
		stopWorker = local.Stop
	}

	// 5. 消息中继 (outbox -> MQ)
	relayCtx, stopRelay := context.WithCancel(context.Background())
	var producer mq.Producer = mq.LogProducer{}
	if db != nil {
		switch {
		case cfg.Redis.MQType == "kafka":
			logger.Info("使用 Kafka 作为消息队列...")
			producer = mq.NewKafkaProducer(cfg.Kafka.Brokers)
		case rdb != nil:
			logger.Info("使用 Redis Streams 作为消息队列...")
			producer = mq.NewRedisProducer(rdb, 10000)
		}
		go service.NewRelayService(db, producer).Start(relayCtx)
	}

	// 6. 确认流程
	surface := dialog.NewMemorySurface(dialog.NewNotificationHub(), cfg.Confirm.TombstoneTTL)
	reg := registry.New(state.NewCacheStore(stateCache, locker, cfg.Confirm.StateKey))
	preferences := enrich.NewCachePreferences(store)
	fees := enrich.NewRPCFeeEstimator(cfg.RpcURL)
	scanner := enrich.NewHTTPSecurityScanner(cfg.Scan.BaseUrl, cfg.Scan.Timeout, cfg.Scan.MaxRetries)

	orchestrator := confirm.NewOrchestrator(confirm.Deps{
		Surface:     surface,
		Registry:    reg,
		Preferences: preferences,
		Decoder:     enrich.NewRLPDecoder(),
		Prices:      enrich.NewHTTPPriceService(cfg.Price.BaseUrl, cfg.Price.Timeout, cfg.Price.MaxRetries),
		Fees:        fees,
		Scanner:     scanner,
	}, confirm.Options{
		RegistryName:  cfg.Confirm.RegistryName,
		EnrichTimeout: cfg.Confirm.EnrichTimeout,
	})
	dispatcher := dispatch.NewDispatcher(orchestrator, scheduler, cfg.Confirm.LifecycleDelay)

	// 7. 定时刷新常驻确认框
	var cronService *service.CronService
	if cfg.Refresh.Enabled {
		refresher := confirm.NewRefresher(surface, reg, scanner, dialog.ViewTransaction)
		cronService = service.NewCronService(locker, reg, refresher, cfg.Refresh.Schedule, cfg.Refresh.LockTTL)
		if err := cronService.Start(); err != nil {
			logger.Fatal("Cron Service 启动失败", zap.Error(err))
		}
	}

	// 8. HTTP Router
	r := server.NewHTTPRouter(server.Handlers{
		Requests:    handler.NewRequestHandler(dispatcher),
		Dialogs:     handler.NewDialogHandler(surface),
		Preferences: handler.NewPreferencesHandler(preferences),
	})

	// 9. 启动应用
	app := server.New(server.Config{HttpPort: cfg.App.HttpPort}, r)
	app.OnShutdown(func(ctx context.Context) {
		if cronService != nil {
			cronService.Stop()
		}
		// 等待后台富化跑完，再停止调度器
		orchestrator.Wait()
		stopWorker()
		stopRelay()
		_ = producer.Close()
		fees.Close()
	})

	// 运行 (阻塞)
	app.Run()

	// 10. 退出后资源清理
	if db != nil {
		logger.Info("正在关闭数据库连接...")
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	logger.Info("系统已退出")
}
