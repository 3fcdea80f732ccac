package app

import (
	"context"
	"examhub_backend/internal/config"
	"examhub_backend/internal/controller"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/repository/memory"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/database"
	"examhub_backend/pkg/logger"
	"examhub_backend/pkg/monitoring"
	"examhub_backend/pkg/security"
	"examhub_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancelTasks     context.CancelFunc
	configCallbacks []func(*config.Config)
}

// stores 各存储接口的实现，gorm 仓储或内存存储二选一
type stores struct {
	exams       service.ExamStore
	questions   service.QuestionStore
	assignments service.AssignmentStore
	enrollments service.EnrollmentGateway
	users       service.UserDirectory
}

type services struct {
	sync       *service.AssignmentSynchronizer
	exam       *service.ExamService
	enrollment *service.EnrollmentService
	assignment *service.AssignmentService
	schedule   *service.ScheduleService
}

type controllers struct {
	exam       *controller.ExamController
	enrollment *controller.EnrollmentController
	candidate  *controller.CandidateController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新时调用，仅处理可在运行中调整的项
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initStores(db *gorm.DB) *stores {
	if db == nil {
		m := memory.NewStore()
		return &stores{exams: m, questions: m, assignments: m, enrollments: m, users: m}
	}
	return &stores{
		exams:       repository.NewExamRepository(db),
		questions:   repository.NewQuestionRepository(db),
		assignments: repository.NewAssignmentRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		users:       repository.NewUserRepository(db),
	}
}

func (a *App) initServices(st *stores, cfg *config.Config, rdb *redis.Client) *services {
	var (
		locker   service.SyncLocker
		notifier service.AssignmentNotifier
	)
	if rdb != nil {
		locker = service.NewRedisSyncLocker(rdb, cfg.Sync.LockTTL(), cfg.Sync.LockWait())
		notifier = service.NewRedisNotifier(rdb, cfg.Sync.NotifyChannel)
	} else {
		locker = service.NewLocalSyncLocker(cfg.Sync.LockWait())
		notifier = service.NopNotifier{}
	}

	s := &services{}
	s.sync = service.NewAssignmentSynchronizer(st.assignments, st.enrollments, locker, notifier)
	s.exam = service.NewExamService(st.exams, st.questions, s.sync)
	s.enrollment = service.NewEnrollmentService(st.enrollments, st.users, st.exams, s.sync)
	s.assignment = service.NewAssignmentService(st.exams, st.assignments, s.sync)
	s.schedule = service.NewScheduleService(st.exams, s.sync)
	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		exam:       controller.NewExamController(s.exam, s.assignment),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		candidate:  controller.NewCandidateController(s.assignment),
		health:     controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	// 探活与指标采集不计入限流
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit, "/api/health", "/metrics"))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 定时把开始时间已到的已发布试卷的分配置为 available
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	if !cfg.Scheduler.Enabled {
		logger.Log.Info("exam scheduler disabled")
		return
	}
	go s.schedule.Run(a.ctx, cfg.Scheduler.Interval())

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		if newCfg.Scheduler.IntervalSeconds > 0 {
			s.schedule.SetInterval(newCfg.Scheduler.Interval())
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully", zap.String("driver", cfg.Database.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Config: cfg, ctx: ctx, cancelTasks: cancel}

	if cfg.Database.Driver != util.DriverMemory {
		db, err := database.InitDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
			log.Fatalf("Failed to initialize database: %v", err)
		}
		app.DB = db

		// release 模式下默认不迁移，需显式 -migrate
		if cfg.ForceMigrate || cfg.Server.Mode != "release" {
			if err := database.Migrate(db); err != nil {
				logger.Log.Fatal("Failed to migrate database", zap.Error(err))
			}
		}
		if cfg.MigrateOnly {
			return app
		}
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
			log.Fatalf("Failed to initialize redis: %v", err)
		}
		app.Redis = rdb
	}

	st := app.initStores(app.DB)
	services := app.initServices(st, cfg, app.Redis)
	app.services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg)
		logger.Log.Info("log level updated", zap.String("level", logger.Level().String()))
	})
	app.startBackgroundTasks(services, cfg)

	return app
}

// Close 停止后台任务并释放外部连接
func (a *App) Close(ctx context.Context) {
	if a.cancelTasks != nil {
		a.cancelTasks()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	a.Close(ctx)

	logger.Log.Info("Server exiting")
}
