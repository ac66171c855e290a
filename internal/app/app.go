package app

import (
	"algolearn_backend/internal/config"
	"algolearn_backend/internal/controller"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/service"
	"algolearn_backend/pkg/configwatcher"
	"algolearn_backend/pkg/database"
	"algolearn_backend/pkg/logger"
	"algolearn_backend/pkg/monitoring"
	"algolearn_backend/pkg/security"
	"algolearn_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	competency *repository.CompetencyRepository
	challenge  *repository.ChallengeRepository
	attempt    *repository.AttemptRepository
	profile    *repository.LearnerProfileRepository
	heatmap    *repository.HeatmapRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	storage    *service.StorageService
	cache      *service.CacheService
	evaluator  *service.EvaluatorClient
	profile    *service.ProfileService
	heatmap    *service.HeatmapService
	challenge  *service.ChallengeService
	competency *service.CompetencyService
	submission *service.SubmissionService
	analytics  *service.AnalyticsService
}

type controllers struct {
	auth    *controller.AuthController
	student *controller.StudentController
	teacher *controller.TeacherController
	admin   *controller.AdminController
	user    *controller.UserController
	heatmap *controller.HeatmapController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		competency: repository.NewCompetencyRepository(db),
		challenge:  repository.NewChallengeRepository(db),
		attempt:    repository.NewAttemptRepository(db),
		profile:    repository.NewLearnerProfileRepository(db),
		heatmap:    repository.NewHeatmapRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	s.cache = service.NewCacheService(rdb)
	s.evaluator = service.NewEvaluatorClient(cfg.Evaluator)

	s.auth = service.NewAuthService(repos.user, repos.profile, cfg)
	s.user = service.NewUserService(repos.user, repos.profile)
	s.competency = service.NewCompetencyService(repos.competency)
	s.profile = service.NewProfileService(repos.profile, repos.attempt)
	s.heatmap = service.NewHeatmapService(repos.heatmap, repos.attempt)
	s.challenge = service.NewChallengeService(repos.challenge, repos.competency, repos.attempt, s.cache)
	s.submission = service.NewSubmissionService(
		repos.attempt,
		repos.challenge,
		s.profile,
		s.heatmap,
		s.evaluator,
		db,
	)
	s.analytics = service.NewAnalyticsService(
		repos.user,
		repos.challenge,
		repos.attempt,
		repos.profile,
		repos.competency,
		s.evaluator,
		s.cache,
	)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		student: controller.NewStudentController(s.challenge, s.submission, s.analytics, s.profile),
		teacher: controller.NewTeacherController(s.analytics, s.challenge, s.profile),
		admin:   controller.NewAdminController(s.user, s.competency),
		user:    controller.NewUserController(s.user, s.storage),
		heatmap: controller.NewHeatmapController(s.heatmap),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// debug 模式自动迁移；release 模式仅在 -migrate / -migrate-only 时迁移
	runMigration := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, runMigration)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 迁移在 InitDB 内完成，仅迁移模式到此为止
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	// Redis 不可用时缓存自动降级，不阻塞启动
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("algolearn-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 配置热更新
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Config = newCfg
	})
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("Config reloaded")
		for _, callback := range app.configCallbacks {
			callback(newCfg)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
