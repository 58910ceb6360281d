package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"kindergarten_backend/internals/configs"
	database "kindergarten_backend/internals/databases"
	billService "kindergarten_backend/internals/features/finance/bills/service"
	"kindergarten_backend/internals/helpers/mailer"
	"kindergarten_backend/internals/helpers/push"
	"kindergarten_backend/internals/helpers/storage"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/metrics"
	middlewares "kindergarten_backend/internals/middlewares"
	"kindergarten_backend/internals/realtime"
	routes "kindergarten_backend/internals/route"
	"kindergarten_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       configs.GetEnv("LOG_LEVEL", "info"),
		Environment: configs.AppEnv,
		ServiceName: configs.AppName,
	}); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.GetLogger()

	if err := configs.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if !configs.IsProduction() && configs.GetEnv("JWT_SECRET") == "" {
		log.Warn("JWT_SECRET not set, using an ephemeral secret")
	}

	logger.InitRollbar(configs.GetEnv("ROLLBAR_TOKEN"), configs.AppEnv, configs.GetEnv("HOSTNAME"), configs.GetEnv("APP_VERSION", "dev"))
	defer logger.CloseRollbar()
	metrics.Register()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            middlewares.ErrorHandler,
		BodyLimit:               int(configs.MaxUploadSize) + 1024*1024,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ReadTimeout:             15 * time.Second,
		WriteTimeout:            30 * time.Second,
		IdleTimeout:             90 * time.Second,
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	if err := database.ConnectDB(); err != nil {
		log.Fatal("database", zap.Error(err))
	}
	database.TunePool()
	database.WarmUpQueries()
	if configs.GetBool("AUTO_MIGRATE", false) {
		if err := database.AutoMigrate(database.DB); err != nil {
			log.Fatal("auto migrate", zap.Error(err))
		}
	}
	if configs.GetBool("SEED_ON_START", false) {
		if err := seeds.Run(context.Background(), database.DB); err != nil {
			log.Error("seed failed", zap.Error(err))
		}
	}
	rdb := database.ConnectRedis()

	ctx := context.Background()
	hub := realtime.NewHub()
	jobs := cron.New()

	routes.SetupRoutes(app, routes.Deps{
		DB:      database.DB,
		Redis:   rdb,
		Hub:     hub,
		Blob:    storage.FromEnv(),
		Push:    push.FromEnv(ctx),
		Mailer:  mailer.FromEnv(),
		Gateway: midtransGateway(),
		Cron:    jobs,
	})
	jobs.Start()

	// Start server non-blocking
	go func() {
		log.Info("listening", zap.String("port", configs.Port))
		if err := app.Listen("0.0.0.0:" + configs.Port); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown: http → ws hub → cron → redis → pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	hub.Close()
	<-jobs.Stop().Done()
	if rdb != nil {
		_ = rdb.Close()
	}
	database.Close()
}

// midtransGateway: nil kalau MIDTRANS_SERVER_KEY kosong (endpoint pay → 503).
func midtransGateway() billService.Gateway {
	g := billService.NewSnapGateway(configs.GetEnv("MIDTRANS_SERVER_KEY"), configs.GetBool("MIDTRANS_PRODUCTION", false))
	if g == nil {
		logger.GetLogger().Warn("midtrans not configured, online payment disabled")
		return nil
	}
	return g
}
