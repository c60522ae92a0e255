package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"auto_service_backend/internal/config"
	"auto_service_backend/internal/database"
	"auto_service_backend/internal/handlers"
	"auto_service_backend/internal/kvstore"
	"auto_service_backend/internal/liftboard"
	"auto_service_backend/internal/maintenance"
	"auto_service_backend/internal/middleware"
	"auto_service_backend/internal/printing"
	"auto_service_backend/internal/repositories"
	"auto_service_backend/internal/router"
	"auto_service_backend/internal/services"
	"auto_service_backend/internal/storage"
	"auto_service_backend/internal/timeutil"
	"auto_service_backend/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		utils.LogError(err, "Server stopped with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", true)
		return err
	}
	utils.InitLogger(cfg.Log.Level, cfg.Log.Console)

	if err := timeutil.SetLocation(cfg.Shop.Timezone); err != nil {
		utils.LogWarn("Unknown shop timezone, using system local time", map[string]interface{}{"timezone": cfg.Shop.Timezone})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.DSN(), cfg.Database.ApplySchema)
	if err != nil {
		return err
	}
	defer db.Close()

	kv, err := kvstore.Open(ctx, kvstore.Options{
		Backend:       cfg.Lifts.Backend,
		SQLitePath:    cfg.Lifts.SQLitePath,
		RedisAddr:     cfg.Lifts.Redis.Addr,
		RedisPassword: cfg.Lifts.Redis.Password,
		RedisDB:       cfg.Lifts.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer kv.Close()
	utils.LogInfo("Lift board store opened", map[string]interface{}{"backend": cfg.Lifts.Backend})

	// Repositories
	orderRepo := repositories.NewOrderRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	vehicleRepo := repositories.NewVehicleRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	dailyLogRepo := repositories.NewDailyLogRepository(db)
	maintenanceRepo := repositories.NewMaintenanceRepository(db)

	// Services
	clock := liftboard.SystemClock()
	orderService := services.NewOrderService(orderRepo, clientRepo, vehicleRepo, catalogRepo)
	liftService := services.NewLiftService(liftboard.NewKVStore(kv), orderService, clock)
	clientService := services.NewClientService(clientRepo, vehicleRepo, orderRepo)
	catalogService := services.NewCatalogService(catalogRepo)
	dailyLogService := services.NewDailyLogService(dailyLogRepo)

	renderer, err := printing.NewRenderer(printing.Company{
		Name:    cfg.Shop.Name,
		Slogan:  cfg.Shop.Slogan,
		Address: cfg.Shop.Address,
		Phone:   cfg.Shop.Phone,
	})
	if err != nil {
		return err
	}

	runner := maintenance.NewRunner(orderRepo, dailyLogRepo, maintenanceRepo)
	if s3cfg := cfg.Storage.S3; s3cfg.Enabled {
		client, err := storage.NewS3Client(ctx, storage.S3Options{
			Bucket:    s3cfg.Bucket,
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
		})
		if err != nil {
			return err
		}
		runner.WithExporter(storage.NewReportArchive(client, renderer, s3cfg.Bucket, s3cfg.Prefix))
		utils.LogInfo("Daily report export enabled", map[string]interface{}{"bucket": s3cfg.Bucket})
	}

	if cfg.Maintenance.Enabled {
		scheduler := maintenance.NewScheduler(runner, cfg.Maintenance.Interval, cfg.Maintenance.RunOnStartup)
		scheduler.Start()
		defer scheduler.Stop()
	}

	gin.SetMode(cfg.Server.GinMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())
	engine.Use(middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CorsAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", utils.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{utils.RequestIDHeader, "Content-Disposition"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, router.Handlers{
		Orders:      handlers.NewOrderHandler(orderService, renderer),
		Lifts:       handlers.NewLiftHandler(liftService, liftboard.NewTicker(clock), cfg.Server.CorsAllowedOrigins),
		Clients:     handlers.NewClientHandler(clientService),
		Catalog:     handlers.NewCatalogHandler(catalogService),
		Reports:     handlers.NewReportHandler(orderService, dailyLogService, renderer),
		Maintenance: handlers.NewMaintenanceHandler(runner),
	}, cfg.Auth.JWTSecret)

	if cfg.Auth.JWTSecret == "" {
		utils.LogWarn("AUTH_JWT_SECRET is not set; every /api/v1 request will be rejected")
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.LogInfo("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
