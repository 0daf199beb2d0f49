package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"github.com/bitfantasy/carton-pricing/internal/carton/handler"
	"github.com/bitfantasy/carton-pricing/internal/carton/repository"
	"github.com/bitfantasy/carton-pricing/internal/carton/service"
	"github.com/bitfantasy/carton-pricing/internal/config"
	"github.com/bitfantasy/carton-pricing/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting carton-pricing service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.CustomerProduct{},
		&entity.Die{},
		&entity.Cliche{},
		&entity.PriceInquiry{},
		&entity.SheetSuggestion{},
		&entity.SubQuote{},
		&entity.SalesOrder{},
		&entity.SalesOrderItem{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	api := r.Group("/api/v1/carton")
	api.Use(middleware.JWTAuth(cfg.JWT.Secret))

	// 客户产品与印版
	api.POST("/products", h.Product.Create)
	api.GET("/products", h.Product.List)
	api.GET("/products/:id", h.Product.Get)
	api.PUT("/products/:id", h.Product.Update)
	api.POST("/products/:id/cliches", h.Product.AddCliche)
	api.GET("/products/:id/cliches", h.Product.ListCliches)
	api.POST("/cliches/:id/deactivate", h.Product.DeactivateCliche)

	// 刀模
	api.POST("/dies", h.Die.Create)
	api.GET("/dies", h.Die.List)
	api.GET("/dies/:id", h.Die.Get)
	api.PUT("/dies/:id", h.Die.Update)
	api.POST("/dies/:id/design-files", h.Die.UploadDesignFile)
	api.GET("/dies/:id/design-files/:index/url", h.Die.DesignFileURL)

	// 报价单
	api.POST("/inquiries", h.Inquiry.Create)
	api.GET("/inquiries", h.Inquiry.List)
	api.GET("/inquiries/pending", h.Inquiry.ListPending)
	api.GET("/inquiries/pending/count", h.Inquiry.PendingCount)
	api.GET("/inquiries/defaults", h.Inquiry.Defaults)
	api.GET("/inquiries/:id", h.Inquiry.Get)
	api.PUT("/inquiries/:id", h.Inquiry.Update)
	api.POST("/inquiries/:id/compute", h.Inquiry.Compute)
	api.POST("/inquiries/:id/send", h.Inquiry.Send)
	api.POST("/inquiries/:id/accept", h.Inquiry.Accept)
	api.POST("/inquiries/:id/reject", h.Inquiry.Reject)
	api.POST("/inquiries/rejection-attachments", h.Inquiry.UploadRejectionAttachment)
	api.GET("/inquiries/:id/export", h.Inquiry.Export)
	api.GET("/inquiries/:id/sub-quotes", h.SubQuote.ListByInquiry)

	// 分项询价
	api.POST("/sub-quotes/:id/send", h.SubQuote.MarkSent)
	api.POST("/sub-quotes/:id/cost", h.SubQuote.RecordCost)
	api.POST("/sub-quotes/:id/approve", h.SubQuote.Approve)
}
