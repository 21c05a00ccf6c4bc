package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetdesk/internal/database"
	"assetdesk/internal/router"
	"assetdesk/internal/services"
	"assetdesk/pkg/config"
	"assetdesk/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger := logger.GetLogger()
	appLogger.Info("Starting asset desk...")

	// postgres 驱动需要先连接数据库并迁移
	if cfg.Store.Driver == database.DriverPostgres {
		if err := database.Initialize(cfg); err != nil {
			appLogger.Fatalf("Failed to initialize database: %v", err)
		}
		if err := database.Migrate(); err != nil {
			appLogger.Fatalf("Failed to migrate database: %v", err)
		}
	}
	defer func() {
		// 关闭数据库连接
		if err := database.Close(); err != nil {
			appLogger.Error("Failed to close database:", err)
		}
		// 关闭Redis连接
		if err := database.CloseRedis(); err != nil {
			appLogger.Error("Failed to close Redis:", err)
		}
	}()

	st, err := database.OpenStore(cfg)
	if err != nil {
		appLogger.Fatalf("Failed to open record store: %v", err)
	}
	defer st.Close()

	// 执行种子数据初始化
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = seedData(ctx, cfg, st)
	cancel()
	if err != nil {
		appLogger.Fatalf("Failed to initialize seed data: %v", err)
	}

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 启动许可证到期巡检（在路由初始化前）
	licenseService := services.NewLicenseService(st, cfg.License.ExpiringWindowDays)
	expiryMonitor := services.NewLicenseExpiryMonitor(cfg.License.ExpiryCron, services.NewOrganizationService(st), licenseService)
	if err := expiryMonitor.Start(); err != nil {
		appLogger.Errorf("Failed to start license expiry monitor: %v", err)
		// 不影响主服务启动
	}
	defer expiryMonitor.Stop()

	// 启动时先巡检一次，接口立即有数据
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := expiryMonitor.RunOnce(ctx); err != nil {
			appLogger.Errorf("Initial license expiry scan failed: %v", err)
		}
	}()

	// 设置路由
	r := router.SetupRouter(cfg, st, expiryMonitor)

	// 启动服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// 启动服务
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	appLogger.Infof("Server started on port %s", cfg.Server.Port)

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown:", err)
	}
	appLogger.Info("Server exited")
}
