package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pitapat/internal/adapter/deploy"
	"pitapat/internal/adapter/dns"
	"pitapat/internal/adapter/notification"
	"pitapat/internal/adapter/workflow"
	"pitapat/internal/api/middleware"
	"pitapat/internal/api/router"
	"pitapat/internal/core/lifecycle"
	"pitapat/internal/pkg/config"
	"pitapat/internal/pkg/crypto"
	"pitapat/internal/pkg/database"
	"pitapat/internal/pkg/git/github"
	"pitapat/internal/pkg/jwt"
	"pitapat/internal/pkg/logger"
	"pitapat/internal/repository"
	"pitapat/internal/scheduler"
	"pitapat/internal/service"

	_ "pitapat/docs" // Swagger docs
)

// @title pitapat API
// @version 1.0
// @description GitHub 仓库 → 构建 → Helm 发布的项目生命周期服务

// @BasePath /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and GitHub access token.

var (
	configFile = flag.String("config", "", "配置文件路径 (例如: -config=configs/config.yaml)")
	version    = flag.Bool("version", false, "显示版本信息")
)

const (
	appVersion = "1.0.0"
	appName    = "pitapat"
)

func main() {
	// 解析命令行参数
	flag.Parse()

	// 显示版本信息
	if *version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		os.Exit(0)
	}

	// init config logger
	var cfg *config.Config
	{
		// 优先级: 命令行参数 > 环境变量 > 默认路径
		configPath := getConfigPath()

		c, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("加载配置失败: %v\n", err)
			fmt.Println("\n使用方式:")
			fmt.Println("  1. 命令行参数指定: ./pitapat -config=configs/config.yaml")
			fmt.Println("  2. 环境变量指定: export CONFIG_FILE=configs/config.yaml")
			os.Exit(1)
		}
		cfg = c

		if err := logger.Init(&cfg.Log); err != nil {
			fmt.Printf("初始化日志失败: %v\n", err)
			os.Exit(1)
		}
		logger.Info(fmt.Sprintf("Load config file: %s of %s", configPath, getConfigSource()))

		defer func() {
			_ = logger.Close()
		}()
	}

	logger.Info(fmt.Sprintf("服务 %s 启动中...", appName), zap.String("version", appVersion))

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer func() {
		_ = database.Close()
	}()
	logger.Info(fmt.Sprintf("数据库连接成功 %s:%v", cfg.Database.Host, cfg.Database.Port), zap.String("database", cfg.Database.Database))

	store := repository.NewStore(database.GetDB())
	authz := service.NewAuthorizationService(store.Tokens)

	cipher, err := crypto.NewCipher(cfg.Crypto.AESKey)
	if err != nil {
		logger.Fatal("初始化加密组件失败", zap.Error(err))
	}

	deployer, err := deploy.NewHelmDeployer(&cfg.Helm, logger.Log)
	if err != nil {
		logger.Fatal("初始化 Helm 失败", zap.Error(err))
	}

	dnsManager := newDNSManager(cfg)

	publisher, subscriber, closeNotifier := newNotifier(cfg)
	defer closeNotifier()

	source := github.NewProvider(cfg.Auth.GitHub.APIBaseURL)
	ctrl := lifecycle.NewController(lifecycle.Dependencies{
		Store:    store,
		Auth:     authz,
		Source:   source,
		Trigger:  workflow.NewWebhookTrigger(&cfg.Workflow, logger.Log),
		Deployer: deployer,
		DNS:      dnsManager,
		Notifier: publisher,
		Cipher:   cipher,
		Signer:   jwt.NewCallbackSigner(&cfg.Auth.Callback),
		Logger:   logger.Log,
	})

	// 发布状态巡检
	taskScheduler := scheduler.NewScheduler(store.Projects, ctrl, logger.Log)
	if err := taskScheduler.Start(cfg.Scheduler.RolloutCron); err != nil {
		logger.Warn("定时任务调度器启动失败", zap.Error(err))
	}

	limiter := middleware.NewIPRateLimiter(cfg.Webhook.RateLimit, cfg.Webhook.Burst, 0)
	defer limiter.Stop()

	// 设置路由
	r := router.Setup(cfg, &router.Dependencies{
		Store:       store,
		Auth:        authz,
		Controller:  ctrl,
		OAuth:       github.NewOAuth(&cfg.Auth.GitHub, nil),
		Source:      source,
		Subscriber:  subscriber,
		RateLimiter: limiter,
	}, logger.Log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Info(fmt.Sprintf("%s 服务启动成功", cfg.Server.Name),
			zap.String("address", addr),
			zap.String("mode", cfg.Server.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务正在关闭...")

	taskScheduler.Stop()

	// SSE 为长连接, 超时后直接关闭
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务已关闭")
}

func newDNSManager(cfg *config.Config) dns.Manager {
	if cfg.DNS.Provider != "route53" {
		return dns.NewLogManager(cfg.Helm.BaseDomain, logger.Log)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	m, err := dns.NewRoute53Manager(ctx, &cfg.DNS, cfg.Helm.BaseDomain, logger.Log)
	if err != nil {
		logger.Fatal("初始化 Route53 失败", zap.Error(err))
	}
	return m
}

// newNotifier 配置 Redis 时多实例共享订阅, 否则使用进程内分发
func newNotifier(cfg *config.Config) (notification.Publisher, notification.Subscriber, func()) {
	logNotifier := notification.NewLogNotifier(logger.Log)
	if !cfg.Redis.Enabled {
		hub := notification.NewHub()
		return notification.NewMultiNotifier(logger.Log, hub, logNotifier), hub, func() {}
	}

	client, err := notification.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("连接 Redis 失败", zap.Error(err))
	}
	logger.Info("Redis 连接成功", zap.String("addr", cfg.Redis.Addr))
	broker := notification.NewRedisBroker(client, cfg.Notification.ChannelPrefix, logger.Log)
	return notification.NewMultiNotifier(logger.Log, broker, logNotifier), broker, func() { _ = client.Close() }
}

// getConfigPath 获取配置文件路径
// 优先级: 命令行参数 > 环境变量 > 默认路径
func getConfigPath() string {
	if *configFile != "" {
		return *configFile
	}
	if envConfig := os.Getenv("CONFIG_FILE"); envConfig != "" {
		return envConfig
	}
	return "configs/config.yaml"
}

// getConfigSource 获取配置来源说明
func getConfigSource() string {
	if *configFile != "" {
		return "命令行参数"
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return "环境变量"
	}
	return "默认配置"
}
