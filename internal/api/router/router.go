package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"pitapat/internal/adapter/notification"
	"pitapat/internal/api/handler"
	"pitapat/internal/api/middleware"
	"pitapat/internal/core/lifecycle"
	"pitapat/internal/pkg/config"
	gitApi "pitapat/internal/pkg/git/api"
	"pitapat/internal/repository"
	"pitapat/internal/service"
)

// Dependencies 路由依赖, 由 main 组装
type Dependencies struct {
	Store       *repository.Store
	Auth        service.AuthorizationService
	Controller  *lifecycle.Controller
	OAuth       gitApi.OAuthExchanger
	Source      gitApi.SourceHost
	Subscriber  notification.Subscriber
	RateLimiter *middleware.IPRateLimiter
}

// Setup 设置路由
func Setup(cfg *config.Config, deps *Dependencies, logger *zap.Logger) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigins))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 初始化Service
	authService := service.NewAuthService(deps.Store, deps.OAuth, deps.Source, logger)
	projectService := service.NewProjectService(deps.Store, deps.Auth, deps.Controller)
	buildService := service.NewBuildService(deps.Controller)
	deployService := service.NewDeployService(deps.Controller)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService, buildService, deployService)
	webhookHandler := handler.NewWebhookHandler(buildService, deployService, logger)
	streamHandler := handler.NewStreamHandler(deps.Auth, deps.Subscriber,
		config.ParseDuration(cfg.Notification.Heartbeat, 0), logger)

	// 登录(无需token)
	r.POST("/user/login", authHandler.Login)

	// SSE, EventSource 只能通过 query 传 token
	r.GET("/stream", middleware.TokenMiddleware(true), streamHandler.Stream)

	// 回调(无需token, 按 IP 限流)
	hooks := r.Group("/project")
	if deps.RateLimiter != nil {
		hooks.Use(deps.RateLimiter.Middleware())
	}
	{
		hooks.POST("/build/event", webhookHandler.BuildEvent)
		hooks.POST("/deploy/event", webhookHandler.DeployEvent)
	}

	// 子域名检查(无需token)
	r.GET("/project/subdomain/check", projectHandler.CheckSubdomain)

	// 项目管理
	groupProject := r.Group("/project")
	groupProject.Use(middleware.TokenMiddleware(false))
	{
		groupProject.GET("", projectHandler.List)                      // 项目列表
		groupProject.GET("/:id", projectHandler.Detail)                // 项目详情
		groupProject.DELETE("/:id", projectHandler.Delete)             // 删除项目
		groupProject.POST("/create", projectHandler.Create)            // 创建项目
		groupProject.POST("/build", projectHandler.Build)              // 触发构建
		groupProject.POST("/deploy", projectHandler.Deploy)            // 发布构建
		groupProject.GET("/deploy/status", projectHandler.DeployStatus) // 查询发布状态
	}

	return r
}
