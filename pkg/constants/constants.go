package constants

// 框架类型
const (
	FrameworkReact  = "react"
	FrameworkVue    = "vue"
	FrameworkSpring = "spring"
	FrameworkDjango = "django"
	FrameworkFlask  = "flask"
	FrameworkNode   = "node"
	FrameworkGo     = "go"
)

// JWT 相关
const (
	JWTTypeCallback = "callback"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
	HeaderRequestID     = "X-Request-ID"
	HeaderCallbackToken = "X-Callback-Token"
)

// gin.Context keys
const (
	ContextKeyToken     = "token"
	ContextKeyRequestID = "request_id"
)

// DNS
const (
	// WebhookHostSuffix 构建回调子域名后缀, 与项目 chart 中 EventSource 的 ingress 保持一致
	WebhookHostSuffix = "-ci.webhook"
)
