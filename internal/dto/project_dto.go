package dto

import (
	"time"

	"pitapat/pkg/constants"
)

// SecretItem 环境变量
type SecretItem struct {
	Key   string `json:"key" binding:"required,max=255"`
	Value string `json:"value"`
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name         string       `json:"name" binding:"required,max=100"`
	Subdomain    string       `json:"subdomain" binding:"required,max=63"`
	Framework    string       `json:"framework" binding:"omitempty,max=50"`
	Port         int          `json:"port" binding:"omitempty,min=1,max=65535"`
	AutoScaling  bool         `json:"autoScaling"`
	MinReplicas  *int         `json:"minReplicas" binding:"omitempty,min=1"`
	MaxReplicas  *int         `json:"maxReplicas" binding:"omitempty,min=1"`
	CPUThreshold *int         `json:"cpuThreshold" binding:"omitempty,min=1,max=100"`
	Secrets      []SecretItem `json:"secrets" binding:"omitempty,dive"`
}

// SubdomainQuery 子域名检查
type SubdomainQuery struct {
	Name string `form:"name" binding:"required"`
}

// ProjectItem 项目列表项
type ProjectItem struct {
	ID        int64                   `json:"id"`
	Name      string                  `json:"name"`
	Status    constants.ProjectStatus `json:"status"`
	Framework string                  `json:"framework"`
}

// DeployItem 部署记录
type DeployItem struct {
	ID         int64     `json:"id"`
	DeployDate time.Time `json:"deployDate"`
}

// BuildItem 构建记录, 附带其部署记录
type BuildItem struct {
	ID        int64         `json:"id"`
	BuildDate time.Time     `json:"buildDate"`
	CommitMsg string        `json:"commitMsg"`
	ImageName string        `json:"imageName"`
	ImageTag  string        `json:"imageTag"`
	Deploys   []*DeployItem `json:"deploys"`
}

// LogItem 状态流转记录
type LogItem struct {
	Event      string                  `json:"event"`
	FromStatus constants.ProjectStatus `json:"fromStatus"`
	ToStatus   constants.ProjectStatus `json:"toStatus"`
	CreatedAt  time.Time               `json:"createdAt"`
}

// ProjectDetail 项目详情, 环境变量只返回 key
type ProjectDetail struct {
	ID               int64                   `json:"id"`
	Name             string                  `json:"name"`
	Framework        string                  `json:"framework"`
	Port             int                     `json:"port"`
	Status           constants.ProjectStatus `json:"status"`
	Subdomain        string                  `json:"subdomain"`
	DomainURL        *string                 `json:"domainUrl"`
	WebhookURL       *string                 `json:"webhookUrl"`
	AutoScaling      bool                    `json:"autoScaling"`
	MinReplicas      *int                    `json:"minReplicas"`
	MaxReplicas      *int                    `json:"maxReplicas"`
	CPUThreshold     *int                    `json:"cpuThreshold"`
	CurrentBuildID   *int64                  `json:"currentBuildId"`
	CurrentDeployID  *int64                  `json:"currentDeployId"`
	DeployingBuildID *int64                  `json:"deployingBuildId"`
	CreatedAt        time.Time               `json:"createdAt"`
	Builds           []*BuildItem            `json:"builds"`
	SecretKeys       []string                `json:"secretKeys"`
	Logs             []*LogItem              `json:"logs"`
}
