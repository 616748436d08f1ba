package constants

import "fmt"

// ProjectStatus 项目生命周期状态, 数值与前端约定一致, 不可调整
type ProjectStatus int8

const (
	ProjectStatusCreated         ProjectStatus = 0 // 已创建, 尚未构建
	ProjectStatusBuilding        ProjectStatus = 1 // 构建已触发, 等待结果
	ProjectStatusBuildSucceeded  ProjectStatus = 2 // 构建完成
	ProjectStatusDeploying       ProjectStatus = 3 // 部署已触发, 等待发布健康状态
	ProjectStatusDeploySucceeded ProjectStatus = 4 // 部署完成
	ProjectStatusBuildFailed     ProjectStatus = 5
	ProjectStatusDeployFailed    ProjectStatus = 6
)

// int8 → string
var projectStatusName = map[ProjectStatus]string{
	ProjectStatusCreated:         "Created",
	ProjectStatusBuilding:        "Building",
	ProjectStatusBuildSucceeded:  "BuildSucceeded",
	ProjectStatusDeploying:       "Deploying",
	ProjectStatusDeploySucceeded: "DeploySucceeded",
	ProjectStatusBuildFailed:     "BuildFailed",
	ProjectStatusDeployFailed:    "DeployFailed",
}

func (s ProjectStatus) String() string {
	if name, ok := projectStatusName[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int8(s))
}

// 构建回调状态
const (
	BuildEventSuccess = "build-success"
)

// RolloutHealth 发布健康状态
type RolloutHealth string

const (
	RolloutHealthy     RolloutHealth = "Healthy"
	RolloutDegraded    RolloutHealth = "Degraded"
	RolloutInvalidSpec RolloutHealth = "InvalidSpec"
	RolloutProgressing RolloutHealth = "Progressing"
)

// IsTerminal 是否为终态
func (h RolloutHealth) IsTerminal() bool {
	switch h {
	case RolloutHealthy, RolloutDegraded, RolloutInvalidSpec:
		return true
	default:
		return false
	}
}

// ParseRolloutHealth 解析回调中的健康状态, 未知值按 Progressing 处理
func ParseRolloutHealth(s string) RolloutHealth {
	switch RolloutHealth(s) {
	case RolloutHealthy, RolloutDegraded, RolloutInvalidSpec:
		return RolloutHealth(s)
	default:
		return RolloutProgressing
	}
}
