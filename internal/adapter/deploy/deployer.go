package deploy

import (
	"context"
	"errors"

	"pitapat/pkg/constants"
)

// ErrReleaseNotFound release 不存在, 卸载时视为成功
var ErrReleaseNotFound = errors.New("release not found")

// DeployParam 发布指定镜像
type DeployParam struct {
	ReleaseName string // 即项目子域名
	ImageName   string
	ImageTag    string
	Port        int
}

// ProvisionParam 创建项目 release 所需参数
type ProvisionParam struct {
	ProjectID        int64
	Subdomain        string
	GithubName       string
	GithubRepository string
	GitToken         string
	Envs             map[string]string
	Port             int
	AutoScaling      bool
	MinReplicas      *int
	MaxReplicas      *int
	CPUThreshold     *int
}

// ProvisionResult 创建成功后分配的地址
type ProvisionResult struct {
	WebhookURL string
	DomainURL  string
}

// Deployer 触发发布, 结果通过 RolloutChecker 或 deploy/event 回调得知
type Deployer interface {
	Deploy(ctx context.Context, param *DeployParam) error
}

// RolloutChecker 查询发布健康状态
type RolloutChecker interface {
	GetStatus(ctx context.Context, releaseName string) (constants.RolloutHealth, error)
}

// Provisioner 创建/删除项目 release
type Provisioner interface {
	Provision(ctx context.Context, param *ProvisionParam) (*ProvisionResult, error)
	// Deprovision release 不存在时返回 ErrReleaseNotFound
	Deprovision(ctx context.Context, releaseName string) error
}

// Adapter 全部能力
type Adapter interface {
	Deployer
	RolloutChecker
	Provisioner
}
