package deploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/repo"
	"helm.sh/helm/v3/pkg/storage/driver"
	"k8s.io/client-go/kubernetes"

	"pitapat/internal/pkg/config"
	"pitapat/internal/pkg/logger"
	"pitapat/internal/pkg/tpl"
	"pitapat/pkg/constants"
)

// HelmDeployer 每个项目一个 release, release 名即子域名
type HelmDeployer struct {
	cfg        *config.HelmConfig
	settings   *cli.EnvSettings
	baseValues map[string]interface{}
	timeout    time.Duration
	logger     *zap.Logger
}

func NewHelmDeployer(cfg *config.HelmConfig, l *zap.Logger) (*HelmDeployer, error) {
	settings := cli.New()
	if cfg.Kubeconfig != "" {
		settings.KubeConfig = cfg.Kubeconfig
	}
	if cfg.Namespace != "" {
		settings.SetNamespace(cfg.Namespace)
	}

	base, err := loadValuesFile(cfg.ValuesFile)
	if err != nil {
		return nil, err
	}

	return &HelmDeployer{
		cfg:        cfg,
		settings:   settings,
		baseValues: base,
		timeout:    config.ParseDuration(cfg.Timeout, 5*time.Minute),
		logger:     l.With(zap.String("adapter", "helm")),
	}, nil
}

// Hosts 渲染项目的 webhook 与访问域名
func (d *HelmDeployer) Hosts(subdomain string) (webhookHost, domainHost string, err error) {
	data := tpl.HostContext(subdomain, d.cfg.BaseDomain)
	if webhookHost, err = tpl.ParseTemplate(d.cfg.WebhookTemplate, data); err != nil {
		return "", "", err
	}
	if domainHost, err = tpl.ParseTemplate(d.cfg.DomainTemplate, data); err != nil {
		return "", "", err
	}
	return webhookHost, domainHost, nil
}

func (d *HelmDeployer) actionConfig() (*action.Configuration, error) {
	actionConfig := new(action.Configuration)
	if err := actionConfig.Init(d.settings.RESTClientGetter(), d.settings.Namespace(), "secret", logger.Sugar().Debugf); err != nil {
		return nil, fmt.Errorf("初始化 helm 配置失败: %w", err)
	}
	return actionConfig, nil
}

// Provision 安装项目 chart
func (d *HelmDeployer) Provision(ctx context.Context, p *ProvisionParam) (*ProvisionResult, error) {
	webhookHost, domainHost, err := d.Hosts(p.Subdomain)
	if err != nil {
		return nil, err
	}
	actionConfig, err := d.actionConfig()
	if err != nil {
		return nil, err
	}
	ch, err := d.loadChart()
	if err != nil {
		return nil, err
	}

	client := action.NewInstall(actionConfig)
	client.Namespace = d.settings.Namespace()
	client.ReleaseName = p.Subdomain
	client.Timeout = d.timeout

	rel, err := client.RunWithContext(ctx, ch, mergeValues(d.baseValues, provisionValues(p, webhookHost, domainHost)))
	if err != nil {
		return nil, fmt.Errorf("安装 release 失败: %w", err)
	}

	d.logger.Info("项目 release 已创建",
		zap.String("release", rel.Name),
		zap.Int("revision", rel.Version),
		zap.String("domain", domainHost))

	return &ProvisionResult{WebhookURL: webhookHost, DomainURL: domainHost}, nil
}

// Deploy 升级 release 的镜像, 其余 values 沿用上一版本
func (d *HelmDeployer) Deploy(ctx context.Context, p *DeployParam) error {
	actionConfig, err := d.actionConfig()
	if err != nil {
		return err
	}

	history := action.NewHistory(actionConfig)
	history.Max = 1
	versions, err := history.Run(p.ReleaseName)
	if errors.Is(err, driver.ErrReleaseNotFound) ||
		(len(versions) > 0 && versions[len(versions)-1].Info.Status == release.StatusUninstalled) {
		return fmt.Errorf("%w: %s", ErrReleaseNotFound, p.ReleaseName)
	}
	if err != nil {
		return err
	}

	ch, err := d.loadChart()
	if err != nil {
		return err
	}

	client := action.NewUpgrade(actionConfig)
	client.Namespace = d.settings.Namespace()
	client.ReuseValues = true
	client.Timeout = d.timeout

	rel, err := client.RunWithContext(ctx, p.ReleaseName, ch, deployValues(p))
	if err != nil {
		return fmt.Errorf("升级 release 失败: %w", err)
	}

	d.logger.Info("release 已升级",
		zap.String("release", rel.Name),
		zap.String("image_tag", p.ImageTag),
		zap.Int("revision", rel.Version),
		zap.String("status", rel.Info.Status.String()))
	return nil
}

// GetStatus release 状态 + 工作负载就绪情况
func (d *HelmDeployer) GetStatus(ctx context.Context, releaseName string) (constants.RolloutHealth, error) {
	actionConfig, err := d.actionConfig()
	if err != nil {
		return "", err
	}

	rel, err := action.NewStatus(actionConfig).Run(releaseName)
	if errors.Is(err, driver.ErrReleaseNotFound) {
		return "", fmt.Errorf("%w: %s", ErrReleaseNotFound, releaseName)
	}
	if err != nil {
		return "", err
	}

	switch rel.Info.Status {
	case release.StatusDeployed:
		restCfg, err := d.settings.RESTClientGetter().ToRESTConfig()
		if err != nil {
			return "", err
		}
		clientset, err := kubernetes.NewForConfig(restCfg)
		if err != nil {
			return "", err
		}
		health, msg, err := ClassifyRollout(ctx, clientset, rel.Manifest, d.settings.Namespace())
		if err != nil {
			return "", err
		}
		d.logger.Debug("发布状态", zap.String("release", releaseName), zap.String("health", string(health)), zap.String("detail", msg))
		return health, nil
	case release.StatusFailed:
		return constants.RolloutDegraded, nil
	default:
		return constants.RolloutProgressing, nil
	}
}

// Deprovision 卸载 release
func (d *HelmDeployer) Deprovision(ctx context.Context, releaseName string) error {
	actionConfig, err := d.actionConfig()
	if err != nil {
		return err
	}

	client := action.NewUninstall(actionConfig)
	client.Timeout = d.timeout
	if _, err := client.Run(releaseName); err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) {
			return fmt.Errorf("%w: %s", ErrReleaseNotFound, releaseName)
		}
		return fmt.Errorf("卸载 release 失败: %w", err)
	}
	d.logger.Info("release 已卸载", zap.String("release", releaseName))
	return nil
}

func (d *HelmDeployer) loadChart() (*chart.Chart, error) {
	if err := d.updateRepo(); err != nil {
		return nil, err
	}

	chartPathOptions := action.ChartPathOptions{
		RepoURL:  d.cfg.RepoURL,
		Username: d.cfg.RepoUsername,
		Password: d.cfg.RepoPassword,
		Version:  d.cfg.ChartVersion,
	}
	chartPath, err := chartPathOptions.LocateChart(d.cfg.Chart, d.settings)
	if err != nil {
		return nil, fmt.Errorf("定位 chart 失败: %w", err)
	}
	return loader.Load(chartPath)
}

func (d *HelmDeployer) updateRepo() error {
	if d.cfg.RepoURL == "" {
		return fmt.Errorf("chart repo url 为空")
	}

	r, err := repo.NewChartRepository(&repo.Entry{
		Name:     d.cfg.RepoName,
		URL:      d.cfg.RepoURL,
		Username: d.cfg.RepoUsername,
		Password: d.cfg.RepoPassword,
	}, getter.All(d.settings))
	if err != nil {
		return err
	}
	r.CachePath = d.settings.RepositoryCache
	if _, err = r.DownloadIndexFile(); err != nil {
		return fmt.Errorf("更新 chart 仓库索引失败: %w", err)
	}
	return nil
}
