package lifecycle

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/idna"

	"pitapat/internal/adapter/deploy"
	"pitapat/internal/model"
	"pitapat/internal/repository"
	"pitapat/pkg/constants"
	pkgErrors "pitapat/pkg/errors"
)

var subdomainLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// ValidateSubdomain 子域名必须是单个合法的 DNS label, 返回规范化后的值
func ValidateSubdomain(name string) (string, error) {
	ascii, err := idna.Lookup.ToASCII(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return "", pkgErrors.New(pkgErrors.KindBadRequest, 0, "子域名不合法").WithCause(err)
	}
	if !subdomainLabel.MatchString(ascii) {
		return "", pkgErrors.New(pkgErrors.KindBadRequest, 0, "子域名不合法")
	}
	return ascii, nil
}

// SecretInput 环境变量明文
type SecretInput struct {
	Key   string
	Value string
}

// CreateProjectInput 创建项目参数
type CreateProjectInput struct {
	Name         string
	Subdomain    string
	Framework    string
	Port         int
	AutoScaling  bool
	MinReplicas  *int
	MaxReplicas  *int
	CPUThreshold *int
	Secrets      []SecretInput
}

// CheckSubdomain 子域名可用时返回 nil
func (c *Controller) CheckSubdomain(ctx context.Context, name string) error {
	subdomain, err := ValidateSubdomain(name)
	if err != nil {
		return err
	}
	exists, err := c.store.Projects.ExistsSubdomain(subdomain)
	if err != nil {
		return err
	}
	if exists {
		return pkgErrors.ErrSubdomainExists
	}
	return nil
}

// CreateProject 创建项目 → 安装 release → 添加 DNS → 写入地址, 任一外部步骤失败都会回滚已完成的部分
func (c *Controller) CreateProject(ctx context.Context, token string, in *CreateProjectInput) (*model.Project, error) {
	userID, err := c.auth.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	owner, err := c.store.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	subdomain, err := ValidateSubdomain(in.Subdomain)
	if err != nil {
		return nil, err
	}
	if err := c.CheckSubdomain(ctx, subdomain); err != nil {
		return nil, err
	}

	project := &model.Project{
		UserID:       userID,
		Name:         in.Name,
		Framework:    in.Framework,
		Port:         in.Port,
		Status:       constants.ProjectStatusCreated,
		AutoScaling:  in.AutoScaling,
		MinReplicas:  in.MinReplicas,
		MaxReplicas:  in.MaxReplicas,
		CPUThreshold: in.CPUThreshold,
		Subdomain:    subdomain,
	}
	if project.Port <= 0 {
		project.Port = 80
	}

	envs := make(map[string]string, len(in.Secrets))
	err = c.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Projects.Create(project); err != nil {
			return err
		}
		secrets := make([]*model.Secret, 0, len(in.Secrets))
		for _, s := range in.Secrets {
			value, err := c.cipher.Encrypt(s.Value)
			if err != nil {
				return pkgErrors.Wrap(pkgErrors.KindInternal, "加密环境变量失败", err)
			}
			envs[s.Key] = s.Value
			secrets = append(secrets, &model.Secret{ProjectID: project.ID, Key: s.Key, Value: value})
		}
		if err := tx.Secrets.CreateBatch(secrets); err != nil {
			return err
		}
		return tx.Logs.Create(newProjectLog(project.ID, EventProjectCreated, project.Status, project.Status,
			map[string]interface{}{"subdomain": subdomain}))
	})
	if err != nil {
		return nil, err
	}

	log := c.logger.With(zap.Int64("project_id", project.ID), zap.String("subdomain", subdomain))
	var hosts []string

	res, err := c.deployer.Provision(ctx, &deploy.ProvisionParam{
		ProjectID:        project.ID,
		Subdomain:        subdomain,
		GithubName:       owner.Login,
		GithubRepository: project.Name,
		GitToken:         token,
		Envs:             envs,
		Port:             project.Port,
		AutoScaling:      project.AutoScaling,
		MinReplicas:      project.MinReplicas,
		MaxReplicas:      project.MaxReplicas,
		CPUThreshold:     project.CPUThreshold,
	})
	if err != nil {
		log.Error("创建项目 release 失败", zap.Error(err))
		c.compensateCreate(ctx, project, false, hosts)
		return nil, pkgErrors.ErrProvision.WithCause(err)
	}

	for _, host := range []string{res.WebhookURL, res.DomainURL} {
		if err := c.dns.AddRecord(ctx, host); err != nil {
			log.Error("添加DNS记录失败", zap.String("host", host), zap.Error(err))
			c.compensateCreate(ctx, project, true, hosts)
			return nil, pkgErrors.ErrDNS.WithCause(err)
		}
		hosts = append(hosts, host)
	}

	if _, err := c.store.Projects.AssignURLs(project.ID, res.WebhookURL, res.DomainURL); err != nil {
		c.compensateCreate(ctx, project, true, hosts)
		return nil, err
	}

	log.Info("项目创建成功", zap.String("domain", res.DomainURL))
	return c.store.Projects.FindByID(project.ID)
}

// compensateCreate 撤销创建过程中已完成的外部操作并删除记录, 失败只记日志
func (c *Controller) compensateCreate(ctx context.Context, project *model.Project, provisioned bool, hosts []string) {
	log := c.logger.With(zap.Int64("project_id", project.ID))

	for _, host := range hosts {
		if err := c.dns.DeleteRecord(ctx, host); err != nil {
			log.Warn("回滚DNS记录失败", zap.String("host", host), zap.Error(err))
		}
	}
	if provisioned {
		if err := c.deployer.Deprovision(ctx, project.Subdomain); err != nil && !errors.Is(err, deploy.ErrReleaseNotFound) {
			log.Warn("回滚 release 失败", zap.Error(err))
		}
	}
	err := c.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Secrets.DeleteByProject(project.ID); err != nil {
			return err
		}
		return tx.Projects.Delete(project.ID)
	})
	if err != nil {
		log.Error("回滚项目记录失败", zap.Error(err))
	}
}

// Delete 卸载 release, 删除 DNS 记录, 最后在一个事务中删除项目数据
func (c *Controller) Delete(ctx context.Context, projectID int64, token string) error {
	_, project, err := c.authorizeOwner(ctx, token, projectID)
	if err != nil {
		return err
	}
	log := c.logger.With(zap.Int64("project_id", project.ID), zap.String("subdomain", project.Subdomain))

	if err := c.deployer.Deprovision(ctx, project.Subdomain); err != nil {
		if !errors.Is(err, deploy.ErrReleaseNotFound) {
			return pkgErrors.ErrDeprovision.WithCause(err)
		}
		log.Info("release 不存在, 跳过卸载")
	}

	for _, host := range []string{project.Subdomain, project.Subdomain + constants.WebhookHostSuffix} {
		if err := c.dns.DeleteRecord(ctx, host); err != nil {
			log.Warn("删除DNS记录失败", zap.String("host", host), zap.Error(err))
		}
	}

	err = c.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Projects.ClearPointers(project.ID); err != nil {
			return err
		}
		if err := tx.Deploys.DetachByProject(project.ID); err != nil {
			return err
		}
		if err := tx.Secrets.DeleteByProject(project.ID); err != nil {
			return err
		}
		if err := tx.Builds.DeleteByProject(project.ID); err != nil {
			return err
		}
		if err := tx.Projects.Delete(project.ID); err != nil {
			return err
		}
		return tx.Logs.Create(newProjectLog(project.ID, EventProjectDeleted, project.Status, project.Status, nil))
	})
	if err != nil {
		return err
	}

	log.Info("项目已删除")
	return nil
}
