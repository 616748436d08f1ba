package repository

import (
	"gorm.io/gorm"

	"pitapat/internal/model"
	pkgErrors "pitapat/pkg/errors"
)

type DeployRepository interface {
	Create(deploy *model.Deploy) error
	// FindLatestByBuild 构建最近一次部署, 没有时返回 ErrRecordNotFound
	FindLatestByBuild(buildID int64) (*model.Deploy, error)
	ListByBuilds(buildIDs []int64) ([]*model.Deploy, error)
	// DetachByProject 将该项目所有构建下的部署记录 build_id 置空
	DetachByProject(projectID int64) error
}

type deployRepository struct {
	db *gorm.DB
}

func NewDeployRepository(db *gorm.DB) DeployRepository {
	return &deployRepository{db: db}
}

func (r *deployRepository) Create(deploy *model.Deploy) error {
	if err := r.db.Create(deploy).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "创建部署记录失败", err)
	}
	return nil
}

func (r *deployRepository) FindLatestByBuild(buildID int64) (*model.Deploy, error) {
	var deploy model.Deploy
	err := r.db.Where("build_id = ?", buildID).Order("id DESC").First(&deploy).Error
	if err != nil {
		return nil, translate(err, pkgErrors.ErrRecordNotFound, "查询部署记录失败")
	}
	return &deploy, nil
}

func (r *deployRepository) ListByBuilds(buildIDs []int64) ([]*model.Deploy, error) {
	var deploys []*model.Deploy
	if len(buildIDs) == 0 {
		return deploys, nil
	}
	err := r.db.Where("build_id IN ?", buildIDs).Order("deploy_date DESC, id DESC").Find(&deploys).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "查询部署记录失败", err)
	}
	return deploys, nil
}

func (r *deployRepository) DetachByProject(projectID int64) error {
	buildIDs := r.db.Model(&model.Build{}).Select("id").Where("project_id = ?", projectID)
	err := r.db.Model(&model.Deploy{}).
		Where("build_id IN (?)", buildIDs).
		Update("build_id", nil).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "解除部署记录关联失败", err)
	}
	return nil
}
