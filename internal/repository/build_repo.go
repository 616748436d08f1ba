package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pitapat/internal/model"
	pkgErrors "pitapat/pkg/errors"
)

// BuildRepository 构建记录仓储接口
type BuildRepository interface {
	// CreateIfAbsent 按 (project_id, image_tag) 去重写入, 已存在时返回已有记录且 created 为 false
	CreateIfAbsent(build *model.Build) (*model.Build, bool, error)
	FindByID(id int64, opts ...QueryOption) (*model.Build, error)
	FindByTag(projectID int64, imageTag string) (*model.Build, error)
	ExistsTag(projectID int64, imageTag string) (bool, error)
	ListByProject(projectID int64) ([]*model.Build, error)
	DeleteByProject(projectID int64) error
}

type buildRepository struct {
	db *gorm.DB
}

// NewBuildRepository 创建构建记录仓储实例
func NewBuildRepository(db *gorm.DB) BuildRepository {
	return &buildRepository{db: db}
}

func (r *buildRepository) CreateIfAbsent(build *model.Build) (*model.Build, bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(build)
	if result.Error != nil {
		return nil, false, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "创建构建记录失败", result.Error)
	}
	existing, err := r.FindByTag(build.ProjectID, build.ImageTag)
	if err != nil {
		return nil, false, err
	}
	return existing, result.RowsAffected > 0, nil
}

// FindByID 根据ID查询构建记录
func (r *buildRepository) FindByID(id int64, opts ...QueryOption) (*model.Build, error) {
	var build model.Build
	if err := applyOptions(r.db, opts).First(&build, id).Error; err != nil {
		return nil, translate(err, pkgErrors.ErrBuildNotFound, "查询构建记录失败")
	}
	return &build, nil
}

func (r *buildRepository) FindByTag(projectID int64, imageTag string) (*model.Build, error) {
	var build model.Build
	err := r.db.Where("project_id = ? AND image_tag = ?", projectID, imageTag).First(&build).Error
	if err != nil {
		return nil, translate(err, pkgErrors.ErrBuildNotFound, "查询构建记录失败")
	}
	return &build, nil
}

func (r *buildRepository) ExistsTag(projectID int64, imageTag string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Build{}).
		Where("project_id = ? AND image_tag = ?", projectID, imageTag).
		Count(&count).Error
	if err != nil {
		return false, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "查询构建记录失败", err)
	}
	return count > 0, nil
}

// ListByProject 按构建时间倒序
func (r *buildRepository) ListByProject(projectID int64) ([]*model.Build, error) {
	var builds []*model.Build
	err := r.db.Where("project_id = ?", projectID).
		Order("build_date DESC, id DESC").
		Find(&builds).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "查询项目构建记录失败", err)
	}
	return builds, nil
}

func (r *buildRepository) DeleteByProject(projectID int64) error {
	if err := r.db.Where("project_id = ?", projectID).Delete(&model.Build{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "删除构建记录失败", err)
	}
	return nil
}
