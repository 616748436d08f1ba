package repository

import (
	"gorm.io/gorm"

	"pitapat/internal/model"
	"pitapat/pkg/constants"
	pkgErrors "pitapat/pkg/errors"
)

type ProjectRepository interface {
	Create(project *model.Project) error
	FindByID(id int64, opts ...QueryOption) (*model.Project, error)
	ExistsSubdomain(subdomain string) (bool, error)
	ListByUser(userID int64) ([]*model.Project, error)
	// ListDeploying 部署中且记录了目标构建的项目
	ListDeploying() ([]*model.Project, error)
	// UpdateStatus 乐观更新, 仅当当前状态为 from 时生效, 返回影响行数
	UpdateStatus(id int64, from constants.ProjectStatus, fields map[string]interface{}) (int64, error)
	// AssignURLs 只写一次 webhook/domain 地址
	AssignURLs(id int64, webhookURL, domainURL string) (int64, error)
	ClearPointers(id int64) error
	Delete(id int64) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *model.Project) error {
	if err := r.db.Create(project).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "创建项目失败", err)
	}
	return nil
}

func (r *projectRepository) FindByID(id int64, opts ...QueryOption) (*model.Project, error) {
	var project model.Project
	if err := applyOptions(r.db, opts).First(&project, id).Error; err != nil {
		return nil, translate(err, pkgErrors.ErrProjectNotFound, "查询项目失败")
	}
	return &project, nil
}

func (r *projectRepository) ExistsSubdomain(subdomain string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Project{}).Where("subdomain = ?", subdomain).Count(&count).Error; err != nil {
		return false, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "查询子域名失败", err)
	}
	return count > 0, nil
}

func (r *projectRepository) ListByUser(userID int64) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&projects).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "查询项目列表失败", err)
	}
	return projects, nil
}

func (r *projectRepository) ListDeploying() ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.Where("status = ? AND deploying_build_id IS NOT NULL", constants.ProjectStatusDeploying).
		Find(&projects).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "查询部署中项目失败", err)
	}
	return projects, nil
}

func (r *projectRepository) UpdateStatus(id int64, from constants.ProjectStatus, fields map[string]interface{}) (int64, error) {
	result := r.db.Model(&model.Project{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return 0, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "更新项目状态失败", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *projectRepository) AssignURLs(id int64, webhookURL, domainURL string) (int64, error) {
	result := r.db.Model(&model.Project{}).
		Where("id = ? AND webhook_url IS NULL", id).
		Updates(map[string]interface{}{
			"webhook_url": webhookURL,
			"domain_url":  domainURL,
		})
	if result.Error != nil {
		return 0, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "写入项目地址失败", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *projectRepository) ClearPointers(id int64) error {
	err := r.db.Model(&model.Project{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_build_id":   nil,
			"current_deploy_id":  nil,
			"deploying_build_id": nil,
		}).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "清理项目引用失败", err)
	}
	return nil
}

func (r *projectRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.Project{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "删除项目失败", err)
	}
	return nil
}
