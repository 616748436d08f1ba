package repository

import (
	"gorm.io/gorm"

	"pitapat/internal/model"
	pkgErrors "pitapat/pkg/errors"
)

type ProjectLogRepository interface {
	Create(log *model.ProjectLog) error
	ListByProject(projectID int64, limit int) ([]*model.ProjectLog, error)
}

type projectLogRepository struct {
	db *gorm.DB
}

func NewProjectLogRepository(db *gorm.DB) ProjectLogRepository {
	return &projectLogRepository{db: db}
}

func (r *projectLogRepository) Create(log *model.ProjectLog) error {
	if err := r.db.Create(log).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "写入项目日志失败", err)
	}
	return nil
}

func (r *projectLogRepository) ListByProject(projectID int64, limit int) ([]*model.ProjectLog, error) {
	var logs []*model.ProjectLog
	query := r.db.Where("project_id = ?", projectID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "查询项目日志失败", err)
	}
	return logs, nil
}
