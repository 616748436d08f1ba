package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pitapat/internal/model"
	pkgErrors "pitapat/pkg/errors"
)

type SecretRepository interface {
	CreateBatch(secrets []*model.Secret) error
	ListByProject(projectID int64) ([]*model.Secret, error)
	DeleteByProject(projectID int64) error
}

type secretRepository struct {
	db *gorm.DB
}

func NewSecretRepository(db *gorm.DB) SecretRepository {
	return &secretRepository{db: db}
}

func (r *secretRepository) CreateBatch(secrets []*model.Secret) error {
	if len(secrets) == 0 {
		return nil
	}
	if err := r.db.Create(&secrets).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "保存环境变量失败", err)
	}
	return nil
}

func (r *secretRepository) ListByProject(projectID int64) ([]*model.Secret, error) {
	var secrets []*model.Secret
	if err := r.db.Where("project_id = ?", projectID).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&secrets).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "查询环境变量失败", err)
	}
	return secrets, nil
}

func (r *secretRepository) DeleteByProject(projectID int64) error {
	if err := r.db.Where("project_id = ?", projectID).Delete(&model.Secret{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "删除环境变量失败", err)
	}
	return nil
}
