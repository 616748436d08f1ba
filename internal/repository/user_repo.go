package repository

import (
	"gorm.io/gorm"

	"pitapat/internal/model"
	pkgErrors "pitapat/pkg/errors"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int64) (*model.User, error)
	FindByLogin(login string) (*model.User, error)
	Update(user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "创建用户失败", err)
	}
	return nil
}

func (r *userRepository) FindByID(id int64) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, translate(err, pkgErrors.ErrRecordNotFound, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepository) FindByLogin(login string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("login = ?", login).First(&user).Error; err != nil {
		return nil, translate(err, pkgErrors.ErrRecordNotFound, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "更新用户失败", err)
	}
	return nil
}
