package repository

import (
	"errors"

	"gorm.io/gorm"

	pkgErrors "pitapat/pkg/errors"
)

type QueryOption func(*gorm.DB) *gorm.DB

func WithPreload(association string, conds ...interface{}) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, conds...)
	}
}

// WithOrder 指定排序
func WithOrder(order string) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	}
}

func applyOptions(db *gorm.DB, opts []QueryOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

// translate gorm.ErrRecordNotFound → notFound, 其余包装为持久化错误
func translate(err error, notFound *pkgErrors.AppError, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, msg, err)
}
