package repository

import (
	"context"

	"gorm.io/gorm"

	pkgErrors "pitapat/pkg/errors"
)

// Store 聚合各仓储, Transaction 内拿到的 Store 绑定同一个事务
type Store struct {
	db *gorm.DB

	Users    UserRepository
	Tokens   TokenRepository
	Projects ProjectRepository
	Builds   BuildRepository
	Deploys  DeployRepository
	Secrets  SecretRepository
	Logs     ProjectLogRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Tokens:   NewTokenRepository(db),
		Projects: NewProjectRepository(db),
		Builds:   NewBuildRepository(db),
		Deploys:  NewDeployRepository(db),
		Secrets:  NewSecretRepository(db),
		Logs:     NewProjectLogRepository(db),
	}
}

// DB 底层连接
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction 在同一事务中执行 fn, fn 返回错误或提交失败时回滚.
// fn 内只能使用 tx, 不能再使用外层 Store
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(NewStore(db))
	})
	if err == nil {
		return nil
	}
	if _, ok := pkgErrors.As(err); ok {
		return err
	}
	return pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "提交事务失败", err)
}
