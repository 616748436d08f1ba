package database

import (
	"fmt"

	"gorm.io/gorm"

	"pitapat/internal/model"
)

// Models 需要迁移的表, 父表在前
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Token{},
		&model.Project{},
		&model.Build{},
		&model.Deploy{},
		&model.Secret{},
		&model.ProjectLog{},
	}
}

// AutoMigrate 自动迁移表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("迁移表结构失败: %w", err)
	}
	return nil
}
