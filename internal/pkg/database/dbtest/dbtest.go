// Package dbtest 提供基于内存 sqlite 的测试数据库
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"pitapat/internal/pkg/database"
)

// New 打开内存库并迁移表结构, 外键约束开启.
// 内存库只存在于单个连接上, 连接池固定为 1
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), database.NewGormConfig("silent"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// FailCreate 让指定表的 INSERT 失败, 用于模拟持久化错误
func FailCreate(t testing.TB, db *gorm.DB, table string, injected error) {
	t.Helper()

	name := "dbtest:fail_create_" + table
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(injected)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	t.Cleanup(func() { _ = db.Callback().Create().Remove(name) })
}

// FailUpdate 让指定表的 UPDATE 失败
func FailUpdate(t testing.TB, db *gorm.DB, table string, injected error) {
	t.Helper()

	name := "dbtest:fail_update_" + table
	err := db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(injected)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	t.Cleanup(func() { _ = db.Callback().Update().Remove(name) })
}
