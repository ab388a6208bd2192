package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// forUpdate 在 postgres 下追加行锁；sqlite 写事务本身串行，不支持 FOR UPDATE。
func forUpdate(db *gorm.DB) *gorm.DB {
	return applyRowLockByDialect(db, dbDialectName(db))
}

func applyRowLockByDialect(db *gorm.DB, dialect string) *gorm.DB {
	switch dialect {
	case "postgres", "postgresql":
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	default:
		return db
	}
}

// flooredDecrementExpr 生成“减去增量但不低于 0”的表达式，sqlite 与 postgres 通用。
func flooredDecrementExpr(column string, delta interface{}) clause.Expr {
	return gorm.Expr("CASE WHEN "+column+" > ? THEN "+column+" - ? ELSE 0 END", delta, delta)
}

// IsUniqueViolation 判断是否违反唯一约束（含部分唯一索引）。
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "sqlstate 23505")
}
