package service

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 相似度低于该阈值的候选不采纳，0-1 区间
const similarityThreshold = 0.4

// SimilarityMatcher 是名称解析的第二层：在精确归一化匹配落空后
// 查找一个近似的既有实体。这是可选能力，不可用时降级为未命中，
// 绝不让调用方因此失败。
type SimilarityMatcher interface {
	Match(tx *gorm.DB, table AttributeTable, normalized string) (uint, bool)
}

// TrigramMatcher 基于 pg_trgm 的 similarity() 实现模糊匹配。
// 在没有该扩展的库上（例如 SQLite）查询会报错并降级为未命中。
type TrigramMatcher struct{}

// Match 先做精确的大小写不敏感匹配（覆盖并发插入后名称已存在的场景），
// 再按相似度取最高分且超过阈值的候选。
func (TrigramMatcher) Match(tx *gorm.DB, table AttributeTable, normalized string) (uint, bool) {
	var row struct{ ID uint }

	err := tx.Table(table.Name()).
		Select("id").
		Where("LOWER(name) = ?", normalized).
		Take(&row).Error
	if err == nil {
		return row.ID, true
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false
	}

	// SAVEPOINT 隔离相似度查询：similarity() 不存在时 PostgreSQL 会让
	// 整个事务进入 aborted 状态，回滚到保存点才能保住外层事务
	err = tx.Transaction(func(inner *gorm.DB) error {
		return inner.Table(table.Name()).
			Select("id").
			Where("similarity(name, ?) > ?", normalized, similarityThreshold).
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "similarity(name, ?) DESC", Vars: []interface{}{normalized}, WithoutParentheses: true},
			}).
			Take(&row).Error
	})
	if err != nil {
		// 能力缺失或无候选，都按未命中处理
		return 0, false
	}
	return row.ID, true
}
