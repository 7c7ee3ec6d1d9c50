package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cookbook/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntityRef 是客户端提交的一次属性引用：已有 ID 或自由文本名称，二选一。
// Quantity 仅对配料有意义，随关联行一起落库。
type EntityRef struct {
	ID       uint
	Name     string
	Quantity string
}

// NormalizeName 生成大小写不敏感匹配用的归一化键。
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// EntityResolver 将混合的 {id|name} 引用列表解析成实体 ID。
// 所有查询都作用在调用方传入的事务上，自身绝不另开事务。
type EntityResolver struct {
	fuzzy SimilarityMatcher
}

// NewEntityResolver 创建解析器。matcher 为 nil 时跳过模糊匹配层。
func NewEntityResolver(matcher SimilarityMatcher) *EntityResolver {
	return &EntityResolver{fuzzy: matcher}
}

// Resolve 返回与 refs 等长的实体 ID 切片。
// 流程：拆分 → 批量校验提供的 ID → 条件批量插入缺失名称 → 一次查询取回映射
// → 剩余未命中交给模糊匹配 → 仍未解析则整体失败。
// 同一请求内指向相同归一化名称的引用收敛到同一个实体 ID。
func (r *EntityResolver) Resolve(tx *gorm.DB, table AttributeTable, refs []EntityRef) ([]uint, error) {
	providedIDs := make([]uint, 0, len(refs))
	nameSet := make(map[string]struct{})
	names := make([]string, 0, len(refs))

	for _, ref := range refs {
		if ref.ID != 0 {
			providedIDs = append(providedIDs, ref.ID)
			continue
		}
		key := NormalizeName(ref.Name)
		if key == "" {
			return nil, &ValidationError{Message: fmt.Sprintf("%s name cannot be empty", table.Name())}
		}
		if _, seen := nameSet[key]; !seen {
			nameSet[key] = struct{}{}
			names = append(names, key)
		}
	}

	if err := r.validateProvidedIDs(tx, table, providedIDs); err != nil {
		return nil, err
	}
	if err := r.ensureNames(tx, table, names); err != nil {
		return nil, err
	}

	idByName, err := r.fetchIDsByName(tx, table, names)
	if err != nil {
		return nil, err
	}

	// 插入后仍未见的名称可能是并发事务抢先插入但尚未提交，交给模糊匹配层
	if r.fuzzy != nil {
		for _, name := range names {
			if _, ok := idByName[name]; ok {
				continue
			}
			if id, ok := r.fuzzy.Match(tx, table, name); ok {
				idByName[name] = id
			}
		}
	}

	resolved := make([]uint, len(refs))
	var missing []string
	for i, ref := range refs {
		if ref.ID != 0 {
			resolved[i] = ref.ID
			continue
		}
		id, ok := idByName[NormalizeName(ref.Name)]
		if !ok {
			missing = append(missing, strings.TrimSpace(ref.Name))
			continue
		}
		resolved[i] = id
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Resource: table.Name(), IDs: missing}
	}

	return resolved, nil
}

// validateProvidedIDs 用一次集合查询校验全部提供的 ID，缺失的统一列出。
func (r *EntityResolver) validateProvidedIDs(tx *gorm.DB, table AttributeTable, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	distinct := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	var found []uint
	if err := tx.Table(table.Name()).Where("id IN ?", distinct).Pluck("id", &found).Error; err != nil {
		return err
	}

	foundSet := make(map[uint]struct{}, len(found))
	for _, id := range found {
		foundSet[id] = struct{}{}
	}

	var missing []string
	for _, id := range distinct {
		if _, ok := foundSet[id]; !ok {
			missing = append(missing, strconv.FormatUint(uint64(id), 10))
		}
	}
	if len(missing) > 0 {
		return &NotFoundError{Resource: table.Name(), IDs: missing}
	}
	return nil
}

// ensureNames 批量插入尚不存在的归一化名称。
// 插入是尽力而为的 ON CONFLICT DO NOTHING：与并发解析器插入同名时，
// LOWER(name) 唯一索引保证最终只有一行，本次插入不作为创建成功的证据。
func (r *EntityResolver) ensureNames(tx *gorm.DB, table AttributeTable, names []string) error {
	if len(names) == 0 {
		return nil
	}

	switch table {
	case Ingredients:
		rows := make([]db.Ingredient, 0, len(names))
		for _, name := range names {
			rows = append(rows, db.Ingredient{Name: name})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	case Categories:
		rows := make([]db.Category, 0, len(names))
		for _, name := range names {
			rows = append(rows, db.Category{Name: name})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	}
	return fmt.Errorf("unknown attribute table %d", table)
}

// fetchIDsByName 一次查询取回归一化名称到 ID 的映射。
func (r *EntityResolver) fetchIDsByName(tx *gorm.DB, table AttributeTable, names []string) (map[string]uint, error) {
	result := make(map[string]uint, len(names))
	if len(names) == 0 {
		return result, nil
	}

	var rows []struct {
		ID   uint
		Name string
	}
	if err := tx.Table(table.Name()).
		Select("id, name").
		Where("LOWER(name) IN ?", names).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[NormalizeName(row.Name)] = row.ID
	}
	return result, nil
}

// EntityOption 是给前端联想输入用的 {id, name} 对。
type EntityOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// SuggestEntities 按名称前缀/子串检索实体，供联想接口使用。
func SuggestEntities(gdb *gorm.DB, table AttributeTable, query string, limit int) ([]EntityOption, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	options := make([]EntityOption, 0, limit)
	q := gdb.Table(table.Name()).Select("id, name").Order("name").Limit(limit)
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(trimmed)+"%")
	}
	if err := q.Scan(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}
