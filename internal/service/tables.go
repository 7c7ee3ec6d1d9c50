package service

// AttributeTable 标识一张可被名称解析的属性实体表。
// 这是一个闭合集合：任何进入 SQL 的表名都来自这里的白名单，
// 外部输入只能选择枚举值，不参与字符串拼接。
type AttributeTable int

const (
	Ingredients AttributeTable = iota
	Categories
)

// Name 返回实体表名。
func (t AttributeTable) Name() string {
	switch t {
	case Ingredients:
		return "ingredients"
	case Categories:
		return "categories"
	}
	return ""
}
