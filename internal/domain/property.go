package domain

import "github.com/google/uuid"

// localIDLength 本地生成 id（uuid）的长度，服务端确认前属性 id 保持该长度。
const localIDLength = 36

// CustomProperty 自定义属性，值集合有序且不重复。
type CustomProperty struct {
	ID     string   `json:"id" yaml:"id"`
	Title  string   `json:"title" yaml:"title"`
	Values []string `json:"values" yaml:"values"`
}

// NewLocalProperty 创建尚未保存的属性，id 为本地 uuid。
func NewLocalProperty(title string) CustomProperty {
	return CustomProperty{ID: uuid.NewString(), Title: title}
}

// IsUnsaved 本地 id 尚未被服务端替换时返回 true，此时不能作为稳定引用。
func (p CustomProperty) IsUnsaved() bool {
	return len(p.ID) == localIDLength
}

// HasValue 判断值是否存在。
func (p CustomProperty) HasValue(value string) bool {
	return containsID(p.Values, value)
}

// AddValue 追加值，已存在时不变。
func (p *CustomProperty) AddValue(value string) bool {
	var added bool
	p.Values, added = AddID(p.Values, value)
	return added
}

// NewLocalID 生成本地实体 id，保存前与服务端 id 区分。
func NewLocalID() string {
	return uuid.NewString()
}
