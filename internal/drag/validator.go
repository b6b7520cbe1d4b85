package drag

import (
	"fmt"

	"cmdbgroup/internal/domain"
)

// Category 是校验时使用的语义类别。
type Category int

const (
	categoryUnset Category = iota
	// CategoryEmpty 没有分组归类的行或空白区域（Application "" 即无分组）。
	CategoryEmpty
	CategoryDevice
	CategoryApplication
	CategoryMoveGroup
	CategoryPropertyValue
)

func (c Category) String() string {
	switch c {
	case CategoryEmpty:
		return "Empty"
	case CategoryDevice:
		return "Device"
	case CategoryApplication:
		return "Application"
	case CategoryMoveGroup:
		return "MoveGroup"
	case CategoryPropertyValue:
		return "CustomPropertyValue"
	default:
		return "Unset"
	}
}

// Endpoint 一侧拖放端点的语义。NodeType 仅对设备行有意义。
type Endpoint struct {
	Category Category
	NodeType domain.NodeType
}

// CanDrop 判断拖放是否合法：同一语义类别之间的复制/移动是空操作，拒绝；
// 虚拟机设备放到属性值行上始终允许。
func CanDrop(src, dst Endpoint) bool {
	if src.NodeType == domain.NodeTypeVirtual && dst.Category == CategoryPropertyValue {
		return true
	}
	return !sameCategory(src, dst)
}

func sameCategory(a, b Endpoint) bool {
	if a.Category != b.Category {
		return false
	}
	if a.Category == CategoryDevice {
		return a.NodeType == b.NodeType
	}
	return true
}

// MarshalText 以名称序列化类别。
func (c Category) MarshalText() ([]byte, error) {
	if c == categoryUnset {
		return []byte(""), nil
	}
	return []byte(c.String()), nil
}

// UnmarshalText 解析类别名称，空串表示未设置。
func (c *Category) UnmarshalText(b []byte) error {
	switch string(b) {
	case "":
		*c = categoryUnset
	case "Empty":
		*c = CategoryEmpty
	case "Device":
		*c = CategoryDevice
	case "Application":
		*c = CategoryApplication
	case "MoveGroup":
		*c = CategoryMoveGroup
	case "CustomPropertyValue":
		*c = CategoryPropertyValue
	default:
		return fmt.Errorf("unknown category %q", string(b))
	}
	return nil
}

func categoryOf(c Collection) Category {
	switch c {
	case CollectionDevice:
		return CategoryDevice
	case CollectionApplication:
		return CategoryApplication
	case CollectionMoveGroup:
		return CategoryMoveGroup
	case CollectionPropertyValue:
		return CategoryPropertyValue
	}
	return categoryUnset
}

// ResolveEndpoints 根据快照和载荷推导两侧端点。
func ResolveEndpoints(m *domain.Model, p Payload) (Endpoint, Endpoint) {
	src := Endpoint{Category: categoryOf(p.Source)}
	if p.SourceGroup.Category != categoryUnset {
		src.Category = p.SourceGroup.Category
	}
	if p.Source == CollectionDevice {
		src.NodeType = commonNodeType(m, p.IDs)
	}

	dst := Endpoint{Category: categoryOf(p.Target)}
	if p.TargetID == "" {
		dst.Category = CategoryEmpty
	} else if p.Target == CollectionDevice {
		if n := m.Node(p.TargetID); n != nil {
			dst.NodeType = n.Type
		}
	}
	return src, dst
}

// commonNodeType 所有设备类型一致时返回该类型，否则返回空。
func commonNodeType(m *domain.Model, ids []string) domain.NodeType {
	var t domain.NodeType
	for i, id := range ids {
		n := m.Node(id)
		if n == nil {
			continue
		}
		if i == 0 || t == "" {
			t = n.Type
			continue
		}
		if n.Type != t {
			return ""
		}
	}
	return t
}
