package drag

import "fmt"

// Collection 表示三张联动表格以及属性值伪分组中的拖拽来源/目标。
type Collection string

const (
	CollectionDevice        Collection = "Device"
	CollectionApplication   Collection = "Application"
	CollectionMoveGroup     Collection = "MoveGroup"
	CollectionPropertyValue Collection = "CustomPropertyValue"
)

// Valid 判断集合类型是否已知。
func (c Collection) Valid() bool {
	switch c {
	case CollectionDevice, CollectionApplication, CollectionMoveGroup, CollectionPropertyValue:
		return true
	}
	return false
}

// Mode 复制或移动。
type Mode int

const (
	Move Mode = iota
	Copy
)

func (m Mode) String() string {
	if m == Copy {
		return "Copy"
	}
	return "Move"
}

// MarshalText 以名称序列化。
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText 解析 Copy/Move。
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Copy":
		*m = Copy
	case "Move", "":
		*m = Move
	default:
		return fmt.Errorf("unknown drag mode %q", string(b))
	}
	return nil
}

// Scope 拖拽覆盖的行范围。
type Scope int

const (
	SingleRow Scope = iota
	SelectedRows
	SelectedGroup
)

func (s Scope) String() string {
	switch s {
	case SelectedRows:
		return "SelectedRows"
	case SelectedGroup:
		return "SelectedGroup"
	default:
		return "SingleRow"
	}
}

// MarshalText 以名称序列化。
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 解析范围名称。
func (s *Scope) UnmarshalText(b []byte) error {
	switch string(b) {
	case "SingleRow", "":
		*s = SingleRow
	case "SelectedRows":
		*s = SelectedRows
	case "SelectedGroup":
		*s = SelectedGroup
	default:
		return fmt.Errorf("unknown drag scope %q", string(b))
	}
	return nil
}

// Intent 是分类后的拖拽语义。
type Intent struct {
	Mode   Mode       `json:"mode"`
	Scope  Scope      `json:"scope"`
	Source Collection `json:"source"`
}

func (i Intent) String() string {
	return fmt.Sprintf("%s%s%s", i.Mode, i.Scope, i.Source)
}

// IsCopy 是否为复制语义。
func (i Intent) IsCopy() bool {
	return i.Mode == Copy
}

// DragInput 描述一次拖拽开始时的原始状态，由宿主 UI 提供。
type DragInput struct {
	Source Collection
	// RowID 被拖拽的行，分组表头时为分组键。
	RowID string
	// RowSelected 被拖拽的行是否在当前多选集合中。
	RowSelected bool
	// SelectedIDs 当前多选集合。
	SelectedIDs []string
	// GroupHeader 拖拽的是分组表头，LeafIDs 为其下所有叶子行。
	GroupHeader bool
	LeafIDs     []string
	// CopyModifier 拖拽开始时复制修饰键是否按下。
	CopyModifier bool
}

// Classify 将拖拽输入归类为 Intent，纯函数。
func Classify(in DragInput) Intent {
	intent := Intent{Mode: Move, Scope: SingleRow, Source: in.Source}
	if in.CopyModifier {
		intent.Mode = Copy
	}
	switch {
	case in.GroupHeader:
		intent.Scope = SelectedGroup
	case in.RowSelected && len(in.SelectedIDs) > 1:
		intent.Scope = SelectedRows
	}
	return intent
}

// DraggedIDs 根据 Intent 返回实际被拖拽的行 id。未选中的行永远只拖拽自身。
func DraggedIDs(in DragInput, intent Intent) []string {
	switch intent.Scope {
	case SelectedGroup:
		return append([]string(nil), in.LeafIDs...)
	case SelectedRows:
		return append([]string(nil), in.SelectedIDs...)
	default:
		if in.RowID == "" {
			return nil
		}
		return []string{in.RowID}
	}
}
