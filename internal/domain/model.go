package domain

// NodeType 表示计算实例类型。
type NodeType string

const (
	NodeTypePhysical NodeType = "Physical"
	NodeTypeVirtual  NodeType = "Virtual"
	NodeTypeUnknown  NodeType = "Unknown"
)

// Node 表示一个计算实例（设备）。应用、迁移组的成员关系记录在组一侧，
// 通过 Model 的查询方法读取。
type Node struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Type       NodeType          `json:"type" yaml:"type"`
	IPs        []string          `json:"ips,omitempty" yaml:"ips,omitempty"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
	Excluded   bool              `json:"excluded" yaml:"excluded"`
}

// Application 即 NodeGroup，成员为有序且不重复的节点 id。
type Application struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	NodeIDs []string `json:"node_ids" yaml:"node_ids"`
}

// MoveGroup 迁移组，可直接包含节点，也可包含应用（group_ids）。
type MoveGroup struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	NodeIDs        []string `json:"node_ids" yaml:"node_ids"`
	ApplicationIDs []string `json:"group_ids" yaml:"group_ids"`
}

// Model 是一次项目库存快照。变更函数总是返回新的 Model，不在原地修改。
type Model struct {
	Nodes        []Node           `json:"nodes" yaml:"nodes"`
	Applications []Application    `json:"applications" yaml:"applications"`
	MoveGroups   []MoveGroup      `json:"move_groups" yaml:"move_groups"`
	Properties   []CustomProperty `json:"custom_properties" yaml:"custom_properties"`
}

// Clone 深拷贝整个快照。
func (m Model) Clone() Model {
	out := Model{
		Nodes:        make([]Node, len(m.Nodes)),
		Applications: make([]Application, len(m.Applications)),
		MoveGroups:   make([]MoveGroup, len(m.MoveGroups)),
		Properties:   make([]CustomProperty, len(m.Properties)),
	}
	for i, n := range m.Nodes {
		out.Nodes[i] = n.clone()
	}
	for i, a := range m.Applications {
		a.NodeIDs = cloneStrings(a.NodeIDs)
		out.Applications[i] = a
	}
	for i, g := range m.MoveGroups {
		g.NodeIDs = cloneStrings(g.NodeIDs)
		g.ApplicationIDs = cloneStrings(g.ApplicationIDs)
		out.MoveGroups[i] = g
	}
	for i, p := range m.Properties {
		p.Values = cloneStrings(p.Values)
		out.Properties[i] = p
	}
	return out
}

func (n Node) clone() Node {
	n.IPs = cloneStrings(n.IPs)
	if n.Properties != nil {
		props := make(map[string]string, len(n.Properties))
		for k, v := range n.Properties {
			props[k] = v
		}
		n.Properties = props
	}
	return n
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// Node 按 id 查找节点，返回可修改的指针。
func (m *Model) Node(id string) *Node {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			return &m.Nodes[i]
		}
	}
	return nil
}

// Application 按 id 查找应用。
func (m *Model) Application(id string) *Application {
	for i := range m.Applications {
		if m.Applications[i].ID == id {
			return &m.Applications[i]
		}
	}
	return nil
}

// MoveGroup 按 id 查找迁移组。
func (m *Model) MoveGroup(id string) *MoveGroup {
	for i := range m.MoveGroups {
		if m.MoveGroups[i].ID == id {
			return &m.MoveGroups[i]
		}
	}
	return nil
}

// Property 按 id 查找自定义属性。
func (m *Model) Property(id string) *CustomProperty {
	for i := range m.Properties {
		if m.Properties[i].ID == id {
			return &m.Properties[i]
		}
	}
	return nil
}
