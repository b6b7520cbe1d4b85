package mutation

import (
	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/drag"
)

// CopyOrMoveDevices 将设备复制或移动到应用、迁移组或属性值。
// 移动会先移除同类目标下的原有成员关系；复制只增加成员关系。
func CopyOrMoveDevices(m domain.Model, p drag.Payload, ids []string, isCopy bool) (domain.Model, Result) {
	mustSource(p, drag.CollectionDevice)
	out := m.Clone()
	var res Result

	switch p.Target {
	case drag.CollectionApplication:
		devicesToApplication(&out, p, ids, isCopy, &res)
	case drag.CollectionMoveGroup:
		devicesToMoveGroup(&out, p, ids, isCopy, &res)
	case drag.CollectionPropertyValue:
		devicesToPropertyValue(&out, p, ids, isCopy, &res)
	case drag.CollectionDevice:
		res.fail("Compute instances cannot be dropped onto other compute instances")
		res.Message = summary(isCopy, nounNode, 0, "")
	default:
		panic(unknownTarget(p))
	}
	return out, res
}

func devicesToApplication(m *domain.Model, p drag.Payload, ids []string, isCopy bool, res *Result) {
	var app *domain.Application
	if p.TargetID != "" {
		if app = m.Application(p.TargetID); app == nil {
			res.fail("Application %s no longer exists", p.TargetID)
			res.Message = summary(isCopy, nounNode, 0, "")
			return
		}
	} else if isCopy {
		res.fail("Compute instances can only be copied into an Application")
		res.Message = summary(isCopy, nounNode, 0, "")
		return
	}

	placed := 0
	for _, id := range ids {
		if m.Node(id) == nil {
			res.fail("Compute instance %s no longer exists", id)
			continue
		}
		if !isCopy {
			keep := ""
			if app != nil {
				keep = app.ID
			}
			removeNodeFromApplications(m, id, keep)
		}
		if app != nil {
			app.NodeIDs, _ = domain.AddID(app.NodeIDs, id)
		}
		placed++
	}
	res.Message = summary(isCopy, nounNode, placed, applicationLabel(app))
}

func devicesToMoveGroup(m *domain.Model, p drag.Payload, ids []string, isCopy bool, res *Result) {
	var group *domain.MoveGroup
	if p.TargetID != "" {
		if group = m.MoveGroup(p.TargetID); group == nil {
			res.fail("Move Group %s no longer exists", p.TargetID)
			res.Message = summary(isCopy, nounNode, 0, "")
			return
		}
	} else if isCopy {
		res.fail("Compute instances can only be copied into a Move Group")
		res.Message = summary(isCopy, nounNode, 0, "")
		return
	}

	placed := 0
	for _, id := range ids {
		node := m.Node(id)
		if node == nil {
			res.fail("Compute instance %s no longer exists", id)
			continue
		}
		if group == nil {
			removeNodeFromMoveGroups(m, id, "")
			placed++
			continue
		}
		if current, ok := assignNodeToMoveGroup(m, group, id, isCopy); !ok {
			res.fail("%s already belongs to %s", nodeLabel(node), moveGroupLabel(m.MoveGroup(current)))
			continue
		}
		placed++
	}
	res.Message = summary(isCopy, nounNode, placed, moveGroupLabel(group))
}

func devicesToPropertyValue(m *domain.Model, p drag.Payload, ids []string, isCopy bool, res *Result) {
	prop, ok := resolveProperty(m, p.TargetProperty, res)
	if !ok {
		res.Message = summary(isCopy, nounNode, 0, "")
		return
	}
	value := p.TargetID
	if value == "" {
		if isCopy {
			res.fail("Compute instances can only be copied onto a value of %s", nameOr(prop.Title, prop.ID))
			res.Message = summary(isCopy, nounNode, 0, "")
			return
		}
		cleared := 0
		for _, id := range ids {
			node := m.Node(id)
			if node == nil {
				res.fail("Compute instance %s no longer exists", id)
				continue
			}
			delete(node.Properties, prop.ID)
			cleared++
		}
		res.Message = summary(false, nounNode, cleared, "no "+nameOr(prop.Title, prop.ID))
		return
	}
	if !prop.HasValue(value) {
		res.fail("%s has no value %q", nameOr(prop.Title, prop.ID), value)
		res.Message = summary(isCopy, nounNode, 0, "")
		return
	}

	placed := 0
	for _, id := range ids {
		node := m.Node(id)
		if node == nil {
			res.fail("Compute instance %s no longer exists", id)
			continue
		}
		if !setNodeValue(node, prop, value, isCopy, res) {
			continue
		}
		placed++
	}
	res.Message = summary(isCopy, nounNode, placed, valueLabel(prop, value))
}

// resolveProperty 查找目标属性；未保存的属性不能作为引用。
func resolveProperty(m *domain.Model, id string, res *Result) (*domain.CustomProperty, bool) {
	prop := m.Property(id)
	if prop == nil {
		res.fail("Custom property %s no longer exists", id)
		return nil, false
	}
	if prop.IsUnsaved() {
		res.fail("Custom property %s has not been saved yet", nameOr(prop.Title, prop.ID))
		return nil, false
	}
	return prop, true
}

// setNodeValue 设备每个属性只能有一个值：复制遇到其他取值时失败，移动直接替换。
func setNodeValue(node *domain.Node, prop *domain.CustomProperty, value string, isCopy bool, res *Result) bool {
	current, has := node.Properties[prop.ID]
	if has && current != value && isCopy {
		res.fail("%s already carries %s", nodeLabel(node), valueLabel(prop, current))
		return false
	}
	if node.Properties == nil {
		node.Properties = make(map[string]string)
	}
	node.Properties[prop.ID] = value
	return true
}
