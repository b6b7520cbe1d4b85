package mutation

import (
	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/drag"
)

// CopyOrMoveProperties 将属性值分配从来源设备复制或移动到一个目标设备。
// 来源属性与取值由 SourceGroup 给出，ids 为当前携带该取值的设备。
// 复制只作用于 TargetID 一个设备，拒绝复制到多个设备由调用方负责。
func CopyOrMoveProperties(m domain.Model, p drag.Payload, ids []string, isCopy bool) (domain.Model, Result) {
	mustSource(p, drag.CollectionPropertyValue)
	out := m.Clone()
	var res Result

	switch p.Target {
	case drag.CollectionDevice:
		propertyToDevice(&out, p, ids, isCopy, &res)
	case drag.CollectionApplication, drag.CollectionMoveGroup, drag.CollectionPropertyValue:
		res.fail("Custom property values can only be dropped onto compute instances")
		res.Message = propertySummary(isCopy, 0, "")
	default:
		panic(unknownTarget(p))
	}
	return out, res
}

func propertyToDevice(m *domain.Model, p drag.Payload, ids []string, isCopy bool, res *Result) {
	prop, ok := resolveProperty(m, p.SourceGroup.PropertyID, res)
	if !ok {
		res.Message = propertySummary(isCopy, 0, "")
		return
	}
	value := p.SourceGroup.Key
	if !prop.HasValue(value) {
		res.fail("%s has no value %q", nameOr(prop.Title, prop.ID), value)
		res.Message = propertySummary(isCopy, 0, "")
		return
	}

	if p.TargetID == "" {
		if isCopy {
			res.fail("Custom property values can only be copied onto a compute instance")
			res.Message = propertySummary(isCopy, 0, "")
			return
		}
		cleared := 0
		for _, id := range ids {
			node := m.Node(id)
			if node == nil {
				res.fail("Compute instance %s no longer exists", id)
				continue
			}
			if node.Properties[prop.ID] == value {
				delete(node.Properties, prop.ID)
				cleared++
			}
		}
		res.Message = summary(false, nounNode, cleared, "no "+nameOr(prop.Title, prop.ID))
		return
	}

	target := m.Node(p.TargetID)
	if target == nil {
		res.fail("Compute instance %s no longer exists", p.TargetID)
		res.Message = propertySummary(isCopy, 0, "")
		return
	}
	if !setNodeValue(target, prop, value, isCopy, res) {
		res.Message = propertySummary(isCopy, 0, "")
		return
	}
	if !isCopy {
		for _, id := range ids {
			if id == target.ID {
				continue
			}
			node := m.Node(id)
			if node == nil {
				res.fail("Compute instance %s no longer exists", id)
				continue
			}
			if node.Properties[prop.ID] == value {
				delete(node.Properties, prop.ID)
			}
		}
	}
	res.Message = propertySummary(isCopy, 1, valueLabel(prop, value)+" to "+nodeLabel(target))
}

func propertySummary(isCopy bool, placed int, what string) string {
	if placed == 0 {
		if isCopy {
			return "No custom property values were copied"
		}
		return "No custom property values were moved"
	}
	return verb(isCopy) + " " + what
}
