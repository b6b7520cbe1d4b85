package mutation

import (
	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/drag"
)

// CopyOrMoveMoveGroups 将迁移组放到设备或应用行上。设备、应用最多属于一个迁移组，
// 因此一次只有第一个迁移组会被使用。
func CopyOrMoveMoveGroups(m domain.Model, p drag.Payload, ids []string, isCopy bool) (domain.Model, Result) {
	mustSource(p, drag.CollectionMoveGroup)
	out := m.Clone()
	var res Result

	switch p.Target {
	case drag.CollectionDevice, drag.CollectionApplication:
		moveGroupsToRow(&out, p, ids, isCopy, &res)
	case drag.CollectionMoveGroup:
		res.fail("Move groups cannot be dropped onto other move groups")
		res.Message = summary(isCopy, nounMoveGroup, 0, "")
	case drag.CollectionPropertyValue:
		res.fail("Move groups cannot be assigned custom property values")
		res.Message = summary(isCopy, nounMoveGroup, 0, "")
	default:
		panic(unknownTarget(p))
	}
	return out, res
}

func moveGroupsToRow(m *domain.Model, p drag.Payload, ids []string, isCopy bool, res *Result) {
	if p.TargetID == "" {
		res.fail("Move groups must be dropped onto a row")
		res.Message = summary(isCopy, nounMoveGroup, 0, "")
		return
	}

	var (
		label    string
		assign   func(g *domain.MoveGroup) (string, bool)
		describe string
	)
	switch p.Target {
	case drag.CollectionDevice:
		node := m.Node(p.TargetID)
		if node == nil {
			res.fail("Compute instance %s no longer exists", p.TargetID)
			res.Message = summary(isCopy, nounMoveGroup, 0, "")
			return
		}
		label, describe = nodeLabel(node), "A compute instance"
		assign = func(g *domain.MoveGroup) (string, bool) {
			return assignNodeToMoveGroup(m, g, node.ID, isCopy)
		}
	default:
		app := m.Application(p.TargetID)
		if app == nil {
			res.fail("Application %s no longer exists", p.TargetID)
			res.Message = summary(isCopy, nounMoveGroup, 0, "")
			return
		}
		label, describe = applicationLabel(app), "An application"
		assign = func(g *domain.MoveGroup) (string, bool) {
			return assignApplicationToMoveGroup(m, g, app.ID, isCopy)
		}
	}

	placed := 0
	for _, id := range ids {
		group := m.MoveGroup(id)
		if group == nil {
			res.fail("Move Group %s no longer exists", id)
			continue
		}
		if placed > 0 {
			res.fail("%s can belong to one Move Group only, skipped %s", describe, moveGroupLabel(group))
			continue
		}
		if current, ok := assign(group); !ok {
			res.fail("%s already belongs to %s", label, moveGroupLabel(m.MoveGroup(current)))
			continue
		}
		placed++
	}
	res.Message = summary(isCopy, nounMoveGroup, placed, label)
}
