package mutation

import (
	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/drag"
)

// CopyOrMoveApplications 将应用放入迁移组，或放到设备行上改变设备的应用归属。
func CopyOrMoveApplications(m domain.Model, p drag.Payload, ids []string, isCopy bool) (domain.Model, Result) {
	mustSource(p, drag.CollectionApplication)
	out := m.Clone()
	var res Result

	switch p.Target {
	case drag.CollectionMoveGroup:
		applicationsToMoveGroup(&out, p, ids, isCopy, &res)
	case drag.CollectionDevice:
		applicationsToDevice(&out, p, ids, isCopy, &res)
	case drag.CollectionApplication:
		res.fail("Applications cannot be dropped onto other applications")
		res.Message = summary(isCopy, nounApplication, 0, "")
	case drag.CollectionPropertyValue:
		res.fail("Applications cannot be assigned custom property values")
		res.Message = summary(isCopy, nounApplication, 0, "")
	default:
		panic(unknownTarget(p))
	}
	return out, res
}

func applicationsToMoveGroup(m *domain.Model, p drag.Payload, ids []string, isCopy bool, res *Result) {
	var group *domain.MoveGroup
	if p.TargetID != "" {
		if group = m.MoveGroup(p.TargetID); group == nil {
			res.fail("Move Group %s no longer exists", p.TargetID)
			res.Message = summary(isCopy, nounApplication, 0, "")
			return
		}
	} else if isCopy {
		res.fail("Applications can only be copied into a Move Group")
		res.Message = summary(isCopy, nounApplication, 0, "")
		return
	}

	placed := 0
	for _, id := range ids {
		app := m.Application(id)
		if app == nil {
			res.fail("Application %s no longer exists", id)
			continue
		}
		if group == nil {
			removeApplicationFromMoveGroups(m, id, "")
			placed++
			continue
		}
		if current, ok := assignApplicationToMoveGroup(m, group, id, isCopy); !ok {
			res.fail("%s already belongs to %s", applicationLabel(app), moveGroupLabel(m.MoveGroup(current)))
			continue
		}
		placed++
	}
	res.Message = summary(isCopy, nounApplication, placed, moveGroupLabel(group))
}

// applicationsToDevice 复制时设备加入拖拽的应用；移动时设备的应用归属变为恰好这些应用。
func applicationsToDevice(m *domain.Model, p drag.Payload, ids []string, isCopy bool, res *Result) {
	if p.TargetID == "" {
		res.fail("Applications must be dropped onto a compute instance")
		res.Message = summary(isCopy, nounApplication, 0, "")
		return
	}
	node := m.Node(p.TargetID)
	if node == nil {
		res.fail("Compute instance %s no longer exists", p.TargetID)
		res.Message = summary(isCopy, nounApplication, 0, "")
		return
	}

	var apps []*domain.Application
	for _, id := range ids {
		app := m.Application(id)
		if app == nil {
			res.fail("Application %s no longer exists", id)
			continue
		}
		apps = append(apps, app)
	}
	if len(apps) > 0 && !isCopy {
		for i := range m.Applications {
			if !domain.ContainsID(ids, m.Applications[i].ID) {
				m.Applications[i].NodeIDs, _ = domain.RemoveID(m.Applications[i].NodeIDs, node.ID)
			}
		}
	}
	for _, app := range apps {
		app.NodeIDs, _ = domain.AddID(app.NodeIDs, node.ID)
	}
	res.Message = summary(isCopy, nounApplication, len(apps), nodeLabel(node))
}
