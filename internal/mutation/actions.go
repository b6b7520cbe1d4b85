package mutation

import (
	"fmt"
	"strings"

	"cmdbgroup/internal/domain"
)

// RemoveFromMoveGroup 清除设备的直接迁移组分配；经由应用继承的迁移组不受影响。
func RemoveFromMoveGroup(m domain.Model, ids []string) (domain.Model, Result) {
	out := m.Clone()
	var res Result
	removed := 0
	for _, id := range ids {
		if out.Node(id) == nil {
			res.fail("Compute instance %s no longer exists", id)
			continue
		}
		if out.MoveGroupOf(id) == "" {
			continue
		}
		removeNodeFromMoveGroups(&out, id, "")
		removed++
	}
	res.Message = fmt.Sprintf("Removed %s from move groups", nounNode.count(removed))
	return out, res
}

// AssignProperty 多选右键菜单：为选中的设备设置属性值，已有取值被替换。value 为空时清除该属性。
func AssignProperty(m domain.Model, ids []string, propertyID, value string) (domain.Model, Result) {
	out := m.Clone()
	var res Result
	prop, ok := resolveProperty(&out, propertyID, &res)
	if !ok {
		res.Message = "No compute instances were updated"
		return m, res
	}
	if value == "" {
		cleared := 0
		for _, id := range ids {
			node := out.Node(id)
			if node == nil {
				res.fail("Compute instance %s no longer exists", id)
				continue
			}
			if _, has := node.Properties[prop.ID]; !has {
				continue
			}
			delete(node.Properties, prop.ID)
			cleared++
		}
		res.Message = fmt.Sprintf("Cleared %s on %s", nameOr(prop.Title, prop.ID), nounNode.count(cleared))
		return out, res
	}
	if !prop.HasValue(value) {
		res.fail("%s has no value %q", nameOr(prop.Title, prop.ID), value)
		res.Message = "No compute instances were updated"
		return m, res
	}
	updated := 0
	for _, id := range ids {
		node := out.Node(id)
		if node == nil {
			res.fail("Compute instance %s no longer exists", id)
			continue
		}
		setNodeValue(node, prop, value, false, &res)
		updated++
	}
	res.Message = fmt.Sprintf("Set %s on %s", valueLabel(prop, value), nounNode.count(updated))
	return out, res
}

// AddPropertyValue 为属性追加一个取值，重复值不报错也不追加。
func AddPropertyValue(m domain.Model, propertyID, value string) (domain.Model, Result) {
	value = strings.TrimSpace(value)
	if value == "" {
		return m, Result{Errors: []string{"Custom property values cannot be empty"}, Message: "No values were added"}
	}
	out := m.Clone()
	prop := out.Property(propertyID)
	if prop == nil {
		return m, Result{Errors: []string{fmt.Sprintf("Custom property %s no longer exists", propertyID)}, Message: "No values were added"}
	}
	if !prop.AddValue(value) {
		return out, Result{Message: fmt.Sprintf("%s already exists", valueLabel(prop, value))}
	}
	return out, Result{Message: fmt.Sprintf("Added %s", valueLabel(prop, value))}
}

// CreateProperty 创建本地属性，保存前 id 为本地 uuid。
func CreateProperty(m domain.Model, title string, values []string) (domain.Model, domain.CustomProperty, Result) {
	out := m.Clone()
	prop := domain.NewLocalProperty(strings.TrimSpace(title))
	var res Result
	for _, v := range values {
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		if !prop.AddValue(v) {
			res.fail("Duplicate value %q ignored", v)
		}
	}
	out.Properties = append(out.Properties, prop)
	res.Message = fmt.Sprintf("Created custom property %s", nameOr(prop.Title, prop.ID))
	return out, prop, res
}

// CreateApplication 用选中的设备新建应用。
func CreateApplication(m domain.Model, name string, ids []string) (domain.Model, domain.Application, Result) {
	out := m.Clone()
	app := domain.Application{ID: domain.NewLocalID(), Name: strings.TrimSpace(name)}
	var res Result
	for _, id := range ids {
		if out.Node(id) == nil {
			res.fail("Compute instance %s no longer exists", id)
			continue
		}
		app.NodeIDs, _ = domain.AddID(app.NodeIDs, id)
	}
	out.Applications = append(out.Applications, app)
	res.Message = fmt.Sprintf("Created %s with %s", applicationLabel(&app), nounNode.count(len(app.NodeIDs)))
	return out, app, res
}

// CreateMoveGroup 用选中的设备新建迁移组，设备原有的直接迁移组分配被替换。
func CreateMoveGroup(m domain.Model, name string, ids []string) (domain.Model, domain.MoveGroup, Result) {
	out := m.Clone()
	out.MoveGroups = append(out.MoveGroups, domain.MoveGroup{ID: domain.NewLocalID(), Name: strings.TrimSpace(name)})
	group := &out.MoveGroups[len(out.MoveGroups)-1]
	var res Result
	for _, id := range ids {
		if out.Node(id) == nil {
			res.fail("Compute instance %s no longer exists", id)
			continue
		}
		assignNodeToMoveGroup(&out, group, id, false)
	}
	res.Message = fmt.Sprintf("Created %s with %s", moveGroupLabel(group), nounNode.count(len(group.NodeIDs)))
	return out, *group, res
}
