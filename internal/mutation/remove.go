package mutation

import (
	"fmt"

	"cmdbgroup/internal/domain"
)

// RemoveMode 从应用移除时的选择方式。
type RemoveMode string

const (
	RemoveAll               RemoveMode = "all"
	RemoveSelected          RemoveMode = "selected"
	RemoveAllExceptSelected RemoveMode = "all_except_selected"
)

// 以下三个函数作用于单个节点的应用集合，返回移除后保留的应用。

// dropAll 移除全部应用。
func dropAll(current, _ []string) []string {
	return nil
}

// dropSelected 只移除选中的应用。
func dropSelected(current, selected []string) []string {
	var kept []string
	for _, id := range current {
		if !domain.ContainsID(selected, id) {
			kept = append(kept, id)
		}
	}
	return kept
}

// keepSelected 移除除选中以外的应用。
func keepSelected(current, selected []string) []string {
	var kept []string
	for _, id := range current {
		if domain.ContainsID(selected, id) {
			kept = append(kept, id)
		}
	}
	return kept
}

// RemoveFromAllApplications 将设备从所有应用中移除，迁移组直接成员关系不变。
func RemoveFromAllApplications(m domain.Model, ids []string) (domain.Model, Result) {
	return removeFromApplications(m, ids, nil, dropAll)
}

// RemoveFromSelectedApplications 将设备从选中的应用中移除。选择为空时不做任何修改。
func RemoveFromSelectedApplications(m domain.Model, ids, appIDs []string) (domain.Model, Result) {
	if len(appIDs) == 0 {
		return m, Result{Errors: []string{"No applications selected"}, Message: "No compute instances were removed"}
	}
	return removeFromApplications(m, ids, appIDs, dropSelected)
}

// RemoveFromUnselectedApplications 将设备从除选中以外的所有应用中移除。
// 选择为空时拒绝执行，而不是退化为从全部应用移除。
func RemoveFromUnselectedApplications(m domain.Model, ids, appIDs []string) (domain.Model, Result) {
	if len(appIDs) == 0 {
		return m, Result{Errors: []string{"No applications selected"}, Message: "No compute instances were removed"}
	}
	return removeFromApplications(m, ids, appIDs, keepSelected)
}

// RemoveFromApplications 按模式分派到对应的移除函数。
func RemoveFromApplications(m domain.Model, mode RemoveMode, ids, appIDs []string) (domain.Model, Result) {
	switch mode {
	case RemoveAll:
		return RemoveFromAllApplications(m, ids)
	case RemoveSelected:
		return RemoveFromSelectedApplications(m, ids, appIDs)
	case RemoveAllExceptSelected:
		return RemoveFromUnselectedApplications(m, ids, appIDs)
	}
	return m, Result{Errors: []string{fmt.Sprintf("Unknown remove mode %q", mode)}, Message: "No compute instances were removed"}
}

func removeFromApplications(m domain.Model, ids, selected []string, next func(current, selected []string) []string) (domain.Model, Result) {
	out := m.Clone()
	var res Result
	for _, appID := range selected {
		if out.Application(appID) == nil {
			res.fail("Application %s no longer exists", appID)
		}
	}

	removed := 0
	for _, id := range ids {
		if out.Node(id) == nil {
			res.fail("Compute instance %s no longer exists", id)
			continue
		}
		current := out.ApplicationsOf(id)
		kept := next(current, selected)
		touched := false
		for _, appID := range current {
			if domain.ContainsID(kept, appID) {
				continue
			}
			app := out.Application(appID)
			app.NodeIDs, _ = domain.RemoveID(app.NodeIDs, id)
			touched = true
		}
		if touched {
			removed++
		}
	}
	res.Message = fmt.Sprintf("Removed %s from applications", nounNode.count(removed))
	return out, res
}
