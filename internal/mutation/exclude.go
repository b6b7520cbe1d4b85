package mutation

import (
	"fmt"

	"cmdbgroup/internal/domain"
)

// Exclude 将设备排除出计算，不改变任何成员关系，重复排除不报错。
func Exclude(m domain.Model, ids []string) (domain.Model, Result) {
	return setExcluded(m, ids, true)
}

// Unexclude 恢复设备参与计算。
func Unexclude(m domain.Model, ids []string) (domain.Model, Result) {
	return setExcluded(m, ids, false)
}

func setExcluded(m domain.Model, ids []string, excluded bool) (domain.Model, Result) {
	out := m.Clone()
	var res Result
	changed := 0
	for _, id := range ids {
		node := out.Node(id)
		if node == nil {
			res.fail("Compute instance %s no longer exists", id)
			continue
		}
		if node.Excluded != excluded {
			node.Excluded = excluded
			changed++
		}
	}
	if excluded {
		res.Message = fmt.Sprintf("Excluded %s from calculation", nounNode.count(changed))
	} else {
		res.Message = fmt.Sprintf("Included %s in calculation", nounNode.count(changed))
	}
	return out, res
}
