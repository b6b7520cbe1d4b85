package domain

import (
	"fmt"
	"sort"
	"strings"
)

const (
	LabelInventory   = "Inventory"
	LabelNode        = "ComputeNode"
	LabelApplication = "Application"
	LabelMoveGroup   = "MoveGroup"
	LabelProperty    = "CustomProperty"

	RelMemberOf    = "MEMBER_OF"
	RelInMoveGroup = "IN_MOVE_GROUP"
	RelHasValue    = "HAS_VALUE"
)

const (
	PrefixNode        = "NODE"
	PrefixApplication = "APP"
	PrefixMoveGroup   = "MG"
	PrefixProperty    = "PROP"
)

// MakeKey 生成图中的唯一键，带项目和实体前缀以避免不同项目、实体冲突。
func MakeKey(projectID, prefix string, rawID any) string {
	return fmt.Sprintf("%s:%s_%v", projectID, prefix, rawID)
}

// LabelPattern 根据标签集合拼成 Cypher 模板所需的字符串，如 ":A:B"。
func LabelPattern(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return ":" + strings.Join(sorted, ":")
}

// JoinLabels 简单拼接标签用于 map key（内部使用）。
func JoinLabels(labels []string) string {
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return strings.Join(sorted, ":")
}
