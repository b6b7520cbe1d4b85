package domain

import "time"

// NodeRow 是批量写入图存储的统一 DTO。
type NodeRow struct {
	Key        string         `json:"key"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
	ProjectID  string         `json:"project_id"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RelRow 代表一条成员关系。
type RelRow struct {
	StartKey   string         `json:"start_key"`
	EndKey     string         `json:"end_key"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	ProjectID  string         `json:"project_id"`
}
