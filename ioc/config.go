package ioc

import (
	"os"
	"strings"

	"cmdbgroup/internal/app"
)

const defaultConfigPath = "configs/config.yaml"

// InitConfig 读取应用配置，CMDBGROUP_CONFIG 可覆盖默认路径。
func InitConfig() (app.Config, error) {
	path := strings.TrimSpace(os.Getenv("CMDBGROUP_CONFIG"))
	if path == "" {
		path = defaultConfigPath
	}
	return app.LoadConfig(path)
}
