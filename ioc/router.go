package ioc

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"cmdbgroup/internal/app"
	"cmdbgroup/internal/router"
)

// InitInventoryHandler 构建库存 HTTP 处理器。
func InitInventoryHandler(svc *app.Service, logger *zap.Logger) *router.InventoryHandler {
	return router.NewInventoryHandler(svc, logger.Named("http"))
}

// InitGinEngine 构建 gin 引擎。
func InitGinEngine(handler *router.InventoryHandler, reg *prometheus.Registry, logger *zap.Logger) *gin.Engine {
	return router.NewEngine(handler, reg, logger.Named("access"))
}
