//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"cmdbgroup/ioc"
	"cmdbgroup/pkg/server"
)

func InitApp(ctx context.Context) (*server.HTTPServer, func(), error) {
	panic(wire.Build(
		ioc.InitConfig,
		ioc.InitLogger,
		ioc.InitRegistry,
		ioc.InitBackend,
		ioc.InitCache,
		ioc.InitNotificationLog,
		ioc.InitReconciler,
		ioc.InitPoller,
		ioc.InitAppService,
		ioc.InitInventoryHandler,
		ioc.InitGinEngine,
		ioc.InitRevalidator,
		server.NewHTTPServer,
	))
}
