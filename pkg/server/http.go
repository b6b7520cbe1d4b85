package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cmdbgroup/internal/app"
	"cmdbgroup/internal/calc"
	"cmdbgroup/internal/job"
)

// HTTPServer 封装 HTTP 服务运行所需的依赖。
type HTTPServer struct {
	Engine      *gin.Engine
	Logger      *zap.Logger
	Config      app.Config
	Service     *app.Service
	Poller      *calc.Poller
	Revalidator *job.Revalidator
}

// NewHTTPServer 构建 HTTPServer。
func NewHTTPServer(engine *gin.Engine, logger *zap.Logger, cfg app.Config, svc *app.Service, poller *calc.Poller, revalidator *job.Revalidator) *HTTPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPServer{
		Engine:      engine,
		Logger:      logger,
		Config:      cfg,
		Service:     svc,
		Poller:      poller,
		Revalidator: revalidator,
	}
}

// Run 启动 HTTP 服务及相关后台任务，ctx 取消后优雅退出。
func (s *HTTPServer) Run(ctx context.Context) error {
	listen := strings.TrimSpace(s.Config.HTTP.Addr)
	if listen == "" {
		listen = ":8080"
	}

	if s.Service != nil {
		if err := s.Service.Init(ctx); err != nil {
			s.Logger.Error("初始化失败", zap.Error(err))
		} else {
			s.Logger.Info("初始化完成")
		}
	}
	if s.Poller != nil {
		defer s.Poller.Start(ctx)()
	}
	if s.Revalidator != nil {
		defer s.Revalidator.Start(ctx)()
	}

	srv := &http.Server{
		Addr:         listen,
		Handler:      s.Engine,
		ReadTimeout:  time.Duration(s.Config.HTTP.ReadTimeoutSecond) * time.Second,
		WriteTimeout: time.Duration(s.Config.HTTP.WriteTimeoutSecond) * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server starting", zap.String("listen", listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	grace := time.Duration(s.Config.HTTP.ShutdownGraceSecond) * time.Second
	if grace <= 0 {
		grace = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	s.Logger.Info("http server stopping")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Shutdown 释放资源。
func (s *HTTPServer) Shutdown(context.Context) {
	if s.Service != nil {
		s.Service.Close()
	}
	_ = s.Logger.Sync()
}
