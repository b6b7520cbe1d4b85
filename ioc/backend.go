package ioc

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cmdbgroup/internal/app"
	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/messages"
	"cmdbgroup/internal/snapshot"
	"cmdbgroup/internal/store"
)

// Backend 按 source.mode 选出的数据源、保存、消息与计算实现。
type Backend struct {
	Source snapshot.Source
	Saver  messages.Saver
	Feed   messages.Feed
	Runner messages.RunStarter
	// Schema 仅 neo4j 模式下非空，用于首跑初始化。
	Schema app.SchemaStore
}

// InitBackend 构建后端，返回的 cleanup 关闭底层连接。
func InitBackend(ctx context.Context, cfg app.Config, logger *zap.Logger) (*Backend, func(), error) {
	switch cfg.Source.Mode {
	case app.SourceRemote:
		client, err := newRemoteClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return &Backend{Source: client, Saver: client, Feed: client, Runner: client}, func() {}, nil
	case app.SourceNeo4j:
		client, err := store.NewClient(ctx, store.Config{
			URI:                  cfg.Neo4j.URI,
			Username:             cfg.Neo4j.Username,
			Password:             cfg.Neo4j.Password,
			Database:             cfg.Neo4j.Database,
			MaxConnectionPool:    cfg.Neo4j.MaxConnectionPool,
			ConnectionTimeoutSec: cfg.Neo4j.ConnectTimeoutSecond,
		})
		if err != nil {
			return nil, nil, err
		}
		feed := messages.NewMemoryFeed()
		st := store.New(client, feed, store.Options{
			ProjectID:    cfg.Project.ID,
			BatchSize:    cfg.Neo4j.BatchSize,
			RetryTimes:   cfg.Retry.Attempts,
			RetryBackoff: cfg.Retry.Backoff(),
		}, logger.Named("store"))
		cleanup := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				logger.Warn("关闭 neo4j 连接失败", zap.Error(err))
			}
		}
		return &Backend{Source: st, Saver: st, Feed: feed, Runner: st, Schema: st}, cleanup, nil
	case app.SourceStatic:
		var seed domain.Model
		if cfg.Source.SeedFile != "" {
			m, err := snapshot.LoadFile(cfg.Source.SeedFile)
			if err != nil {
				return nil, nil, err
			}
			seed = m
		}
		feed := messages.NewMemoryFeed()
		st := store.NewMemoryStore(snapshot.NewStaticSource(seed), feed, cfg.Project.ID, "", logger.Named("store"))
		return &Backend{Source: st, Saver: st, Feed: feed, Runner: st}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("未知的 source.mode %q", cfg.Source.Mode)
	}
}

func newRemoteClient(cfg app.Config) (*messages.HTTPClient, error) {
	var tokenSource messages.TokenSource
	if cfg.Source.TokenURL != "" && cfg.Source.Username != "" {
		ts, err := messages.NewPasswordTokenSource(messages.PasswordTokenConfig{
			Endpoint: cfg.Source.TokenURL,
			Username: cfg.Source.Username,
			Password: cfg.Source.Password,
			Timeout:  5 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		tokenSource = ts
	} else if cfg.Source.Token != "" {
		tokenSource = &messages.StaticTokenSource{Value: cfg.Source.Token}
	}
	return messages.NewHTTPClient(messages.HTTPConfig{
		BaseURL:        cfg.Source.BaseURL,
		ProjectID:      cfg.Project.ID,
		TokenSource:    tokenSource,
		Timeout:        time.Duration(cfg.Source.TimeoutSecond) * time.Second,
		AuthHeaderName: cfg.Source.AuthHeader,
	})
}
