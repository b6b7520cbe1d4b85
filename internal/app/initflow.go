package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/messages"
	"cmdbgroup/internal/snapshot"
)

// SchemaStore 支持初始化 schema 的库存存储。
type SchemaStore interface {
	snapshot.Source
	messages.Saver
	EnsureSchema(ctx context.Context) error
}

// InitFlow 负责首跑初始化：建 schema -> 库存为空时导入种子快照。
type InitFlow struct {
	Store    SchemaStore
	SeedFile string
	Logger   *zap.Logger
}

// Run 执行初始化流程。未配置存储时直接返回。
func (f *InitFlow) Run(ctx context.Context) error {
	if f == nil || f.Store == nil {
		return nil
	}
	if f.Logger == nil {
		f.Logger = zap.NewNop()
	}
	if err := f.Store.EnsureSchema(ctx); err != nil {
		return err
	}
	if f.SeedFile == "" {
		return nil
	}
	current, err := f.Store.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("读取现有库存失败: %w", err)
	}
	if !empty(current) {
		f.Logger.Info("库存已存在，跳过种子导入", zap.Int("nodes", len(current.Nodes)))
		return nil
	}
	seed, err := snapshot.LoadFile(f.SeedFile)
	if err != nil {
		return err
	}
	receipt, err := f.Store.Save(ctx, seed)
	if err != nil {
		return fmt.Errorf("导入种子快照失败: %w", err)
	}
	f.Logger.Info("种子快照已导入",
		zap.String("file", f.SeedFile),
		zap.String("request_id", receipt.RequestID),
		zap.Int("nodes", len(seed.Nodes)),
		zap.Int("applications", len(seed.Applications)),
		zap.Int("move_groups", len(seed.MoveGroups)))
	return nil
}

func empty(m domain.Model) bool {
	return len(m.Nodes) == 0 && len(m.Applications) == 0 && len(m.MoveGroups) == 0 && len(m.Properties) == 0
}
