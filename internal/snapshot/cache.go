package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"cmdbgroup/internal/domain"
	"cmdbgroup/pkg/util"
)

// Source 拉取项目当前的库存快照。
type Source interface {
	Fetch(ctx context.Context) (domain.Model, error)
}

// ErrNotLoaded 缓存尚未加载任何快照。
var ErrNotLoaded = errors.New("snapshot not loaded")

// Entry 缓存中的一次快照及其指纹。
type Entry struct {
	Model       domain.Model
	Fingerprint string
	// Optimistic 为 true 表示本地变更尚未被服务端确认。
	Optimistic bool
	Version    uint64
}

// Cache 写时复制的快照缓存。读者拿到的 Model 永远不会被后续写入修改。
type Cache struct {
	source Source
	logger *zap.Logger

	mu      sync.RWMutex
	entry   Entry
	loaded  bool
	pending domain.Model
	hasBase bool
}

// NewCache 创建缓存，source 用于首次加载和重新验证。
func NewCache(source Source, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{source: source, logger: logger}
}

// Current 返回当前快照的副本，未加载时先从 source 拉取。
func (c *Cache) Current(ctx context.Context) (Entry, error) {
	c.mu.RLock()
	if c.loaded {
		e := c.entry
		c.mu.RUnlock()
		e.Model = e.Model.Clone()
		return e, nil
	}
	c.mu.RUnlock()
	if err := c.Revalidate(ctx); err != nil {
		return Entry{}, err
	}
	return c.Current(ctx)
}

// Mutate 用新的快照替换缓存，revalidate 为 true 时随后从 source 重新拉取。
// 乐观写入保留变更前的确认版本，Discard 可回退到该版本。
func (c *Cache) Mutate(ctx context.Context, m domain.Model, revalidate bool) (Entry, error) {
	m = m.Clone()
	fp, err := util.Fingerprint(m)
	if err != nil {
		return Entry{}, err
	}
	c.mu.Lock()
	if c.loaded && !c.entry.Optimistic {
		c.pending = c.entry.Model
		c.hasBase = true
	}
	c.entry = Entry{
		Model:       m,
		Fingerprint: fp,
		Optimistic:  !revalidate,
		Version:     c.entry.Version + 1,
	}
	c.loaded = true
	e := c.entry
	c.mu.Unlock()

	c.logger.Debug("快照已更新", zap.Uint64("version", e.Version), zap.Bool("revalidate", revalidate))
	if revalidate {
		if err := c.Revalidate(ctx); err != nil {
			return e, err
		}
		return c.Current(ctx)
	}
	e.Model = e.Model.Clone()
	return e, nil
}

// Revalidate 从 source 重新拉取快照并替换缓存，指纹未变化时版本号不变。
func (c *Cache) Revalidate(ctx context.Context) error {
	if c.source == nil {
		return ErrNotLoaded
	}
	m, err := c.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("拉取快照失败: %w", err)
	}
	m = m.Clone()
	fp, err := util.Fingerprint(m)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasBase = false
	c.pending = domain.Model{}
	if c.loaded && c.entry.Fingerprint == fp {
		c.entry.Optimistic = false
		return nil
	}
	c.entry = Entry{Model: m, Fingerprint: fp, Version: c.entry.Version + 1}
	c.loaded = true
	c.logger.Info("快照已重新验证", zap.Uint64("version", c.entry.Version), zap.Int("nodes", len(m.Nodes)))
	return nil
}

// Discard 丢弃未确认的乐观变更，回到最近一次确认的快照。
// 没有可回退的版本时从 source 重新拉取。
func (c *Cache) Discard(ctx context.Context) (Entry, error) {
	c.mu.Lock()
	if c.hasBase {
		base := c.pending
		fp, err := util.Fingerprint(base)
		if err != nil {
			c.mu.Unlock()
			return Entry{}, err
		}
		c.entry = Entry{Model: base, Fingerprint: fp, Version: c.entry.Version + 1}
		c.hasBase = false
		c.pending = domain.Model{}
		c.mu.Unlock()
		return c.Current(ctx)
	}
	c.mu.Unlock()
	if err := c.Revalidate(ctx); err != nil {
		return Entry{}, err
	}
	return c.Current(ctx)
}

// Optimistic 报告缓存是否持有未确认的本地变更。
func (c *Cache) Optimistic() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded && c.entry.Optimistic
}
