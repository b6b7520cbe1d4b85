package grid

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"cmdbgroup/internal/drag"
	"cmdbgroup/internal/mutation"
)

var (
	// ErrNoActiveDrag 放下时没有进行中的拖拽。
	ErrNoActiveDrag = errors.New("no drag in progress")
	// ErrNotDropTarget 目标表格没有注册为来源表格的放置区。
	ErrNotDropTarget = errors.New("collection is not a drop target")
)

// DropHandler 处理一次放下，通常是 app.DropFlow。
type DropHandler interface {
	HandleDrop(ctx context.Context, p drag.Payload) (mutation.Result, error)
}

// StartEvent 表格报告的拖拽开始。
type StartEvent struct {
	Source      drag.Collection `json:"source"`
	RowID       string          `json:"row_id"`
	RowSelected bool            `json:"row_selected"`
	SelectedIDs []string        `json:"selected_ids"`
	GroupHeader bool            `json:"group_header"`
	LeafIDs     []string        `json:"leaf_ids"`
	Group       drag.Group      `json:"group"`
}

// DropEvent 表格报告的放下位置。
type DropEvent struct {
	Target          drag.Collection `json:"target"`
	TargetID        string          `json:"target_id"`
	TargetProperty  string          `json:"target_property"`
	TargetSelection []string        `json:"target_selection"`
}

type activeDrag struct {
	gesture drag.Gesture
	group   drag.Group
}

// Coordinator 把三张表格注册为彼此的放置区，只转发事件，不包含业务逻辑。
type Coordinator struct {
	mods    *drag.KeyState
	handler DropHandler
	logger  *zap.Logger
	targets map[drag.Collection]map[drag.Collection]bool
	slot    drag.Slot

	mu     sync.Mutex
	active *activeDrag
}

// NewCoordinator 创建协调器。设备、应用、迁移组三张表格互为放置区，
// 属性值伪分组位于设备表格内，与设备行互为放置区。
func NewCoordinator(mods *drag.KeyState, handler DropHandler, logger *zap.Logger) *Coordinator {
	if mods == nil {
		mods = drag.NewKeyState("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{mods: mods, handler: handler, logger: logger, targets: make(map[drag.Collection]map[drag.Collection]bool)}
	grids := []drag.Collection{drag.CollectionDevice, drag.CollectionApplication, drag.CollectionMoveGroup}
	for _, src := range grids {
		for _, dst := range grids {
			if src != dst {
				c.Register(src, dst)
			}
		}
	}
	c.Register(drag.CollectionDevice, drag.CollectionPropertyValue)
	c.Register(drag.CollectionPropertyValue, drag.CollectionDevice)
	c.Register(drag.CollectionApplication, drag.CollectionPropertyValue)
	c.Register(drag.CollectionMoveGroup, drag.CollectionPropertyValue)
	c.Register(drag.CollectionPropertyValue, drag.CollectionApplication)
	c.Register(drag.CollectionPropertyValue, drag.CollectionMoveGroup)
	return c
}

// Register 把 dst 注册为 src 的放置区。
func (c *Coordinator) Register(src, dst drag.Collection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.targets[src] == nil {
		c.targets[src] = make(map[drag.Collection]bool)
	}
	c.targets[src][dst] = true
}

// Accepts 判断 dst 是否为 src 的放置区。
func (c *Coordinator) Accepts(src, dst drag.Collection) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targets[src][dst]
}

// DragStart 采样修饰键并记录进行中的拖拽，覆盖未完成的旧拖拽。
func (c *Coordinator) DragStart(ev StartEvent) (drag.Gesture, error) {
	if !ev.Source.Valid() {
		return drag.Gesture{}, fmt.Errorf("unknown source collection %q", ev.Source)
	}
	g := drag.Begin(drag.DragInput{
		Source:      ev.Source,
		RowID:       ev.RowID,
		RowSelected: ev.RowSelected,
		SelectedIDs: ev.SelectedIDs,
		GroupHeader: ev.GroupHeader,
		LeafIDs:     ev.LeafIDs,
	}, c.mods)
	c.mu.Lock()
	c.active = &activeDrag{gesture: g, group: ev.Group}
	c.mu.Unlock()
	c.logger.Debug("拖拽开始", zap.Stringer("intent", g.Intent), zap.Int("rows", len(g.IDs)))
	return g, nil
}

// KeyDown 记录修饰键按下，返回进行中拖拽的最新意图。
func (c *Coordinator) KeyDown(k drag.Key) (drag.Intent, bool) {
	c.mods.KeyDown(k)
	return c.current()
}

// KeyUp 记录修饰键抬起，返回进行中拖拽的最新意图。
func (c *Coordinator) KeyUp(k drag.Key) (drag.Intent, bool) {
	c.mods.KeyUp(k)
	return c.current()
}

func (c *Coordinator) current() (drag.Intent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return drag.Intent{}, false
	}
	return c.active.gesture.Resolve(c.mods), true
}

// Cancel 放弃进行中的拖拽。
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()
}

// Drop 在放下时重新采样修饰键，生成载荷写入单写者槽位。
func (c *Coordinator) Drop(ev DropEvent) (drag.Payload, error) {
	c.mu.Lock()
	active := c.active
	c.active = nil
	c.mu.Unlock()
	if active == nil {
		return drag.Payload{}, ErrNoActiveDrag
	}
	src := active.gesture.Input.Source
	if !c.Accepts(src, ev.Target) {
		return drag.Payload{}, fmt.Errorf("%w: %s -> %s", ErrNotDropTarget, src, ev.Target)
	}
	p := drag.Payload{
		Source:          src,
		Intent:          active.gesture.Resolve(c.mods),
		IDs:             active.gesture.IDs,
		SourceGroup:     active.group,
		Target:          ev.Target,
		TargetID:        ev.TargetID,
		TargetProperty:  ev.TargetProperty,
		TargetSelection: ev.TargetSelection,
	}
	if c.slot.Put(p) {
		c.logger.Debug("未处理的载荷被新的放下覆盖")
	}
	return p, nil
}

// Pending 查看尚未处理的载荷。
func (c *Coordinator) Pending() (drag.Payload, bool) {
	return c.slot.Peek()
}

// Flush 取出待处理载荷交给 DropHandler。没有载荷时返回 false。
func (c *Coordinator) Flush(ctx context.Context) (mutation.Result, bool, error) {
	p, ok := c.slot.Take()
	if !ok {
		return mutation.Result{}, false, nil
	}
	if c.handler == nil {
		return mutation.Result{}, true, errors.New("drop handler not configured")
	}
	res, err := c.handler.HandleDrop(ctx, p)
	return res, true, err
}
