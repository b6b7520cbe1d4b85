package app

import (
	"context"
	"fmt"

	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/mutation"
)

// ActionFlow 多选右键菜单中的批量操作。
type ActionFlow struct {
	Committer *Committer
}

func (f *ActionFlow) apply(ctx context.Context, op string, fn func(domain.Model) (domain.Model, mutation.Result)) (mutation.Result, error) {
	if f == nil || f.Committer == nil {
		return mutation.Result{}, fmt.Errorf("action flow 未初始化")
	}
	return f.Committer.Apply(ctx, op, func(m domain.Model) (domain.Model, mutation.Result, error) {
		next, res := fn(m)
		return next, res, nil
	})
}

// Exclude 将设备排除出计算，exclude 为 false 时重新纳入。
func (f *ActionFlow) Exclude(ctx context.Context, ids []string, exclude bool) (mutation.Result, error) {
	if exclude {
		return f.apply(ctx, "exclude", func(m domain.Model) (domain.Model, mutation.Result) {
			return mutation.Exclude(m, ids)
		})
	}
	return f.apply(ctx, "unexclude", func(m domain.Model) (domain.Model, mutation.Result) {
		return mutation.Unexclude(m, ids)
	})
}

// RemoveFromApplications 按模式把设备从应用中移除。
func (f *ActionFlow) RemoveFromApplications(ctx context.Context, mode mutation.RemoveMode, ids, appIDs []string) (mutation.Result, error) {
	return f.apply(ctx, "remove_applications_"+string(mode), func(m domain.Model) (domain.Model, mutation.Result) {
		return mutation.RemoveFromApplications(m, mode, ids, appIDs)
	})
}

// RemoveFromMoveGroup 把设备从直接所属的迁移组中移除。
func (f *ActionFlow) RemoveFromMoveGroup(ctx context.Context, ids []string) (mutation.Result, error) {
	return f.apply(ctx, "remove_move_group", func(m domain.Model) (domain.Model, mutation.Result) {
		return mutation.RemoveFromMoveGroup(m, ids)
	})
}

// AssignProperty 为设备设置属性值，value 为空表示清除。
func (f *ActionFlow) AssignProperty(ctx context.Context, ids []string, propertyID, value string) (mutation.Result, error) {
	return f.apply(ctx, "assign_property", func(m domain.Model) (domain.Model, mutation.Result) {
		return mutation.AssignProperty(m, ids, propertyID, value)
	})
}

// AddPropertyValue 为属性追加取值。
func (f *ActionFlow) AddPropertyValue(ctx context.Context, propertyID, value string) (mutation.Result, error) {
	return f.apply(ctx, "add_property_value", func(m domain.Model) (domain.Model, mutation.Result) {
		return mutation.AddPropertyValue(m, propertyID, value)
	})
}

// CreateProperty 新建自定义属性，id 在服务端确认前为本地生成的 36 位 id。
func (f *ActionFlow) CreateProperty(ctx context.Context, title string, values []string) (domain.CustomProperty, mutation.Result, error) {
	var created domain.CustomProperty
	res, err := f.apply(ctx, "create_property", func(m domain.Model) (domain.Model, mutation.Result) {
		next, p, res := mutation.CreateProperty(m, title, values)
		created = p
		return next, res
	})
	return created, res, err
}

// CreateApplication 用选中的设备新建应用。
func (f *ActionFlow) CreateApplication(ctx context.Context, name string, ids []string) (domain.Application, mutation.Result, error) {
	var created domain.Application
	res, err := f.apply(ctx, "create_application", func(m domain.Model) (domain.Model, mutation.Result) {
		next, a, res := mutation.CreateApplication(m, name, ids)
		created = a
		return next, res
	})
	return created, res, err
}

// CreateMoveGroup 用选中的设备新建迁移组。
func (f *ActionFlow) CreateMoveGroup(ctx context.Context, name string, ids []string) (domain.MoveGroup, mutation.Result, error) {
	var created domain.MoveGroup
	res, err := f.apply(ctx, "create_move_group", func(m domain.Model) (domain.Model, mutation.Result) {
		next, g, res := mutation.CreateMoveGroup(m, name, ids)
		created = g
		return next, res
	})
	return created, res, err
}
