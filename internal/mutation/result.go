package mutation

import (
	"fmt"

	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/drag"
)

// Result 是一次变更的诊断信息，不以 error 形式返回，由调用方决定是否采用新快照。
type Result struct {
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

// OK 没有任何失败项时返回 true。
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

type noun struct {
	one, many string
}

var (
	nounNode        = noun{"compute instance", "compute instances"}
	nounApplication = noun{"application", "applications"}
	nounMoveGroup   = noun{"move group", "move groups"}
)

func (n noun) count(c int) string {
	if c == 1 {
		return "1 " + n.one
	}
	return fmt.Sprintf("%d %s", c, n.many)
}

func verb(isCopy bool) string {
	if isCopy {
		return "Copied"
	}
	return "Moved"
}

// summary 生成 "Moved 3 compute instances to Application X" 形式的摘要。
func summary(isCopy bool, n noun, placed int, target string) string {
	if placed == 0 {
		if isCopy {
			return fmt.Sprintf("No %s were copied", n.many)
		}
		return fmt.Sprintf("No %s were moved", n.many)
	}
	return fmt.Sprintf("%s %s to %s", verb(isCopy), n.count(placed), target)
}

// mustSource 载荷来源与调用的引擎函数不一致属于编程错误。
func mustSource(p drag.Payload, want drag.Collection) {
	if p.Source != want {
		panic(fmt.Sprintf("mutation: payload from %q routed to %q handler", p.Source, want))
	}
}

func unknownTarget(p drag.Payload) string {
	return fmt.Sprintf("mutation: unknown target collection %q", p.Target)
}

func applicationLabel(app *domain.Application) string {
	if app == nil {
		return "no Application"
	}
	return "Application " + nameOr(app.Name, app.ID)
}

func moveGroupLabel(g *domain.MoveGroup) string {
	if g == nil {
		return "no Move Group"
	}
	return "Move Group " + nameOr(g.Name, g.ID)
}

func nodeLabel(n *domain.Node) string {
	return "compute instance " + nameOr(n.Name, n.ID)
}

func valueLabel(p *domain.CustomProperty, value string) string {
	return fmt.Sprintf("%s = %s", nameOr(p.Title, p.ID), value)
}

func nameOr(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
