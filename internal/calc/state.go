package calc

// State 计算对账状态。
type State int

const (
	// NotCalculating 空闲，页面无需遮罩。
	NotCalculating State = iota
	// StartedCalculation 已收到开始通知，finished 与 changed 均未到达。
	StartedCalculation
	// FinishedCalculation 已收到 finished，等待对应的 changed。
	FinishedCalculation
	// ChangedCalculation 已收到 changed，等待 finished。
	ChangedCalculation
)

func (s State) String() string {
	switch s {
	case NotCalculating:
		return "not_calculating"
	case StartedCalculation:
		return "started"
	case FinishedCalculation:
		return "finished"
	case ChangedCalculation:
		return "changed"
	default:
		return "unknown"
	}
}

// MarshalText 以字符串形式输出状态。
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// event 对账状态机的输入。
type event int

const (
	evStarted event = iota
	evFinished
	evChanged
)

// transition 返回下一个状态以及本次输入是否完成了一轮计算。
func transition(s State, ev event) (State, bool) {
	switch ev {
	case evStarted:
		return StartedCalculation, false
	case evFinished:
		switch s {
		case StartedCalculation:
			return FinishedCalculation, false
		case ChangedCalculation:
			return NotCalculating, true
		}
	case evChanged:
		switch s {
		case StartedCalculation:
			return ChangedCalculation, false
		case FinishedCalculation:
			return NotCalculating, true
		}
	}
	return s, false
}
