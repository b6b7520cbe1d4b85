package drag

import (
	"runtime"
	"sync"
)

// Key 修饰键名称，与浏览器 KeyboardEvent.key 一致。
type Key string

const (
	KeyControl Key = "Control"
	KeyMeta    Key = "Meta"
)

// CopyModifierKey 返回平台上的复制修饰键：macOS 为 Cmd，其余为 Ctrl。
func CopyModifierKey(goos string) Key {
	if goos == "darwin" {
		return KeyMeta
	}
	return KeyControl
}

// ModifierState 提供当前复制修饰键状态，拖拽开始和放下时各采样一次。
type ModifierState interface {
	CopyHeld() bool
}

// KeyState 由宿主在每次 keydown/keyup 时更新。
type KeyState struct {
	mu   sync.Mutex
	key  Key
	held bool
}

// NewKeyState 为指定平台创建修饰键状态，goos 为空时取当前运行平台。
func NewKeyState(goos string) *KeyState {
	if goos == "" {
		goos = runtime.GOOS
	}
	return &KeyState{key: CopyModifierKey(goos)}
}

// KeyDown 记录按键按下。
func (s *KeyState) KeyDown(k Key) {
	s.set(k, true)
}

// KeyUp 记录按键抬起。
func (s *KeyState) KeyUp(k Key) {
	s.set(k, false)
}

func (s *KeyState) set(k Key, held bool) {
	if k != s.key {
		return
	}
	s.mu.Lock()
	s.held = held
	s.mu.Unlock()
}

// CopyHeld 实现 ModifierState。
func (s *KeyState) CopyHeld() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Gesture 一次进行中的拖拽。
type Gesture struct {
	Input  DragInput
	Intent Intent
	IDs    []string
}

// Begin 在拖拽开始时采样修饰键并分类。
func Begin(in DragInput, mods ModifierState) Gesture {
	if mods != nil {
		in.CopyModifier = mods.CopyHeld()
	}
	intent := Classify(in)
	return Gesture{Input: in, Intent: intent, IDs: DraggedIDs(in, intent)}
}

// Resolve 在放下时重新采样修饰键：拖拽中按下修饰键可以升级为复制，抬起则回到移动。
func (g Gesture) Resolve(mods ModifierState) Intent {
	if mods == nil {
		return g.Intent
	}
	in := g.Input
	in.CopyModifier = mods.CopyHeld()
	return Classify(in)
}
