package buttons

import (
	"context"
	"sync"

	"github.com/auragen/auragen/internal/system"
)

// DefaultKeyMap binds F4 to exit, F5 to reroll and F6 to the next pattern.
var DefaultKeyMap = map[uint16]Event{
	system.KeyF4: Exit,
	system.KeyF5: Reroll,
	system.KeyF6: NextPattern,
}

type keyWatcher func(ctx context.Context, l interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}, codes []uint16, onKey func(code uint16))

// Keyboard turns key presses on attached keyboards into events. Presses arriving while
// the previous event is still unread are dropped.
type Keyboard struct {
	KeyMap map[uint16]Event
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	watch keyWatcher

	mu     sync.Mutex
	ch     chan Event
	cancel context.CancelFunc
}

func NewKeyboard() *Keyboard {
	return &Keyboard{KeyMap: DefaultKeyMap, watch: system.WatchKeys, ch: make(chan Event, 1)}
}

func (k *Keyboard) Start(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.cancel != nil {
		return nil
	}
	watchCtx, cancel := context.WithCancel(ctx)
	k.cancel = cancel

	codes := make([]uint16, 0, len(k.KeyMap))
	for code := range k.KeyMap {
		codes = append(codes, code)
	}
	k.watch(watchCtx, k.Logger, codes, k.press)
	return nil
}

func (k *Keyboard) press(code uint16) {
	ev, ok := k.KeyMap[code]
	if !ok {
		return
	}
	select {
	case k.ch <- ev:
		if k.Logger != nil {
			k.Logger.Infof("input", "key %d: %s", code, ev)
		}
	default:
	}
}

func (k *Keyboard) Stop() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.cancel != nil {
		k.cancel()
	}
	return nil
}

func (k *Keyboard) Events() <-chan Event { return k.ch }
