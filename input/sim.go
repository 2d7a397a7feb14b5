package input

import (
	"sync"
	"sync/atomic"
)

// SimAnalog is an AnalogPin whose reading is set by the caller.
type SimAnalog struct {
	v atomic.Uint32
}

func NewSimAnalog(v uint16) *SimAnalog {
	a := &SimAnalog{}
	a.Set(v)
	return a
}

func (a *SimAnalog) Set(v uint16) { a.v.Store(uint32(v)) }

func (a *SimAnalog) Get() uint16 { return uint16(a.v.Load()) }

// SimButton models a push button wired between the pin and ground. Until
// Configure enables the pull-up an undriven pin floats and reads low.
type SimButton struct {
	mu      sync.Mutex
	pullUp  bool
	pressed bool
}

func (b *SimButton) Configure() error {
	b.mu.Lock()
	b.pullUp = true
	b.mu.Unlock()
	return nil
}

func (b *SimButton) Press() {
	b.mu.Lock()
	b.pressed = true
	b.mu.Unlock()
}

func (b *SimButton) Release() {
	b.mu.Lock()
	b.pressed = false
	b.mu.Unlock()
}

func (b *SimButton) PullUpEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pullUp
}

// Get returns the pin level: low while pressed, otherwise whatever the
// pull-up provides.
func (b *SimButton) Get() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pressed {
		return false
	}
	return b.pullUp
}
