package mapview

import (
	"context"
	"sync"
	"time"

	"wayfarer/internal/types"
	"wayfarer/pkg/logger"
)

// Selection is what the host receives when the user picks a point.
type Selection struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// AddressFunc looks up a display address for a point.
type AddressFunc func(ctx context.Context, p types.Point) (string, error)

// Picker turns clicks on empty map space into selections when interactive
// mode is on. A failed address lookup still selects the point, without an
// address.
type Picker struct {
	surface  Surface
	address  AddressFunc
	onSelect func(Selection)
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	enabled bool
	closed  bool
}

func NewPicker(s Surface, address AddressFunc, timeout time.Duration, onSelect func(Selection)) *Picker {
	if timeout <= 0 {
		timeout = DefaultOptions().Timeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Picker{surface: s, address: address, onSelect: onSelect, timeout: timeout, ctx: ctx, cancel: cancel}
}

// Enable subscribes to map clicks.
func (p *Picker) Enable() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.enabled = true
	p.mu.Unlock()
	return p.surface.OnMapClick(p.pick)
}

func (p *Picker) Disable() {
	p.mu.Lock()
	p.enabled = false
	p.mu.Unlock()
}

func (p *Picker) Close() {
	p.mu.Lock()
	p.closed = true
	p.enabled = false
	p.mu.Unlock()
	p.cancel()
}

func (p *Picker) active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled && !p.closed
}

func (p *Picker) pick(pt types.Point) {
	if !p.active() {
		return
	}
	sel := Selection{Lat: pt.Lat, Lng: pt.Lng}
	if p.address != nil {
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		addr, err := p.address(ctx, pt)
		cancel()
		if err != nil {
			logger.Warn("map: reverse geocode %s: %v", pt, err)
		}
		sel.Address = addr
	}
	if !p.active() {
		return
	}
	if p.onSelect != nil {
		p.onSelect(sel)
	}
}
