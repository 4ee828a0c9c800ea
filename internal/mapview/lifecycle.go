package mapview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"wayfarer/internal/types"
	"wayfarer/pkg/logger"
)

var (
	ErrNotReady      = errors.New("map surface not ready")
	ErrDisposed      = errors.New("map surface disposed")
	ErrQuotaExceeded = errors.New("map quota exceeded")
)

type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Loader prepares the underlying surface (loads the SDK, mounts the view).
type Loader func(ctx context.Context) error

// Map owns one Surface for the lifetime of a mounted view. It is itself a
// Surface: every call outside StateReady fails with ErrNotReady or
// ErrDisposed instead of reaching the wrapped surface.
type Map struct {
	mu      sync.RWMutex
	state   State
	surface Surface
	timeout time.Duration
}

func NewMap(s Surface, timeout time.Duration) *Map {
	if timeout <= 0 {
		timeout = DefaultOptions().Timeout
	}
	return &Map{surface: s, timeout: timeout}
}

func (m *Map) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Init runs load and moves the map to StateReady. A failed load puts the map
// back in StateUninitialized so the host can retry.
func (m *Map) Init(ctx context.Context, load Loader) error {
	m.mu.Lock()
	switch m.state {
	case StateReady:
		m.mu.Unlock()
		return nil
	case StateInitializing:
		m.mu.Unlock()
		return ErrNotReady
	case StateDisposed:
		m.mu.Unlock()
		return ErrDisposed
	}
	m.state = StateInitializing
	m.mu.Unlock()

	var err error
	if load != nil {
		ctx, cancel := context.WithTimeout(ctx, m.timeout)
		err = load(ctx)
		cancel()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateDisposed {
		return ErrDisposed
	}
	if err != nil {
		m.state = StateUninitialized
		if isQuotaError(err) {
			logger.Error("map: quota exceeded while loading the map library; enable billing or raise the quota for the Maps API key: %v", err)
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		logger.Error("map: initialization failed: %v", err)
		return fmt.Errorf("initializing map: %w", err)
	}
	m.state = StateReady
	return nil
}

// Dispose releases the surface. It is safe to call more than once.
func (m *Map) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateDisposed {
		return
	}
	if m.state == StateReady {
		_ = m.surface.ClosePopup()
		_ = m.surface.ClearClusters()
	}
	m.state = StateDisposed
}

func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "over_quota") || strings.Contains(msg, "quota exceeded")
}

func (m *Map) live() (Surface, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch m.state {
	case StateReady:
		return m.surface, nil
	case StateDisposed:
		return nil, ErrDisposed
	default:
		return nil, ErrNotReady
	}
}

func (m *Map) CreateMarker(ctx context.Context, pos types.Point, v MarkerVisual) (Handle, error) {
	s, err := m.live()
	if err != nil {
		return "", err
	}
	return s.CreateMarker(ctx, pos, v)
}

func (m *Map) AttachMarker(h Handle) error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.AttachMarker(h)
}

func (m *Map) DetachMarker(h Handle) error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.DetachMarker(h)
}

func (m *Map) CreatePolyline(ctx context.Context, pts []types.Point, style PolylineStyle) (Handle, error) {
	s, err := m.live()
	if err != nil {
		return "", err
	}
	return s.CreatePolyline(ctx, pts, style)
}

func (m *Map) RemovePolyline(h Handle) error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.RemovePolyline(h)
}

func (m *Map) FitBounds(pts []types.Point, paddingPx int) error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.FitBounds(pts, paddingPx)
}

func (m *Map) SetCenter(p types.Point) error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.SetCenter(p)
}

func (m *Map) SetZoom(level int) error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.SetZoom(level)
}

func (m *Map) Zoom() (int, error) {
	s, err := m.live()
	if err != nil {
		return 0, err
	}
	return s.Zoom()
}

func (m *Map) PanTo(p types.Point) error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.PanTo(p)
}

func (m *Map) ShowPopup(c PopupContent, pos types.Point) error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.ShowPopup(c, pos)
}

func (m *Map) ClosePopup() error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.ClosePopup()
}

func (m *Map) On(h Handle, ev Event, fn func()) error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.On(h, ev, fn)
}

func (m *Map) OnMapClick(fn func(types.Point)) error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.OnMapClick(fn)
}

func (m *Map) GroupMarkers(ctx context.Context, hs []Handle) ([]Handle, error) {
	s, err := m.live()
	if err != nil {
		return nil, err
	}
	return s.GroupMarkers(ctx, hs)
}

func (m *Map) ClearClusters() error {
	s, err := m.live()
	if err != nil {
		return err
	}
	return s.ClearClusters()
}
