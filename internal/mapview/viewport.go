package mapview

import (
	"context"
	"errors"
	"sync"
	"time"

	"wayfarer/internal/types"
	"wayfarer/pkg/logger"
)

// OptimalZoom maps the largest lat/lng span of a bounding box, in degrees,
// to a zoom level. Wider spans give smaller zooms.
func OptimalZoom(span float64) int {
	switch {
	case span > 100:
		return 3
	case span > 50:
		return 4
	case span > 20:
		return 5
	case span > 10:
		return 6
	case span > 5:
		return 7
	case span > 2:
		return 8
	case span > 1:
		return 9
	case span > 0.5:
		return 10
	case span > 0.1:
		return 11
	default:
		return 12
	}
}

// Viewport moves the camera of a Surface. Synchronous moves (center, fit)
// happen on the caller; zoom changes are animated one integer level at a
// time on a background goroutine. Starting a new camera move cancels the
// animation in progress.
type Viewport struct {
	surface Surface
	opts    Options

	base context.Context
	stop context.CancelFunc

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

func NewViewport(s Surface, opts Options) *Viewport {
	base, stop := context.WithCancel(context.Background())
	return &Viewport{surface: s, opts: opts.withDefaults(), base: base, stop: stop}
}

// Frame points the camera at points. When focused is true only stops (the
// selected trip's stops) are framed, and an empty stops list leaves the
// camera where it is.
func (v *Viewport) Frame(points []types.Point, focused bool, stops []types.Point) error {
	v.interrupt()
	switch {
	case focused:
		if len(stops) == 0 {
			return nil
		}
		return v.surface.FitBounds(stops, TripFocusPaddingPx)
	case len(points) == 1:
		if err := v.surface.SetCenter(points[0]); err != nil {
			return err
		}
		v.animate(func(ctx context.Context) error {
			return v.stepZoom(ctx, SingleLocationZoom)
		})
		return nil
	case len(points) > 1:
		if err := v.surface.FitBounds(points, OverviewPaddingPx); err != nil {
			return err
		}
		b, _ := types.BoundsOf(points)
		target := clampZoom(OptimalZoom(b.MaxSpan()), AutoMinZoom, AutoMaxZoom)
		v.animate(func(ctx context.Context) error {
			if err := v.settle(ctx); err != nil {
				return err
			}
			z, err := v.surface.Zoom()
			if err != nil {
				return err
			}
			if z >= AutoMinZoom && z <= AutoMaxZoom {
				return nil
			}
			return v.stepZoom(ctx, target)
		})
		return nil
	default:
		if err := v.surface.SetCenter(types.Point{}); err != nil {
			return err
		}
		v.animate(func(ctx context.Context) error {
			return v.stepZoom(ctx, WorldZoom)
		})
		return nil
	}
}

// FlyTo pans to p and, once the pan has settled, animates to zoom.
func (v *Viewport) FlyTo(p types.Point, zoom int) error {
	v.interrupt()
	if err := v.surface.PanTo(p); err != nil {
		return err
	}
	v.animate(func(ctx context.Context) error {
		if err := v.settle(ctx); err != nil {
			return err
		}
		return v.stepZoom(ctx, zoom)
	})
	return nil
}

// ZoomTo animates to level without moving the center.
func (v *Viewport) ZoomTo(level int) {
	v.animate(func(ctx context.Context) error {
		return v.stepZoom(ctx, level)
	})
}

// Wait blocks until the running animation, if any, is done.
func (v *Viewport) Wait() {
	v.wg.Wait()
}

// Stop cancels any animation and refuses new ones.
func (v *Viewport) Stop() {
	v.mu.Lock()
	v.stopped = true
	v.mu.Unlock()
	v.stop()
	v.wg.Wait()
}

func (v *Viewport) interrupt() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *Viewport) animate(fn func(ctx context.Context) error) {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return
	}
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(v.base)
	v.cancel = cancel
	v.wg.Add(1)
	v.mu.Unlock()

	go func() {
		defer v.wg.Done()
		defer cancel()
		err := fn(ctx)
		switch {
		case err == nil, ctx.Err() != nil:
		case errors.Is(err, ErrDisposed):
			logger.Debug("viewport: surface disposed during animation")
		default:
			logger.Warn("viewport: camera animation failed: %v", err)
		}
	}()
}

func (v *Viewport) settle(ctx context.Context) error {
	return sleep(ctx, v.opts.SettleDelay)
}

// stepZoom walks the zoom one level at a time to target.
func (v *Viewport) stepZoom(ctx context.Context, target int) error {
	target = clampZoom(target, MinZoom, MaxZoom)
	z, err := v.surface.Zoom()
	if err != nil {
		return err
	}
	for z != target {
		if z < target {
			z++
		} else {
			z--
		}
		if err := v.surface.SetZoom(z); err != nil {
			return err
		}
		if z != target {
			if err := sleep(ctx, v.opts.ZoomStepInterval); err != nil {
				return err
			}
		}
	}
	return ctx.Err()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
