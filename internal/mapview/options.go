package mapview

import "time"

// Camera limits and framing constants.
const (
	MinZoom     = 2
	MaxZoom     = 20
	AutoMinZoom = 3
	AutoMaxZoom = 15

	SingleLocationZoom = 12
	SearchResultZoom   = 15
	MarkerClickZoom    = 14
	WorldZoom          = 3

	TripFocusPaddingPx = 100
	OverviewPaddingPx  = 80
)

// Options carries the timing knobs of the map core. Tests shrink them.
type Options struct {
	RebuildDebounce  time.Duration
	SettleDelay      time.Duration
	ZoomStepInterval time.Duration
	ClusterThreshold int
	// Timeout bounds every call into an external collaborator.
	Timeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		RebuildDebounce:  100 * time.Millisecond,
		SettleDelay:      500 * time.Millisecond,
		ZoomStepInterval: 80 * time.Millisecond,
		ClusterThreshold: 10,
		Timeout:          10 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RebuildDebounce <= 0 {
		o.RebuildDebounce = d.RebuildDebounce
	}
	if o.ClusterThreshold <= 0 {
		o.ClusterThreshold = d.ClusterThreshold
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.ZoomStepInterval < 0 {
		o.ZoomStepInterval = 0
	}
	return o
}
