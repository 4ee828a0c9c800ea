package mapview

import (
	"fmt"
	"strings"

	"wayfarer/internal/modules/location"
	"wayfarer/internal/types"
)

const popupDateLayout = "Jan 2, 2006"

type PopupRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PopupContent is what an info window shows, independent of how a surface
// templates it.
type PopupContent struct {
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle,omitempty"`
	Rows     []PopupRow `json:"rows,omitempty"`
}

func TripStopPopup(l location.Location, trip location.Trip, seq, total int) PopupContent {
	c := PopupContent{Title: l.Name, Subtitle: trip.Name}
	if ts := l.Timestamp(); !ts.IsZero() {
		c.Rows = append(c.Rows, PopupRow{Label: "Date", Value: ts.Format(popupDateLayout)})
	}
	c.Rows = append(c.Rows, PopupRow{Label: "Stop", Value: fmt.Sprintf("%d of %d", seq, total)})
	return c
}

func StandalonePopup(l location.Location) PopupContent {
	c := PopupContent{Title: l.Name, Subtitle: kindLabel(l)}
	if ts := l.Timestamp(); !ts.IsZero() {
		c.Rows = append(c.Rows, PopupRow{Label: "Date", Value: ts.Format(popupDateLayout)})
	}
	return c
}

func CurrentPositionPopup(p types.Point) PopupContent {
	return PopupContent{
		Title: "You are here",
		Rows: []PopupRow{
			{Label: "Latitude", Value: fmt.Sprintf("%.6f", p.Lat)},
			{Label: "Longitude", Value: fmt.Sprintf("%.6f", p.Lng)},
		},
	}
}

func kindLabel(l location.Location) string {
	label := string(l.Kind)
	if label == "" {
		label = string(location.KindFavorite)
	}
	label = strings.ToUpper(label[:1]) + label[1:]
	if l.IsCustom {
		label += " (custom)"
	}
	return label
}
