package maps

import (
	"testing"

	"googlemaps.github.io/maps"
)

func TestShortName(t *testing.T) {
	tests := []struct {
		name string
		res  maps.GeocodingResult
		want string
	}{
		{
			name: "point of interest",
			res: maps.GeocodingResult{
				FormattedAddress: "5 Av. Anatole France, 75007 Paris, France",
				AddressComponents: []maps.AddressComponent{
					{LongName: "Paris", Types: []string{"locality", "political"}},
					{LongName: "Eiffel Tower", Types: []string{"point_of_interest"}},
				},
			},
			want: "Eiffel Tower",
		},
		{
			name: "locality",
			res: maps.GeocodingResult{
				AddressComponents: []maps.AddressComponent{{LongName: "Kyoto", Types: []string{"locality"}}},
			},
			want: "Kyoto",
		},
		{
			name: "formatted address",
			res:  maps.GeocodingResult{FormattedAddress: "Route 66 , Arizona, USA"},
			want: "Route 66",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shortName(tt.res); got != tt.want {
				t.Fatalf("shortName = %q, want %q", got, tt.want)
			}
		})
	}
}
