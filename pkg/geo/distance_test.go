package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"same point", 37.7749, -122.4194, 37.7749, -122.4194, 0, 0.01},
		{"sf to nearby", 37.7749, -122.4194, 37.7849, -122.4094, 1408, 20},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 343500, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Distance() = %.1f, want %.1f ± %.1f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestWithinRadius(t *testing.T) {
	centerLat, centerLon := 37.7749, -122.4194

	if !WithinRadius(37.7750, -122.4195, centerLat, centerLon, 500) {
		t.Error("point ~15m away should be inside a 500m radius")
	}
	if WithinRadius(37.7849, -122.4094, centerLat, centerLon, 500) {
		t.Error("point ~1.4km away should be outside a 500m radius")
	}
}
