package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		d := DistanceMeters(0, 0, 0, 1)
		assert.InDelta(t, 111195, d, 100)
	})

	t.Run("zero distance for identical points", func(t *testing.T) {
		d := DistanceMeters(40.7128, -74.0060, 40.7128, -74.0060)
		assert.InDelta(t, 0, d, 0.001)
	})

	t.Run("symmetric in both directions", func(t *testing.T) {
		forward := DistanceMeters(40.7128, -74.0060, 41.3851, 2.1734)
		backward := DistanceMeters(41.3851, 2.1734, 40.7128, -74.0060)
		assert.InDelta(t, forward, backward, 0.001)
	})

	t.Run("new york to barcelona", func(t *testing.T) {
		d := DistanceMeters(40.7128, -74.0060, 41.3851, 2.1734)
		// ~6160 km по большому кругу
		assert.InDelta(t, 6160000, d, 20000)
	})
}

func TestUsesMiles(t *testing.T) {
	assert.True(t, UsesMiles("en-US"))
	assert.True(t, UsesMiles("en-GB"))
	assert.True(t, UsesMiles("EN"))
	assert.False(t, UsesMiles("ru-RU"))
	assert.False(t, UsesMiles("de-DE"))
	assert.False(t, UsesMiles(""))
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		name     string
		meters   float64
		locale   string
		expected string
	}{
		{name: "short distance in feet for en locale", meters: 100, locale: "en-US", expected: "328 ft"},
		{name: "miles for en locale", meters: 1609.344, locale: "en-US", expected: "1.0 mi"},
		{name: "fractional miles", meters: 2500, locale: "en-US", expected: "1.6 mi"},
		{name: "meters for metric locale", meters: 850, locale: "ru-RU", expected: "850 m"},
		{name: "kilometers for metric locale", meters: 2500, locale: "ru-RU", expected: "2.5 km"},
		{name: "exactly one kilometer switches to km", meters: 1000, locale: "de-DE", expected: "1.0 km"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDistance(tt.meters, tt.locale))
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(0, 0))
	assert.True(t, ValidateCoordinates(90, 180))
	assert.True(t, ValidateCoordinates(-90, -180))
	assert.False(t, ValidateCoordinates(90.1, 0))
	assert.False(t, ValidateCoordinates(0, 180.1))
	assert.False(t, ValidateCoordinates(-91, 0))
}
