package geo

import (
	"fmt"
	"math"
	"strings"
)

const (
	earthRadiusMeters = 6371000.0
	metersPerMile     = 1609.344
	feetPerMeter      = 3.28084
)

// DistanceMeters вычисляет расстояние между двумя точками по формуле гаверсинуса
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// UsesMiles определяет систему единиц по локали: локали "en*" используют мили
func UsesMiles(locale string) bool {
	return strings.HasPrefix(strings.ToLower(locale), "en")
}

// FormatDistance форматирует расстояние для подписи "X away" в единицах локали
func FormatDistance(meters float64, locale string) string {
	if UsesMiles(locale) {
		miles := meters / metersPerMile
		if miles < 0.1 {
			return fmt.Sprintf("%.0f ft", meters*feetPerMeter)
		}
		return fmt.Sprintf("%.1f mi", miles)
	}

	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
