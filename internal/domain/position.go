package domain

import "time"

// GeoPosition - неизменяемый снимок позиции пользователя.
// Заменяется целиком при каждом обновлении, частичных мутаций нет.
type GeoPosition struct {
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	IsApproximate  bool      `json:"is_approximate"`
	CapturedAt     time.Time `json:"captured_at"`
}

// Age возвращает возраст снимка относительно now
func (p GeoPosition) Age(now time.Time) time.Duration {
	return now.Sub(p.CapturedAt)
}

// DeviceReading - одно событие от платформенного сервиса геолокации:
// либо позиция, либо код ошибки (permission_denied / position_unavailable / timeout).
type DeviceReading struct {
	Position *GeoPosition
	Err      error
}
