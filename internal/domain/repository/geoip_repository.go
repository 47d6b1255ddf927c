package repository

import "context"

// GeoIPRepository - внешний сервис грубой геолокации по IP.
// Используется только как fallback, когда точная геолокация недоступна.
type GeoIPRepository interface {
	// Lookup возвращает приблизительные координаты клиента
	Lookup(ctx context.Context) (lat, lng float64, err error)
}
