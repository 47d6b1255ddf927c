package repository

import (
	"context"
	"time"

	"github.com/geosearch-service/internal/domain"
)

// FixOptions - параметры запроса позиции у платформенного сервиса геолокации
type FixOptions struct {
	// Timeout - максимальное время ожидания одного фикса
	Timeout time.Duration
	// MaximumAge - допустимый возраст закешированного фикса
	MaximumAge time.Duration
	// HighAccuracy запрашивает точный фикс (GPS вместо сотовых вышек)
	HighAccuracy bool
}

// DeviceGateway - единый асинхронный интерфейс поверх callback-based
// платформенной геолокации: one-shot фикс и непрерывный watch.
type DeviceGateway interface {
	// CurrentPosition ждёт один фикс. Возвращает закешированный фикс,
	// если он не старше opts.MaximumAge, иначе ждёт свежий до opts.Timeout.
	CurrentPosition(ctx context.Context, opts FixOptions) (*domain.GeoPosition, error)

	// Watch подписывается на поток обновлений. Возвращённая функция
	// снимает подписку и закрывает канал.
	Watch(opts FixOptions) (<-chan domain.DeviceReading, func())
}
