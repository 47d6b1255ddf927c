package device

import (
	"context"
	"sync"
	"time"

	"github.com/geosearch-service/internal/domain"
	"github.com/geosearch-service/internal/domain/repository"
	"github.com/geosearch-service/internal/pkg/errors"
	"go.uber.org/zap"
)

// Коды ошибок платформенной геолокации, как их отдаёт страница
const (
	ErrCodePermissionDenied    = "permission_denied"
	ErrCodePositionUnavailable = "position_unavailable"
	ErrCodeTimeout             = "timeout"
)

const subBuffer = 8

// Feed - шлюз к платформенной геолокации. Страница пушит сырые события
// (фиксы и коды ошибок) через delivery-слой, контроллер потребляет их как
// one-shot фикс или непрерывный watch. Callback-интерфейс браузера таким
// образом сведён к последовательным await'ам с явными ветками ошибок.
type Feed struct {
	mu      sync.Mutex
	last    *domain.GeoPosition
	waiters []chan domain.DeviceReading
	subs    map[int]chan domain.DeviceReading
	nextSub int
	logger  *zap.Logger
	now     func() time.Time
}

func NewFeed(logger *zap.Logger) *Feed {
	return &Feed{
		subs:   make(map[int]chan domain.DeviceReading),
		logger: logger,
		now:    time.Now,
	}
}

// Push доставляет свежий фикс всем ожидающим и подписчикам
func (f *Feed) Push(pos domain.GeoPosition) {
	if pos.CapturedAt.IsZero() {
		pos.CapturedAt = f.now()
	}

	f.mu.Lock()
	f.last = &pos
	reading := domain.DeviceReading{Position: &pos}
	waiters := f.waiters
	f.waiters = nil
	for _, ch := range f.subs {
		select {
		case ch <- reading:
		default:
			// подписчик не успевает, событие отбрасывается
		}
	}
	f.mu.Unlock()

	for _, w := range waiters {
		w <- reading
	}

	f.logger.Debug("Device position received",
		zap.Float64("lat", pos.Lat),
		zap.Float64("lng", pos.Lng),
		zap.Float64("accuracy_m", pos.AccuracyMeters))
}

// PushError доставляет ошибку платформенной геолокации
func (f *Feed) PushError(code string) {
	err := ParseErrorCode(code)
	reading := domain.DeviceReading{Err: err}

	f.mu.Lock()
	waiters := f.waiters
	f.waiters = nil
	for _, ch := range f.subs {
		select {
		case ch <- reading:
		default:
		}
	}
	f.mu.Unlock()

	for _, w := range waiters {
		w <- reading
	}

	f.logger.Debug("Device geolocation error received", zap.String("code", code))
}

// CurrentPosition реализует one-shot фикс: закешированный фикс не старше
// opts.MaximumAge возвращается сразу, иначе ждём свежее событие до opts.Timeout.
func (f *Feed) CurrentPosition(ctx context.Context, opts repository.FixOptions) (*domain.GeoPosition, error) {
	f.mu.Lock()
	if f.last != nil && opts.MaximumAge > 0 && f.last.Age(f.now()) <= opts.MaximumAge {
		pos := *f.last
		f.mu.Unlock()
		return &pos, nil
	}

	waiter := make(chan domain.DeviceReading, 1)
	f.waiters = append(f.waiters, waiter)
	f.mu.Unlock()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reading := <-waiter:
		if reading.Err != nil {
			return nil, reading.Err
		}
		return reading.Position, nil
	case <-timer.C:
		f.removeWaiter(waiter)
		return nil, errors.ErrLocationTimeout
	case <-ctx.Done():
		f.removeWaiter(waiter)
		return nil, errors.ErrCancelled
	}
}

// Watch подписывает на поток событий; cancel снимает подписку
func (f *Feed) Watch(opts repository.FixOptions) (<-chan domain.DeviceReading, func()) {
	ch := make(chan domain.DeviceReading, subBuffer)

	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *Feed) removeWaiter(target chan domain.DeviceReading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range f.waiters {
		if w == target {
			f.waiters = append(f.waiters[:i], f.waiters[i+1:]...)
			return
		}
	}
}

// ParseErrorCode переводит код ошибки платформы в ошибку таксономии
func ParseErrorCode(code string) error {
	switch code {
	case ErrCodePermissionDenied:
		return errors.ErrLocationPermissionDenied
	case ErrCodeTimeout:
		return errors.ErrLocationTimeout
	default:
		return errors.ErrLocationUnavailable
	}
}
