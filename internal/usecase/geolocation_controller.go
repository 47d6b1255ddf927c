package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/geosearch-service/internal/config"
	"github.com/geosearch-service/internal/domain"
	"github.com/geosearch-service/internal/domain/repository"
	"github.com/geosearch-service/internal/pkg/errors"
	"go.uber.org/zap"
)

// GeolocationState - состояние конечного автомата контроллера
type GeolocationState string

const (
	StateIdle              GeolocationState = "idle"
	StateRequesting        GeolocationState = "requesting"
	StateActivePrecise     GeolocationState = "active_precise"
	StateActiveApproximate GeolocationState = "active_approximate"
	StateFailed            GeolocationState = "failed"
)

const approximateAccuracyMeters = 10000

// GeolocationController получает и поддерживает позицию пользователя.
// Автомат: Idle → Requesting → Active(precise) | Active(approximate) | Failed.
// Переходы только от approximate к precise, обратных в рамках сессии нет.
// Stop - единственный терминальный переход обратно в Idle.
type GeolocationController struct {
	device repository.DeviceGateway
	geoip  repository.GeoIPRepository
	cfg    config.GeolocationConfig
	status *StatusLog
	logger *zap.Logger

	mu          sync.Mutex
	state       GeolocationState
	position    *domain.GeoPosition
	lastErr     error
	watchCancel func()
	cancelRun   context.CancelFunc

	// onSearch вызывается ровно один раз при входе в любое Active-состояние
	// и при восстановлении точной позиции после деградации до approximate
	onSearch func()
	// onUpdate уведомляет подписчика о каждом обновлении позиции
	onUpdate func(domain.GeoPosition)
}

// NewGeolocationController - создание нового контроллера геолокации
func NewGeolocationController(
	device repository.DeviceGateway,
	geoip repository.GeoIPRepository,
	cfg config.GeolocationConfig,
	status *StatusLog,
	logger *zap.Logger,
) *GeolocationController {
	return &GeolocationController{
		device: device,
		geoip:  geoip,
		cfg:    cfg,
		status: status,
		logger: logger,
		state:  StateIdle,
	}
}

// SetSearchTrigger подключает оркестратор (разрывает цикл зависимостей при сборке)
func (c *GeolocationController) SetSearchTrigger(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSearch = fn
}

// SetUpdateListener подключает подписчика обновлений позиции
func (c *GeolocationController) SetUpdateListener(fn func(domain.GeoPosition)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// Start переводит контроллер из Idle в Requesting и асинхронно
// запрашивает one-shot фикс с деградацией до IP-геолокации.
func (c *GeolocationController) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return errors.ErrInvalidRequest.WithMessage("Geolocation already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancelRun = cancel
	c.state = StateRequesting
	c.lastErr = nil
	c.mu.Unlock()

	c.status.Append("Requesting your location…")
	c.logger.Info("Geolocation started")

	go c.acquire(runCtx)
	return nil
}

// Stop снимает watch и возвращает контроллер в Idle
func (c *GeolocationController) Stop() {
	c.mu.Lock()
	if c.cancelRun != nil {
		c.cancelRun()
		c.cancelRun = nil
	}
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}
	c.state = StateIdle
	c.position = nil
	c.mu.Unlock()

	c.logger.Info("Geolocation stopped")
}

// State возвращает текущее состояние автомата
func (c *GeolocationController) State() GeolocationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Position возвращает текущую позицию, если контроллер в Active-состоянии
func (c *GeolocationController) Position() (*domain.GeoPosition, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActivePrecise && c.state != StateActiveApproximate {
		return nil, false
	}
	pos := *c.position
	return &pos, true
}

// LastError возвращает терминальную ошибку состояния Failed
func (c *GeolocationController) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *GeolocationController) acquire(ctx context.Context) {
	pos, err := c.device.CurrentPosition(ctx, repository.FixOptions{
		Timeout:      c.cfg.FixTimeout,
		MaximumAge:   c.cfg.FixMaximumAge,
		HighAccuracy: true,
	})
	if err == nil {
		c.activate(ctx, *pos, "Location found")
		return
	}

	if errors.IsCancelled(err) {
		return
	}

	c.logger.Warn("Precise geolocation failed, falling back to IP lookup", zap.Error(err))
	c.status.Append("Using approximate location…")

	lat, lng, ipErr := c.geoip.Lookup(ctx)
	if ipErr != nil {
		c.mu.Lock()
		c.state = StateFailed
		c.lastErr = errors.ErrLocationUnresolved
		c.mu.Unlock()

		c.status.Append("Unable to determine your location")
		c.logger.Error("IP geolocation fallback failed", zap.Error(ipErr))
		return
	}

	approx := domain.GeoPosition{
		Lat:            lat,
		Lng:            lng,
		AccuracyMeters: approximateAccuracyMeters,
		IsApproximate:  true,
		CapturedAt:     time.Now(),
	}
	c.activate(ctx, approx, "Using approximate location")
}

// activate входит в Active-состояние, поднимает watch и триггерит
// ровно один поиск
func (c *GeolocationController) activate(ctx context.Context, pos domain.GeoPosition, message string) {
	c.mu.Lock()
	if c.state != StateRequesting {
		// Stop успел сработать, пока ждали фикс
		c.mu.Unlock()
		return
	}

	c.position = &pos
	if pos.IsApproximate {
		c.state = StateActiveApproximate
	} else {
		c.state = StateActivePrecise
	}
	onSearch := c.onSearch
	onUpdate := c.onUpdate
	c.mu.Unlock()

	c.status.Append(message)
	c.logger.Info("Geolocation active",
		zap.Bool("approximate", pos.IsApproximate),
		zap.Float64("accuracy_m", pos.AccuracyMeters))

	c.startWatch(ctx)

	if onUpdate != nil {
		onUpdate(pos)
	}
	if onSearch != nil {
		onSearch()
	}
}

func (c *GeolocationController) startWatch(ctx context.Context) {
	ch, cancel := c.device.Watch(repository.FixOptions{
		Timeout:      c.cfg.WatchTimeout,
		MaximumAge:   c.cfg.WatchMaximumAge,
		HighAccuracy: true,
	})

	c.mu.Lock()
	c.watchCancel = cancel
	c.mu.Unlock()

	go func() {
		for {
			select {
			case reading, ok := <-ch:
				if !ok {
					return
				}
				c.handleWatchReading(reading)
			case <-ctx.Done():
				cancel()
				return
			}
		}
	}()
}

func (c *GeolocationController) handleWatchReading(reading domain.DeviceReading) {
	if reading.Err != nil {
		// Ошибка watch не деградирует уже полученную позицию
		c.logger.Debug("Watch update error", zap.Error(reading.Err))
		return
	}

	pos := *reading.Position
	if c.cfg.WatchMaximumAge > 0 && pos.Age(time.Now()) > c.cfg.WatchMaximumAge {
		c.logger.Debug("Stale watch update skipped",
			zap.Duration("age", pos.Age(time.Now())))
		return
	}

	c.mu.Lock()
	if c.state != StateActivePrecise && c.state != StateActiveApproximate {
		c.mu.Unlock()
		return
	}

	recovered := c.state == StateActiveApproximate
	pos.IsApproximate = false
	c.position = &pos
	c.state = StateActivePrecise
	onSearch := c.onSearch
	onUpdate := c.onUpdate
	c.mu.Unlock()

	if onUpdate != nil {
		onUpdate(pos)
	}

	if recovered {
		c.status.Append("Precise location restored")
		c.logger.Info("Recovered precise location after approximate fallback")
		if onSearch != nil {
			onSearch()
		}
	}
}
