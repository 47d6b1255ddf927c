package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/geosearch-service/internal/cache"
	"github.com/geosearch-service/internal/config"
	"github.com/geosearch-service/internal/domain"
	"github.com/geosearch-service/internal/domain/repository"
	"github.com/geosearch-service/internal/pkg/errors"
	"github.com/geosearch-service/internal/view"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PositionSource - источник текущей позиции (контроллер геолокации)
type PositionSource interface {
	Position() (*domain.GeoPosition, bool)
}

// SearchIntent - одно поисковое намерение: явное действие пользователя,
// смена радиуса или ключевого слова. nil-поля оставляют прежний ввод.
type SearchIntent struct {
	Radius  *int
	Keyword *string
}

// SearchOrchestrator превращает поток поисковых намерений в не более чем
// один корректный сетевой вызов за раз, учитывая кеш, debounce и rate limit.
//
// Инварианты приватного состояния:
//   - busy взводится только вместе с назначением нового owner-токена и
//     снимается только тем запросом, чей токен всё ещё owner;
//   - одновременно существует не более одного debounce-таймера, новое
//     намерение заменяет запланированное (last intent wins); колбэк
//     таймера исполняется только в актуальном поколении;
//   - lastSearch обновляется только успешным сетевым вызовом.
type SearchOrchestrator struct {
	places      repository.PlacesRepository
	searchCache *cache.SearchCache
	viewSync    *view.ResultViewSync
	positions   PositionSource
	status      *StatusLog
	logger      *zap.Logger

	minInterval time.Duration

	mu             sync.Mutex
	busy           bool
	owner          uuid.UUID
	cancelInFlight context.CancelFunc
	debounce       *time.Timer
	debounceGen    uint64
	lastSearch     time.Time
	now            func() time.Time

	radius  int
	keyword string
}

// NewSearchOrchestrator - создание нового оркестратора поиска
func NewSearchOrchestrator(
	places repository.PlacesRepository,
	searchCache *cache.SearchCache,
	viewSync *view.ResultViewSync,
	positions PositionSource,
	cfg config.SearchConfig,
	status *StatusLog,
	logger *zap.Logger,
) *SearchOrchestrator {
	return &SearchOrchestrator{
		places:      places,
		searchCache: searchCache,
		viewSync:    viewSync,
		positions:   positions,
		status:      status,
		logger:      logger,
		minInterval: cfg.MinInterval,
		now:         time.Now,
		radius:      cfg.DefaultRadius,
	}
}

// Search обрабатывает одно пользовательское поисковое намерение по порядку
// политики: busy-флаг → позиция → кеш → rate limit/debounce → сетевой вызов.
func (o *SearchOrchestrator) Search(intent SearchIntent) error {
	return o.process(intent, false)
}

// TriggerSearch выполняет поиск от события позиции (вход в Active-состояние,
// восстановление точной позиции). В отличие от пользовательского намерения
// он не отбрасывается busy-флагом: свежая позиция отменяет запрос в полёте.
func (o *SearchOrchestrator) TriggerSearch() error {
	return o.process(SearchIntent{}, true)
}

func (o *SearchOrchestrator) process(intent SearchIntent, fromPositionUpdate bool) error {
	o.mu.Lock()

	if intent.Radius != nil {
		o.radius = *intent.Radius
	}
	if intent.Keyword != nil {
		o.keyword = *intent.Keyword
	}

	// 1. Запрос уже в полёте - пользовательское намерение игнорируется,
	//    без очереди: повтор ожидается тем же действием в UI. Поиск от
	//    события позиции, напротив, лишает запрос в полёте владения сразу:
	//    его ответ уже не закоммитит эффекты.
	if o.busy {
		if !fromPositionUpdate {
			o.mu.Unlock()
			o.logger.Debug("Search intent ignored: request in flight")
			return errors.ErrSearchBusy
		}
		if o.cancelInFlight != nil {
			o.cancelInFlight()
			o.cancelInFlight = nil
		}
		o.owner = uuid.Nil
		o.busy = false
	}

	// 2. Без позиции искать не из чего; запланированный вызов со старой
	//    позицией тоже теряет смысл
	pos, ok := o.positions.Position()
	if !ok {
		o.stopDebounceLocked()
		o.mu.Unlock()
		o.status.Append("Location unavailable")
		return errors.ErrLocationUnavailable
	}

	params := domain.NewSearchParams(pos.Lat, pos.Lng, o.radius, o.keyword)

	// 3. Попадание в кеш рендерится сразу и не расходует rate limit.
	//    Намерение разрешено - более старое, ждущее debounce, отменяется
	if results, hit := o.searchCache.Get(params); hit {
		o.stopDebounceLocked()
		o.viewSync.Render(results, pos)
		o.mu.Unlock()
		o.logger.Debug("Search served from cache", zap.String("key", params.CacheKey()))
		return nil
	}

	// 4. Rate limit: недождавшийся вызов планируется одним debounce-таймером,
	//    прежний запланированный вызов отменяется - последнее намерение побеждает
	if wait := o.minInterval - o.now().Sub(o.lastSearch); wait > 0 {
		o.stopDebounceLocked()
		gen := o.debounceGen
		o.debounce = time.AfterFunc(wait, func() {
			o.mu.Lock()
			// Таймер могли заменить или погасить, пока колбэк ждал мьютекс
			if gen != o.debounceGen {
				o.mu.Unlock()
				return
			}
			o.debounce = nil
			o.beginLocked(params)
			o.mu.Unlock()
		})
		o.mu.Unlock()
		o.logger.Debug("Search debounced", zap.Duration("wait", wait))
		return nil
	}

	o.stopDebounceLocked()
	o.beginLocked(params)
	o.mu.Unlock()
	return nil
}

// stopDebounceLocked гасит запланированный debounce-вызов. Инкремент
// поколения отсеивает и колбэк, который уже сработал, но ещё ждёт мьютекс.
// Вызывается только под мьютексом.
func (o *SearchOrchestrator) stopDebounceLocked() {
	if o.debounce != nil {
		o.debounce.Stop()
		o.debounce = nil
	}
	o.debounceGen++
}

// Destroy отменяет запрос в полёте, гасит таймеры и очищает представление
func (o *SearchOrchestrator) Destroy() {
	o.mu.Lock()
	o.stopDebounceLocked()
	if o.cancelInFlight != nil {
		o.cancelInFlight()
		o.cancelInFlight = nil
	}
	o.owner = uuid.Nil
	o.busy = false
	o.viewSync.Clear()
	o.mu.Unlock()

	o.logger.Info("Search orchestrator destroyed")
}

// Busy сообщает, есть ли запрос в полёте
func (o *SearchOrchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// beginLocked начинает сетевой вызов: отбирает владение у предыдущего
// запроса (его ответ больше не сможет закоммитить эффекты) и выпускает
// новый с собственным токеном. Вызывается только под мьютексом.
func (o *SearchOrchestrator) beginLocked(params domain.SearchParams) {
	if o.cancelInFlight != nil {
		o.cancelInFlight()
	}

	token := uuid.New()
	o.owner = token
	o.busy = true

	ctx, cancel := context.WithCancel(context.Background())
	o.cancelInFlight = cancel

	o.logger.Debug("Search dispatched",
		zap.String("token", token.String()),
		zap.String("key", params.CacheKey()))

	go func() {
		results, err := o.places.Search(ctx, params)
		o.complete(token, params, results, err)
	}()
}

// complete применяет исход сетевого вызова, только если токен всё ещё
// владеет запросом: устаревший ответ не трогает ни кеш, ни представление,
// ни busy-флаг более нового запроса.
func (o *SearchOrchestrator) complete(token uuid.UUID, params domain.SearchParams, results []domain.Place, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.owner != token {
		o.logger.Debug("Stale search response discarded", zap.String("token", token.String()))
		return
	}

	o.busy = false
	o.owner = uuid.Nil
	o.cancelInFlight = nil

	if err != nil {
		if errors.IsCancelled(err) {
			return
		}
		o.logger.Warn("Search failed", zap.Error(err))
		o.status.Append(userMessage(err))
		return
	}

	o.lastSearch = o.now()

	// Keyword-поиски слишком специфичны, в кеш не попадают
	if !params.HasKeyword() {
		o.searchCache.Set(params, results)
	}

	// Рендер под мьютексом: между проверкой владения и коммитом
	// результатов не может вклиниться более новый запрос
	pos, _ := o.positions.Position()
	o.viewSync.Render(results, pos)
	o.status.Append(fmt.Sprintf("Found %d places", len(results)))
	o.logger.Info("Search completed",
		zap.Int("results", len(results)),
		zap.String("key", params.CacheKey()))
}

func userMessage(err error) string {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr.Message
	}
	return errors.ErrNetworkError.Message
}
