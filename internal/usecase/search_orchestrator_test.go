package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geosearch-service/internal/cache"
	"github.com/geosearch-service/internal/config"
	"github.com/geosearch-service/internal/domain"
	"github.com/geosearch-service/internal/pkg/errors"
	"github.com/geosearch-service/internal/usecase"
	"github.com/geosearch-service/internal/view"
)

// MockPlacesRepository is a mock of PlacesRepository
type MockPlacesRepository struct {
	mock.Mock
}

func (m *MockPlacesRepository) Search(ctx context.Context, params domain.SearchParams) ([]domain.Place, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Place), args.Error(1)
}

// stubPositionSource отдаёт позицию, задаваемую тестом
type stubPositionSource struct {
	mu  sync.Mutex
	pos *domain.GeoPosition
}

func (s *stubPositionSource) set(pos *domain.GeoPosition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = pos
}

func (s *stubPositionSource) Position() (*domain.GeoPosition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos == nil {
		return nil, false
	}
	pos := *s.pos
	return &pos, true
}

type orchestratorHarness struct {
	orchestrator *usecase.SearchOrchestrator
	places       *MockPlacesRepository
	source       *stubPositionSource
	searchCache  *cache.SearchCache
	viewModel    *view.ViewModel
	status       *usecase.StatusLog
}

func newOrchestratorHarness(t *testing.T, minInterval time.Duration) *orchestratorHarness {
	t.Helper()

	logger := zap.NewNop()
	places := &MockPlacesRepository{}
	source := &stubPositionSource{}
	searchCache := cache.NewSearchCache(50, 20*time.Minute, logger)
	viewModel := view.NewViewModel()
	viewSync := view.NewResultViewSync(viewModel, viewModel, "en-US", logger)
	status := usecase.NewStatusLog()

	orchestrator := usecase.NewSearchOrchestrator(
		places,
		searchCache,
		viewSync,
		source,
		config.SearchConfig{MinInterval: minInterval, DefaultRadius: 1000},
		status,
		logger,
	)
	t.Cleanup(orchestrator.Destroy)

	return &orchestratorHarness{
		orchestrator: orchestrator,
		places:       places,
		source:       source,
		searchCache:  searchCache,
		viewModel:    viewModel,
		status:       status,
	}
}

func nycPosition() *domain.GeoPosition {
	return &domain.GeoPosition{Lat: 40.7128, Lng: -74.0060, AccuracyMeters: 20, CapturedAt: time.Now()}
}

func waitForRows(t *testing.T, vm *view.ViewModel, count int) view.Snapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(vm.Snapshot().Rows) == count
	}, time.Second, 5*time.Millisecond)
	return vm.Snapshot()
}

func TestSearchOrchestrator_Search(t *testing.T) {
	t.Run("returns error when no position is available", func(t *testing.T) {
		h := newOrchestratorHarness(t, 0)

		err := h.orchestrator.Search(usecase.SearchIntent{})
		assert.ErrorIs(t, err, errors.ErrLocationUnavailable)
		assert.Equal(t, "Location unavailable", h.status.Last())
		h.places.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("successful search renders results and caches them", func(t *testing.T) {
		h := newOrchestratorHarness(t, 0)
		h.source.set(nycPosition())

		results := []domain.Place{
			{ID: "far", Name: "Far Diner", Lat: 40.8000, Lng: -74.0060},
			{ID: "near", Name: "Near Cafe", Lat: 40.7130, Lng: -74.0060},
		}
		h.places.On("Search", mock.Anything, mock.Anything).Return(results, nil)

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{}))

		snap := waitForRows(t, h.viewModel, 2)
		assert.Equal(t, "near", snap.Rows[0].PlaceID, "rows must be sorted by distance")
		assert.Equal(t, "far", snap.Rows[1].PlaceID)
		assert.Equal(t, 1, h.searchCache.Len())

		require.Eventually(t, func() bool {
			return h.status.Last() == "Found 2 places"
		}, time.Second, 5*time.Millisecond)
		assert.False(t, h.orchestrator.Busy())
	})

	t.Run("cache hit is rendered without a network call", func(t *testing.T) {
		// большой minInterval: повторный сетевой вызов был бы отложен,
		// но попадание в кеш не расходует rate limit
		h := newOrchestratorHarness(t, time.Hour)
		h.source.set(nycPosition())

		results := []domain.Place{{ID: "a", Name: "Alpha", Lat: 40.7130, Lng: -74.0060}}
		h.places.On("Search", mock.Anything, mock.Anything).Return(results, nil).Once()

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{}))
		waitForRows(t, h.viewModel, 1)

		// сбрасываем представление, чтобы увидеть повторный рендер
		h.viewModel.ClearMarkers()
		h.viewModel.ClearRows()

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{}))
		waitForRows(t, h.viewModel, 1)

		h.places.AssertNumberOfCalls(t, "Search", 1)
	})

	t.Run("keyword searches are not cached", func(t *testing.T) {
		h := newOrchestratorHarness(t, 0)
		h.source.set(nycPosition())

		results := []domain.Place{{ID: "a", Name: "Pizza Spot", Lat: 40.7130, Lng: -74.0060}}
		h.places.On("Search", mock.Anything, mock.Anything).Return(results, nil)

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{Keyword: ptrString("pizza")}))
		waitForRows(t, h.viewModel, 1)

		assert.Equal(t, 0, h.searchCache.Len())
	})

	t.Run("intent while request in flight is ignored", func(t *testing.T) {
		h := newOrchestratorHarness(t, 0)
		h.source.set(nycPosition())

		release := make(chan time.Time)
		h.places.On("Search", mock.Anything, mock.Anything).
			Return([]domain.Place{{ID: "a", Lat: 40.7130, Lng: -74.0060}}, nil).
			WaitUntil(release)

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{}))
		require.True(t, h.orchestrator.Busy())

		err := h.orchestrator.Search(usecase.SearchIntent{})
		assert.ErrorIs(t, err, errors.ErrSearchBusy)

		close(release)
		waitForRows(t, h.viewModel, 1)
		h.places.AssertNumberOfCalls(t, "Search", 1)
	})

	t.Run("failed search clears busy flag and reports status", func(t *testing.T) {
		h := newOrchestratorHarness(t, 0)
		h.source.set(nycPosition())

		h.places.On("Search", mock.Anything, mock.Anything).Return(nil, errors.ErrNetworkError)

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{}))

		require.Eventually(t, func() bool {
			return !h.orchestrator.Busy() && h.status.Last() == errors.ErrNetworkError.Message
		}, time.Second, 5*time.Millisecond)

		assert.Equal(t, 0, h.searchCache.Len())
		assert.Empty(t, h.viewModel.Snapshot().Rows)
	})
}

func TestSearchOrchestrator_Debounce(t *testing.T) {
	t.Run("rapid intents coalesce into one call with the last parameters", func(t *testing.T) {
		h := newOrchestratorHarness(t, 60*time.Millisecond)
		h.source.set(nycPosition())

		var calls int32
		countCall := func(mock.Arguments) { atomic.AddInt32(&calls, 1) }

		results := []domain.Place{{ID: "a", Lat: 40.7130, Lng: -74.0060}}
		// допускаются ровно два вызова: первый немедленный и один
		// отложенный с параметрами последнего намерения
		h.places.On("Search", mock.Anything, mock.MatchedBy(func(p domain.SearchParams) bool {
			return p.Keyword == ""
		})).Return(results, nil).Run(countCall).Once()
		h.places.On("Search", mock.Anything, mock.MatchedBy(func(p domain.SearchParams) bool {
			return p.Keyword == "k5"
		})).Return(results, nil).Run(countCall).Once()

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{}))
		require.Eventually(t, func() bool {
			return !h.orchestrator.Busy() && h.status.Last() == "Found 1 places"
		}, time.Second, 5*time.Millisecond)

		for _, kw := range []string{"k1", "k2", "k3", "k4", "k5"} {
			require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{Keyword: ptrString(kw)}))
		}

		require.Eventually(t, func() bool {
			return atomic.LoadInt32(&calls) == 2
		}, time.Second, 5*time.Millisecond)

		// даём потенциальным лишним таймерам время сработать
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
		h.places.AssertExpectations(t)
	})

	t.Run("cache hit supersedes a pending debounced intent", func(t *testing.T) {
		h := newOrchestratorHarness(t, 200*time.Millisecond)
		h.source.set(nycPosition())

		var stale int32
		base := []domain.Place{{ID: "base", Lat: 40.7130, Lng: -74.0060}}
		h.places.On("Search", mock.Anything, mock.MatchedBy(func(p domain.SearchParams) bool {
			return p.RadiusMeters == 1000
		})).Return(base, nil).Once()
		h.places.On("Search", mock.Anything, mock.MatchedBy(func(p domain.SearchParams) bool {
			return p.RadiusMeters == 2000
		})).Return([]domain.Place{{ID: "stale", Lat: 40.7130, Lng: -74.0060}}, nil).
			Run(func(mock.Arguments) { atomic.AddInt32(&stale, 1) }).
			Maybe()

		// немедленный поиск наполняет кеш для радиуса 1000
		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{Radius: ptrInt(1000)}))
		require.Eventually(t, func() bool {
			return !h.orchestrator.Busy() && h.searchCache.Len() == 1
		}, time.Second, 5*time.Millisecond)

		// намерение с новым радиусом откладывается таймером, а следующее,
		// более новое, разрешается попаданием в кеш - оно и побеждает
		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{Radius: ptrInt(2000)}))
		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{Radius: ptrInt(1000)}))

		// отменённый таймер не должен выпустить сетевой вызов
		time.Sleep(300 * time.Millisecond)
		assert.Equal(t, int32(0), atomic.LoadInt32(&stale))

		snap := h.viewModel.Snapshot()
		require.Len(t, snap.Rows, 1)
		assert.Equal(t, "base", snap.Rows[0].PlaceID)
	})

	t.Run("destroy drops a pending debounced intent", func(t *testing.T) {
		h := newOrchestratorHarness(t, 200*time.Millisecond)
		h.source.set(nycPosition())

		var calls int32
		h.places.On("Search", mock.Anything, mock.Anything).
			Return([]domain.Place{{ID: "a", Lat: 40.7130, Lng: -74.0060}}, nil).
			Run(func(mock.Arguments) { atomic.AddInt32(&calls, 1) })

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{}))
		require.Eventually(t, func() bool {
			return atomic.LoadInt32(&calls) == 1 && !h.orchestrator.Busy()
		}, time.Second, 5*time.Millisecond)

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{Keyword: ptrString("late")}))
		h.orchestrator.Destroy()

		time.Sleep(300 * time.Millisecond)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		assert.Empty(t, h.viewModel.Snapshot().Rows)
	})

	t.Run("intent radius and keyword reach the request", func(t *testing.T) {
		h := newOrchestratorHarness(t, 0)
		h.source.set(nycPosition())

		h.places.On("Search", mock.Anything, mock.MatchedBy(func(p domain.SearchParams) bool {
			return p.Keyword == "sushi" && p.RadiusMeters == 2000
		})).Return([]domain.Place{}, nil).Once()

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{
			Radius:  ptrInt(2000),
			Keyword: ptrString("sushi"),
		}))

		require.Eventually(t, func() bool {
			return !h.orchestrator.Busy() && h.status.Last() == "Found 0 places"
		}, time.Second, 5*time.Millisecond)
		h.places.AssertExpectations(t)
	})
}

func TestSearchOrchestrator_Cancellation(t *testing.T) {
	t.Run("position update supersedes the request in flight", func(t *testing.T) {
		h := newOrchestratorHarness(t, 0)

		posA := &domain.GeoPosition{Lat: 40.7128, Lng: -74.0060, CapturedAt: time.Now()}
		posB := &domain.GeoPosition{Lat: 41.3851, Lng: 2.1734, CapturedAt: time.Now()}
		h.source.set(posA)

		releaseA := make(chan time.Time)
		h.places.On("Search", mock.Anything, mock.MatchedBy(func(p domain.SearchParams) bool {
			return p.Lat == posA.Lat
		})).Return([]domain.Place{{ID: "a-1", Lat: 40.7130, Lng: -74.0060}}, nil).WaitUntil(releaseA)
		h.places.On("Search", mock.Anything, mock.MatchedBy(func(p domain.SearchParams) bool {
			return p.Lat == posB.Lat
		})).Return([]domain.Place{{ID: "b-1", Lat: 41.3860, Lng: 2.1734}}, nil)

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{}))
		require.True(t, h.orchestrator.Busy())

		// свежая позиция запускает новый поиск, лишая первый владения
		h.source.set(posB)
		require.NoError(t, h.orchestrator.TriggerSearch())

		snap := waitForRows(t, h.viewModel, 1)
		require.Equal(t, "b-1", snap.Rows[0].PlaceID)

		// запоздавший ответ первого запроса не должен тронуть представление
		close(releaseA)
		time.Sleep(50 * time.Millisecond)

		snap = h.viewModel.Snapshot()
		require.Len(t, snap.Rows, 1)
		assert.Equal(t, "b-1", snap.Rows[0].PlaceID)
		assert.False(t, h.orchestrator.Busy())
	})

	t.Run("only the newest request commits its render", func(t *testing.T) {
		h := newOrchestratorHarness(t, 0)

		cases := []struct {
			id  string
			lat float64
		}{
			{id: "p0", lat: 40.0},
			{id: "p1", lat: 41.0},
			{id: "p2", lat: 42.0},
		}
		for _, c := range cases {
			c := c
			h.places.On("Search", mock.Anything, mock.MatchedBy(func(p domain.SearchParams) bool {
				return p.Lat == c.lat
			})).Return([]domain.Place{{ID: c.id, Lat: c.lat, Lng: 0}}, nil)
		}

		// череда быстрых обновлений позиции: каждое лишает предыдущий
		// запрос владения, и только последний результат попадает на экран
		for _, c := range cases {
			h.source.set(&domain.GeoPosition{Lat: c.lat, Lng: 0, CapturedAt: time.Now()})
			require.NoError(t, h.orchestrator.TriggerSearch())
		}

		require.Eventually(t, func() bool {
			snap := h.viewModel.Snapshot()
			return !h.orchestrator.Busy() && len(snap.Rows) == 1 && snap.Rows[0].PlaceID == "p2"
		}, time.Second, 5*time.Millisecond)

		// запоздавшие ответы не перезаписывают более новый рендер
		time.Sleep(50 * time.Millisecond)
		snap := h.viewModel.Snapshot()
		require.Len(t, snap.Rows, 1)
		assert.Equal(t, "p2", snap.Rows[0].PlaceID)
	})
}

func TestSearchOrchestrator_Destroy(t *testing.T) {
	t.Run("clears the view and releases the request in flight", func(t *testing.T) {
		h := newOrchestratorHarness(t, 0)
		h.source.set(nycPosition())

		results := []domain.Place{{ID: "a", Lat: 40.7130, Lng: -74.0060}}
		h.places.On("Search", mock.Anything, mock.Anything).Return(results, nil).Once()

		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{}))
		waitForRows(t, h.viewModel, 1)

		release := make(chan time.Time)
		h.places.On("Search", mock.Anything, mock.Anything).Return(results, nil).WaitUntil(release)
		require.NoError(t, h.orchestrator.Search(usecase.SearchIntent{}))
		require.True(t, h.orchestrator.Busy())

		h.orchestrator.Destroy()
		assert.False(t, h.orchestrator.Busy())
		assert.Empty(t, h.viewModel.Snapshot().Rows)

		// ответ уничтоженного запроса отбрасывается
		close(release)
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, h.viewModel.Snapshot().Rows)
	})
}

func ptrString(s string) *string { return &s }

func ptrInt(i int) *int { return &i }
