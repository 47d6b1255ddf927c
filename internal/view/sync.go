package view

import (
	"sort"
	"sync"

	"github.com/geosearch-service/internal/domain"
	"github.com/geosearch-service/internal/pkg/errors"
	"github.com/geosearch-service/internal/pkg/geo"
	"go.uber.org/zap"
)

// ResultViewSync держит маркеры и строки списка в согласованном состоянии:
// по одному маркеру и одной строке на результат, связанных place id,
// и не более одного подсвеченного результата одновременно.
type ResultViewSync struct {
	mapSurface  MapSurface
	listSurface ListSurface
	locale      string
	logger      *zap.Logger

	mu            sync.Mutex
	places        map[string]domain.Place
	order         []string
	highlightedID string
}

func NewResultViewSync(mapSurface MapSurface, listSurface ListSurface, locale string, logger *zap.Logger) *ResultViewSync {
	return &ResultViewSync{
		mapSurface:  mapSurface,
		listSurface: listSurface,
		locale:      locale,
		logger:      logger,
		places:      make(map[string]domain.Place),
	}
}

// Render полностью перестраивает оба представления. Результаты сортируются
// по расстоянию от позиции (стабильно: равные расстояния сохраняют порядок
// входа); без позиции порядок входа сохраняется как есть.
func (s *ResultViewSync) Render(results []domain.Place, position *domain.GeoPosition) {
	sorted := domain.CopyPlaces(results)
	if position != nil {
		sort.SliceStable(sorted, func(i, j int) bool {
			di := geo.DistanceMeters(position.Lat, position.Lng, sorted[i].Lat, sorted[i].Lng)
			dj := geo.DistanceMeters(position.Lat, position.Lng, sorted[j].Lat, sorted[j].Lng)
			return di < dj
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mapSurface.ClearMarkers()
	s.listSurface.ClearRows()
	s.places = make(map[string]domain.Place, len(sorted))
	s.order = s.order[:0]
	s.highlightedID = ""

	for _, p := range sorted {
		var label string
		if position != nil {
			meters := geo.DistanceMeters(position.Lat, position.Lng, p.Lat, p.Lng)
			label = geo.FormatDistance(meters, s.locale)
		}

		s.mapSurface.PlaceMarker(Marker{
			PlaceID:       p.ID,
			Lat:           p.Lat,
			Lng:           p.Lng,
			Title:         p.Name,
			DistanceLabel: label,
		})
		s.listSurface.AppendRow(Row{
			PlaceID:       p.ID,
			Name:          p.Name,
			Address:       p.Address,
			Rating:        p.Rating,
			PriceLevel:    p.PriceLevel,
			OpenNow:       p.OpenNow,
			DistanceLabel: label,
		})

		s.places[p.ID] = p
		s.order = append(s.order, p.ID)
	}

	s.logger.Debug("View rendered", zap.Int("results", len(sorted)))
}

// Highlight переносит единственную подсветку на пару маркер+строка,
// панорамирует карту к маркеру и подскролливает список к строке.
func (s *ResultViewSync) Highlight(placeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	place, ok := s.places[placeID]
	if !ok {
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"place_id": placeID,
		})
	}

	if s.highlightedID != "" && s.highlightedID != placeID {
		s.mapSurface.SetMarkerHighlight(s.highlightedID, false)
		s.listSurface.SetRowHighlight(s.highlightedID, false)
		s.mapSurface.ClosePopup()
	}

	s.highlightedID = placeID
	s.mapSurface.SetMarkerHighlight(placeID, true)
	s.listSurface.SetRowHighlight(placeID, true)
	s.mapSurface.OpenPopup(placeID)
	s.mapSurface.PanTo(place.Lat, place.Lng)
	s.listSurface.ScrollToRow(placeID)

	return nil
}

// Clear убирает все маркеры и строки и сбрасывает подсветку
func (s *ResultViewSync) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mapSurface.ClearMarkers()
	s.listSurface.ClearRows()
	s.places = make(map[string]domain.Place)
	s.order = nil
	s.highlightedID = ""
}

// Results возвращает текущий отсортированный список результатов
func (s *ResultViewSync) Results() []domain.Place {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Place, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.places[id])
	}
	return out
}

// HighlightedID возвращает id подсвеченного результата ("" если нет)
func (s *ResultViewSync) HighlightedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlightedID
}
