package domain

import (
	"fmt"
	"strings"
)

const (
	MinRadiusMeters = 100
	MaxRadiusMeters = 50000

	// kmHeuristicThreshold - значения радиуса меньше этого порога считаются
	// километрами и умножаются на 1000 (слайдер в UI отдаёт km-шкалу).
	kmHeuristicThreshold = 100
)

// SearchParams - параметры одного поискового запроса. Value type,
// равенство структурное через производный ключ кеша.
type SearchParams struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters int     `json:"radius_meters"`
	Keyword      string  `json:"keyword"`
}

// NewSearchParams нормализует входные значения: радиус приводится к метрам
// и зажимается в [100, 50000], keyword обрезается по пробелам.
func NewSearchParams(lat, lng float64, radius int, keyword string) SearchParams {
	return SearchParams{
		Lat:          lat,
		Lng:          lng,
		RadiusMeters: NormalizeRadius(radius),
		Keyword:      strings.TrimSpace(keyword),
	}
}

// NormalizeRadius применяет km-эвристику и зажимает радиус в метрах.
// Порог <100 сохранён как наблюдаемое поведение UI.
func NormalizeRadius(radius int) int {
	if radius > 0 && radius < kmHeuristicThreshold {
		radius *= 1000
	}
	if radius < MinRadiusMeters {
		return MinRadiusMeters
	}
	if radius > MaxRadiusMeters {
		return MaxRadiusMeters
	}
	return radius
}

// HasKeyword сообщает, задан ли поисковый термин. Keyword-поиски
// не кешируются: они слишком специфичны для переиспользования.
func (p SearchParams) HasKeyword() bool {
	return p.Keyword != ""
}

// CacheKey строит детерминированный ключ кеша: координаты округляются
// до 4 знаков, так что близкие повторные поиски намеренно коллидируют.
func (p SearchParams) CacheKey() string {
	return fmt.Sprintf("%.4f|%.4f|%d|%s", p.Lat, p.Lng, p.RadiusMeters, p.Keyword)
}
