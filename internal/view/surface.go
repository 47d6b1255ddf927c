package view

// Marker - маркер на карте, привязанный к результату по place id
type Marker struct {
	PlaceID       string  `json:"place_id"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Title         string  `json:"title"`
	Highlighted   bool    `json:"highlighted"`
	PopupOpen     bool    `json:"popup_open"`
	DistanceLabel string  `json:"distance_label,omitempty"`
}

// Row - строка в списке результатов, привязанная к маркеру по place id
type Row struct {
	PlaceID       string  `json:"place_id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Rating        float64 `json:"rating,omitempty"`
	PriceLevel    int     `json:"price_level,omitempty"`
	OpenNow       *bool   `json:"open_now,omitempty"`
	DistanceLabel string  `json:"distance_label,omitempty"`
	Highlighted   bool    `json:"highlighted"`
}

// MapSurface - узкий интерфейс рисующей поверхности карты.
// Бизнес-логика не трогает примитивы рендеринга напрямую: только
// ResultViewSync разговаривает с этим интерфейсом.
type MapSurface interface {
	PlaceMarker(m Marker)
	ClearMarkers()
	SetMarkerHighlight(placeID string, highlighted bool)
	OpenPopup(placeID string)
	ClosePopup()
	PanTo(lat, lng float64)
}

// ListSurface - интерфейс списка результатов
type ListSurface interface {
	AppendRow(r Row)
	ClearRows()
	SetRowHighlight(placeID string, highlighted bool)
	ScrollToRow(placeID string)
}
