package view

import "sync"

// Camera - последняя команда позиционирования карты
type Camera struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	Set bool    `json:"set"`
}

// Snapshot - сериализуемое состояние представления, которое страница
// забирает и применяет к реальной карте и списку
type Snapshot struct {
	Markers   []Marker `json:"markers"`
	Rows      []Row    `json:"rows"`
	Camera    Camera   `json:"camera"`
	ScrollTo  string   `json:"scroll_to,omitempty"`
	PopupOpen string   `json:"popup_open,omitempty"`
}

// ViewModel - серверная реализация обеих поверхностей рендеринга.
// Держит текущее состояние маркеров, строк, камеры и подсветки;
// страница опрашивает Snapshot и отрисовывает его картографической
// библиотекой на своей стороне.
type ViewModel struct {
	mu        sync.Mutex
	markers   []Marker
	rows      []Row
	camera    Camera
	scrollTo  string
	popupOpen string
}

func NewViewModel() *ViewModel {
	return &ViewModel{}
}

func (v *ViewModel) PlaceMarker(m Marker) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.markers = append(v.markers, m)
}

func (v *ViewModel) ClearMarkers() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.markers = nil
	v.popupOpen = ""
	v.camera = Camera{}
}

func (v *ViewModel) SetMarkerHighlight(placeID string, highlighted bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.markers {
		if v.markers[i].PlaceID == placeID {
			v.markers[i].Highlighted = highlighted
		}
	}
}

func (v *ViewModel) OpenPopup(placeID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.popupOpen = placeID
	for i := range v.markers {
		v.markers[i].PopupOpen = v.markers[i].PlaceID == placeID
	}
}

func (v *ViewModel) ClosePopup() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.popupOpen = ""
	for i := range v.markers {
		v.markers[i].PopupOpen = false
	}
}

func (v *ViewModel) PanTo(lat, lng float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.camera = Camera{Lat: lat, Lng: lng, Set: true}
}

func (v *ViewModel) AppendRow(r Row) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = append(v.rows, r)
}

func (v *ViewModel) ClearRows() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = nil
	v.scrollTo = ""
}

func (v *ViewModel) SetRowHighlight(placeID string, highlighted bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.rows {
		if v.rows[i].PlaceID == placeID {
			v.rows[i].Highlighted = highlighted
		}
	}
}

func (v *ViewModel) ScrollToRow(placeID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTo = placeID
}

// Snapshot возвращает копию текущего состояния представления
func (v *ViewModel) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Markers:   make([]Marker, len(v.markers)),
		Rows:      make([]Row, len(v.rows)),
		Camera:    v.camera,
		ScrollTo:  v.scrollTo,
		PopupOpen: v.popupOpen,
	}
	copy(snap.Markers, v.markers)
	copy(snap.Rows, v.rows)
	return snap
}
