package domain

// Place - результат внешнего поискового endpoint'а. Read-only для этой
// подсистемы: поля не интерпретируются, только переносятся в представление.
type Place struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Rating     float64 `json:"rating,omitempty"`
	PriceLevel int     `json:"price_level,omitempty"`
	OpenNow    *bool   `json:"open_now,omitempty"`
	PhotoRef   string  `json:"photo_ref,omitempty"`
}

// CopyPlaces возвращает независимую копию списка результатов.
// Кеш отдаёт и принимает только копии, чтобы вызывающий код
// не мог испортить закешированное состояние.
func CopyPlaces(places []Place) []Place {
	if places == nil {
		return nil
	}
	out := make([]Place, len(places))
	for i, p := range places {
		out[i] = p
		if p.OpenNow != nil {
			v := *p.OpenNow
			out[i].OpenNow = &v
		}
	}
	return out
}
