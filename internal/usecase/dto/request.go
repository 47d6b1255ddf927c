package dto

// SearchIntentRequest - поисковое намерение от страницы. Оба поля
// опциональны: отсутствующее поле оставляет прежний ввод пользователя.
type SearchIntentRequest struct {
	Radius  *int    `json:"radius" validate:"omitempty,min=1,max=100000"`
	Keyword *string `json:"keyword" validate:"omitempty,max=128"`
}

// PositionRequest - сырой фикс платформенной геолокации от страницы
type PositionRequest struct {
	Lat            float64 `json:"lat" validate:"min=-90,max=90"`
	Lng            float64 `json:"lng" validate:"min=-180,max=180"`
	AccuracyMeters float64 `json:"accuracy_meters" validate:"omitempty,min=0"`
}

// PositionErrorRequest - ошибка платформенной геолокации от страницы
type PositionErrorRequest struct {
	Code string `json:"code" validate:"required,geo_error_code"`
}
