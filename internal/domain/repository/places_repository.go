package repository

import (
	"context"

	"github.com/geosearch-service/internal/domain"
)

// PlacesRepository определяет доступ к внешнему поисковому endpoint'у.
// Реализация обязана уважать отмену контекста: прерванный запрос
// возвращает ошибку с кодом CANCELLED и не имеет побочных эффектов.
type PlacesRepository interface {
	// Search выполняет GET /search?lat&lng&radius&keyword
	Search(ctx context.Context, params domain.SearchParams) ([]domain.Place, error)
}
