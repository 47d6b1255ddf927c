package handler

import (
	"context"

	"github.com/geosearch-service/internal/pkg/utils"
	"github.com/geosearch-service/internal/pkg/validator"
	"github.com/geosearch-service/internal/usecase"
	"github.com/geosearch-service/internal/usecase/dto"
	"github.com/geosearch-service/internal/view"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GeosearchHandler - обработчик точек входа geosearch-оркестратора
type GeosearchHandler struct {
	orchestrator *usecase.SearchOrchestrator
	controller   *usecase.GeolocationController
	viewSync     *view.ResultViewSync
	viewModel    *view.ViewModel
	status       *usecase.StatusLog
	logger       *zap.Logger
}

// NewGeosearchHandler - создание нового GeosearchHandler
func NewGeosearchHandler(
	orchestrator *usecase.SearchOrchestrator,
	controller *usecase.GeolocationController,
	viewSync *view.ResultViewSync,
	viewModel *view.ViewModel,
	status *usecase.StatusLog,
	logger *zap.Logger,
) *GeosearchHandler {
	return &GeosearchHandler{
		orchestrator: orchestrator,
		controller:   controller,
		viewSync:     viewSync,
		viewModel:    viewModel,
		status:       status,
		logger:       logger,
	}
}

// Search godoc
// @Summary Поисковое намерение
// @Description Принимает поисковое намерение (кнопка, Enter, отпускание слайдера радиуса, ввод ключевого слова). Оркестратор применяет кеш, debounce и rate limit; намерение во время запроса в полёте игнорируется.
// @Tags Geosearch
// @Accept json
// @Produce json
// @Param request body dto.SearchIntentRequest false "Радиус и ключевое слово; отсутствующие поля сохраняют прежний ввод"
// @Success 200 {object} utils.SuccessResponse{data=dto.SearchAcceptedResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/geosearch/search [post]
func (h *GeosearchHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchIntentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	intent := usecase.SearchIntent{
		Radius:  req.Radius,
		Keyword: req.Keyword,
	}
	if err := h.orchestrator.Search(intent); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.SearchAcceptedResponse{Accepted: true}, nil)
}

// Highlight godoc
// @Summary Подсветка результата
// @Description Переносит единственную подсветку на пару маркер+строка по place id, панорамирует карту и подскролливает список.
// @Tags Geosearch
// @Produce json
// @Param id path string true "Place ID"
// @Success 200 {object} utils.SuccessResponse{data=view.Snapshot}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/geosearch/highlight/{id} [post]
func (h *GeosearchHandler) Highlight(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Place ID required"})
	}

	if err := h.viewSync.Highlight(id); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, h.viewModel.Snapshot(), nil)
}

// View godoc
// @Summary Текущее состояние представления
// @Description Возвращает маркеры, строки списка, камеру и подсветку, которые страница применяет к реальной карте.
// @Tags Geosearch
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=view.Snapshot}
// @Router /api/v1/geosearch/view [get]
func (h *GeosearchHandler) View(c *fiber.Ctx) error {
	snap := h.viewModel.Snapshot()
	return utils.SendSuccess(c, snap, &utils.Meta{
		Total: len(snap.Rows),
	})
}

// Status godoc
// @Summary Состояние геолокации и статусные сообщения
// @Tags Geosearch
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.StatusResponse}
// @Router /api/v1/geosearch/status [get]
func (h *GeosearchHandler) Status(c *fiber.Ctx) error {
	resp := dto.StatusResponse{
		State:   string(h.controller.State()),
		Message: h.status.Last(),
		Busy:    h.orchestrator.Busy(),
	}

	if pos, ok := h.controller.Position(); ok {
		resp.Position = pos
	}

	for _, e := range h.status.Snapshot() {
		resp.History = append(resp.History, dto.StatusMessage{Message: e.Message, At: e.At})
	}

	return utils.SendSuccess(c, resp, nil)
}

// Destroy godoc
// @Summary Teardown оркестратора
// @Description Снимает watch геолокации, прерывает запрос в полёте, гасит таймеры и очищает представление. Следующий Start поднимает подсистему заново.
// @Tags Geosearch
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.SearchAcceptedResponse}
// @Router /api/v1/geosearch [delete]
func (h *GeosearchHandler) Destroy(c *fiber.Ctx) error {
	h.controller.Stop()
	h.orchestrator.Destroy()
	h.logger.Info("Geosearch destroyed by client")

	return utils.SendSuccess(c, dto.SearchAcceptedResponse{Accepted: true}, nil)
}

// Start godoc
// @Summary Запуск контроллера геолокации
// @Description Переводит контроллер из Idle в Requesting: one-shot фикс c деградацией до IP-геолокации.
// @Tags Geosearch
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.SearchAcceptedResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/geosearch/start [post]
func (h *GeosearchHandler) Start(c *fiber.Ctx) error {
	// Контекст запроса не подходит: фикс живёт дольше HTTP-запроса
	if err := h.controller.Start(context.Background()); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.SearchAcceptedResponse{Accepted: true}, nil)
}
