package handler

import (
	"time"

	"github.com/geosearch-service/internal/domain"
	"github.com/geosearch-service/internal/infrastructure/device"
	"github.com/geosearch-service/internal/pkg/utils"
	"github.com/geosearch-service/internal/pkg/validator"
	"github.com/geosearch-service/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DeviceHandler принимает сырые события платформенной геолокации от страницы
type DeviceHandler struct {
	feed   *device.Feed
	logger *zap.Logger
}

// NewDeviceHandler - создание нового DeviceHandler
func NewDeviceHandler(feed *device.Feed, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		feed:   feed,
		logger: logger,
	}
}

// PushPosition godoc
// @Summary Фикс геолокации от устройства
// @Description Страница пересылает сюда каждый успешный фикс платформенной геолокации (one-shot и watch).
// @Tags Device
// @Accept json
// @Produce json
// @Param request body dto.PositionRequest true "Координаты и точность фикса"
// @Success 200 {object} utils.SuccessResponse{data=dto.SearchAcceptedResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/geosearch/position [post]
func (h *DeviceHandler) PushPosition(c *fiber.Ctx) error {
	var req dto.PositionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	h.feed.Push(domain.GeoPosition{
		Lat:            req.Lat,
		Lng:            req.Lng,
		AccuracyMeters: req.AccuracyMeters,
		CapturedAt:     time.Now(),
	})

	return utils.SendSuccess(c, dto.SearchAcceptedResponse{Accepted: true}, nil)
}

// PushError godoc
// @Summary Ошибка геолокации от устройства
// @Description Страница пересылает сюда коды ошибок платформенной геолокации (permission_denied, position_unavailable, timeout).
// @Tags Device
// @Accept json
// @Produce json
// @Param request body dto.PositionErrorRequest true "Код ошибки платформы"
// @Success 200 {object} utils.SuccessResponse{data=dto.SearchAcceptedResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/geosearch/position/error [post]
func (h *DeviceHandler) PushError(c *fiber.Ctx) error {
	var req dto.PositionErrorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	h.feed.PushError(req.Code)

	return utils.SendSuccess(c, dto.SearchAcceptedResponse{Accepted: true}, nil)
}
