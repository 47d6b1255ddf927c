package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/geosearch-service/internal/config"
	"github.com/geosearch-service/internal/domain/repository"
	"github.com/geosearch-service/internal/pkg/errors"
	"github.com/geosearch-service/internal/pkg/geo"
	"go.uber.org/zap"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

type lookupResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewClient создает новый клиент IP-геолокации
func NewClient(cfg *config.GeoIPConfig, logger *zap.Logger) repository.GeoIPRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.URL,
		logger:  logger,
	}
}

// Lookup запрашивает приблизительные координаты по IP вызывающей стороны
func (c *client) Lookup(ctx context.Context) (float64, float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("IP geolocation request failed", zap.Error(err))
		return 0, 0, errors.ErrLocationUnresolved
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("IP geolocation returned error",
			zap.Int("status_code", resp.StatusCode))
		return 0, 0, errors.ErrLocationUnresolved
	}

	var lookup lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		c.logger.Warn("Failed to decode IP geolocation response", zap.Error(err))
		return 0, 0, errors.ErrLocationUnresolved
	}

	if !geo.ValidateCoordinates(lookup.Latitude, lookup.Longitude) {
		return 0, 0, errors.ErrLocationUnresolved
	}

	c.logger.Debug("IP geolocation lookup successful",
		zap.Float64("lat", lookup.Latitude),
		zap.Float64("lng", lookup.Longitude))

	return lookup.Latitude, lookup.Longitude, nil
}
