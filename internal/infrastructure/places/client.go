package places

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/geosearch-service/internal/config"
	"github.com/geosearch-service/internal/domain"
	"github.com/geosearch-service/internal/domain/repository"
	"github.com/geosearch-service/internal/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// searchResponse - конверт ответа внешнего поискового endpoint'а
type searchResponse struct {
	Results []domain.Place `json:"results"`
	Error   string         `json:"error,omitempty"`
	Details string         `json:"details,omitempty"`
}

// NewClient создает новый клиент для внешнего поискового endpoint'а
func NewClient(cfg *config.SearchConfig, logger *zap.Logger) repository.PlacesRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.EndpointURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.OutboundRPS), 1),
		logger:  logger,
	}
}

// Search выполняет GET /search с параметрами запроса. Параметр "_"
// (cache-buster) делает URL уникальным, чтобы промежуточные HTTP-кеши
// не отдавали устаревшие ответы.
func (c *client) Search(ctx context.Context, params domain.SearchParams) ([]domain.Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyTransportError(err)
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(params.Lat, 'f', 6, 64))
	q.Set("lng", strconv.FormatFloat(params.Lng, 'f', 6, 64))
	q.Set("radius", strconv.Itoa(params.RadiusMeters))
	if params.HasKeyword() {
		q.Set("keyword", params.Keyword)
	}
	q.Set("_", uuid.NewString())

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())

	c.logger.Debug("Calling search endpoint",
		zap.Float64("lat", params.Lat),
		zap.Float64("lng", params.Lng),
		zap.Int("radius", params.RadiusMeters),
		zap.String("keyword", params.Keyword))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("Search request failed", zap.Error(err))
		}
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, c.classifyStatus(resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		c.logger.Error("Failed to decode search response", zap.Error(err))
		return nil, errors.ErrNetworkError.WithDetails(map[string]interface{}{
			"reason": "malformed response body",
		})
	}

	if searchResp.Error != "" {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"error":   searchResp.Error,
			"details": searchResp.Details,
		})
	}

	c.logger.Debug("Search endpoint call successful",
		zap.Int("results", len(searchResp.Results)))

	return searchResp.Results, nil
}

func (c *client) classifyStatus(status int, body []byte) error {
	c.logger.Error("Search endpoint returned error",
		zap.Int("status_code", status),
		zap.ByteString("body", body))

	switch {
	case status == http.StatusTooManyRequests:
		return errors.ErrRateLimited
	case status >= 400 && status < 500:
		// Non-retryable без смены параметров; тело пробрасываем для отладки
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"status": status,
			"body":   string(body),
		})
	default:
		return errors.ErrNetworkError.WithDetails(map[string]interface{}{
			"status": status,
		})
	}
}

func classifyTransportError(err error) error {
	switch {
	case goerrors.Is(err, context.Canceled):
		return errors.ErrCancelled
	case goerrors.Is(err, context.DeadlineExceeded):
		return errors.ErrNetworkError.WithMessage("Search request timed out")
	default:
		return errors.ErrNetworkError.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}
}
