package brewerydb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"beerme/internal/app/beerme/entity"
	"beerme/pkg/metrics"
)

var (
	// ErrCatalogUnavailable - каталог недоступен или ответил без status=success
	// Транспортная ошибка, не-200 статус и кривой JSON сворачиваются в одну ошибку:
	// для бота все эти случаи означают одно и то же
	ErrCatalogUnavailable = errors.New("beer catalog unavailable")
)

const statusSuccess = "success"

// Client - HTTP клиент BreweryDB v2
// Повторных попыток нет: неудачный вызов сразу отдается наверх
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает новый клиент BreweryDB
func NewClient(baseURL, apiKey string, timeoutSec int) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

// beerResponse - конверт ответа /beer/random
type beerResponse struct {
	Status string       `json:"status"`
	Data   *entity.Beer `json:"data"`
}

// beerListResponse - конверт ответа /search
type beerListResponse struct {
	Status string        `json:"status"`
	Data   []entity.Beer `json:"data"`
}

// Random получает случайное пиво
// withBreweries добавляет данные пивоварен в ответ (нужно для поля brewery)
func (c *Client) Random(ctx context.Context, withBreweries bool) (*entity.Beer, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	if withBreweries {
		params.Set("withBreweries", "Y")
	}

	var envelope beerResponse
	if err := c.get(ctx, "/beer/random", params, &envelope); err != nil {
		return nil, err
	}

	if envelope.Status != statusSuccess || envelope.Data == nil {
		return nil, fmt.Errorf("%w: random returned status %q", ErrCatalogUnavailable, envelope.Status)
	}

	return envelope.Data, nil
}

// Search ищет пиво по текстовому запросу
// Всегда запрашивает пивоварни: фильтр по brewery работает на их именах
func (c *Client) Search(ctx context.Context, query string) ([]entity.Beer, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("type", "beer")
	params.Set("withBreweries", "Y")
	params.Set("q", query)

	var envelope beerListResponse
	if err := c.get(ctx, "/search", params, &envelope); err != nil {
		return nil, err
	}

	if envelope.Status != statusSuccess {
		return nil, fmt.Errorf("%w: search returned status %q", ErrCatalogUnavailable, envelope.Status)
	}

	return envelope.Data, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RecordCatalogRequest(path, status, time.Since(start).Seconds())
	}()

	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status code %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrCatalogUnavailable, err)
	}

	return nil
}
