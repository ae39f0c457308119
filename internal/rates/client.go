// Package rates получает курсы валют у exchangerate-api.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable охватывает все отказы внешнего сервиса курсов: сетевую
// ошибку, неуспешный статус и ответ без таблицы.
var ErrUnavailable = errors.New("rates service unavailable")

// Client — HTTP-клиент внешнего сервиса курсов. Ошибки запроса не
// фатальны: вызывающая сторона показывает пользователю запасное сообщение.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type latestResponse struct {
	Result          string             `json:"result"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// FetchRates возвращает таблицу курсов относительно базовой валюты.
func (c *Client) FetchRates(ctx context.Context, base string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, c.apiKey, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if payload.Result != "success" || len(payload.ConversionRates) == 0 {
		return nil, fmt.Errorf("%w: result %q", ErrUnavailable, payload.Result)
	}

	return payload.ConversionRates, nil
}

// Report — курсы основных валют к рублю, посчитанные из таблицы с базой USD.
type Report struct {
	USDRUB float64
	EURRUB float64
	CNYRUB float64
	INRRUB float64
}

// BuildReport строит отчет кросс-курсами: рубль за единицу валюты.
func BuildReport(conversionRates map[string]float64) (*Report, error) {
	usdRub, ok := conversionRates["RUB"]
	if !ok || usdRub <= 0 {
		return nil, fmt.Errorf("rates table has no RUB rate")
	}

	report := &Report{USDRUB: usdRub}
	cross := []struct {
		code string
		dst  *float64
	}{
		{"EUR", &report.EURRUB},
		{"CNY", &report.CNYRUB},
		{"INR", &report.INRRUB},
	}
	for _, c := range cross {
		rate, ok := conversionRates[c.code]
		if !ok || rate <= 0 {
			return nil, fmt.Errorf("rates table has no %s rate", c.code)
		}
		*c.dst = usdRub / rate
	}
	return report, nil
}
