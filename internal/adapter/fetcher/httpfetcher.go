package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPFetcher загружает ленты новостей и ставок по HTTP.
// Все запросы проходят через общий ограничитель частоты, чтобы не перегружать источник.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewHTTPFetcher создает загрузчик с таймаутом на запрос и ограничением requestsPerSecond.
// Нулевое или отрицательное значение requestsPerSecond снимает ограничение.
func NewHTTPFetcher(log *slog.Logger, timeout time.Duration, requestsPerSecond float64) *HTTPFetcher {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = max(1, int(requestsPerSecond))
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		log:     log.With(slog.String("component", "fetcher")),
	}
}

// Fetch выполняет GET-запрос и возвращает тело ответа, которое вызывающий обязан закрыть.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	log := f.log.With(slog.String("url", url))
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait for url %s: %w", url, err)
	}
	log.Debug("Fetching URL")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		log.Error("HTTP request failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch url %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		log.Error("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status code: %d for url %s", resp.StatusCode, url)
	}
	log.Debug("Successfully fetched URL")
	return resp.Body, nil
}
