package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newswizard/internal/domain"
	"newswizard/internal/metrics"
)

// FeedLoader загружает и разбирает ленту одной темы по требованию диалога.
// Кеширования между разговорами нет: каждый вызов идет в источник.
type FeedLoader struct {
	topic   domain.Topic
	url     string
	timeout time.Duration
	fetcher FeedFetcher
	parser  FeedParser
	log     *slog.Logger
}

// NewFeedLoader создает загрузчик темы. Ненулевой timeout ограничивает загрузку и разбор вместе.
func NewFeedLoader(topic domain.Topic, url string, timeout time.Duration, fetcher FeedFetcher, parser FeedParser, log *slog.Logger) *FeedLoader {
	return &FeedLoader{
		topic:   topic,
		url:     url,
		timeout: timeout,
		fetcher: fetcher,
		parser:  parser,
		log: log.With(
			slog.String("component", "feed-loader"),
			slog.String("topic", string(topic)),
			slog.String("url", url),
		),
	}
}

// Fetch выполняет загрузку и разбор ленты. Ошибка любого этапа возвращается без повторов.
func (l *FeedLoader) Fetch(ctx context.Context) ([]domain.FeedRecord, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	start := time.Now()
	defer func() {
		metrics.FeedFetchDuration.WithLabelValues(string(l.topic)).Observe(time.Since(start).Seconds())
	}()

	reader, err := l.fetcher.Fetch(ctx, l.url)
	if err != nil {
		metrics.FeedFetchTotal.WithLabelValues(string(l.topic), "fetch_error").Inc()
		l.log.Error("Feed fetch failed",
			slog.String("stage", "fetch"),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("fetch failed for %s: %w", l.topic, err)
	}
	defer reader.Close()

	records, err := l.parser.Parse(ctx, reader)
	if err != nil {
		metrics.FeedFetchTotal.WithLabelValues(string(l.topic), "parse_error").Inc()
		l.log.Error("Feed parsing failed",
			slog.String("stage", "parse"),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("parse failed for %s: %w", l.topic, err)
	}

	metrics.FeedFetchTotal.WithLabelValues(string(l.topic), "ok").Inc()
	l.log.Info("Feed loaded",
		slog.Int("records", len(records)),
		slog.Duration("duration", time.Since(start)),
	)
	return records, nil
}
