package usecase

import (
	"context"
	"io"

	"newswizard/internal/domain"
)

// FeedFetcher загружает сырые данные ленты по URL.
// Возвращает io.ReadCloser, который должен быть закрыт после использования.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// FeedParser преобразует сырые данные ленты в записи предметной области.
type FeedParser interface {
	Parse(ctx context.Context, reader io.Reader) ([]domain.FeedRecord, error)
}
