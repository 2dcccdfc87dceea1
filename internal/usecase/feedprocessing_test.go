package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"newswizard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	body    string
	err     error
	gotURL  string
	waitCtx bool
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	f.gotURL = url
	if f.waitCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

type stubParser struct {
	records []domain.FeedRecord
	err     error
	gotBody string
}

func (p *stubParser) Parse(_ context.Context, r io.Reader) ([]domain.FeedRecord, error) {
	data, _ := io.ReadAll(r)
	p.gotBody = string(data)
	return p.records, p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFeedLoader_Fetch(t *testing.T) {
	f := &stubFetcher{body: "<rss/>"}
	p := &stubParser{records: []domain.FeedRecord{domain.NewsRecord{Body: "a"}}}
	l := NewFeedLoader(domain.TopicNews, "https://example.com/news", time.Second, f, p, discardLogger())

	records, err := l.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, p.records, records)
	assert.Equal(t, "https://example.com/news", f.gotURL)
	assert.Equal(t, "<rss/>", p.gotBody)
}

func TestFeedLoader_FetchError(t *testing.T) {
	upstream := errors.New("connection refused")
	l := NewFeedLoader(domain.TopicRates, "https://example.com/rates", time.Second,
		&stubFetcher{err: upstream}, &stubParser{}, discardLogger())

	records, err := l.Fetch(context.Background())

	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "fetch failed for rates")
	assert.Nil(t, records)
}

func TestFeedLoader_ParseError(t *testing.T) {
	l := NewFeedLoader(domain.TopicRates, "https://example.com/rates", time.Second,
		&stubFetcher{body: "{"}, &stubParser{err: errors.New("bad json")}, discardLogger())

	_, err := l.Fetch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse failed for rates")
}

func TestFeedLoader_Timeout(t *testing.T) {
	l := NewFeedLoader(domain.TopicNews, "https://example.com/news", 10*time.Millisecond,
		&stubFetcher{waitCtx: true}, &stubParser{}, discardLogger())

	_, err := l.Fetch(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
