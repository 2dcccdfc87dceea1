package parser

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"

	"newswizard/internal/domain"

	"github.com/microcosm-cc/bluemonday"
)

type rssXML struct {
	Channel channelXML `xml:"channel"`
}

type channelXML struct {
	Title string    `xml:"title"`
	Items []itemXML `xml:"item"`
}

type itemXML struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	// content:encoded, пространство имен не проверяется
	Encoded string `xml:"encoded"`

	Name      string `xml:"name"`
	Value     string `xml:"value"`
	QuoteDate string `xml:"quoteDate"`
	Symbol    string `xml:"symbol"`
}

func decodeRSS(ctx context.Context, reader io.Reader) (*rssXML, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rss rssXML
	if err := xml.NewDecoder(reader).Decode(&rss); err != nil {
		return nil, fmt.Errorf("failed to decode XML: %w", err)
	}
	return &rss, nil
}

// NewsParser разбирает RSS-ленту новостей. Текстом новости служит content:encoded,
// а при его отсутствии description. HTML-разметка удаляется.
type NewsParser struct {
	policy *bluemonday.Policy
	log    *slog.Logger
}

func NewNewsParser(log *slog.Logger) *NewsParser {
	return &NewsParser{
		policy: bluemonday.StrictPolicy(),
		log:    log.With(slog.String("component", "news_parser")),
	}
}

func (p *NewsParser) Parse(ctx context.Context, reader io.Reader) ([]domain.FeedRecord, error) {
	rss, err := decodeRSS(ctx, reader)
	if err != nil {
		p.log.Error("Error decoding XML", slog.Any("error", err))
		return nil, err
	}
	records := make([]domain.FeedRecord, 0, len(rss.Channel.Items))
	for _, item := range rss.Channel.Items {
		raw := item.Encoded
		if strings.TrimSpace(raw) == "" {
			raw = item.Description
		}
		body := p.plainText(raw)
		if body == "" {
			p.log.Warn("News item has no text, skipping item", slog.String("item_title", item.Title))
			continue
		}
		records = append(records, domain.NewsRecord{Body: body})
	}
	return records, nil
}

// plainText убирает теги и сущности HTML и схлопывает пробелы.
func (p *NewsParser) plainText(s string) string {
	stripped := html.UnescapeString(p.policy.Sanitize(s))
	return strings.Join(strings.Fields(stripped), " ")
}

// RatesXMLParser разбирает RSS-ленту ставок, где каждый item содержит
// элементы name, value, quoteDate и symbol.
type RatesXMLParser struct {
	log *slog.Logger
}

func NewRatesXMLParser(log *slog.Logger) *RatesXMLParser {
	return &RatesXMLParser{log: log.With(slog.String("component", "rates_parser"))}
}

func (p *RatesXMLParser) Parse(ctx context.Context, reader io.Reader) ([]domain.FeedRecord, error) {
	rss, err := decodeRSS(ctx, reader)
	if err != nil {
		p.log.Error("Error decoding XML", slog.Any("error", err))
		return nil, err
	}
	records := make([]domain.FeedRecord, 0, len(rss.Channel.Items))
	for _, item := range rss.Channel.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			p.log.Warn("Rate item has no name, skipping item", slog.String("symbol", item.Symbol))
			continue
		}
		records = append(records, domain.RateRecord{
			Name:      name,
			Value:     strings.TrimSpace(item.Value),
			QuoteDate: strings.TrimSpace(item.QuoteDate),
			Symbol:    strings.TrimSpace(item.Symbol),
		})
	}
	return records, nil
}
