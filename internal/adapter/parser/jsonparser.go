package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"newswizard/internal/domain"
)

type rateJSON struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	QuoteDate string `json:"quoteDate"`
	Symbol    string `json:"symbol"`
}

// RatesJSONParser разбирает ленту ставок в виде JSON-массива объектов.
type RatesJSONParser struct {
	log *slog.Logger
}

func NewRatesJSONParser(log *slog.Logger) *RatesJSONParser {
	return &RatesJSONParser{log: log.With(slog.String("component", "rates_parser"))}
}

func (p *RatesJSONParser) Parse(ctx context.Context, reader io.Reader) ([]domain.FeedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rates []rateJSON
	if err := json.NewDecoder(reader).Decode(&rates); err != nil {
		p.log.Error("Error decoding JSON", slog.Any("error", err))
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	records := make([]domain.FeedRecord, 0, len(rates))
	for _, r := range rates {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			p.log.Warn("Rate item has no name, skipping item", slog.String("symbol", r.Symbol))
			continue
		}
		records = append(records, domain.RateRecord{
			Name:      name,
			Value:     strings.TrimSpace(r.Value),
			QuoteDate: strings.TrimSpace(r.QuoteDate),
			Symbol:    strings.TrimSpace(r.Symbol),
		})
	}
	return records, nil
}
