package speech

import (
	"fmt"
	"strings"

	"newswizard/internal/domain"
)

// Normalize преобразует записи ленты в строки для озвучивания.
// Порядок результата совпадает с порядком записей. Пустой вход дает пустой результат.
func Normalize(records []domain.FeedRecord) ([]domain.SpeechItem, error) {
	items := make([]domain.SpeechItem, 0, len(records))
	for i, rec := range records {
		switch r := rec.(type) {
		case domain.NewsRecord:
			items = append(items, r.Body)
		case domain.RateRecord:
			sentence, err := RateSentence(r)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			items = append(items, sentence)
		default:
			return nil, fmt.Errorf("record %d: unsupported feed record %T", i, rec)
		}
	}
	return items, nil
}

// RateSentence формирует фразу вида "As of 6 2 the Prime rate is 4.5".
// Месяц и день берутся из QuoteDate по разделителям "/".
func RateSentence(r domain.RateRecord) (string, error) {
	month, day, err := splitQuoteDate(r.QuoteDate)
	if err != nil {
		return "", err
	}
	subject := r.Name
	if !strings.HasSuffix(strings.ToLower(r.Name), "rate") {
		subject += " rate"
	}
	return fmt.Sprintf("As of %s %s the %s is %s", month, day, subject, r.Value), nil
}

func splitQuoteDate(date string) (month, day string, err error) {
	date = strings.TrimSpace(date)
	first := strings.Index(date, "/")
	last := strings.LastIndex(date, "/")
	if first < 0 || first == last {
		return "", "", fmt.Errorf("%w: %q", domain.ErrMalformedQuoteDate, date)
	}
	return date[:first], date[first+1 : last], nil
}
