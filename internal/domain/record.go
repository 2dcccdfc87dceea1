package domain

import "errors"

// ErrMalformedQuoteDate возвращается, когда дата котировки не в формате M/D/Y.
var ErrMalformedQuoteDate = errors.New("malformed quote date")

// Topic определяет одну из независимых тем диалога.
type Topic string

const (
	TopicNews  Topic = "news"
	TopicRates Topic = "rates"
)

// FeedRecord представляет сырую запись ленты одного из двух источников.
// Реализуется только типами NewsRecord и RateRecord.
type FeedRecord interface {
	feedRecord()
}

// NewsRecord представляет новость из новостной ленты.
type NewsRecord struct {
	Body string
}

// RateRecord представляет котировку из ленты ставок.
// QuoteDate хранится в исходном виде "M/D/Y".
type RateRecord struct {
	Name      string
	Value     string
	QuoteDate string
	Symbol    string
}

func (NewsRecord) feedRecord() {}
func (RateRecord) feedRecord() {}

// SpeechItem - готовая к озвучиванию строка, одна на каждую запись ленты.
type SpeechItem = string
