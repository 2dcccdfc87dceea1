package storage

import (
	"context"
	"errors"

	"newswizard/internal/session"
)

// ErrStoreClosed возвращается после Close.
var ErrStoreClosed = errors.New("store closed")

// Store хранит атрибуты разговора под идентификатором разговора.
// Отсутствующий или просроченный разговор загружается как пустая карта.
type Store interface {
	Load(ctx context.Context, conversationID string) (session.Map, error)
	Save(ctx context.Context, conversationID string, attrs session.Map) error
	Delete(ctx context.Context, conversationID string) error
	Close()
}
