package session

import (
	"encoding/json"
	"fmt"
)

// Attributes - хранилище ключ/значение одного разговора.
// Движок считает его принадлежащим исключительно текущему разговору.
type Attributes interface {
	Get(key string) (json.RawMessage, bool)
	Set(key string, value any) error
}

// Map реализует Attributes поверх обычной карты. Используется и для атрибутов,
// пришедших в конверте запроса, и для состояния, загруженного из хранилища.
type Map map[string]json.RawMessage

func (m Map) Get(key string) (json.RawMessage, bool) {
	v, ok := m[key]
	if !ok || len(v) == 0 || string(v) == "null" {
		return nil, false
	}
	return v, true
}

func (m Map) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode attribute %s: %w", key, err)
	}
	m[key] = raw
	return nil
}
