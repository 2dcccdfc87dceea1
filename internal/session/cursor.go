package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"newswizard/internal/domain"
)

// ErrNoActiveSession означает, что для темы еще не было первой страницы.
var ErrNoActiveSession = errors.New("no active session")

// TopicState - типизированное состояние одной темы в разговоре.
// Paginating равен false, если элементы закешированы только для поиска по названию.
type TopicState struct {
	Items      []domain.SpeechItem `json:"items"`
	Cursor     int                 `json:"cursor"`
	Paginating bool                `json:"paginating"`
}

// Page - порция элементов, выданная за один ход.
type Page struct {
	Items   []domain.SpeechItem
	HasMore bool
}

// Cursors хранит курсоры постраничного чтения по темам.
// Каждая тема лежит под собственным ключом, темы не делят ни курсор, ни элементы.
type Cursors struct {
	attrs Attributes
}

// NewCursors создает курсоры поверх атрибутов разговора.
func NewCursors(attrs Attributes) *Cursors {
	return &Cursors{attrs: attrs}
}

// StartPage устанавливает новый список элементов и сбрасывает курсор в 0.
// Предыдущее состояние темы перезаписывается.
func (c *Cursors) StartPage(topic domain.Topic, items []domain.SpeechItem) error {
	return c.save(topic, TopicState{Items: items, Paginating: true})
}

// CacheItems сохраняет элементы для поиска, не начиная постраничное чтение.
// Курсор и признак чтения существующего состояния сохраняются.
func (c *Cursors) CacheItems(topic domain.Topic, items []domain.SpeechItem) error {
	st, _, err := c.load(topic)
	if err != nil {
		st = TopicState{}
	}
	st.Items = items
	return c.save(topic, st)
}

// NextPage возвращает до pageSize элементов начиная с курсора и сдвигает курсор.
// Для исчерпанной темы возвращается пустая страница без изменения состояния.
func (c *Cursors) NextPage(topic domain.Topic, pageSize int) (Page, error) {
	st, ok, err := c.load(topic)
	if err != nil {
		return Page{}, err
	}
	if !ok || !st.Paginating {
		return Page{}, ErrNoActiveSession
	}
	if st.Cursor >= len(st.Items) {
		return Page{}, nil
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	end := min(st.Cursor+pageSize, len(st.Items))
	page := Page{Items: st.Items[st.Cursor:end]}
	st.Cursor = end
	page.HasMore = st.Cursor < len(st.Items)
	if err := c.save(topic, st); err != nil {
		return Page{}, err
	}
	return page, nil
}

// HasMore сообщает, остались ли непрочитанные элементы темы.
func (c *Cursors) HasMore(topic domain.Topic) bool {
	st, ok, err := c.load(topic)
	if err != nil || !ok {
		return false
	}
	return st.Cursor < len(st.Items)
}

// CurrentItems возвращает закешированный список элементов темы.
func (c *Cursors) CurrentItems(topic domain.Topic) ([]domain.SpeechItem, bool) {
	st, ok, err := c.load(topic)
	if err != nil || !ok || st.Items == nil {
		return nil, false
	}
	return st.Items, true
}

// State возвращает текущее состояние темы.
func (c *Cursors) State(topic domain.Topic) (TopicState, bool) {
	st, ok, err := c.load(topic)
	if err != nil {
		return TopicState{}, false
	}
	return st, ok
}

func (c *Cursors) load(topic domain.Topic) (TopicState, bool, error) {
	raw, ok := c.attrs.Get(string(topic))
	if !ok {
		return TopicState{}, false, nil
	}
	var st TopicState
	if err := json.Unmarshal(raw, &st); err != nil {
		return TopicState{}, false, fmt.Errorf("failed to decode %s state: %w", topic, err)
	}
	return st, true, nil
}

func (c *Cursors) save(topic domain.Topic, st TopicState) error {
	return c.attrs.Set(string(topic), st)
}
