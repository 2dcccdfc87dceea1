package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"newswizard/internal/domain"
	"newswizard/internal/metrics"
	"newswizard/internal/session"
	"newswizard/internal/speech"
)

const defaultProgressiveTimeout = 2 * time.Second

// FeedSource загружает сырые записи ленты одной темы.
type FeedSource interface {
	Fetch(ctx context.Context) ([]domain.FeedRecord, error)
}

// Notifier отправляет промежуточную фразу, пока ход еще обрабатывается.
type Notifier interface {
	Notify(ctx context.Context, d Directive, text string) error
}

// Directive - реквизиты для промежуточного ответа платформе.
type Directive struct {
	RequestID   string
	APIEndpoint string
	AccessToken string
}

// Turn - один ход разговора.
type Turn struct {
	RequestID      string
	ConversationID string
	Intent         string
	Slots          map[string]string
	Attributes     session.Attributes
	Directive      Directive
}

// Response - ответ на ход. Speech оборачивается в <speak> только если SpeechIsMarkup.
type Response struct {
	Speech           string
	SpeechIsMarkup   bool
	Reprompt         string
	RepromptIsMarkup bool
	CardTitle        string
	CardBody         string
	EndConversation  bool
}

// Options настраивает маршрутизатор. Нулевые поля заменяются значениями по умолчанию.
type Options struct {
	SkillName          string
	PageSize           int
	Progressive        bool
	ProgressiveTimeout time.Duration
	Messages           Messages
	Topics             map[domain.Topic]TopicMessages
	Aliases            Aliases
	NotFoundFormat     string
	LookupPrompt       string
}

// Router переводит интент хода в действие над состоянием темы и готовый ответ.
type Router struct {
	sources  map[domain.Topic]FeedSource
	notifier Notifier
	builder  *speech.Builder
	opts     Options
	log      *slog.Logger
}

// NewRouter создает маршрутизатор с источниками лент по темам и заполняет пустые опции значениями по умолчанию.
func NewRouter(log *slog.Logger, sources map[domain.Topic]FeedSource, notifier Notifier, opts Options) *Router {
	if opts.PageSize <= 0 {
		opts.PageSize = 1
	}
	if opts.ProgressiveTimeout <= 0 {
		opts.ProgressiveTimeout = defaultProgressiveTimeout
	}
	opts.Messages = mergeMessages(opts.Messages, DefaultMessages())
	topics := DefaultTopics(opts.SkillName)
	for topic, tm := range opts.Topics {
		topics[topic] = tm
	}
	opts.Topics = topics
	if opts.Aliases == nil {
		opts.Aliases = DefaultAliases
	}
	return &Router{
		sources:  sources,
		notifier: notifier,
		builder:  speech.NewBuilder(opts.NotFoundFormat, opts.LookupPrompt),
		opts:     opts,
		log:      log.With(slog.String("component", "dialog")),
	}
}

// Welcome возвращает ответ на запуск навыка.
func (r *Router) Welcome() Response {
	metrics.TurnsTotal.WithLabelValues("launch", "ok").Inc()
	return r.plain(r.opts.Messages.Welcome)
}

// Handle обрабатывает один ход. Ответ пригоден для произнесения всегда,
// ошибка описывает причину неуспеха для журнала и метрик.
func (r *Router) Handle(ctx context.Context, t Turn) (Response, error) {
	rt, ok := routes[t.Intent]
	if !ok {
		metrics.TurnsTotal.WithLabelValues("unknown", "unrecognized").Inc()
		r.log.Warn("Unrecognized intent",
			slog.String("op", "Handle"),
			slog.String("intent", t.Intent),
			slog.String("request_id", t.RequestID),
		)
		resp := r.plain(r.opts.Messages.Sorry + " " + r.opts.Messages.Help)
		return resp, fmt.Errorf("%w: %q", ErrUnrecognizedIntent, t.Intent)
	}

	var (
		resp Response
		err  error
	)
	switch rt.action {
	case actionFirstPage:
		resp, err = r.firstPage(ctx, t, rt.topic)
	case actionNextPage:
		resp, err = r.nextPage(t, rt.topic)
	case actionLookup:
		resp, err = r.lookup(ctx, t, rt.topic)
	case actionHelp:
		resp = r.plain(r.opts.Messages.Help)
	case actionAbout:
		resp = r.plain(r.opts.Messages.About)
	case actionStop:
		resp = Response{Speech: r.opts.Messages.Goodbye, EndConversation: true}
	}

	metrics.TurnsTotal.WithLabelValues(t.Intent, outcome(err)).Inc()
	if err != nil {
		r.log.Info("Turn finished with error",
			slog.String("op", "Handle"),
			slog.String("intent", t.Intent),
			slog.String("request_id", t.RequestID),
			slog.String("error", err.Error()),
		)
	}
	return resp, err
}

func (r *Router) firstPage(ctx context.Context, t Turn, topic domain.Topic) (Response, error) {
	tm := r.opts.Topics[topic]
	items, err := r.fetchWithProgress(ctx, t, topic, tm.Progressive)
	if err != nil {
		return r.plain(tm.FetchFailed), err
	}

	cursors := session.NewCursors(t.Attributes)
	if err := cursors.StartPage(topic, items); err != nil {
		return r.plain(r.opts.Messages.Sorry), fmt.Errorf("failed to store %s state: %w", topic, err)
	}
	page, err := cursors.NextPage(topic, r.opts.PageSize)
	if err != nil {
		return r.plain(r.opts.Messages.Sorry), fmt.Errorf("failed to read first %s page: %w", topic, err)
	}
	return r.page(tm, page), nil
}

func (r *Router) nextPage(t Turn, topic domain.Topic) (Response, error) {
	tm := r.opts.Topics[topic]
	cursors := session.NewCursors(t.Attributes)
	page, err := cursors.NextPage(topic, r.opts.PageSize)
	switch {
	case errors.Is(err, session.ErrNoActiveSession):
		return r.plain(tm.NoSession), err
	case err != nil:
		return r.plain(r.opts.Messages.Sorry), fmt.Errorf("failed to read next %s page: %w", topic, err)
	case len(page.Items) == 0:
		return r.plain(tm.Exhausted), nil
	}
	return r.page(tm, page), nil
}

func (r *Router) lookup(ctx context.Context, t Turn, topic domain.Topic) (Response, error) {
	tm := r.opts.Topics[topic]
	spoken := strings.TrimSpace(t.Slots[SlotName])
	if spoken == "" {
		rendered := r.builder.BuildLookupResult(nil, spoken)
		return r.markup(tm.CardTitle, rendered, r.opts.Messages.Reprompt), ErrMissingSlot
	}

	cursors := session.NewCursors(t.Attributes)
	items, ok := cursors.CurrentItems(topic)
	if !ok {
		fetched, err := r.fetch(ctx, topic)
		if err != nil {
			return r.plain(tm.FetchFailed), err
		}
		if err := cursors.CacheItems(topic, fetched); err != nil {
			return r.plain(r.opts.Messages.Sorry), fmt.Errorf("failed to cache %s items: %w", topic, err)
		}
		items = fetched
	}

	canonical := r.opts.Aliases.Resolve(spoken)
	matches := matchItems(items, canonical)
	rendered := r.builder.BuildLookupResult(matches, spoken)
	return r.markup(tm.CardTitle, rendered, r.opts.Messages.Reprompt), nil
}

// fetchWithProgress загружает ленту, параллельно отправляя промежуточную фразу.
// Ход дожидается отправки, поэтому горутина не переживает запрос.
func (r *Router) fetchWithProgress(ctx context.Context, t Turn, topic domain.Topic, text string) ([]domain.SpeechItem, error) {
	if !r.opts.Progressive || r.notifier == nil || text == "" || t.Directive.AccessToken == "" {
		return r.fetch(ctx, topic)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		nctx, cancel := context.WithTimeout(ctx, r.opts.ProgressiveTimeout)
		defer cancel()
		if err := r.notifier.Notify(nctx, t.Directive, text); err != nil {
			metrics.ProgressiveFailures.Inc()
			r.log.Warn("Failed to send progressive response",
				slog.String("op", "fetchWithProgress"),
				slog.String("request_id", t.RequestID),
				slog.String("error", err.Error()),
			)
		}
	}()

	items, err := r.fetch(ctx, topic)
	wg.Wait()
	return items, err
}

func (r *Router) fetch(ctx context.Context, topic domain.Topic) ([]domain.SpeechItem, error) {
	src, ok := r.sources[topic]
	if !ok {
		return nil, fmt.Errorf("%w: no source for topic %s", ErrUpstreamFetch, topic)
	}
	records, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}
	items, err := speech.Normalize(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFeed, topic)
	}
	return items, nil
}

func (r *Router) page(tm TopicMessages, page session.Page) Response {
	rendered := r.builder.BuildPage(page.Items, page.HasMore, tm.Profile)
	reprompt := r.opts.Messages.Reprompt
	if page.HasMore {
		reprompt = tm.Reprompt
	}
	return Response{
		Speech:         rendered.Speech,
		SpeechIsMarkup: true,
		Reprompt:       reprompt,
		CardTitle:      tm.CardTitle,
		CardBody:       rendered.Card,
	}
}

func (r *Router) markup(title string, rendered speech.Rendered, reprompt string) Response {
	return Response{
		Speech:         rendered.Speech,
		SpeechIsMarkup: true,
		Reprompt:       reprompt,
		CardTitle:      title,
		CardBody:       rendered.Card,
	}
}

func (r *Router) plain(text string) Response {
	return Response{Speech: text, Reprompt: r.opts.Messages.Reprompt}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyFeed):
		return "empty_feed"
	case errors.Is(err, ErrUpstreamFetch):
		return "fetch_failed"
	case errors.Is(err, session.ErrNoActiveSession):
		return "no_session"
	case errors.Is(err, ErrMissingSlot):
		return "missing_slot"
	default:
		return "error"
	}
}

func mergeMessages(m, def Messages) Messages {
	if m.Welcome == "" {
		m.Welcome = def.Welcome
	}
	if m.Help == "" {
		m.Help = def.Help
	}
	if m.Goodbye == "" {
		m.Goodbye = def.Goodbye
	}
	if m.Sorry == "" {
		m.Sorry = def.Sorry
	}
	if m.Reprompt == "" {
		m.Reprompt = def.Reprompt
	}
	if m.About == "" {
		m.About = def.About
	}
	return m
}
