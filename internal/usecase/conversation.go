package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"newswizard/internal/dialog"
	"newswizard/internal/session"
)

// ConversationStore хранит атрибуты разговора между ходами.
type ConversationStore interface {
	Load(ctx context.Context, conversationID string) (session.Map, error)
	Save(ctx context.Context, conversationID string, attrs session.Map) error
	Delete(ctx context.Context, conversationID string) error
}

// DialogRouter обрабатывает ходы разговора.
type DialogRouter interface {
	Welcome() dialog.Response
	Handle(ctx context.Context, t dialog.Turn) (dialog.Response, error)
}

// ConversationUseCase связывает маршрутизатор диалога с хранилищем состояния.
// Без хранилища атрибуты путешествуют в конверте запроса и возвращаются в ответе.
type ConversationUseCase struct {
	router DialogRouter
	store  ConversationStore
	log    *slog.Logger
}

func NewConversationUseCase(router DialogRouter, store ConversationStore, log *slog.Logger) *ConversationUseCase {
	return &ConversationUseCase{
		router: router,
		store:  store,
		log:    log.With(slog.String("component", "conversation")),
	}
}

// Launch отвечает на открытие навыка. Возвращает атрибуты для конверта ответа.
func (uc *ConversationUseCase) Launch(ctx context.Context, conversationID string, attrs session.Map) (dialog.Response, session.Map, error) {
	if uc.store != nil {
		return uc.router.Welcome(), nil, nil
	}
	return uc.router.Welcome(), attrs, nil
}

// Turn обрабатывает один ход. Ошибка возвращается только при сбое хранилища,
// ошибки диалога уже превращены в ответ и лишь журналируются.
func (uc *ConversationUseCase) Turn(ctx context.Context, t dialog.Turn, envelope session.Map) (dialog.Response, session.Map, error) {
	const op = "usecase.conversation.Turn"
	log := uc.log.With(
		slog.String("op", op),
		slog.String("conversation_id", t.ConversationID),
		slog.String("request_id", t.RequestID),
	)

	attrs := envelope
	if uc.store != nil {
		loaded, err := uc.store.Load(ctx, t.ConversationID)
		if err != nil {
			log.Error("Failed to load conversation state", slog.Any("error", err))
			return dialog.Response{}, nil, fmt.Errorf("%s: load state: %w", op, err)
		}
		attrs = loaded
	}
	if attrs == nil {
		attrs = session.Map{}
	}
	t.Attributes = attrs

	resp, err := uc.router.Handle(ctx, t)
	if err != nil {
		log.Debug("Turn handled with dialog error", slog.String("intent", t.Intent), slog.Any("error", err))
	}

	if uc.store == nil {
		return resp, attrs, nil
	}
	if resp.EndConversation {
		if err := uc.store.Delete(ctx, t.ConversationID); err != nil {
			log.Warn("Failed to delete conversation state", slog.Any("error", err))
		}
		return resp, nil, nil
	}
	if err := uc.store.Save(ctx, t.ConversationID, attrs); err != nil {
		log.Error("Failed to save conversation state", slog.Any("error", err))
		return dialog.Response{}, nil, fmt.Errorf("%s: save state: %w", op, err)
	}
	return resp, nil, nil
}

// End удаляет состояние завершенного разговора.
func (uc *ConversationUseCase) End(ctx context.Context, conversationID string) error {
	if uc.store == nil {
		return nil
	}
	if err := uc.store.Delete(ctx, conversationID); err != nil {
		return fmt.Errorf("usecase.conversation.End: %w", err)
	}
	uc.log.Info("Conversation ended", slog.String("conversation_id", conversationID))
	return nil
}
