package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"newswizard/internal/dialog"
	"newswizard/internal/session"

	"github.com/xeipuuv/gojsonschema"
)

const maxRequestBytes = 1 << 20

var errInvalidEnvelope = errors.New("invalid request envelope")

type conversation interface {
	Launch(ctx context.Context, conversationID string, attrs session.Map) (dialog.Response, session.Map, error)
	Turn(ctx context.Context, t dialog.Turn, attrs session.Map) (dialog.Response, session.Map, error)
	End(ctx context.Context, conversationID string) error
}

type Handler struct {
	log          *slog.Logger
	conversation conversation
	skillID      string
	schema       *gojsonschema.Schema
}

// NewHandler создает обработчик навыка. Непустой skillID включает проверку applicationId.
func NewHandler(log *slog.Logger, conv conversation, skillID string) (*Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile request schema: %w", err)
	}
	return &Handler{
		log:          log,
		conversation: conv,
		skillID:      skillID,
		schema:       schema,
	}, nil
}

// skill - хендлер для эндпоинта POST /skill
func (h *Handler) skill(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/skill"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
	if r.Method != http.MethodPost {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		log.Warn("failed to read request body", slog.Any("error", err))
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := h.decode(body)
	if err != nil {
		log.Warn("rejected request envelope", slog.Any("error", err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.skillID != "" && req.Session.Application.ApplicationID != h.skillID {
		log.Warn("unsupported application id",
			slog.String("application_id", req.Session.Application.ApplicationID),
		)
		respondWithError(w, http.StatusForbidden, "Unsupported application id")
		return
	}

	log = log.With(
		slog.String("conversation_id", req.Session.SessionID),
		slog.String("request_type", req.Request.Type),
	)

	var (
		resp  dialog.Response
		attrs session.Map
	)
	switch req.Request.Type {
	case requestTypeLaunch:
		resp, attrs, err = h.conversation.Launch(r.Context(), req.Session.SessionID, req.Session.Attributes)
	case requestTypeIntent:
		resp, attrs, err = h.conversation.Turn(r.Context(), req.turn(), req.Session.Attributes)
	case requestTypeSessionEnded:
		log.Info("conversation ended by platform", slog.String("reason", req.Request.Reason))
		err = h.conversation.End(r.Context(), req.Session.SessionID)
		resp = dialog.Response{EndConversation: true}
	}
	if err != nil {
		log.Error("failed to handle turn", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondWithJSON(w, http.StatusOK, toSkillResponse(resp, attrs))
}

// decode проверяет конверт по схеме и разбирает его.
func (h *Handler) decode(body []byte) (skillRequest, error) {
	var req skillRequest
	result, err := h.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return req, fmt.Errorf("%w: %w", errInvalidEnvelope, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return req, fmt.Errorf("%w: %s", errInvalidEnvelope, strings.Join(errs, "; "))
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: %w", errInvalidEnvelope, err)
	}
	return req, nil
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
