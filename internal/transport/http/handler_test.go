package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newswizard/internal/dialog"
	"newswizard/internal/domain"
	"newswizard/internal/usecase"
	"newswizard/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []domain.FeedRecord

func (s staticSource) Fetch(context.Context) ([]domain.FeedRecord, error) {
	return s, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, store usecase.ConversationStore, skillID string) http.Handler {
	t.Helper()
	log := discardLogger()
	router := dialog.NewRouter(log, map[domain.Topic]dialog.FeedSource{
		domain.TopicNews: staticSource{
			domain.NewsRecord{Body: "Markets open higher"},
			domain.NewsRecord{Body: "Housing starts rise"},
		},
		domain.TopicRates: staticSource{
			domain.RateRecord{Name: "Prime", Value: "4.5", QuoteDate: "6/2/2018"},
		},
	}, nil, dialog.Options{SkillName: "meridian", PageSize: 1})
	conv := usecase.NewConversationUseCase(router, store, log)
	h, err := NewHandler(log, conv, skillID)
	require.NoError(t, err)
	return NewServer(log, h)
}

func envelopeJSON(reqType, intent, attrs string) string {
	if attrs == "" {
		attrs = "{}"
	}
	intentPart := ""
	if intent != "" {
		intentPart = `,"intent":{"name":"` + intent + `","slots":{"intentname":{"name":"intentname","value":"prime"}}}`
	}
	return `{
		"version":"1.0",
		"session":{"new":false,"sessionId":"conv-1","application":{"applicationId":"skill-1"},"attributes":` + attrs + `},
		"context":{"System":{"apiEndpoint":"","apiAccessToken":""}},
		"request":{"type":"` + reqType + `","requestId":"req-1"` + intentPart + `}
	}`
}

func post(t *testing.T, srv http.Handler, body string) (*httptest.ResponseRecorder, skillResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/skill", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	var resp skillResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestSkill_Launch(t *testing.T) {
	srv := newTestServer(t, nil, "")

	rec, resp := post(t, srv, envelopeJSON(requestTypeLaunch, "", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	require.NotNil(t, resp.Response.OutputSpeech)
	assert.Equal(t, "PlainText", resp.Response.OutputSpeech.Type)
	assert.Contains(t, resp.Response.OutputSpeech.Text, "Welcome to meridian")
	require.NotNil(t, resp.Response.Reprompt)
	assert.False(t, resp.Response.ShouldEndSession)
}

func TestSkill_EnvelopeAttributesRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil, "")

	rec, resp := post(t, srv, envelopeJSON(requestTypeIntent, dialog.IntentGetNews, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Response.OutputSpeech)
	assert.Equal(t, "SSML", resp.Response.OutputSpeech.Type)
	assert.Equal(t, "<speak><p>Markets open higher</p> Do you want to hear more?</speak>", resp.Response.OutputSpeech.SSML)
	require.NotNil(t, resp.Response.Card)
	assert.Equal(t, "meridian news", resp.Response.Card.Title)
	require.Contains(t, resp.SessionAttributes, "news")

	attrs, err := json.Marshal(resp.SessionAttributes)
	require.NoError(t, err)
	rec, resp = post(t, srv, envelopeJSON(requestTypeIntent, dialog.IntentNextNews, string(attrs)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<speak><p>Housing starts rise</p></speak>", resp.Response.OutputSpeech.SSML)
}

func TestSkill_StoreBackedConversation(t *testing.T) {
	store := storage.NewMemoryStore(time.Minute, discardLogger())
	srv := newTestServer(t, store, "")

	rec, resp := post(t, srv, envelopeJSON(requestTypeIntent, dialog.IntentGetRates, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.SessionAttributes)
	assert.Contains(t, resp.Response.OutputSpeech.SSML, "the Prime rate is 4.5")

	rec, resp = post(t, srv, envelopeJSON(requestTypeIntent, dialog.IntentNextRates, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "There are no more rates to share.", resp.Response.OutputSpeech.Text)

	rec, _ = post(t, srv, envelopeJSON(requestTypeSessionEnded, "", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	attrs, err := store.Load(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestSkillRequest_TurnFromIntentRequest(t *testing.T) {
	var req skillRequest
	raw := `{
		"session":{"sessionId":"conv-7","application":{"applicationId":"skill-1"},"attributes":{}},
		"context":{"System":{"apiEndpoint":"https://api.example","apiAccessToken":"token"}},
		"request":{"type":"IntentRequest","requestId":"req-7",
			"intent":{"name":"GetRateForIntent","slots":{"intentname":{"name":"intentname","value":"lyeber"}}}}
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	turn := req.turn()

	assert.Equal(t, requestTypeIntent, req.Request.Type)
	assert.Equal(t, dialog.IntentRateFor, turn.Intent)
	assert.Equal(t, "conv-7", turn.ConversationID)
	assert.Equal(t, map[string]string{dialog.SlotName: "lyeber"}, turn.Slots)
	assert.Equal(t, "https://api.example", turn.Directive.APIEndpoint)
	assert.Equal(t, "token", turn.Directive.AccessToken)
	assert.Equal(t, "req-7", turn.Directive.RequestID)
}

func TestSkill_RateLookupFromSlot(t *testing.T) {
	srv := newTestServer(t, nil, "")

	rec, resp := post(t, srv, envelopeJSON(requestTypeIntent, dialog.IntentRateFor, ""))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Response.OutputSpeech)
	assert.Equal(t, "SSML", resp.Response.OutputSpeech.Type)
	assert.Contains(t, resp.Response.OutputSpeech.SSML, "the Prime rate is 4.5")
	assert.False(t, resp.Response.ShouldEndSession)
}

func TestSkill_StopEndsConversation(t *testing.T) {
	srv := newTestServer(t, nil, "")

	_, resp := post(t, srv, envelopeJSON(requestTypeIntent, dialog.IntentStop, ""))

	assert.True(t, resp.Response.ShouldEndSession)
	assert.Nil(t, resp.Response.Reprompt)
}

func TestSkill_RejectsInvalidEnvelope(t *testing.T) {
	srv := newTestServer(t, nil, "")

	rec, _ := post(t, srv, `{"session":{"sessionId":""},"request":{"type":"Unknown","requestId":"r"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request envelope")

	rec, _ = post(t, srv, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSkill_RejectsForeignApplication(t *testing.T) {
	srv := newTestServer(t, nil, "skill-2")

	rec, _ := post(t, srv, envelopeJSON(requestTypeLaunch, "", ""))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSkill_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil, "")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/skill", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil, "")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/skill", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, nil, "")
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get(requestIDHeader))
}
