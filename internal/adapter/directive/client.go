package directive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"newswizard/internal/dialog"
)

const directivesPath = "/v1/directives"

type header struct {
	RequestID string `json:"requestId"`
}

type speak struct {
	Type   string `json:"type"`
	Speech string `json:"speech"`
}

type envelope struct {
	Header    header `json:"header"`
	Directive speak  `json:"directive"`
}

// Client отправляет промежуточные фразы через API директив голосовой платформы.
type Client struct {
	client *http.Client
	log    *slog.Logger
}

// NewClient создает клиент API директив платформы.
func NewClient(client *http.Client, log *slog.Logger) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		client: client,
		log:    log.With(slog.String("component", "directive")),
	}
}

// Notify отправляет директиву VoicePlayer.Speak для запроса d.RequestID.
func (c *Client) Notify(ctx context.Context, d dialog.Directive, text string) error {
	const op = "directive.Notify"
	if d.APIEndpoint == "" || d.AccessToken == "" {
		return fmt.Errorf("%s: api endpoint or access token is missing", op)
	}
	body, err := json.Marshal(envelope{
		Header:    header{RequestID: d.RequestID},
		Directive: speak{Type: "VoicePlayer.Speak", Speech: text},
	})
	if err != nil {
		return fmt.Errorf("%s: failed to encode directive: %w", op, err)
	}

	url := strings.TrimRight(d.APIEndpoint, "/") + directivesPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: unexpected status code: %d", op, resp.StatusCode)
	}
	c.log.Debug("Progressive response sent",
		slog.String("op", op),
		slog.String("request_id", d.RequestID),
	)
	return nil
}
