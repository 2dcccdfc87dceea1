package http

import (
	"newswizard/internal/dialog"
	"newswizard/internal/session"
)

const (
	envelopeVersion = "1.0"

	requestTypeLaunch       = "LaunchRequest"
	requestTypeIntent       = "IntentRequest"
	requestTypeSessionEnded = "SessionEndedRequest"
)

// requestSchema описывает минимально допустимый конверт запроса голосовой платформы.
const requestSchema = `{
	"type": "object",
	"required": ["session", "request"],
	"properties": {
		"version": {"type": "string"},
		"session": {
			"type": "object",
			"required": ["sessionId"],
			"properties": {
				"new": {"type": "boolean"},
				"sessionId": {"type": "string", "minLength": 1},
				"application": {
					"type": "object",
					"properties": {"applicationId": {"type": "string"}}
				},
				"attributes": {"type": ["object", "null"]}
			}
		},
		"context": {"type": "object"},
		"request": {
			"type": "object",
			"required": ["type", "requestId"],
			"properties": {
				"type": {"enum": ["LaunchRequest", "IntentRequest", "SessionEndedRequest"]},
				"requestId": {"type": "string"},
				"intent": {
					"type": "object",
					"required": ["name"],
					"properties": {
						"name": {"type": "string", "minLength": 1},
						"slots": {"type": ["object", "null"]}
					}
				}
			}
		}
	}
}`

type skillRequest struct {
	Version string         `json:"version"`
	Session requestSession `json:"session"`
	Context requestContext `json:"context"`
	Request requestBody    `json:"request"`
}

type requestSession struct {
	New         bool        `json:"new"`
	SessionID   string      `json:"sessionId"`
	Application application `json:"application"`
	Attributes  session.Map `json:"attributes"`
}

type application struct {
	ApplicationID string `json:"applicationId"`
}

type requestContext struct {
	System systemState `json:"System"`
}

type systemState struct {
	APIEndpoint    string `json:"apiEndpoint"`
	APIAccessToken string `json:"apiAccessToken"`
}

type requestBody struct {
	Type      string        `json:"type"`
	RequestID string        `json:"requestId"`
	Intent    requestIntent `json:"intent"`
	Reason    string        `json:"reason"`
}

type requestIntent struct {
	Name  string          `json:"name"`
	Slots map[string]slot `json:"slots"`
}

type slot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type skillResponse struct {
	Version           string       `json:"version"`
	SessionAttributes session.Map  `json:"sessionAttributes,omitempty"`
	Response          responseBody `json:"response"`
}

type responseBody struct {
	OutputSpeech     *outputSpeech `json:"outputSpeech,omitempty"`
	Card             *card         `json:"card,omitempty"`
	Reprompt         *reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type outputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

type card struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type reprompt struct {
	OutputSpeech outputSpeech `json:"outputSpeech"`
}

func (r skillRequest) turn() dialog.Turn {
	slots := make(map[string]string, len(r.Request.Intent.Slots))
	for key, s := range r.Request.Intent.Slots {
		name := s.Name
		if name == "" {
			name = key
		}
		slots[name] = s.Value
	}
	return dialog.Turn{
		RequestID:      r.Request.RequestID,
		ConversationID: r.Session.SessionID,
		Intent:         r.Request.Intent.Name,
		Slots:          slots,
		Directive: dialog.Directive{
			RequestID:   r.Request.RequestID,
			APIEndpoint: r.Context.System.APIEndpoint,
			AccessToken: r.Context.System.APIAccessToken,
		},
	}
}

func newSpeech(text string, markup bool) outputSpeech {
	if markup {
		return outputSpeech{Type: "SSML", SSML: text}
	}
	return outputSpeech{Type: "PlainText", Text: text}
}

func toSkillResponse(resp dialog.Response, attrs session.Map) skillResponse {
	body := responseBody{ShouldEndSession: resp.EndConversation}
	if resp.Speech != "" {
		s := newSpeech(resp.Speech, resp.SpeechIsMarkup)
		body.OutputSpeech = &s
	}
	if resp.CardTitle != "" {
		body.Card = &card{Type: "Simple", Title: resp.CardTitle, Content: resp.CardBody}
	}
	if resp.Reprompt != "" && !resp.EndConversation {
		body.Reprompt = &reprompt{OutputSpeech: newSpeech(resp.Reprompt, resp.RepromptIsMarkup)}
	}
	return skillResponse{
		Version:           envelopeVersion,
		SessionAttributes: attrs,
		Response:          body,
	}
}
