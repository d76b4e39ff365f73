package protocol

import "encoding/json"

// Envelope is the wire shape of every protocol message. MessageID is
// empty for fire-and-forget lifecycle signals and set for anything that
// requires correlation.
type Envelope struct {
	Type      string         `json:"type"`
	MessageID string         `json:"messageId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Kind returns the decoded discriminant for the envelope's type field.
func (e Envelope) Kind() Kind {
	return KindOf(e.Type)
}

// Classify inspects an arbitrary value that arrived on a shared channel
// and reports whether it is protocol traffic. It accepts an Envelope, a
// generic JSON object, or raw JSON bytes. Malformed or foreign values
// degrade to KindUnknown with a zero Envelope; no error, no panic.
func Classify(raw any) (Envelope, Kind) {
	switch v := raw.(type) {
	case Envelope:
		return v, v.Kind()
	case *Envelope:
		if v == nil {
			return Envelope{}, KindUnknown
		}
		return *v, v.Kind()
	case map[string]any:
		return fromMap(v)
	case []byte:
		var env Envelope
		if err := json.Unmarshal(v, &env); err != nil || env.Type == "" {
			return Envelope{}, KindUnknown
		}
		return env, env.Kind()
	}
	return Envelope{}, KindUnknown
}

func fromMap(m map[string]any) (Envelope, Kind) {
	t, ok := m["type"].(string)
	if !ok {
		return Envelope{}, KindUnknown
	}
	kind := KindOf(t)
	if kind == KindUnknown {
		return Envelope{}, KindUnknown
	}
	env := Envelope{Type: t}
	if id, ok := m["messageId"].(string); ok {
		env.MessageID = id
	}
	if p, ok := m["payload"].(map[string]any); ok {
		env.Payload = p
	}
	return env, kind
}

// Ack builds the ui-message-received acknowledgment for a message id.
// Acknowledgment is separate from and always precedes settlement.
func Ack(messageID string) Envelope {
	return Envelope{
		Type:      TypeMessageReceived,
		MessageID: messageID,
		Payload:   map[string]any{"messageId": messageID},
	}
}

// Response builds the terminal ui-message-response for a successful call.
func Response(messageID string, result any) Envelope {
	return Envelope{
		Type:      TypeMessageResponse,
		MessageID: messageID,
		Payload:   map[string]any{"messageId": messageID, "response": result},
	}
}

// ErrorResponse builds the terminal ui-message-response for a failed call.
func ErrorResponse(messageID string, cause any) Envelope {
	return Envelope{
		Type:      TypeMessageResponse,
		MessageID: messageID,
		Payload:   map[string]any{"messageId": messageID, "error": NormalizeError(cause)},
	}
}

// RenderData builds the host → content ui-lifecycle-iframe-render-data
// message carrying a render data snapshot.
func RenderData(snapshot any) Envelope {
	return Envelope{
		Type:    TypeRenderData,
		Payload: map[string]any{"renderData": snapshot},
	}
}

// ProxyReady builds the readiness signal a proxy frame emits to its parent.
func ProxyReady() Envelope {
	return Envelope{Type: TypeProxyReady}
}

// HTMLContent builds the sandbox transfer payload sent to a ready proxy
// frame. sandbox is a space-separated token set.
func HTMLContent(html, sandbox string) Envelope {
	return Envelope{
		Type:    TypeHTMLContent,
		Payload: map[string]any{"html": html, "sandbox": sandbox},
	}
}

// String returns a string payload field, or "" when absent or not a string.
func (e Envelope) String(field string) string {
	s, _ := e.Payload[field].(string)
	return s
}

// Object returns an object payload field, or nil when absent.
func (e Envelope) Object(field string) map[string]any {
	m, _ := e.Payload[field].(map[string]any)
	return m
}
