package translate

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// EventType enumerates the CodeWhisperer event-stream variants translated to
// Anthropic SSE.
type EventType string

const (
	EventMessageStart      EventType = "message_start"
	EventContentBlockStart EventType = "content_block_start"
	EventContentBlockDelta EventType = "content_block_delta"
	EventContentBlockStop  EventType = "content_block_stop"
	EventMessageDelta      EventType = "message_delta"
	EventMessageStop       EventType = "message_stop"
)

// Usage carries the token counts reported on a MessageDelta event.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Event is a single input event fed to the SSE translator. ContentType and Delta
// apply to ContentBlockStart/ContentBlockDelta; StopReason and Usage apply to
// MessageDelta.
type Event struct {
	Type        EventType
	ContentType string
	Delta       string
	StopReason  string
	Usage       Usage
}

// SSEState is the small piece of state threaded through a single request's worth
// of event translation.
type SSEState struct {
	MessageID    string
	Model        string
	CurrentIndex int
	InputTokens  int
	OutputTokens int
}

// SSETranslator converts a sequence of CodeWhisperer events into Anthropic SSE
// wire frames. One instance is single-use per request and must not be shared
// across requests.
type SSETranslator struct {
	state SSEState
}

// NewSSETranslator constructs a translator for a single request against model.
func NewSSETranslator(model string) *SSETranslator {
	return &SSETranslator{state: SSEState{
		MessageID: "msg_" + uuid.NewString(),
		Model:     model,
	}}
}

// State returns a copy of the translator's current state, primarily for tests.
func (t *SSETranslator) State() SSEState { return t.state }

// Translate consumes one input event and returns the corresponding SSE wire frame
// ("event: <type>\ndata: <json>\n\n").
func (t *SSETranslator) Translate(e Event) (string, error) {
	switch e.Type {
	case EventMessageStart:
		return t.frame("message_start", map[string]any{
			"message": map[string]any{
				"id":    t.state.MessageID,
				"type":  "message",
				"role":  "assistant",
				"model": t.state.Model,
			},
		})
	case EventContentBlockStart:
		return t.frame("content_block_start", map[string]any{
			"index": t.state.CurrentIndex,
			"content_block": map[string]any{
				"type": e.ContentType,
			},
		})
	case EventContentBlockDelta:
		return t.frame("content_block_delta", map[string]any{
			"index": t.state.CurrentIndex,
			"delta": map[string]any{
				"type": "text_delta",
				"text": e.Delta,
			},
		})
	case EventContentBlockStop:
		out, err := t.frame("content_block_stop", map[string]any{
			"index": t.state.CurrentIndex,
		})
		t.state.CurrentIndex++
		return out, err
	case EventMessageDelta:
		t.state.InputTokens = e.Usage.InputTokens
		t.state.OutputTokens = e.Usage.OutputTokens
		delta := map[string]any{}
		if e.StopReason != "" {
			delta["stop_reason"] = e.StopReason
		}
		return t.frame("message_delta", map[string]any{
			"delta": delta,
			"usage": map[string]any{
				"input_tokens":  t.state.InputTokens,
				"output_tokens": t.state.OutputTokens,
			},
		})
	case EventMessageStop:
		return t.frame("message_stop", map[string]any{})
	default:
		return "", fmt.Errorf("translate: unknown event type %q", e.Type)
	}
}

func (t *SSETranslator) frame(eventName string, payload map[string]any) (string, error) {
	payload["type"] = eventName
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", eventName, data), nil
}

// wireEvent is the JSON shape a single input event arrives in over the RPC
// boundary (transform_response), tagged by "type".
type wireEvent struct {
	Type        string `json:"type"`
	ContentType string `json:"content_type,omitempty"`
	Delta       string `json:"delta,omitempty"`
	StopReason  string `json:"stop_reason,omitempty"`
	Usage       *Usage `json:"usage,omitempty"`
}

// DecodeEvent parses one wire-format CodeWhisperer event into an Event.
func DecodeEvent(raw json.RawMessage) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return Event{}, err
	}
	e := Event{
		Type:        EventType(w.Type),
		ContentType: w.ContentType,
		Delta:       w.Delta,
		StopReason:  w.StopReason,
	}
	if w.Usage != nil {
		e.Usage = *w.Usage
	}
	return e, nil
}

// TranslateEventStream runs a full sequence of CodeWhisperer events through a
// fresh, single-use SSETranslator and concatenates the resulting SSE frames. Used
// by the transform_response RPC operation, which receives one collected batch of
// events per call rather than a live stream.
func TranslateEventStream(model string, rawEvents []json.RawMessage) (string, error) {
	t := NewSSETranslator(model)
	var out string
	for _, raw := range rawEvents {
		e, err := DecodeEvent(raw)
		if err != nil {
			return "", err
		}
		frame, err := t.Translate(e)
		if err != nil {
			return "", err
		}
		out += frame
	}
	return out, nil
}
