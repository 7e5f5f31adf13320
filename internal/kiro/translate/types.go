// Package translate converts between the public Anthropic Messages / OpenAI Chat
// Completions wire formats and CodeWhisperer's internal request and event-stream
// shapes.
package translate

import "encoding/json"

// CWImage is an inline image attached to a CodeWhisperer user-input message.
type CWImage struct {
	Format string        `json:"format"`
	Source CWImageSource `json:"source"`
}

// CWImageSource wraps the base64 payload of a CWImage.
type CWImageSource struct {
	Bytes string `json:"bytes"`
}

// UserInputMessage is the innermost content carrier of a CodeWhisperer request.
type UserInputMessage struct {
	Content string          `json:"content"`
	ModelID string          `json:"modelId,omitempty"`
	Images  []CWImage       `json:"images,omitempty"`
	Context json.RawMessage `json:"context,omitempty"`
}

// CurrentMessage wraps UserInputMessage per CodeWhisperer's nesting.
type CurrentMessage struct {
	UserInputMessage UserInputMessage `json:"userInputMessage"`
}

// ConversationState is the CodeWhisperer conversation envelope.
type ConversationState struct {
	CurrentMessage   CurrentMessage  `json:"currentMessage"`
	ChatTriggerType  string          `json:"chatTriggerType"`
	UserIntent       string          `json:"userIntent"`
	CustomizationArn string          `json:"customizationArn,omitempty"`
	History          json.RawMessage `json:"history,omitempty"`
}

// ResponseStyle carries the optional system-prompt customization.
type ResponseStyle struct {
	SystemPromptUserCustomization string `json:"systemPromptUserCustomization,omitempty"`
}

// AssistantResponseConfig carries generation parameters.
type AssistantResponseConfig struct {
	MaxOutputTokens *int           `json:"maxOutputTokens,omitempty"`
	Temperature     *float64       `json:"temperature,omitempty"`
	ResponseStyle   *ResponseStyle `json:"responseStyle,omitempty"`
}

// CodeWhispererRequest is the shared translation target for both the Anthropic
// and OpenAI request translators. Field naming on the wire is camelCase, per
// CodeWhisperer's own JSON convention.
type CodeWhispererRequest struct {
	ConversationState       ConversationState        `json:"conversationState"`
	ProfileArn              string                   `json:"profileArn,omitempty"`
	Source                  string                   `json:"source"`
	AssistantResponseConfig *AssistantResponseConfig `json:"assistantResponseConfig,omitempty"`
	Tools                   json.RawMessage          `json:"tools,omitempty"`
}
