package translate

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/proxycast/kiro-provider/internal/kiro"
)

// ErrInvalidJSON is returned when the input request body is not valid JSON.
var ErrInvalidJSON = errors.New("translate: invalid JSON request body")

// AnthropicToCodeWhisperer converts an Anthropic Messages request into a
// CodeWhispererRequest, selecting the last user turn as the active prompt and
// carrying every message except the final one as history.
func AnthropicToCodeWhisperer(raw []byte, profileArn string) (*CodeWhispererRequest, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(raw)

	messages := doc.Get("messages").Array()

	lastUser, _ := findLastUserMessage(messages)

	content, images := extractUserContentAndImages(lastUser)

	uim := UserInputMessage{Content: content}
	if len(images) > 0 {
		uim.Images = images
	}
	if model := doc.Get("model"); model.Exists() {
		uim.ModelID = kiro.MapModelName(model.String())
	}

	cw := &CodeWhispererRequest{
		ConversationState: ConversationState{
			CurrentMessage:  CurrentMessage{UserInputMessage: uim},
			ChatTriggerType: "MANUAL",
			UserIntent:      "CHAT",
		},
		ProfileArn: profileArn,
		Source:     "CHAT",
	}

	if len(messages) > 1 {
		cw.ConversationState.History = historyJSON(messages[:len(messages)-1])
	}

	cfg := &AssistantResponseConfig{}
	haveCfg := false
	if sys := doc.Get("system"); sys.Exists() && sys.Type == gjson.String {
		cfg.ResponseStyle = &ResponseStyle{SystemPromptUserCustomization: sys.String()}
		haveCfg = true
	}
	if mt := doc.Get("max_tokens"); mt.Exists() {
		v := int(mt.Int())
		cfg.MaxOutputTokens = &v
		haveCfg = true
	}
	if temp := doc.Get("temperature"); temp.Exists() {
		v := temp.Float()
		cfg.Temperature = &v
		haveCfg = true
	}
	if haveCfg {
		cw.AssistantResponseConfig = cfg
	}

	if tools := doc.Get("tools"); tools.Exists() {
		cw.Tools = json.RawMessage(tools.Raw)
	}

	return cw, nil
}

// findLastUserMessage returns the last entry in messages with role="user", and
// its index, or a zero Result and -1 if none is present.
func findLastUserMessage(messages []gjson.Result) (gjson.Result, int) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Get("role").String() == "user" {
			return messages[i], i
		}
	}
	return gjson.Result{}, -1
}

// extractUserContentAndImages splits an Anthropic message's content into its
// text (joined with newlines) and any inline base64 images.
func extractUserContentAndImages(msg gjson.Result) (string, []CWImage) {
	content := msg.Get("content")
	if content.Type == gjson.String {
		return content.String(), nil
	}

	var texts []string
	var images []CWImage
	content.ForEach(func(_, part gjson.Result) bool {
		switch part.Get("type").String() {
		case "text":
			texts = append(texts, part.Get("text").String())
		case "image":
			source := part.Get("source")
			if source.Get("type").String() != "base64" {
				return true
			}
			mediaType := source.Get("media_type").String()
			format := "jpeg"
			if idx := strings.IndexByte(mediaType, '/'); idx >= 0 && idx+1 < len(mediaType) {
				format = mediaType[idx+1:]
			}
			images = append(images, CWImage{
				Format: format,
				Source: CWImageSource{Bytes: source.Get("data").String()},
			})
		}
		return true
	})
	return strings.Join(texts, "\n"), images
}

// historyJSON re-encodes a slice of gjson.Result messages verbatim as a JSON
// array, appending each message's raw bytes with sjson rather than
// re-marshaling through a typed intermediate.
func historyJSON(messages []gjson.Result) json.RawMessage {
	out := []byte("[]")
	for _, m := range messages {
		updated, err := sjson.SetRawBytes(out, "-1", []byte(m.Raw))
		if err != nil {
			continue
		}
		out = updated
	}
	return json.RawMessage(out)
}
