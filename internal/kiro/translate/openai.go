package translate

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/proxycast/kiro-provider/internal/kiro"
)

// OpenAIToCodeWhisperer converts an OpenAI Chat Completions request into a
// CodeWhispererRequest. It mirrors AnthropicToCodeWhisperer with three
// differences: the system prompt comes from the first system-role message, the
// max-token field falls back from max_tokens to max_completion_tokens, and
// images arrive as data-URL image_url parts rather than base64 source blocks.
func OpenAIToCodeWhisperer(raw []byte, profileArn string) (*CodeWhispererRequest, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(raw)

	messages := doc.Get("messages").Array()

	systemPrompt, nonSystem := splitSystemMessages(messages)

	var lastUser gjson.Result
	var history []gjson.Result
	if len(nonSystem) > 0 {
		lastUser, _ = findLastUserMessage(nonSystem)
		history = nonSystem[:len(nonSystem)-1]
	}

	content, images := extractOpenAIContentAndImages(lastUser)

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

	if len(history) > 0 {
		cw.ConversationState.History = historyJSON(history)
	}

	cfg := &AssistantResponseConfig{}
	haveCfg := false
	if systemPrompt != "" {
		cfg.ResponseStyle = &ResponseStyle{SystemPromptUserCustomization: systemPrompt}
		haveCfg = true
	}
	maxTokens := doc.Get("max_tokens")
	if !maxTokens.Exists() {
		maxTokens = doc.Get("max_completion_tokens")
	}
	if maxTokens.Exists() {
		v := int(maxTokens.Int())
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

// splitSystemMessages returns the content of the first system-role message (if
// any) and every non-system message in order.
func splitSystemMessages(messages []gjson.Result) (string, []gjson.Result) {
	var systemPrompt string
	haveSystem := false
	nonSystem := make([]gjson.Result, 0, len(messages))
	for _, m := range messages {
		if m.Get("role").String() == "system" {
			if !haveSystem {
				systemPrompt = m.Get("content").String()
				haveSystem = true
			}
			continue
		}
		nonSystem = append(nonSystem, m)
	}
	return systemPrompt, nonSystem
}

// extractOpenAIContentAndImages splits an OpenAI message's content into its
// text (joined with newlines) and any inline data-URL images.
func extractOpenAIContentAndImages(msg gjson.Result) (string, []CWImage) {
	if !msg.Exists() {
		return "", nil
	}
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
		case "image_url":
			url := part.Get("image_url.url").String()
			if img, ok := parseDataURLImage(url); ok {
				images = append(images, img)
			}
		}
		return true
	})
	return strings.Join(texts, "\n"), images
}

// parseDataURLImage parses a data URL of the form
// "data:image/<fmt>;base64,<payload>". Malformed URLs are rejected silently
// (ok=false) rather than erroring the whole translation.
func parseDataURLImage(url string) (CWImage, bool) {
	const prefix = "data:"
	if !strings.HasPrefix(url, prefix) {
		return CWImage{}, false
	}
	rest := url[len(prefix):]

	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return CWImage{}, false
	}
	meta, payload := rest[:comma], rest[comma+1:]

	semi := strings.IndexByte(meta, ';')
	if semi < 0 {
		return CWImage{}, false
	}
	mediaType := meta[:semi]

	const imagePrefix = "image/"
	if !strings.HasPrefix(mediaType, imagePrefix) {
		return CWImage{}, false
	}
	format := mediaType[len(imagePrefix):]
	if format == "" || payload == "" {
		return CWImage{}, false
	}

	return CWImage{Format: format, Source: CWImageSource{Bytes: payload}}, true
}
