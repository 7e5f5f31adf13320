package kiro

import "strings"

// pluginVersion is the version string reported by get_info.
const pluginVersion = "0.1.0"

// modelCatalog is the fixed set emitted by list_models.
var modelCatalog = []ModelInfo{
	{ID: "claude-sonnet-4-5-20250514", ContextSize: 200000, SupportsVision: true, SupportsTools: true},
	{ID: "claude-opus-4-5-20251101", ContextSize: 200000, SupportsVision: true, SupportsTools: true},
	{ID: "claude-3-5-sonnet-20241022", ContextSize: 200000, SupportsVision: true, SupportsTools: true},
	{ID: "claude-3-5-haiku-20241022", ContextSize: 200000, SupportsVision: true, SupportsTools: true},
	{ID: "claude-3-7-sonnet-20250219", ContextSize: 200000, SupportsVision: true, SupportsTools: true},
}

func intTier(v int) *int { return &v }

// modelFamilies is reported as part of get_info.
var modelFamilies = []ModelFamily{
	{Name: "opus", Pattern: "claude-opus-*", Tier: intTier(3), Description: "Highest-capability tier"},
	{Name: "sonnet", Pattern: "claude-*-sonnet*", Tier: intTier(2), Description: "Balanced tier"},
	{Name: "haiku", Pattern: "claude-*-haiku*", Tier: intTier(1), Description: "Fastest, lowest-cost tier"},
	{Name: "all-claude", Pattern: "claude-*", Tier: nil, Description: "Any Claude-family model"},
}

// GetInfo returns the plugin metadata for get_info.
func GetInfo() PluginInfo {
	return PluginInfo{
		ID:             "kiro",
		DisplayName:    "Kiro (CodeWhisperer)",
		Version:        pluginVersion,
		Description:    "Brokers AWS CodeWhisperer/Kiro access via OAuth credential pooling and protocol translation.",
		TargetProtocol: "anthropic",
		Category:       "oauth",
		AuthTypes:      []AuthTypeInfo{{ID: "oauth"}},
		ModelFamilies:  modelFamilies,
	}
}

// ListModels returns the fixed model catalog for list_models.
func ListModels() []ModelInfo {
	out := make([]ModelInfo, len(modelCatalog))
	copy(out, modelCatalog)
	return out
}

// SupportsModel reports whether model is servable by this plugin: any model
// name beginning with "claude-".
func SupportsModel(model string) bool {
	return isClaudeModel(model)
}

// modelNameMapping is the first-substring-match table of known model aliases.
// Entries are ordered most-specific first: a longer literal ID must be checked
// before the shorter family prefix it would otherwise be shadowed by.
var modelNameMapping = []struct {
	match string
	to    string
}{
	{"claude-opus-4-5-20251101", "claude-opus-4.5"},
	{"claude-opus-4-5", "claude-opus-4.5"},
	{"claude-haiku-4-5-20251001", "claude-haiku-4.5"},
	{"claude-haiku-4-5", "claude-haiku-4.5"},
	{"claude-sonnet-4-5-20250929", "CLAUDE_SONNET_4_5_20250929_V1_0"},
	{"claude-sonnet-4-5-20250514", "CLAUDE_SONNET_4_5_20250514_V1_0"},
	{"claude-sonnet-4-5", "CLAUDE_SONNET_4_5_20250929_V1_0"},
	{"claude-sonnet-4-20250514", "CLAUDE_SONNET_4_20250514_V1_0"},
	{"claude-3-7-sonnet-20250219", "CLAUDE_3_7_SONNET_20250219_V1_0"},
	{"claude-3-5-sonnet-20241022", "CLAUDE_3_7_SONNET_20250219_V1_0"},
}

// MapModelName applies the fixed model-name mapping table, falling through to the
// identity mapping when no entry is a substring of model.
func MapModelName(model string) string {
	for _, m := range modelNameMapping {
		if strings.Contains(model, m.match) {
			return m.to
		}
	}
	return model
}
