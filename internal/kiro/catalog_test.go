package kiro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportsModel_MatchesClaudePrefix(t *testing.T) {
	assert.True(t, SupportsModel("claude-sonnet-4-5-20250514"))
	assert.False(t, SupportsModel("gpt-4o"))
	assert.False(t, SupportsModel(""))
}

func TestMapModelName_ExactTableEntries(t *testing.T) {
	cases := map[string]string{
		"claude-opus-4-5":               "claude-opus-4.5",
		"claude-opus-4-5-20251101":      "claude-opus-4.5",
		"claude-haiku-4-5":              "claude-haiku-4.5",
		"claude-haiku-4-5-20251001":     "claude-haiku-4.5",
		"claude-sonnet-4-5":             "CLAUDE_SONNET_4_5_20250929_V1_0",
		"claude-sonnet-4-5-20250929":    "CLAUDE_SONNET_4_5_20250929_V1_0",
		"claude-sonnet-4-5-20250514":    "CLAUDE_SONNET_4_5_20250514_V1_0",
		"claude-sonnet-4-20250514":      "CLAUDE_SONNET_4_20250514_V1_0",
		"claude-3-7-sonnet-20250219":    "CLAUDE_3_7_SONNET_20250219_V1_0",
		"claude-3-5-sonnet-20241022":    "CLAUDE_3_7_SONNET_20250219_V1_0",
	}
	for in, want := range cases {
		assert.Equal(t, want, MapModelName(in), "input %q", in)
	}
}

func TestMapModelName_FallsThroughToIdentity(t *testing.T) {
	assert.Equal(t, "claude-instant-1", MapModelName("claude-instant-1"))
}

func TestListModels_ReturnsCopyNotSharedSlice(t *testing.T) {
	a := ListModels()
	a[0].ID = "mutated"
	b := ListModels()
	assert.NotEqual(t, "mutated", b[0].ID)
}

func TestGetInfo_ReportsExpectedShape(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, "kiro", info.ID)
	assert.Equal(t, "anthropic", info.TargetProtocol)
	assert.Equal(t, "oauth", info.Category)
	assert.Len(t, info.ModelFamilies, 4)
}
