package kiro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longRefreshToken() string {
	b := make([]byte, 120)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestStore_CreateRejectsUnsupportedAuthType(t *testing.T) {
	s := NewStore()
	_, err := s.Create("basic", &Credential{RefreshToken: longRefreshToken()})
	require.Error(t, err)
	var kErr *Error
	require.ErrorAs(t, err, &kErr)
	assert.Equal(t, KindUnsupportedAuthType, kErr.Kind)
}

func TestStore_CreateRejectsMissingRefreshToken(t *testing.T) {
	s := NewStore()
	_, err := s.Create("oauth", &Credential{})
	require.Error(t, err)
	var kErr *Error
	require.ErrorAs(t, err, &kErr)
	assert.Equal(t, KindMissingRefreshToken, kErr.Kind)
}

func TestStore_CreateDefaultsRegionAndAuthMethod(t *testing.T) {
	s := NewStore()
	id, err := s.Create("oauth", &Credential{RefreshToken: longRefreshToken()})
	require.NoError(t, err)

	c := s.Get(id)
	require.NotNil(t, c)
	assert.Equal(t, AuthMethodSocial, c.AuthMethod)
	assert.Equal(t, "us-east-1", c.Region)
	assert.True(t, c.IsHealthy)
}

func TestStore_AcquireRejectsNonClaudeModel(t *testing.T) {
	s := NewStore()
	_, err := s.Create("oauth", &Credential{RefreshToken: longRefreshToken(), AccessToken: "AT"})
	require.NoError(t, err)

	_, err = s.Acquire("gpt-4")
	require.Error(t, err)
	var kErr *Error
	require.ErrorAs(t, err, &kErr)
	assert.Equal(t, KindUnsupportedModel, kErr.Kind)
}

func TestStore_AcquireFailsWithNoHealthyCredential(t *testing.T) {
	s := NewStore()
	id, err := s.Create("oauth", &Credential{RefreshToken: longRefreshToken(), AccessToken: "AT"})
	require.NoError(t, err)

	s.Release(id, ReleaseResult{Error: &ReleaseError{Message: "x", MarkUnhealthy: true}})

	_, err = s.Acquire("claude-sonnet-4-5-20250514")
	require.Error(t, err)
	var kErr *Error
	require.ErrorAs(t, err, &kErr)
	assert.Equal(t, KindNoHealthyCredential, kErr.Kind)
}

func TestStore_AcquireFailsWithMissingAccessToken(t *testing.T) {
	s := NewStore()
	_, err := s.Create("oauth", &Credential{RefreshToken: longRefreshToken()})
	require.NoError(t, err)

	_, err = s.Acquire("claude-sonnet-4-5-20250514")
	require.Error(t, err)
	var kErr *Error
	require.ErrorAs(t, err, &kErr)
	assert.Equal(t, KindMissingAccessToken, kErr.Kind)
}

func TestStore_AcquireProducesHeadersAndBaseURL(t *testing.T) {
	s := NewStore()
	_, err := s.Create("oauth", &Credential{RefreshToken: longRefreshToken(), AccessToken: "AT", Region: "eu-west-1"})
	require.NoError(t, err)

	acquired, err := s.Acquire("claude-3-5-haiku-20241022")
	require.NoError(t, err)
	assert.Equal(t, "oauth", acquired.AuthType)
	assert.Equal(t, "https://codewhisperer.eu-west-1.amazonaws.com", acquired.BaseURL)
	assert.Equal(t, "Bearer AT", acquired.Headers["Authorization"])
	assert.Equal(t, "application/json", acquired.Headers["Content-Type"])
	assert.Contains(t, acquired.Headers["x-amz-user-agent"], "aws-sdk-js/1.0.0 KiroIDE-")
}

func TestStore_ReleaseIgnoresUnknownID(t *testing.T) {
	s := NewStore()
	assert.NotPanics(t, func() {
		s.Release("does-not-exist", ReleaseResult{})
	})
}

func TestStore_ReleaseSuccessClearsUnhealthyAndLastError(t *testing.T) {
	s := NewStore()
	id, err := s.Create("oauth", &Credential{RefreshToken: longRefreshToken(), AccessToken: "AT"})
	require.NoError(t, err)

	s.Release(id, ReleaseResult{Error: &ReleaseError{Message: "boom", MarkUnhealthy: true}})
	c := s.Get(id)
	require.False(t, c.IsHealthy)
	assert.Equal(t, uint64(1), c.ErrorCount)
	assert.Equal(t, "boom", c.LastError)

	s.Release(id, ReleaseResult{})
	c = s.Get(id)
	assert.True(t, c.IsHealthy)
	assert.Empty(t, c.LastError)
	assert.Equal(t, uint64(2), c.UsageCount)
}

func TestStore_ValidateReflectsHealthAndTokens(t *testing.T) {
	s := NewStore()
	id, err := s.Create("oauth", &Credential{RefreshToken: longRefreshToken()})
	require.NoError(t, err)

	res, err := s.Validate(id)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, true, res.Details["token_expired"])

	s.Release(id, ReleaseResult{Error: &ReleaseError{Message: "x", MarkUnhealthy: true}})
	res, err = s.Validate(id)
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestStore_ValidateUnknownCredential(t *testing.T) {
	s := NewStore()
	_, err := s.Validate("missing")
	require.Error(t, err)
	var kErr *Error
	require.ErrorAs(t, err, &kErr)
	assert.Equal(t, KindCredentialNotFound, kErr.Kind)
}

func TestPickHealthiest_PrefersLowestUsageThenErrorCount(t *testing.T) {
	creds := map[string]*Credential{
		"a": {ID: "a", IsHealthy: true, UsageCount: 5, ErrorCount: 0},
		"b": {ID: "b", IsHealthy: true, UsageCount: 2, ErrorCount: 3},
		"c": {ID: "c", IsHealthy: true, UsageCount: 2, ErrorCount: 1},
		"d": {ID: "d", IsHealthy: false, UsageCount: 0, ErrorCount: 0},
	}
	got := pickHealthiest(creds)
	require.NotNil(t, got)
	assert.Equal(t, "c", got.ID)
}
