// Package kiro implements the credential lifecycle, token refresh, fingerprinting
// and header synthesis for brokering AWS CodeWhisperer/Kiro access.
package kiro

import "time"

// AuthMethod distinguishes the two OAuth refresh flows a Credential can use.
type AuthMethod string

const (
	AuthMethodSocial AuthMethod = "social"
	AuthMethodIdC    AuthMethod = "idc"
)

// Credential is a single OAuth credential tracked by the Store. Fields mirror the
// wire shape accepted by create_credential and persisted only in memory.
type Credential struct {
	ID           string     `json:"id"`
	Name         string     `json:"name,omitempty"`
	AuthMethod   AuthMethod `json:"auth_method"`
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ClientID     string     `json:"client_id,omitempty"`
	ClientSecret string     `json:"client_secret,omitempty"`
	ProfileArn   string     `json:"profile_arn,omitempty"`
	Region       string     `json:"region,omitempty"`
	Expire       string     `json:"expire,omitempty"`
	LastRefresh  string     `json:"last_refresh,omitempty"`

	IsHealthy  bool   `json:"is_healthy"`
	UsageCount uint64 `json:"usage_count"`
	ErrorCount uint64 `json:"error_count"`
	LastError  string `json:"last_error,omitempty"`
}

// EffectiveRegion returns Region, defaulting to us-east-1 when unset.
func (c *Credential) EffectiveRegion() string {
	if c.Region == "" {
		return "us-east-1"
	}
	return c.Region
}

// AcquiredCredential is the outbound view handed back to the host for one request.
type AcquiredCredential struct {
	ID       string            `json:"id"`
	Name     string            `json:"name,omitempty"`
	AuthType string            `json:"auth_type"`
	BaseURL  string            `json:"base_url"`
	Headers  map[string]string `json:"headers"`
	Metadata map[string]any    `json:"metadata"`
}

// TokenRefreshResult is returned by refresh_token on success.
type TokenRefreshResult struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// ValidationResult is returned by validate_credential.
type ValidationResult struct {
	Valid   bool           `json:"valid"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ReleaseError is the optional error payload attached to release_credential.
type ReleaseError struct {
	Message       string `json:"message"`
	MarkUnhealthy bool   `json:"mark_unhealthy"`
}

// ReleaseResult is the params shape for release_credential.
type ReleaseResult struct {
	Error *ReleaseError `json:"error,omitempty"`
}

// ProviderError is the shape returned by parse_error.
type ProviderError struct {
	ErrorType       string `json:"error_type"`
	Message         string `json:"message"`
	StatusCode      *int   `json:"status_code,omitempty"`
	Retryable       bool   `json:"retryable"`
	CooldownSeconds *int   `json:"cooldown_seconds,omitempty"`
}

// ModelInfo describes a single catalog entry returned by list_models.
type ModelInfo struct {
	ID             string `json:"id"`
	ContextSize    int    `json:"context_size"`
	SupportsVision bool   `json:"supports_vision"`
	SupportsTools  bool   `json:"supports_tools"`
}

// ModelFamily describes a pricing/capability tier grouping reported by get_info.
type ModelFamily struct {
	Name        string `json:"name"`
	Pattern     string `json:"pattern"`
	Tier        *int   `json:"tier"`
	Description string `json:"description"`
}

// AuthTypeInfo describes one supported authentication type reported by get_info.
type AuthTypeInfo struct {
	ID string `json:"id"`
}

// PluginInfo is the result of get_info.
type PluginInfo struct {
	ID             string         `json:"id"`
	DisplayName    string         `json:"display_name"`
	Version        string         `json:"version"`
	Description    string         `json:"description"`
	TargetProtocol string         `json:"target_protocol"`
	Category       string         `json:"category"`
	AuthTypes      []AuthTypeInfo `json:"auth_types"`
	ModelFamilies  []ModelFamily  `json:"model_families"`
}
