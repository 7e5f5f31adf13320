package kiro

import (
	"context"
	"encoding/json"

	"github.com/proxycast/kiro-provider/internal/kiro/translate"
)

// Plugin ties the Credential Store and Refresher together and exposes one Go
// method per JSON-RPC operation this provider supports. It is the type the RPC
// dispatcher binds its method table to.
type Plugin struct {
	Store     *Store
	Refresher *Refresher
}

// NewPlugin constructs a Plugin with a fresh, empty Credential Store.
func NewPlugin() *Plugin {
	store := NewStore()
	return &Plugin{
		Store:     store,
		Refresher: NewRefresher(store),
	}
}

// GetInfo implements get_info.
func (p *Plugin) GetInfo() PluginInfo { return GetInfo() }

// ListModels implements list_models.
func (p *Plugin) ListModels() []ModelInfo { return ListModels() }

// SupportsModel implements supports_model.
func (p *Plugin) SupportsModel(model string) bool { return SupportsModel(model) }

// CreateCredentialParams is the params shape for create_credential.
type CreateCredentialParams struct {
	AuthType string     `json:"auth_type"`
	Config   Credential `json:"config"`
}

// CreateCredential implements create_credential.
func (p *Plugin) CreateCredential(params CreateCredentialParams) (string, error) {
	cfg := params.Config
	return p.Store.Create(params.AuthType, &cfg)
}

// AcquireCredential implements acquire_credential.
func (p *Plugin) AcquireCredential(model string) (*AcquiredCredential, error) {
	return p.Store.Acquire(model)
}

// ReleaseCredential implements release_credential.
func (p *Plugin) ReleaseCredential(id string, result ReleaseResult) {
	p.Store.Release(id, result)
}

// ValidateCredential implements validate_credential.
func (p *Plugin) ValidateCredential(id string) (*ValidationResult, error) {
	return p.Store.Validate(id)
}

// RefreshToken implements refresh_token.
func (p *Plugin) RefreshToken(ctx context.Context, id string) (*TokenRefreshResult, error) {
	return p.Refresher.Refresh(ctx, id)
}

// ParseError implements parse_error.
func (p *Plugin) ParseError(status int, body string) *ProviderError {
	return ParseError(status, body)
}

// TransformRequest implements transform_request. format selects which wire shape
// request is in ("anthropic" or "openai"); profileArn is threaded through from the
// credential the host acquired for this call.
func (p *Plugin) TransformRequest(format string, request json.RawMessage, profileArn string) (*translate.CodeWhispererRequest, error) {
	switch format {
	case "openai":
		return translate.OpenAIToCodeWhisperer(request, profileArn)
	default:
		return translate.AnthropicToCodeWhisperer(request, profileArn)
	}
}

// TransformResponse implements transform_response: it consumes one collected
// batch of CodeWhisperer events and returns the concatenated Anthropic SSE text.
func (p *Plugin) TransformResponse(model string, events []json.RawMessage) (string, error) {
	return translate.TranslateEventStream(model, events)
}

// ApplyRiskControl implements apply_risk_control. All of this provider's
// anti-fingerprint-reuse identity (machine ID, Kiro version, User-Agent shapes)
// is header-level, already produced by acquire_credential's header synthesis, so
// there is nothing to stamp into the request body itself; this call exists to let
// the host confirm credentialID is still known to the store before it sends the
// request, and otherwise passes request through unchanged.
func (p *Plugin) ApplyRiskControl(credentialID string, request json.RawMessage) (json.RawMessage, error) {
	if c := p.Store.Get(credentialID); c == nil {
		return nil, newError(KindCredentialNotFound, "credential %s not found", credentialID)
	}
	return request, nil
}
