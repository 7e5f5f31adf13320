package rpc

import (
	"context"
	"encoding/json"

	"github.com/proxycast/kiro-provider/internal/kiro"
)

// NewKiroDispatcher builds the Dispatcher wired to plugin's operations, one
// registration per method this provider exposes over JSON-RPC.
func NewKiroDispatcher(plugin *kiro.Plugin) *Dispatcher {
	d := NewDispatcher()

	d.Register("get_info", func(_ context.Context, _ json.RawMessage) (any, error) {
		return plugin.GetInfo(), nil
	})

	d.Register("list_models", func(_ context.Context, _ json.RawMessage) (any, error) {
		return plugin.ListModels(), nil
	})

	d.Register("supports_model", func(_ context.Context, params json.RawMessage) (any, error) {
		var p struct {
			Model string `json:"model"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return map[string]bool{"supports": plugin.SupportsModel(p.Model)}, nil
	})

	d.Register("acquire_credential", func(_ context.Context, params json.RawMessage) (any, error) {
		var p struct {
			Model string `json:"model"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return plugin.AcquireCredential(p.Model)
	})

	d.Register("release_credential", func(_ context.Context, params json.RawMessage) (any, error) {
		var p struct {
			CredentialID string             `json:"credential_id"`
			Result       kiro.ReleaseResult `json:"result"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		plugin.ReleaseCredential(p.CredentialID, p.Result)
		return struct{}{}, nil
	})

	d.Register("validate_credential", func(_ context.Context, params json.RawMessage) (any, error) {
		var p struct {
			CredentialID string `json:"credential_id"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return plugin.ValidateCredential(p.CredentialID)
	})

	d.Register("refresh_token", func(ctx context.Context, params json.RawMessage) (any, error) {
		var p struct {
			CredentialID string `json:"credential_id"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return plugin.RefreshToken(ctx, p.CredentialID)
	})

	d.Register("create_credential", func(_ context.Context, params json.RawMessage) (any, error) {
		var p kiro.CreateCredentialParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		id, err := plugin.CreateCredential(p)
		if err != nil {
			return nil, err
		}
		return map[string]string{"credential_id": id}, nil
	})

	d.Register("transform_request", func(_ context.Context, params json.RawMessage) (any, error) {
		var p struct {
			Format     string          `json:"format"`
			Request    json.RawMessage `json:"request"`
			ProfileArn string          `json:"profile_arn"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		cw, err := plugin.TransformRequest(p.Format, p.Request, p.ProfileArn)
		if err != nil {
			return nil, err
		}
		return map[string]any{"request": cw}, nil
	})

	d.Register("transform_response", func(_ context.Context, params json.RawMessage) (any, error) {
		var p struct {
			Model    string            `json:"model"`
			Response []json.RawMessage `json:"response"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		sse, err := plugin.TransformResponse(p.Model, p.Response)
		if err != nil {
			return nil, err
		}
		return map[string]string{"response": sse}, nil
	})

	d.Register("apply_risk_control", func(_ context.Context, params json.RawMessage) (any, error) {
		var p struct {
			CredentialID string          `json:"credential_id"`
			Request      json.RawMessage `json:"request"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		request, err := plugin.ApplyRiskControl(p.CredentialID, p.Request)
		if err != nil {
			return nil, err
		}
		return map[string]any{"request": request}, nil
	})

	d.Register("parse_error", func(_ context.Context, params json.RawMessage) (any, error) {
		var p struct {
			Status int    `json:"status"`
			Body   string `json:"body"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return plugin.ParseError(p.Status, p.Body), nil
	})

	return d
}
