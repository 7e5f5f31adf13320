package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxycast/kiro-provider/internal/kiro"
)

func longRefreshToken() string {
	b := make([]byte, 120)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestNewKiroDispatcher_CreateAcquireApplyRiskControl(t *testing.T) {
	plugin := kiro.NewPlugin()
	d := NewKiroDispatcher(plugin)

	createReq := `{"jsonrpc":"2.0","id":1,"method":"create_credential","params":{"auth_type":"oauth","config":{"refresh_token":"` + longRefreshToken() + `","access_token":"AT"}}}` + "\n"
	var out bytes.Buffer
	require.NoError(t, d.Serve(context.Background(), strings.NewReader(createReq), &out))

	var created Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &created))
	require.Nil(t, created.Error)
	resMap, ok := created.Result.(map[string]any)
	require.True(t, ok)
	credID, _ := resMap["credential_id"].(string)
	require.NotEmpty(t, credID)

	acquireReq := `{"jsonrpc":"2.0","id":2,"method":"acquire_credential","params":{"model":"claude-sonnet-4-5-20250514"}}` + "\n"
	out.Reset()
	require.NoError(t, d.Serve(context.Background(), strings.NewReader(acquireReq), &out))
	var acquired Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &acquired))
	require.Nil(t, acquired.Error)

	riskReq := `{"jsonrpc":"2.0","id":3,"method":"apply_risk_control","params":{"credential_id":"` + credID + `","request":{"foo":"bar"}}}` + "\n"
	out.Reset()
	require.NoError(t, d.Serve(context.Background(), strings.NewReader(riskReq), &out))
	var risked Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &risked))
	require.Nil(t, risked.Error)
	riskResult, ok := risked.Result.(map[string]any)
	require.True(t, ok)
	reqEcho, ok := riskResult["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bar", reqEcho["foo"])
}

func TestNewKiroDispatcher_SupportsModel(t *testing.T) {
	plugin := kiro.NewPlugin()
	d := NewKiroDispatcher(plugin)

	req := `{"jsonrpc":"2.0","id":1,"method":"supports_model","params":{"model":"claude-3-5-haiku-20241022"}}` + "\n"
	var out bytes.Buffer
	require.NoError(t, d.Serve(context.Background(), strings.NewReader(req), &out))

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["supports"])
}
