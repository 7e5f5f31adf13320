package kiro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/proxycast/kiro-provider/internal/util"
)

// refreshConnectTimeout / refreshTotalTimeout bound every outbound refresh call.
const (
	refreshConnectTimeout = 30 * time.Second
	refreshTotalTimeout   = 60 * time.Second
)

// Refresher performs the Social and IdC OAuth refresh flows and de-duplicates
// concurrent refresh calls for the same credential, so two simultaneous
// refresh_token calls for the same id produce exactly one upstream request.
type Refresher struct {
	store  *Store
	client *http.Client
	group  singleflight.Group
}

// NewRefresher builds a Refresher bound to store, with an HTTP client carrying
// the connect/total timeouts above.
func NewRefresher(store *Store) *Refresher {
	return &Refresher{
		store: store,
		client: &http.Client{
			Timeout: refreshTotalTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: refreshConnectTimeout}).DialContext,
			},
		},
	}
}

// Refresh performs refresh_token(id).
func (r *Refresher) Refresh(ctx context.Context, id string) (*TokenRefreshResult, error) {
	v, err, _ := r.group.Do(id, func() (any, error) {
		return r.doRefresh(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*TokenRefreshResult), nil
}

func (r *Refresher) doRefresh(ctx context.Context, id string) (*TokenRefreshResult, error) {
	cred := r.store.Get(id)
	if cred == nil {
		return nil, newError(KindCredentialNotFound, "credential %s not found", id)
	}
	if cred.RefreshToken == "" {
		return nil, newError(KindMissingRefreshToken, "credential %s has no refresh_token", id)
	}
	if len(cred.RefreshToken) < minRefreshTokenLength {
		return nil, newError(KindTruncatedRefreshToken, "refresh_token is %d characters, need >= %d", len(cred.RefreshToken), minRefreshTokenLength)
	}

	version := KiroVersion()
	machineID := machineIDFor(cred)
	region := cred.EffectiveRegion()

	var result *TokenRefreshResult
	var err error
	switch cred.AuthMethod {
	case AuthMethodIdC:
		result, err = r.refreshIdC(ctx, cred, region, version, machineID)
	default:
		result, err = r.refreshSocial(ctx, cred, region, version, machineID)
	}
	if err != nil {
		return nil, err
	}

	if applyErr := r.store.ApplyRefresh(id, result); applyErr != nil {
		return nil, applyErr
	}
	return result, nil
}

func (r *Refresher) refreshSocial(ctx context.Context, cred *Credential, region, version, machineID string) (*TokenRefreshResult, error) {
	url := fmt.Sprintf("https://prod.%s.auth.desktop.kiro.dev/refreshToken", region)
	body, err := json.Marshal(map[string]string{"refreshToken": cred.RefreshToken})
	if err != nil {
		return nil, newError(KindRefreshTransport, "encoding request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindRefreshTransport, "building request: %v", err)
	}
	req.Header.Set("User-Agent", UserAgentSocial(version, machineID))
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Encoding", "br, gzip, deflate")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "*")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Connection", "close")

	return r.doRequest(req)
}

func (r *Refresher) refreshIdC(ctx context.Context, cred *Credential, region, version, machineID string) (*TokenRefreshResult, error) {
	if cred.ClientID == "" || cred.ClientSecret == "" {
		return nil, newError(KindMissingIdcCredentials, "credential requires client_id and client_secret for idc auth_method")
	}

	url := fmt.Sprintf("https://oidc.%s.amazonaws.com/token", region)
	payload := map[string]string{
		"refreshToken": cred.RefreshToken,
		"clientId":     cred.ClientID,
		"clientSecret": cred.ClientSecret,
		"grantType":    "refresh_token",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(KindRefreshTransport, "encoding request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindRefreshTransport, "building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Host", fmt.Sprintf("oidc.%s.amazonaws.com", region))
	req.Header.Set("x-amz-user-agent", UserAgentIdC(version, machineID))
	req.Header.Set("User-Agent", "node")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Connection", "close")

	return r.doRequest(req)
}

func (r *Refresher) doRequest(req *http.Request) (*TokenRefreshResult, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, newError(KindRefreshTransport, "%v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindRefreshTransport, "reading response body: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithFields(log.Fields{"status": resp.StatusCode}).
			WithField("body", string(util.RedactSensitiveJSON(raw))).
			Debug("refresh request failed")
		return nil, &Error{Kind: KindRefreshHTTPStatus, Message: fmt.Sprintf("refresh failed with status %d", resp.StatusCode), Status: resp.StatusCode, Body: string(raw)}
	}

	return parseRefreshResponse(raw)
}

// parseRefreshResponse accepts either snake_case or camelCase field names,
// preferring snake_case when both are present. The token itself is carried
// internally as an oauth2.Token so its Expiry bookkeeping goes through the
// same type the rest of the Go OAuth ecosystem uses, rather than a bespoke
// struct.
func parseRefreshResponse(raw []byte) (*TokenRefreshResult, error) {
	doc := gjson.ParseBytes(raw)

	accessToken := firstNonEmpty(doc.Get("access_token").String(), doc.Get("accessToken").String())
	if accessToken == "" {
		return nil, newError(KindResponseMissingAccessToken, "refresh response missing access_token")
	}

	refreshToken := firstNonEmpty(doc.Get("refresh_token").String(), doc.Get("refreshToken").String())

	token := &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken}
	expiresIn := doc.Get("expires_in")
	if !expiresIn.Exists() {
		expiresIn = doc.Get("expiresIn")
	}
	if expiresIn.Exists() {
		token.Expiry = time.Now().Add(time.Duration(expiresIn.Int()) * time.Second)
	}

	return resultFromToken(token), nil
}

// resultFromToken converts the internal oauth2.Token carrier back into the
// TokenRefreshResult shape the store and the RPC layer deal in.
func resultFromToken(t *oauth2.Token) *TokenRefreshResult {
	result := &TokenRefreshResult{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if !t.Expiry.IsZero() {
		expiry := t.Expiry
		result.ExpiresAt = &expiry
	}
	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// isTokenExpired returns true if expire is absent or due within 5 minutes.
func isTokenExpired(expire string) bool {
	return isExpiredWithin(expire, 5*time.Minute)
}

// isTokenExpiringSoon returns true if expire is due within 10 minutes.
func isTokenExpiringSoon(expire string) bool {
	return isExpiredWithin(expire, 10*time.Minute)
}

func isExpiredWithin(expire string, window time.Duration) bool {
	if expire == "" {
		return true
	}
	t, err := time.Parse(rfc3339, expire)
	if err != nil {
		return true
	}
	return !t.After(time.Now().Add(window))
}
