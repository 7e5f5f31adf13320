package kiro

import "fmt"

// Kind enumerates the internal error kinds surfaced to the RPC layer as
// code=-32000 operation errors.
type Kind string

const (
	KindUnsupportedModel           Kind = "UnsupportedModel"
	KindUnsupportedAuthType        Kind = "UnsupportedAuthType"
	KindNoHealthyCredential        Kind = "NoHealthyCredential"
	KindMissingAccessToken         Kind = "MissingAccessToken"
	KindMissingRefreshToken        Kind = "MissingRefreshToken"
	KindTruncatedRefreshToken      Kind = "TruncatedRefreshToken"
	KindMissingIdcCredentials      Kind = "MissingIdcCredentials"
	KindRefreshHTTPStatus          Kind = "RefreshHttpStatus"
	KindRefreshTransport           Kind = "RefreshTransport"
	KindResponseMissingAccessToken Kind = "ResponseMissingAccessToken"
	KindCredentialNotFound         Kind = "CredentialNotFound"
)

// Error is the internal error type carried through every kiro operation before
// being flattened into a JSON-RPC error by the dispatcher.
type Error struct {
	Kind    Kind
	Message string
	Status  int    // only meaningful for KindRefreshHTTPStatus
	Body    string // only meaningful for KindRefreshHTTPStatus
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// minRefreshTokenLength is the minimum refresh_token length below which the
// token is assumed truncated rather than genuinely short.
const minRefreshTokenLength = 100

// ParseError maps an upstream HTTP status to a ProviderError. A nil result means
// the host should decide (status not in the mapped set).
func ParseError(status int, body string) *ProviderError {
	switch {
	case status == 401:
		return &ProviderError{ErrorType: "authentication", Message: "token expired or invalid", StatusCode: intPtr(status), Retryable: true, CooldownSeconds: intPtr(0)}
	case status == 403:
		return &ProviderError{ErrorType: "authorization", Message: "forbidden", StatusCode: intPtr(status), Retryable: false}
	case status == 429:
		return &ProviderError{ErrorType: "rate_limit", Message: "rate limited", StatusCode: intPtr(status), Retryable: true, CooldownSeconds: intPtr(60)}
	case status >= 500 && status <= 599:
		return &ProviderError{ErrorType: "server_error", Message: "upstream server error", StatusCode: intPtr(status), Retryable: true, CooldownSeconds: intPtr(10)}
	default:
		return nil
	}
}

func intPtr(i int) *int { return &i }
