package gateway

import "errors"

// Sentinels for the error kinds the backend (or its absence) can produce.
// Callers branch with errors.Is; the message shown to the user comes from
// AuthError.
var (
	ErrInvalidCredentials = errors.New("gateway: invalid credentials")
	ErrValidationFailed   = errors.New("gateway: validation failed")
	ErrFederatedCancelled = errors.New("gateway: federated login cancelled")
	ErrNetworkUnavailable = errors.New("gateway: server not responding")
	ErrSessionExpired     = errors.New("gateway: session expired or absent")
)

// MsgServerNotResponding is rendered for every failure without a response.
const MsgServerNotResponding = "Server not responding."

// AuthError is a non-fatal failure of a gateway operation. Message carries
// the backend-provided text when there is one and is rendered verbatim.
type AuthError struct {
	Kind    error
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != `` {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Kind
}

// Message extracts the user-facing text of err, falling back to the given
// per-operation message when the backend sent nothing usable.
func Message(err error, fallback string) string {
	var ae *AuthError
	if errors.As(err, &ae) && ae.Message != `` {
		return ae.Message
	}
	return fallback
}
