package rpcclient

import (
	"errors"
)

// ErrClientClosed is returned for calls made on a closed client.
var ErrClientClosed = errors.New("client is closed")

// TransportError wraps a failure of the network exchange itself: connection
// refused, request timeout or a malformed response. Remote error envelopes
// are not transport errors, they're returned as *rpc.Error.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return "transport failure: " + e.Err.Error()
}

// Unwrap implements the errors.Unwrap interface.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConfigError wraps a client misconfiguration detected at call time, like a
// missing endpoint or credentials. It's fatal to the call that triggers it,
// but not to the client.
type ConfigError struct {
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "configuration: " + e.Err.Error()
}

// Unwrap implements the errors.Unwrap interface.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
