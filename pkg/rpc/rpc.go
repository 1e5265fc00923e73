/*
Package rpc contains a set of types used for JSON-RPC communication with
Evrmore nodes. It defines basic request/response types as well as a set of
errors used to represent error envelopes returned by a node.
*/
package rpc

import (
	"encoding/json"
)

const (
	// JSONRPCVersion is the only JSON-RPC protocol version supported.
	JSONRPCVersion = "2.0"
)

type (
	// Request represents a JSON-RPC request. It's generic enough to be used
	// in many JSON-RPC communication scenarios, yet at the same time it's
	// tailored for Evrmore RPC client needs: all Evrmore calls expect params
	// to be an array.
	Request struct {
		// JSONRPC is the protocol version, only valid when it contains
		// JSONRPCVersion.
		JSONRPC string `json:"jsonrpc"`
		// Method is the method being called.
		Method string `json:"method"`
		// Params is a set of method-specific parameters passed to the call.
		// They can be anything as long as they can be marshaled to JSON
		// correctly and used by the method implementation on the server side.
		Params []any `json:"params"`
		// ID is an identifier associated with this request. JSON-RPC itself
		// allows any strings to be used for it as well, but this client uses
		// numeric identifiers.
		ID uint64 `json:"id"`
	}

	// Header is a generic JSON-RPC 2.0 response header (ID and JSON-RPC version).
	Header struct {
		ID      json.RawMessage `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
	}

	// Response represents a standard raw JSON-RPC 2.0
	// response: http://www.jsonrpc.org/specification#response_object.
	Response struct {
		Header
		Error  *Error          `json:"error,omitempty"`
		Result json.RawMessage `json:"result,omitempty"`
	}
)
