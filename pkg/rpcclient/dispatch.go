package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Mode controls how Invoke dispatches a call: on the calling goroutine to
// completion, on a background goroutine with a pending Call handle, or
// decided per call from the context.
type Mode byte

const (
	// ModeAuto picks sync or async dispatch per call depending on whether
	// the context is marked with WithAsyncContext. The notification
	// dispatch loop marks its context, so RPC calls made from notification
	// handlers never block it.
	ModeAuto Mode = iota
	// ModeSync always completes the call before Invoke returns.
	ModeSync
	// ModeAsync always returns a pending Call.
	ModeAsync
)

// String implements the fmt.Stringer interface.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeSync:
		return "sync"
	case ModeAsync:
		return "async"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// ParseMode converts a mode name into a Mode, an empty string means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ModeAuto, nil
	case "sync":
		return ModeSync, nil
	case "async":
		return ModeAsync, nil
	default:
		return ModeAuto, fmt.Errorf("unknown dispatch mode '%s'", s)
	}
}

type asyncCtxKey struct{}

// WithAsyncContext marks the context as belonging to an event-driven caller.
// Clients in ModeAuto dispatch calls made with such a context asynchronously
// so the caller's loop is never blocked. The marking is re-checked on every
// call, not cached.
func WithAsyncContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, asyncCtxKey{}, true)
}

// IsAsyncContext reports whether the context was marked by WithAsyncContext.
func IsAsyncContext(ctx context.Context) bool {
	v, ok := ctx.Value(asyncCtxKey{}).(bool)
	return ok && v
}

// Call represents an active or completed RPC invocation. Result and Err are
// valid after the Call has been received from Done, or after Wait or a true
// Completed report.
type Call struct {
	// Method is the name of the invoked RPC method.
	Method string
	// Params holds the positional call arguments.
	Params []any
	// Result is the raw result payload.
	Result json.RawMessage
	// Err is the call error, if any.
	Err error
	// Done receives the Call itself upon completion.
	Done chan *Call

	finished chan struct{}
}

func newCall(method string, params []any, done chan *Call) *Call {
	return &Call{
		Method:   method,
		Params:   params,
		Done:     done,
		finished: make(chan struct{}),
	}
}

func (call *Call) complete(result json.RawMessage, err error) {
	call.Result = result
	call.Err = err
	close(call.finished)
	select {
	case call.Done <- call:
	default:
		// Caller isn't draining Done, Wait and Completed still work.
	}
}

// Completed reports whether the call has finished. A Call returned by a
// ModeSync client is always completed, a Call returned by a ModeAsync client
// is pending until the round trip finishes.
func (call *Call) Completed() bool {
	select {
	case <-call.finished:
		return true
	default:
		return false
	}
}

// Wait blocks until the call completes or the context is done and returns
// the raw result payload.
func (call *Call) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-call.finished:
		return call.Result, call.Err
	case <-ctx.Done():
		return nil, &TransportError{Err: ctx.Err()}
	}
}

// WaitInto waits for completion and decodes the result into v.
func (call *Call) WaitInto(ctx context.Context, v any) error {
	raw, err := call.Wait(ctx)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &TransportError{Err: fmt.Errorf("result decoding: %w", err)}
	}
	return nil
}

// Invoke executes the named method with the given positional parameters,
// dispatching it according to the client's mode. The returned Call is
// already completed for sync dispatch and pending for async dispatch,
// errors of the round trip propagate through the Call unchanged.
func (c *Client) Invoke(ctx context.Context, method string, params ...any) *Call {
	call := newCall(method, params, make(chan *Call, 1))
	run := func() {
		call.complete(c.rawRequest(ctx, method, params))
	}
	if c.dispatchAsync(ctx) {
		go run()
	} else {
		run()
	}
	return call
}

// Go always dispatches asynchronously regardless of the client mode, in the
// manner of net/rpc: done receives the same Call when it completes. If done
// is nil a new buffered channel is allocated, a passed channel must be
// buffered or Go panics.
func (c *Client) Go(ctx context.Context, method string, done chan *Call, params ...any) *Call {
	if done == nil {
		done = make(chan *Call, 1)
	} else if cap(done) == 0 {
		panic("rpcclient: done channel is unbuffered")
	}
	call := newCall(method, params, done)
	go func() {
		call.complete(c.rawRequest(ctx, method, params))
	}()
	return call
}

// CallContext executes the named method to completion on the calling
// goroutine regardless of the client mode and decodes the result into v
// (which can be nil if the result is of no interest).
func (c *Client) CallContext(ctx context.Context, method string, v any, params ...any) error {
	return c.performRequest(ctx, method, params, v)
}

func (c *Client) dispatchAsync(ctx context.Context) bool {
	switch c.mode {
	case ModeSync:
		return false
	case ModeAsync:
		return true
	default:
		return IsAsyncContext(ctx)
	}
}
