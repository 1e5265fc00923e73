package zmq

import (
	"context"
	"errors"
	"time"

	"github.com/go-zeromq/zmq4"
)

// Receive errors reported by a SubSocket.
var (
	// ErrRecvTimeout is returned when no message arrives within the bounded
	// wait. It's a normal idle condition, not a failure.
	ErrRecvTimeout = errors.New("receive timed out")
	// ErrSocketClosed is returned once the socket has been closed.
	ErrSocketClosed = errors.New("socket is closed")
)

// SubSocket is the subscriber transport consumed by Client. It's a narrow
// view of a ZMQ SUB socket: connect, filter, bounded-wait receive, close.
type SubSocket interface {
	// Dial connects to the publisher endpoint.
	Dial(endpoint string) error
	// Subscribe adds a topic prefix filter.
	Subscribe(topic []byte) error
	// RecvTimeout waits up to the given duration for one multipart message
	// and returns its frames. ErrRecvTimeout signals an idle wait,
	// ErrSocketClosed a closed socket; context cancellation interrupts the
	// wait with the context's error.
	RecvTimeout(ctx context.Context, timeout time.Duration) ([][]byte, error)
	// Close releases the socket. Safe to call more than once.
	Close() error
}

// SocketFactory produces the SubSocket a Client connects with. A factory
// returning nil marks the subscriber transport as unavailable, which makes
// Client.Start degrade to a warning no-op.
type SocketFactory func() SubSocket

type recvResult struct {
	frames [][]byte
	err    error
}

// zmqSocket adapts a go-zeromq SUB socket to SubSocket. zmq4 receives have
// no deadline support, so a pump goroutine forwards messages into a channel
// and RecvTimeout bounds the wait there; a message that arrives after a
// timeout stays pending for the next call.
type zmqSocket struct {
	ctx    context.Context
	cancel context.CancelFunc
	sock   zmq4.Socket
	msgs   chan recvResult
}

// NewSubSocket returns a SubSocket backed by a pure-Go ZMQ SUB socket.
func NewSubSocket() SubSocket {
	ctx, cancel := context.WithCancel(context.Background())
	return &zmqSocket{
		ctx:    ctx,
		cancel: cancel,
		sock:   zmq4.NewSub(ctx),
		msgs:   make(chan recvResult),
	}
}

func (s *zmqSocket) Dial(endpoint string) error {
	if err := s.sock.Dial(endpoint); err != nil {
		return err
	}
	go s.pump()
	return nil
}

func (s *zmqSocket) Subscribe(topic []byte) error {
	return s.sock.SetOption(zmq4.OptionSubscribe, string(topic))
}

func (s *zmqSocket) pump() {
	for {
		msg, err := s.sock.Recv()
		select {
		case s.msgs <- recvResult{frames: msg.Frames, err: err}:
		case <-s.ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *zmqSocket) RecvTimeout(ctx context.Context, timeout time.Duration) ([][]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-s.msgs:
		if r.err != nil {
			if s.ctx.Err() != nil {
				return nil, ErrSocketClosed
			}
			return nil, r.err
		}
		return r.frames, nil
	case <-timer.C:
		return nil, ErrRecvTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.ctx.Done():
		return nil, ErrSocketClosed
	}
}

func (s *zmqSocket) Close() error {
	s.cancel()
	return s.sock.Close()
}
