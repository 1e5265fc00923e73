package zmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/rpcclient"
	"go.uber.org/zap"
)

const (
	// defaultRecvTimeout bounds a single idle wait on the socket.
	defaultRecvTimeout = 5 * time.Second
	// errorRetryDelay is the pause after an unexpected receive error.
	errorRetryDelay = time.Second
)

// Options defines options for the notification client. All values are
// optional.
type Options struct {
	// Host of the node's ZMQ publisher, 127.0.0.1 by default.
	Host string
	// Port of the node's ZMQ publisher, 28332 by default.
	Port int
	// Topics to subscribe to, all known topics by default.
	Topics []Topic
	// RecvTimeout bounds a single wait on the socket.
	RecvTimeout time.Duration
	// Logger is used for loop diagnostics, a no-op logger by default.
	Logger *zap.Logger
	// Socket produces the subscriber socket, a real ZMQ SUB socket by
	// default. A factory returning nil disables the client: Start warns
	// and does nothing.
	Socket SocketFactory
}

// Client receives notifications from an Evrmore node and fans them out to
// registered handlers. Exactly one background receive loop exists between
// Start and Stop; handlers registered via On are kept across Stop/Start
// cycles.
type Client struct {
	host        string
	port        int
	topics      []Topic
	recvTimeout time.Duration
	log         *zap.Logger
	newSocket   SocketFactory

	reg *registry

	seqLock sync.Mutex
	lastSeq map[Topic]uint32

	lifeLock sync.Mutex
	running  bool
	cancel   context.CancelFunc
	loopDone chan struct{}
	sock     SubSocket
}

// New returns a new notification client ready to use.
func New(opts Options) *Client {
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.Port == 0 {
		opts.Port = 28332
	}
	if len(opts.Topics) == 0 {
		opts.Topics = AllTopics()
	}
	if opts.RecvTimeout <= 0 {
		opts.RecvTimeout = defaultRecvTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Socket == nil {
		opts.Socket = NewSubSocket
	}
	return &Client{
		host:        opts.Host,
		port:        opts.Port,
		topics:      opts.Topics,
		recvTimeout: opts.RecvTimeout,
		log:         opts.Logger,
		newSocket:   opts.Socket,
		reg:         newRegistry(),
		lastSeq:     make(map[Topic]uint32),
	}
}

// On registers a handler for the given topic. Handlers accumulate in
// registration order and are invoked in that order; the returned CancelFunc
// removes exactly this registration.
func (c *Client) On(t Topic, h Handler) CancelFunc {
	return c.reg.register(t, h)
}

// Start connects the subscriber socket, subscribes to the configured topics
// and spawns the background receive loop. It's idempotent: starting a
// running client is a no-op. When the subscriber transport is unavailable
// Start logs a warning and does nothing.
func (c *Client) Start() error {
	c.lifeLock.Lock()
	defer c.lifeLock.Unlock()
	if c.running {
		return nil
	}

	sock := c.newSocket()
	if sock == nil {
		c.log.Warn("subscriber transport unavailable, notifications will not be received")
		return nil
	}

	endpoint := fmt.Sprintf("tcp://%s:%d", c.host, c.port)
	if err := sock.Dial(endpoint); err != nil {
		_ = sock.Close()
		return fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	for _, t := range c.topics {
		if err := sock.Subscribe(t.Bytes()); err != nil {
			_ = sock.Close()
			return fmt.Errorf("failed to subscribe to %s: %w", t, err)
		}
		c.log.Info("subscribed to topic", zap.Stringer("topic", t))
	}
	c.log.Info("connected to ZMQ publisher", zap.String("endpoint", endpoint))

	ctx, cancel := context.WithCancel(context.Background())
	c.sock = sock
	c.cancel = cancel
	c.loopDone = make(chan struct{})
	c.running = true
	go c.receiveLoop(ctx, sock, c.loopDone)
	return nil
}

// Stop cancels the receive loop, waits for its orderly termination and
// releases the socket. It's idempotent and safe to call on a client that
// was never started.
func (c *Client) Stop() error {
	c.lifeLock.Lock()
	if !c.running {
		c.lifeLock.Unlock()
		return nil
	}
	c.running = false
	c.cancel()
	done, sock := c.loopDone, c.sock
	c.sock = nil
	c.lifeLock.Unlock()

	<-done
	return sock.Close()
}

// Running reports whether the background receive loop is active.
func (c *Client) Running() bool {
	c.lifeLock.Lock()
	defer c.lifeLock.Unlock()
	return c.running
}

// LastSequence returns the last sequence number observed on the topic.
// Sequence numbers are surfaced as published, gap handling is left to the
// consumer.
func (c *Client) LastSequence(t Topic) (uint32, bool) {
	c.seqLock.Lock()
	defer c.seqLock.Unlock()
	seq, ok := c.lastSeq[t]
	return seq, ok
}

func (c *Client) receiveLoop(ctx context.Context, sock SubSocket, done chan<- struct{}) {
	defer close(done)
	// Calls made by handlers through an auto-mode RPC client must not block
	// this loop.
	dispatchCtx := rpcclient.WithAsyncContext(ctx)
	for {
		if ctx.Err() != nil {
			break
		}
		frames, err := sock.RecvTimeout(ctx, c.recvTimeout)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			switch {
			case err == ErrRecvTimeout:
				// Idle, keep waiting.
			case err == ErrSocketClosed:
				if ctx.Err() != nil {
					// Orderly shutdown.
				} else {
					c.log.Error("subscriber socket closed unexpectedly")
					c.pause(ctx)
				}
			default:
				c.log.Error("failed to receive notification", zap.Error(err))
				c.pause(ctx)
			}
			continue
		}
		n, err := decodeEnvelope(frames, time.Now())
		if err != nil {
			decodeFailures.Inc()
			c.log.Error("dropping malformed notification", zap.Error(err))
			continue
		}
		notificationsReceived.WithLabelValues(string(n.Topic)).Inc()
		c.observeSequence(n)
		c.reg.dispatch(dispatchCtx, c.log, n)
	}
	c.log.Info("receive loop stopped")
}

// observeSequence tracks per-topic sequence numbers to make gaps visible.
// Gaps are reported, never corrected: the notification is delivered as is.
func (c *Client) observeSequence(n *Notification) {
	c.seqLock.Lock()
	last, seen := c.lastSeq[n.Topic]
	c.lastSeq[n.Topic] = n.Sequence
	c.seqLock.Unlock()
	if seen && n.Sequence != last+1 {
		sequenceGaps.WithLabelValues(string(n.Topic)).Inc()
		c.log.Warn("notification sequence gap",
			zap.Stringer("topic", n.Topic),
			zap.Uint32("last", last),
			zap.Uint32("got", n.Sequence))
	}
}

// pause waits out the retry delay unless the loop is cancelled first.
func (c *Client) pause(ctx context.Context) {
	t := time.NewTimer(errorRetryDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
