package zmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler processes a single notification. A non-nil error is logged and
// isolated, it never affects other handlers or the receive loop. Handlers
// run sequentially on the receive loop, so a handler that needs to block
// for long should hand the notification off to its own goroutine.
type Handler func(ctx context.Context, n *Notification) error

// CancelFunc removes a previously registered handler.
type CancelFunc func()

type registration struct {
	id uuid.UUID
	fn Handler
}

// registry keeps per-topic handler lists in registration order.
type registry struct {
	mu       sync.RWMutex
	handlers map[Topic][]registration
}

func newRegistry() *registry {
	return &registry{
		handlers: make(map[Topic][]registration),
	}
}

// register appends the handler to the topic's list and returns a CancelFunc
// removing exactly this registration. Multiple registrations accumulate,
// none replace.
func (r *registry) register(t Topic, h Handler) CancelFunc {
	id := uuid.New()
	r.mu.Lock()
	r.handlers[t] = append(r.handlers[t], registration{id: id, fn: h})
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		regs := r.handlers[t]
		for i := range regs {
			if regs[i].id == id {
				r.handlers[t] = append(regs[:i:i], regs[i+1:]...)
				break
			}
		}
	}
}

func (r *registry) get(t Topic) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	regs := r.handlers[t]
	if len(regs) == 0 {
		return nil
	}
	hs := make([]Handler, len(regs))
	for i := range regs {
		hs[i] = regs[i].fn
	}
	return hs
}

// dispatch invokes every handler registered for the notification's topic in
// registration order. A notification with no handlers is dropped silently.
func (r *registry) dispatch(ctx context.Context, log *zap.Logger, n *Notification) {
	for _, h := range r.get(n.Topic) {
		if err := invokeHandler(ctx, h, n); err != nil {
			handlerFailures.Inc()
			log.Error("notification handler failed",
				zap.Stringer("topic", n.Topic),
				zap.Uint32("sequence", n.Sequence),
				zap.Error(err))
		}
	}
}

// invokeHandler guards a single handler invocation, turning panics into
// errors so one broken handler can't take the loop down.
func invokeHandler(ctx context.Context, h Handler, n *Notification) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return h(ctx, n)
}
