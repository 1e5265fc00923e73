package zmq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testNotification(t Topic, seq uint32) *Notification {
	return &Notification{Topic: t, Body: []byte{0x01}, Sequence: seq, Hex: "01", Timestamp: time.Now()}
}

func TestDispatchExactTopicOnly(t *testing.T) {
	r := newRegistry()
	var gotA, gotB []uint32
	r.register(TopicHashBlock, func(_ context.Context, n *Notification) error {
		gotA = append(gotA, n.Sequence)
		return nil
	})
	r.register(TopicHashTX, func(_ context.Context, n *Notification) error {
		gotB = append(gotB, n.Sequence)
		return nil
	})

	r.dispatch(context.Background(), zap.NewNop(), testNotification(TopicHashBlock, 1))
	require.Equal(t, []uint32{1}, gotA)
	require.Empty(t, gotB)

	// No handlers at all is not an error.
	r.dispatch(context.Background(), zap.NewNop(), testNotification(TopicRawBlock, 1))
}

func TestDispatchRegistrationOrder(t *testing.T) {
	r := newRegistry()
	var order []string
	r.register(TopicHashTX, func(context.Context, *Notification) error {
		order = append(order, "first")
		return nil
	})
	r.register(TopicHashTX, func(context.Context, *Notification) error {
		order = append(order, "second")
		return nil
	})

	r.dispatch(context.Background(), zap.NewNop(), testNotification(TopicHashTX, 1))
	r.dispatch(context.Background(), zap.NewNop(), testNotification(TopicHashTX, 2))
	require.Equal(t, []string{"first", "second", "first", "second"}, order)
}

func TestDispatchIsolatesFailures(t *testing.T) {
	r := newRegistry()
	var invoked []string
	r.register(TopicHashBlock, func(context.Context, *Notification) error {
		invoked = append(invoked, "failing")
		return errors.New("boom")
	})
	r.register(TopicHashBlock, func(context.Context, *Notification) error {
		invoked = append(invoked, "panicking")
		panic("much worse")
	})
	r.register(TopicHashBlock, func(context.Context, *Notification) error {
		invoked = append(invoked, "fine")
		return nil
	})

	require.NotPanics(t, func() {
		r.dispatch(context.Background(), zap.NewNop(), testNotification(TopicHashBlock, 1))
	})
	require.Equal(t, []string{"failing", "panicking", "fine"}, invoked)
}

func TestRegisterCancel(t *testing.T) {
	r := newRegistry()
	var first, second int
	cancel := r.register(TopicRawTX, func(context.Context, *Notification) error {
		first++
		return nil
	})
	r.register(TopicRawTX, func(context.Context, *Notification) error {
		second++
		return nil
	})

	r.dispatch(context.Background(), zap.NewNop(), testNotification(TopicRawTX, 1))
	cancel()
	r.dispatch(context.Background(), zap.NewNop(), testNotification(TopicRawTX, 2))

	require.Equal(t, 1, first)
	require.Equal(t, 2, second)
}
