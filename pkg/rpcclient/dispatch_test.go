package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/rpc"
	"github.com/stretchr/testify/require"
)

// initGatedServer returns a server that doesn't respond until release is
// closed, letting tests observe pending calls deterministically.
func initGatedServer(t *testing.T, result string) (*httptest.Server, chan struct{}) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r := new(rpc.Request)
		require.NoError(t, json.NewDecoder(req.Body).Decode(r))
		<-release
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, r.ID, result)
	}))
	t.Cleanup(srv.Close)
	return srv, release
}

func TestParseMode(t *testing.T) {
	for in, expected := range map[string]Mode{
		"":      ModeAuto,
		"auto":  ModeAuto,
		"Sync":  ModeSync,
		"async": ModeAsync,
	} {
		m, err := ParseMode(in)
		require.NoError(t, err)
		require.Equal(t, expected, m)
	}
	_, err := ParseMode("eventually")
	require.Error(t, err)
}

func TestModeFromConfig(t *testing.T) {
	srv := initTestServer(t, "1")
	cfg := testConfig(srv.URL)
	cfg.Mode = "sync"
	c, err := New(context.Background(), cfg, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.Equal(t, ModeSync, c.Mode())
}

func TestInvokeSyncAlwaysCompleted(t *testing.T) {
	srv := initTestServer(t, "42")
	c := newTestClient(t, srv.URL, Options{Mode: ModeSync})

	call := c.Invoke(context.Background(), "getblockcount")
	require.True(t, call.Completed())

	var count int
	require.NoError(t, call.WaitInto(context.Background(), &count))
	require.Equal(t, 42, count)
}

func TestInvokeAsyncAlwaysPending(t *testing.T) {
	srv, release := initGatedServer(t, "42")
	c := newTestClient(t, srv.URL, Options{Mode: ModeAsync})

	call := c.Invoke(context.Background(), "getblockcount")
	require.False(t, call.Completed())

	close(release)
	raw, err := call.Wait(context.Background())
	require.NoError(t, err)
	require.JSONEq(t, "42", string(raw))
	require.True(t, call.Completed())
}

func TestInvokeAutoDetectsContext(t *testing.T) {
	t.Run("plain context runs to completion", func(t *testing.T) {
		srv := initTestServer(t, "7")
		c := newTestClient(t, srv.URL, Options{})
		call := c.Invoke(context.Background(), "getblockcount")
		require.True(t, call.Completed())
	})
	t.Run("async-marked context stays pending", func(t *testing.T) {
		srv, release := initGatedServer(t, "7")
		c := newTestClient(t, srv.URL, Options{})
		call := c.Invoke(WithAsyncContext(context.Background()), "getblockcount")
		require.False(t, call.Completed())
		close(release)
		_, err := call.Wait(context.Background())
		require.NoError(t, err)
	})
}

func TestInvokeErrorPropagation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r := new(rpc.Request)
		require.NoError(t, json.NewDecoder(req.Body).Decode(r))
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"Method not found"}}`, r.ID)
	}))
	t.Cleanup(srv.Close)

	for _, mode := range []Mode{ModeSync, ModeAsync} {
		c := newTestClient(t, srv.URL, Options{Mode: mode})
		call := c.Invoke(context.Background(), "nosuchmethod")
		_, err := call.Wait(context.Background())
		remoteErr := new(rpc.Error)
		require.ErrorAs(t, err, &remoteErr, "mode %s", mode)
		require.EqualValues(t, -32601, remoteErr.Code)
	}
}

func TestGoSignalsDone(t *testing.T) {
	srv := initTestServer(t, "11")
	c := newTestClient(t, srv.URL, Options{Mode: ModeSync})

	done := make(chan *Call, 1)
	call := c.Go(context.Background(), "getblockcount", done)
	select {
	case finished := <-done:
		require.Same(t, call, finished)
		require.NoError(t, finished.Err)
		require.JSONEq(t, "11", string(finished.Result))
	case <-time.After(5 * time.Second):
		t.Fatal("call never completed")
	}
}

func TestGoRejectsUnbufferedDone(t *testing.T) {
	srv := initTestServer(t, "1")
	c := newTestClient(t, srv.URL, Options{})
	require.Panics(t, func() {
		c.Go(context.Background(), "getblockcount", make(chan *Call))
	})
}

func TestWaitHonorsContext(t *testing.T) {
	srv, release := initGatedServer(t, "1")
	defer close(release)
	c := newTestClient(t, srv.URL, Options{Mode: ModeAsync})

	call := c.Invoke(context.Background(), "getblockcount")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := call.Wait(ctx)
	transportErr := new(TransportError)
	require.ErrorAs(t, err, &transportErr)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
