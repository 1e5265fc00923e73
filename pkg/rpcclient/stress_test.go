package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestStressReportsAllAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r := new(rpc.Request)
		require.NoError(t, json.NewDecoder(req.Body).Decode(r))
		time.Sleep(2 * time.Millisecond)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":123}`, r.ID)
	}))
	t.Cleanup(srv.Close)

	for _, mode := range []Mode{ModeSync, ModeAsync} {
		c := newTestClient(t, srv.URL, Options{Mode: mode})
		res, err := c.Stress(context.Background(), StressOptions{
			Command:     "getblockcount",
			NumCalls:    40,
			Concurrency: 8,
		})
		require.NoError(t, err)
		require.Equal(t, 40, res.NumCalls)
		require.Equal(t, 8, res.Concurrency)
		require.Zero(t, res.Failures)
		require.Greater(t, res.RequestsPerSecond, 0.0)
		require.InDelta(t, float64(res.NumCalls)/res.TotalTime.Seconds(), res.RequestsPerSecond, 0.01)
		require.GreaterOrEqual(t, res.MaxTime, res.MedianTime)
		require.GreaterOrEqual(t, res.MedianTime, res.MinTime)
		require.Greater(t, res.MinTime, 0.0)
		require.JSONEq(t, "123", string(res.LastResult))
	}
}

func TestStressRespectsConcurrencyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r := new(rpc.Request)
		require.NoError(t, json.NewDecoder(req.Body).Decode(r))
		time.Sleep(5 * time.Millisecond)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":1}`, r.ID)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL, Options{})

	var (
		mu  sync.Mutex
		max int64
	)
	_, err := c.Stress(context.Background(), StressOptions{
		Command:     "getblockcount",
		NumCalls:    50,
		Concurrency: 5,
		onAdmit: func(inflight int64) {
			mu.Lock()
			if inflight > max {
				max = inflight
			}
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	require.LessOrEqual(t, max, int64(5))
	require.Greater(t, max, int64(0))
}

func TestStressCountsFailuresWithoutAborting(t *testing.T) {
	// Every fourth request gets an error envelope.
	reqNum := atomic.NewInt64(0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r := new(rpc.Request)
		require.NoError(t, json.NewDecoder(req.Body).Decode(r))
		if reqNum.Inc()%4 == 0 {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-1,"message":"transient"}}`, r.ID)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":1}`, r.ID)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL, Options{})

	res, err := c.Stress(context.Background(), StressOptions{
		Command:     "getblockcount",
		NumCalls:    40,
		Concurrency: 4,
	})
	require.NoError(t, err)
	require.Equal(t, 10, res.Failures)
	require.Equal(t, 40, res.NumCalls)
	require.Greater(t, res.AvgTime, 0.0)
}

func TestStressValidatesOptions(t *testing.T) {
	srv := initTestServer(t, "1")
	c := newTestClient(t, srv.URL, Options{})
	ctx := context.Background()

	_, err := c.Stress(ctx, StressOptions{NumCalls: 1, Concurrency: 1})
	require.Error(t, err)
	_, err = c.Stress(ctx, StressOptions{Command: "x", NumCalls: 0, Concurrency: 1})
	require.Error(t, err)
	_, err = c.Stress(ctx, StressOptions{Command: "x", NumCalls: 1, Concurrency: 0})
	require.Error(t, err)

	// Concurrency above NumCalls is clamped, not an error.
	res, err := c.Stress(ctx, StressOptions{Command: "getblockcount", NumCalls: 2, Concurrency: 10})
	require.NoError(t, err)
	require.Equal(t, 2, res.Concurrency)
}
