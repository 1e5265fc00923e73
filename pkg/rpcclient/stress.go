package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// StressOptions configures a single Stress run.
type StressOptions struct {
	// Command is the RPC method to hammer.
	Command string
	// Params are passed to every call.
	Params []any
	// NumCalls is the total number of calls to make.
	NumCalls int
	// Concurrency is a hard cap on simultaneously in-flight calls.
	Concurrency int

	// onAdmit is invoked with the current in-flight count right after a call
	// passes the admission gate. Used by tests to verify the cap.
	onAdmit func(inflight int64)
}

// StressResult is a report of a Stress run. Latency figures are computed
// over completed calls only and given in milliseconds.
type StressResult struct {
	Command           string          `json:"command"`
	NumCalls          int             `json:"num_calls"`
	Concurrency       int             `json:"concurrency"`
	Failures          int             `json:"failures"`
	TotalTime         time.Duration   `json:"total_time"`
	RequestsPerSecond float64         `json:"requests_per_second"`
	AvgTime           float64         `json:"avg_time"`
	MedianTime        float64         `json:"median_time"`
	MinTime           float64         `json:"min_time"`
	MaxTime           float64         `json:"max_time"`
	LastResult        json.RawMessage `json:"last_result"`
}

// Stress drives NumCalls repetitions of a single method with at most
// Concurrency calls in flight and reports latency statistics. Individual
// call failures are counted and never abort the remaining repetitions. Calls
// go through Invoke, so the run exercises whatever dispatch mode the client
// was constructed with.
func (c *Client) Stress(ctx context.Context, opts StressOptions) (*StressResult, error) {
	if opts.Command == "" {
		return nil, errors.New("no command given")
	}
	if opts.NumCalls <= 0 {
		return nil, errors.New("number of calls must be positive")
	}
	if opts.Concurrency <= 0 {
		return nil, errors.New("concurrency must be positive")
	}
	if opts.Concurrency > opts.NumCalls {
		opts.Concurrency = opts.NumCalls
	}

	c.log.Info("starting stress run",
		zap.String("command", opts.Command),
		zap.Int("calls", opts.NumCalls),
		zap.Int("concurrency", opts.Concurrency))

	var (
		gate     = make(chan struct{}, opts.Concurrency)
		inflight = atomic.NewInt64(0)
		wg       sync.WaitGroup

		mu         sync.Mutex
		durations  []float64
		failures   int
		lastResult json.RawMessage
	)

	start := time.Now()
loop:
	for i := 0; i < opts.NumCalls; i++ {
		select {
		case gate <- struct{}{}:
		case <-ctx.Done():
			// Admission interrupted, remaining repetitions are recorded
			// as failures.
			mu.Lock()
			failures += opts.NumCalls - i
			mu.Unlock()
			break loop
		}
		wg.Add(1)
		go func() {
			defer func() {
				inflight.Dec()
				<-gate
				wg.Done()
			}()
			n := inflight.Inc()
			if opts.onAdmit != nil {
				opts.onAdmit(n)
			}
			callStart := time.Now()
			call := c.Invoke(ctx, opts.Command, opts.Params...)
			raw, err := call.Wait(ctx)
			elapsed := float64(time.Since(callStart)) / float64(time.Millisecond)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				return
			}
			durations = append(durations, elapsed)
			lastResult = raw
		}()
	}
	wg.Wait()
	total := time.Since(start)

	res := &StressResult{
		Command:           opts.Command,
		NumCalls:          opts.NumCalls,
		Concurrency:       opts.Concurrency,
		Failures:          failures,
		TotalTime:         total,
		RequestsPerSecond: float64(opts.NumCalls) / total.Seconds(),
		LastResult:        lastResult,
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		var sum float64
		for _, d := range durations {
			sum += d
		}
		res.AvgTime = sum / float64(len(durations))
		res.MedianTime = median(durations)
		res.MinTime = durations[0]
		res.MaxTime = durations[len(durations)-1]
	}

	c.log.Info("stress run finished",
		zap.Duration("total", total),
		zap.Float64("rps", res.RequestsPerSecond),
		zap.Int("failures", failures))
	return res, nil
}

// median expects a sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
