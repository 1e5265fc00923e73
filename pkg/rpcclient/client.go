package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/config"
	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/rpc"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout = 4 * time.Second
	// Number of immutable raw block/transaction payloads kept cached.
	defaultCacheSize = 128
)

// Client represents the middleman for executing JSON RPC calls against a
// remote Evrmore node. Client is thread-safe and can be used from multiple
// goroutines, concurrent calls never share per-call state.
type Client struct {
	cli      *http.Client
	endpoint *url.URL
	username string
	password string
	credErr  error
	opts     Options
	mode     Mode
	log      *zap.Logger
	requestF func(context.Context, *rpc.Request) (*rpc.Response, error)

	// rawCache keeps hex payloads of blocks and transactions, both are
	// immutable for a given hash so they never need invalidation.
	rawCache *lru.Cache

	latestReqID *atomic.Uint64
	closed      *atomic.Bool
}

// Options defines options for the RPC client. All values are optional.
type Options struct {
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	// Limit total number of connections per host. No limit by default.
	MaxConnsPerHost int
	// Mode overrides the dispatch mode from the config.
	Mode Mode
	// CacheSize bounds the immutable payload cache.
	CacheSize int
	// Logger is used for client diagnostics, a no-op logger by default.
	Logger *zap.Logger
}

// New returns a new Client ready to use. Missing credentials are not fatal
// here, they surface as a ConfigError on the first call.
func New(ctx context.Context, cfg config.Config, opts Options) (*Client, error) {
	cl := new(Client)
	err := initClient(cl, cfg, opts)
	if err != nil {
		return nil, err
	}
	cl.requestF = cl.makeHTTPRequest
	// Best-effort release when the owner forgets to Close.
	runtime.SetFinalizer(cl, (*Client).Close)
	return cl, nil
}

func initClient(cl *Client, cfg config.Config, opts Options) error {
	endpoint, err := cfg.Endpoint()
	if err != nil {
		return &ConfigError{Err: err}
	}

	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = time.Duration(cfg.RequestTimeout()) * time.Second
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	mode := opts.Mode
	if mode == ModeAuto && cfg.Mode != "" {
		mode, err = ParseMode(cfg.Mode)
		if err != nil {
			return &ConfigError{Err: err}
		}
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.DialTimeout,
			}).DialContext,
			MaxConnsPerHost: opts.MaxConnsPerHost,
		},
		Timeout: opts.RequestTimeout,
	}

	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return err
	}

	cl.cli = httpClient
	cl.endpoint = endpoint
	cl.username, cl.password, cl.credErr = cfg.Credentials()
	cl.opts = opts
	cl.mode = mode
	cl.log = opts.Logger
	cl.rawCache = cache
	cl.latestReqID = atomic.NewUint64(0)
	cl.closed = atomic.NewBool(false)
	return nil
}

func (c *Client) getRequestID() uint64 {
	return c.latestReqID.Inc()
}

// Endpoint returns the client's endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Mode returns the dispatch mode the client was constructed with. It never
// changes during the client's lifetime.
func (c *Client) Mode() Mode {
	return c.mode
}

// Close closes unused underlying network connections. Closing an already
// closed client is a no-op.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	runtime.SetFinalizer(c, nil)
	if c.cli != nil {
		c.cli.CloseIdleConnections()
	}
	return nil
}

// rawRequest performs a single round trip for the given method and returns
// the raw result payload. Remote error envelopes are returned as *rpc.Error,
// network failures as *TransportError.
func (c *Client) rawRequest(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if c.credErr != nil {
		return nil, &ConfigError{Err: c.credErr}
	}
	if params == nil {
		params = []any{}
	}
	var r = rpc.Request{
		JSONRPC: rpc.JSONRPCVersion,
		Method:  method,
		Params:  params,
		ID:      c.getRequestID(),
	}

	start := time.Now()
	raw, err := c.requestF(ctx, &r)
	updateCallMetrics(time.Since(start), err != nil || (raw != nil && raw.Error != nil))

	if raw != nil && raw.Error != nil {
		return nil, raw.Error
	} else if err != nil {
		return nil, err
	} else if raw == nil || raw.Result == nil {
		return nil, &TransportError{Err: errors.New("no result returned")}
	}
	return raw.Result, nil
}

func (c *Client) performRequest(ctx context.Context, method string, params []any, v any) error {
	raw, err := c.rawRequest(ctx, method, params)
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

func (c *Client) makeHTTPRequest(ctx context.Context, r *rpc.Request) (*rpc.Response, error) {
	var (
		buf = new(bytes.Buffer)
		raw = new(rpc.Response)
	)

	if err := json.NewEncoder(buf).Encode(r); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("request encoding: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint.String(), buf)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	// The node might send us a proper JSON anyway, so look there first and if
	// it parses, it has more relevant data than the HTTP error code.
	err = json.NewDecoder(resp.Body).Decode(raw)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("HTTP %d/%s", resp.StatusCode, http.StatusText(resp.StatusCode))
		} else {
			err = fmt.Errorf("JSON decoding: %w", err)
		}
	}
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return raw, nil
}

// Ping attempts to create a connection to the endpoint
// and returns an error if there is any.
func (c *Client) Ping() error {
	conn, err := net.DialTimeout("tcp", c.endpoint.Host, c.opts.DialTimeout)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}
