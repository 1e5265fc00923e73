package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/config"
	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/rpc"
	"github.com/gorilla/websocket"
)

// WSClient is a websocket-enabled RPC client that can be used with
// appropriate proxies or nodes. It's supposed to be faster than Client
// because it has a persistent connection to the server. Concurrent calls
// are matched to their responses by request ID, so one connection can carry
// any number of calls at once.
type WSClient struct {
	Client

	ws       *websocket.Conn
	done     chan struct{}
	requests chan *rpc.Request
	shutdown chan struct{}

	respLock     sync.Mutex
	respChannels map[uint64]chan *rpc.Response
}

const (
	// Message limit for receiving side.
	wsReadLimit = 10 * 1024 * 1024

	// Disconnection timeout.
	wsPongLimit = 60 * time.Second

	// Ping period for connection liveness check.
	wsPingPeriod = wsPongLimit / 2

	// Write deadline.
	wsWriteLimit = wsPingPeriod / 2
)

// NewWS returns a new WSClient ready to use (with established websocket
// connection). The configured endpoint must use a ws or wss URL.
func NewWS(ctx context.Context, cfg config.Config, opts Options) (*WSClient, error) {
	cl := new(Client)
	if err := initClient(cl, cfg, opts); err != nil {
		return nil, err
	}
	if cl.endpoint.Scheme != "ws" && cl.endpoint.Scheme != "wss" {
		return nil, &ConfigError{Err: errors.New("websocket endpoint required (ws:// or wss://)")}
	}
	cl.cli = nil

	dialer := websocket.Dialer{HandshakeTimeout: cl.opts.DialTimeout}
	ws, _, err := dialer.DialContext(ctx, cl.endpoint.String(), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	wsc := &WSClient{
		Client:       *cl,
		ws:           ws,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		requests:     make(chan *rpc.Request),
		respChannels: make(map[uint64]chan *rpc.Response),
	}
	go wsc.wsReader()
	go wsc.wsWriter()
	wsc.requestF = wsc.makeWsRequest
	return wsc, nil
}

// Close closes the connection to the remote side rendering this client
// instance unusable. Double Close is a no-op.
func (c *WSClient) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		// Closing the shutdown channel sends a signal to wsWriter to break
		// out of the loop. In doing so it does ws.Close() closing the network
		// connection which in turn makes wsReader receive an err from
		// ws.ReadJSON() and also break out of the loop finishing the
		// shutdown sequence by closing c.done.
		close(c.shutdown)
	}
	<-c.done
	return nil
}

func (c *WSClient) registerRespChannel(id uint64) chan *rpc.Response {
	ch := make(chan *rpc.Response, 1)
	c.respLock.Lock()
	c.respChannels[id] = ch
	c.respLock.Unlock()
	return ch
}

func (c *WSClient) dropRespChannel(id uint64) {
	c.respLock.Lock()
	delete(c.respChannels, id)
	c.respLock.Unlock()
}

func (c *WSClient) routeResponse(resp *rpc.Response) bool {
	var id uint64
	if resp.ID == nil || json.Unmarshal(resp.ID, &id) != nil {
		return false
	}
	c.respLock.Lock()
	ch := c.respChannels[id]
	delete(c.respChannels, id)
	c.respLock.Unlock()
	if ch != nil {
		ch <- resp
	}
	// A response without a waiter just means its request already gave up.
	return true
}

func (c *WSClient) wsReader() {
	c.ws.SetReadLimit(wsReadLimit)
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(wsPongLimit)) })
	for {
		resp := new(rpc.Response)
		_ = c.ws.SetReadDeadline(time.Now().Add(wsPongLimit))
		err := c.ws.ReadJSON(resp)
		if err != nil {
			// Timeout/connection loss/malformed response.
			break
		}
		if !c.routeResponse(resp) {
			// Not a response to any in-flight request.
			break
		}
	}
	close(c.done)
}

func (c *WSClient) wsWriter() {
	pingTicker := time.NewTicker(wsPingPeriod)
	defer c.ws.Close()
	defer pingTicker.Stop()
	for {
		select {
		case <-c.shutdown:
			return
		case <-c.done:
			return
		case req := <-c.requests:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.RequestTimeout))
			if err := c.ws.WriteJSON(req); err != nil {
				return
			}
		case <-pingTicker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteLimit))
			if err := c.ws.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) makeWsRequest(ctx context.Context, r *rpc.Request) (*rpc.Response, error) {
	ch := c.registerRespChannel(r.ID)
	select {
	case <-c.done:
		c.dropRespChannel(r.ID)
		return nil, &TransportError{Err: errors.New("connection lost")}
	case <-ctx.Done():
		c.dropRespChannel(r.ID)
		return nil, &TransportError{Err: ctx.Err()}
	case c.requests <- r:
	}
	select {
	case <-c.done:
		c.dropRespChannel(r.ID)
		return nil, &TransportError{Err: errors.New("connection lost")}
	case <-ctx.Done():
		c.dropRespChannel(r.ID)
		return nil, &TransportError{Err: ctx.Err()}
	case resp := <-ch:
		return resp, nil
	}
}
