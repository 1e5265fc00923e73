package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/rpc"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func httpURLtoWS(url string) string {
	return "ws" + strings.TrimPrefix(url, "http") + "/ws"
}

// initWSTestServer echoes the first request parameter back as the result, or
// 1 when there are no parameters.
func initWSTestServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/ws" || req.Method != "GET" {
			http.NotFound(w, req)
			return
		}
		var upgrader = websocket.Upgrader{}
		ws, err := upgrader.Upgrade(w, req, nil)
		require.NoError(t, err)
		defer ws.Close()
		for {
			require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
			_, p, err := ws.ReadMessage()
			if err != nil {
				break
			}
			r := new(rpc.Request)
			require.NoError(t, json.Unmarshal(p, r))
			result := any(1)
			if len(r.Params) > 0 {
				result = r.Params[0]
			}
			resp := fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":%v}`, r.ID, result)
			require.NoError(t, ws.SetWriteDeadline(time.Now().Add(5*time.Second)))
			if err := ws.WriteMessage(websocket.TextMessage, []byte(resp)); err != nil {
				break
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestWSClient(t *testing.T, url string) *WSClient {
	wsc, err := NewWS(context.Background(), testConfig(httpURLtoWS(url)), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = wsc.Close() })
	return wsc
}

func TestWSClientClose(t *testing.T) {
	srv := initWSTestServer(t)
	wsc := newTestWSClient(t, srv.URL)
	require.NoError(t, wsc.Close())
	require.NoError(t, wsc.Close())

	_, err := wsc.GetBlockCount(context.Background())
	require.ErrorIs(t, err, ErrClientClosed)
}

func TestWSClientCall(t *testing.T) {
	srv := initWSTestServer(t)
	wsc := newTestWSClient(t, srv.URL)

	count, err := wsc.GetBlockCount(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestWSClientConcurrentCalls(t *testing.T) {
	srv := initWSTestServer(t)
	wsc := newTestWSClient(t, srv.URL)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out int
			if err := wsc.CallContext(context.Background(), "echo", &out, i); err != nil {
				errs <- err
				return
			}
			if out != i {
				errs <- fmt.Errorf("call %d got response %d", i, out)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestWSClientRequiresWSEndpoint(t *testing.T) {
	_, err := NewWS(context.Background(), testConfig("http://localhost:8819"), Options{})
	configErr := new(ConfigError)
	require.ErrorAs(t, err, &configErr)
}
