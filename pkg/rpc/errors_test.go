package rpc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	e := NewMethodNotFoundError("")
	require.Equal(t, "Method not found (-32601)", e.Error())

	e = NewInvalidParamsError("txid missing")
	require.Equal(t, "Invalid Params (-32602) - txid missing", e.Error())
}

func TestErrorIs(t *testing.T) {
	err := NewError(-8, "Block height out of range", "")
	require.True(t, errors.Is(err, NewError(-8, "", "")))
	require.False(t, errors.Is(err, NewError(-5, "", "")))
	require.False(t, errors.Is(err, errors.New("plain")))
}

func TestResponseUnmarshal(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","id":7,"error":{"code":-5,"message":"No such mempool or blockchain transaction"}}`)
	resp := new(Response)
	require.NoError(t, json.Unmarshal(data, resp))
	require.NotNil(t, resp.Error)
	require.EqualValues(t, -5, resp.Error.Code)
	require.Nil(t, resp.Result)

	data = []byte(`{"jsonrpc":"2.0","id":8,"result":12345}`)
	resp = new(Response)
	require.NoError(t, json.Unmarshal(data, resp))
	require.Nil(t, resp.Error)
	var count int
	require.NoError(t, json.Unmarshal(resp.Result, &count))
	require.Equal(t, 12345, count)
}
