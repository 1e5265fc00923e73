package zmq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	now := time.Now()
	body := []byte{0xde, 0xad, 0xbe, 0xef}
	n, err := decodeEnvelope([][]byte{
		[]byte("hashblock"),
		body,
		{0x2a, 0x01, 0x00, 0x00}, // 298 little-endian
	}, now)
	require.NoError(t, err)
	require.Equal(t, TopicHashBlock, n.Topic)
	require.Equal(t, body, n.Body)
	require.EqualValues(t, 298, n.Sequence)
	require.Equal(t, "deadbeef", n.Hex)
	require.Equal(t, now, n.Timestamp)
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	_, err := decodeEnvelope([][]byte{[]byte("hashtx"), {0x01}}, time.Now())
	require.ErrorIs(t, err, ErrMalformedEnvelope)

	_, err = decodeEnvelope([][]byte{[]byte("hashtx"), {0x01}, {0x01, 0x00}}, time.Now())
	require.ErrorIs(t, err, ErrMalformedEnvelope)

	_, err = decodeEnvelope(nil, time.Now())
	require.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestParseTopic(t *testing.T) {
	for _, known := range AllTopics() {
		parsed, err := ParseTopic(known.String())
		require.NoError(t, err)
		require.Equal(t, known, parsed)
	}
	_, err := ParseTopic("hashblocks")
	require.Error(t, err)
}
