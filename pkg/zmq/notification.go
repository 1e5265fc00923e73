package zmq

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedEnvelope is returned when a received message doesn't match the
// three-frame topic/body/sequence layout.
var ErrMalformedEnvelope = errors.New("malformed notification envelope")

// sequenceSize is the wire size of the little-endian sequence frame.
const sequenceSize = 4

// Notification is a single decoded message from the node's ZMQ interface.
// It's immutable, the sequence number is the one assigned by the publisher
// and is never adjusted by the client.
type Notification struct {
	// Topic the notification was published under.
	Topic Topic
	// Body is the raw notification payload.
	Body []byte
	// Sequence is the publisher-assigned per-topic sequence number.
	Sequence uint32
	// Hex is the hex encoding of Body.
	Hex string
	// Timestamp is the time of receipt.
	Timestamp time.Time
}

// decodeEnvelope builds a Notification from the raw frames of a single
// multipart message.
func decodeEnvelope(frames [][]byte, received time.Time) (*Notification, error) {
	if len(frames) != 3 {
		return nil, fmt.Errorf("%w: got %d frames, want 3", ErrMalformedEnvelope, len(frames))
	}
	if len(frames[2]) != sequenceSize {
		return nil, fmt.Errorf("%w: sequence frame is %d bytes, want %d",
			ErrMalformedEnvelope, len(frames[2]), sequenceSize)
	}
	body := frames[1]
	return &Notification{
		Topic:     Topic(frames[0]),
		Body:      body,
		Sequence:  binary.LittleEndian.Uint32(frames[2]),
		Hex:       hex.EncodeToString(body),
		Timestamp: received,
	}, nil
}
