/*
Package zmq implements a client for the ZMQ notification interface of an
Evrmore node. The node publishes four topics (hashblock, hashtx, rawblock,
rawtx), each message being a three-frame envelope of topic tag, opaque body
and a little-endian sequence number. The client owns a single background
receive loop, decodes envelopes into Notifications and fans them out to
registered handlers with per-handler failure isolation.
*/
package zmq

import (
	"fmt"
)

// Topic identifies a category of node notifications. Its string value is
// used both as the wire subscription filter and as the dispatch key.
type Topic string

// Topics published by Evrmore nodes.
const (
	// TopicHashBlock carries the hash of every new block.
	TopicHashBlock Topic = "hashblock"
	// TopicHashTX carries the hash of every transaction accepted by the node.
	TopicHashTX Topic = "hashtx"
	// TopicRawBlock carries every new block serialized.
	TopicRawBlock Topic = "rawblock"
	// TopicRawTX carries every accepted transaction serialized.
	TopicRawTX Topic = "rawtx"
)

// AllTopics returns all topics known to be published by Evrmore nodes.
func AllTopics() []Topic {
	return []Topic{TopicHashBlock, TopicHashTX, TopicRawBlock, TopicRawTX}
}

// ParseTopic checks s against the known topic set.
func ParseTopic(s string) (Topic, error) {
	for _, t := range AllTopics() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown topic '%s'", s)
}

// Bytes returns the topic's wire form used as the subscription filter.
func (t Topic) Bytes() []byte {
	return []byte(t)
}

// String implements the fmt.Stringer interface.
func (t Topic) String() string {
	return string(t)
}
