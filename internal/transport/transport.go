// Package transport provides a message-framed, bidirectional channel abstraction over a persistent connection,
// along with a gorilla/websocket implementation. It does not know anything about the xnode wire protocol - it
// moves opaque byte frames.
package transport

import "errors"

// ErrClosed is returned by Channel methods once the channel has been closed, either locally or by the peer.
var ErrClosed = errors.New("transport: channel closed")

// Channel is a message-oriented bidirectional connection: each Send is delivered as a single frame to the peer's
// Recv, with no re-framing within a message. Implementations must serialize concurrent Send calls themselves, but
// Send and Recv may be called concurrently with each other.
type Channel interface {
	// Send writes one frame. Safe for concurrent use.
	Send(frame []byte) error

	// Recv blocks until the next frame arrives, the channel is closed, or an error occurs.
	Recv() ([]byte, error)

	// Close tears down the channel. Safe to call more than once.
	Close() error
}
