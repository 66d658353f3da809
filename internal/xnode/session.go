package xnode

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xnodehq/xnode/internal/transport"
)

// pendingRequest is a one-shot completion handle for an in-flight invoke_func, keyed by requestId.
type pendingRequest struct {
	done chan Envelope
}

// Session is the coordinator-side representative of one connected peer (conventionally a dispatcher worker,
// though the wire protocol does not otherwise distinguish peers). It owns the wire Channel, demultiplexes inbound
// frames between unsolicited control-plane commands and replies to its own outstanding invoke_func requests, and
// serializes outbound sends via the underlying transport.Channel (which itself is safe for concurrent Send calls).
type Session struct {
	ID      string
	channel transport.Channel
	logger  *logrus.Entry

	mu       sync.Mutex
	pending  map[string]*pendingRequest
	leaves   map[string]struct{}
	closed   bool
	onClose  func(sessionID string)
	handle   func(sessionID string, req Envelope) (Envelope, bool) // bool: reply expected/sent
}

// NewSession wraps channel as a Session identified by a freshly generated id. handle is invoked once per inbound
// frame that is not a reply to a pending invoke_func (i.e. every unsolicited control-plane command); it returns
// the response envelope to send back, and whether a response should be sent at all (invoke_func replies from a
// worker, for instance, are consumed internally and never re-dispatched through handle). onClose is invoked once
// the session's read loop exits, for registry/router cleanup.
func NewSession(channel transport.Channel, logger *logrus.Logger, handle func(sessionID string, req Envelope) (Envelope, bool), onClose func(sessionID string)) *Session {
	id := uuid.NewString()
	return &Session{
		ID:      id,
		channel: channel,
		logger:  logger.WithField("session", id),
		pending: make(map[string]*pendingRequest),
		leaves:  make(map[string]struct{}),
		handle:  handle,
		onClose: onClose,
	}
}

// Run blocks, reading frames until the channel closes or errors, dispatching each to handle or to a pending
// invoke_func waiter as appropriate. It returns once the session has torn down.
func (s *Session) Run() {
	defer s.teardown()
	for {
		frame, err := s.channel.Recv()
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Debug("session channel closed")
			}
			return
		}
		env, err := Decode(frame)
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Warn("dropping malformed frame")
			}
			continue
		}
		s.dispatch(env)
	}
}

func (s *Session) dispatch(env Envelope) {
	// a reply to one of our own invoke_func requests carries the requestId we allocated but no command
	if env.Command == "" && env.RequestID != "" {
		s.completePending(env)
		return
	}
	if s.handle == nil {
		return
	}
	resp, send := s.handle(s.ID, env)
	if !send {
		return
	}
	frame, err := Encode(resp)
	if err != nil {
		return
	}
	_ = s.channel.Send(frame)
}

func (s *Session) completePending(env Envelope) {
	s.mu.Lock()
	p, ok := s.pending[env.RequestID]
	if ok {
		delete(s.pending, env.RequestID)
	}
	s.mu.Unlock()
	if !ok {
		// late reply to an orphaned or already-resolved request: drop it
		return
	}
	p.done <- env
}

// Invoke sends an {command: invoke_func, name, requestId} to this session's peer and blocks for a matching reply,
// ctx cancellation (Timeout/Cancelled), or session teardown (LeafUnavailable).
func (s *Session) Invoke(ctx context.Context, name string) Result {
	requestID := uuid.NewString()
	p := &pendingRequest{done: make(chan Envelope, 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Failure(LeafUnavailable)
	}
	s.pending[requestID] = p
	s.mu.Unlock()

	frame, err := Encode(Envelope{Command: "invoke_func", Name: name, RequestID: requestID})
	if err != nil {
		s.dropPending(requestID)
		return Failure(SchemaError)
	}
	if err := s.channel.Send(frame); err != nil {
		s.dropPending(requestID)
		return Failure(TransportError)
	}

	select {
	case env := <-p.done:
		switch {
		case env.Error == string(LeafUnavailable):
			// synthesized by teardown draining the pending table, not a reply from the peer
			return Failure(LeafUnavailable)
		case env.Error != "":
			return Failure(RemoteError)
		case env.Result != nil:
			return FromBool(*env.Result)
		default:
			return Failure(RemoteError)
		}
	case <-ctx.Done():
		// leave the waiter registered so a late reply is still consumed (and dropped) by completePending,
		// per spec.md §5's "outstanding remote invocations may still produce a late response - these are
		// dropped"
		if ctx.Err() == context.DeadlineExceeded {
			return Failure(Timeout)
		}
		return Failure(Cancelled)
	}
}

func (s *Session) dropPending(requestID string) {
	s.mu.Lock()
	delete(s.pending, requestID)
	s.mu.Unlock()
}

// AddLeaf records that this session owns leafName, for bookkeeping only - the LeafRegistry is authoritative.
func (s *Session) AddLeaf(leafName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaves[leafName] = struct{}{}
}

func (s *Session) teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, p := range pending {
		select {
		case p.done <- Envelope{Error: string(LeafUnavailable)}:
		default:
		}
	}

	_ = s.channel.Close()
	if s.onClose != nil {
		s.onClose(s.ID)
	}
}
