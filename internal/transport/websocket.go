package transport

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// wsChannel adapts a *websocket.Conn to the Channel interface, serializing writes on a buffered send queue drained
// by a single writer goroutine, mirroring the read/write pump split used by connection-oriented servers in this
// codebase's reference corpus.
type wsChannel struct {
	conn *websocket.Conn
	send chan []byte
	recv chan wsFrame

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

type wsFrame struct {
	data []byte
	err  error
}

const sendQueueSize = 64

func newWSChannel(conn *websocket.Conn) *wsChannel {
	c := &wsChannel{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		recv: make(chan wsFrame),
		done: make(chan struct{}),
	}
	go c.writePump()
	go c.readPump()
	return c
}

func (c *wsChannel) Send(frame []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *wsChannel) Recv() ([]byte, error) {
	f, ok := <-c.recv
	if !ok {
		return nil, ErrClosed
	}
	return f.data, f.err
}

func (c *wsChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	close(c.done)
	return c.conn.Close()
}

func (c *wsChannel) writePump() {
	for {
		select {
		case frame := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *wsChannel) readPump() {
	defer close(c.recv)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			_ = c.Close()
			select {
			case c.recv <- wsFrame{err: err}:
			case <-c.done:
			}
			return
		}
		select {
		case c.recv <- wsFrame{data: data}:
		case <-c.done:
			return
		}
	}
}

// Server accepts incoming WebSocket connections and hands each one to OnAccept as a Channel.
type Server struct {
	addr     string
	path     string
	upgrader websocket.Upgrader
	onAccept func(Channel)
	server   *http.Server
}

// NewServer constructs a Server listening on addr, upgrading connections on path (e.g. "/ws"). onAccept is invoked
// once per accepted connection, from the HTTP handler's goroutine; the Channel it receives is already pumping.
func NewServer(addr, path string, onAccept func(Channel)) *Server {
	return &Server{
		addr: addr,
		path: path,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		onAccept: onAccept,
	}
}

// ListenAndServe blocks, serving upgrade requests until the server is shut down or an error occurs.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleUpgrade)
	s.server = &http.Server{Addr: s.addr, Handler: mux}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops accepting new connections, per the ambient process-shutdown stack.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	channel := newWSChannel(conn)
	if s.onAccept != nil {
		s.onAccept(channel)
	}
}

// Dial connects out to a coordinator as a client, returning a pumping Channel - used by dispatcher processes.
func Dial(url string) (Channel, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return newWSChannel(conn), nil
}
