// Package net shares board operations between a host and its clients over
// websockets, and finds hosts on the local network.
package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"localboard/internal/state"
)

const writeWait = 5 * time.Second

// Peer is one websocket connection. Writes are serialized.
type Peer struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func newPeer(conn *websocket.Conn) *Peer {
	return &Peer{conn: conn}
}

func (p *Peer) Addr() string { return p.conn.RemoteAddr().String() }

// Send writes one op as a JSON message.
func (p *Peer) Send(op state.Op) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return p.conn.WriteJSON(op)
}

func (p *Peer) receive() (state.Op, error) {
	var op state.Op
	err := p.conn.ReadJSON(&op)
	return op, err
}

func (p *Peer) Close() error {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	return p.conn.Close()
}

// Hub is run by the HOST. Every op a client sends is handed to the host's
// board and relayed to every other client.
type Hub struct {
	upgrader websocket.Upgrader
	onOp     func(state.Op)
	log      *slog.Logger

	mu    sync.RWMutex
	peers map[*Peer]struct{}
}

// NewHub creates a hub that calls onOp, from the connection's goroutine,
// for every op received from a client.
func NewHub(onOp func(state.Op), log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			// peers are on the local network and come from the desktop app,
			// not from a browser page
			CheckOrigin: func(*http.Request) bool { return true },
		},
		onOp:  onOp,
		log:   log,
		peers: make(map[*Peer]struct{}),
	}
}

func (h *Hub) add(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = struct{}{}
	h.log.Info("client connected", "addr", p.Addr())
}

func (h *Hub) remove(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, p)
	h.log.Info("client disconnected", "addr", p.Addr())
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Broadcast sends op to every client except exclude, which may be nil.
func (h *Hub) Broadcast(op state.Op, exclude *Peer) {
	h.mu.RLock()
	peers := make([]*Peer, 0, len(h.peers))
	for p := range h.peers {
		if p != exclude {
			peers = append(peers, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range peers {
		if err := p.Send(op); err != nil {
			h.log.Warn("sending op", "addr", p.Addr(), "type", op.Type, "err", err)
		}
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", "remote", r.RemoteAddr, "err", err)
		return
	}
	p := newPeer(conn)
	h.add(p)
	defer p.Close()
	defer h.remove(p)

	for {
		op, err := p.receive()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("client read", "addr", p.Addr(), "err", err)
			}
			return
		}
		h.log.Debug("op received", "addr", p.Addr(), "type", op.Type, "site", op.Site)
		if h.onOp != nil {
			h.onOp(op)
		}
		h.Broadcast(op, p)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	peers := h.peers
	h.peers = make(map[*Peer]struct{})
	h.mu.Unlock()
	for p := range peers {
		_ = p.Close()
	}
}

// Serve runs the hub's HTTP endpoint until ctx is cancelled.
func Serve(ctx context.Context, cfg Config, hub *Hub) error {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, hub)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	hub.log.Info("host listening", "port", cfg.Port, "path", cfg.Path)

	select {
	case err := <-errc:
		return fmt.Errorf("host server: %w", err)
	case <-ctx.Done():
	}
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("host shutdown: %w", err)
	}
	return nil
}

// Client is a CLIENT's connection to the host.
type Client struct {
	*Peer
}

// Dial connects to a host at addr (host:port) on the given endpoint path.
func Dial(ctx context.Context, addr, path string) (*Client, error) {
	url := "ws://" + addr + path
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return &Client{Peer: newPeer(conn)}, nil
}

// LocalAddr is this client's side of the connection. Clients use it as
// their owner ID.
func (c *Client) LocalAddr() string { return c.conn.LocalAddr().String() }

// Run hands every op from the host to onOp until the connection fails or is
// closed. A normal close returns nil.
func (c *Client) Run(onOp func(state.Op)) error {
	for {
		op, err := c.receive()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading from host: %w", err)
		}
		onOp(op)
	}
}
