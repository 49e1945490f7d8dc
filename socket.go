package amino

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/k-amino/amino-go/frame"
	"github.com/k-amino/amino-go/signer"
)

// State is the lifecycle state of a Socket.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// FrameHandler receives every inbound frame, in arrival order. Frames are
// handed over on a dispatch goroutine separate from the reader, so a handler
// may itself wait on a reply frame (Request, GetUsersActions).
type FrameHandler func(data []byte)

// SocketOptions wires a Socket.
type SocketOptions struct {
	URL    string // realtime endpoint, without query
	Config SocketConfig
	Dialer Dialer
	Logger *slog.Logger
	// OnFrame is called for every inbound frame.
	OnFrame FrameHandler
	// OnReconnectError is called when an automatic reconnect exhausts its
	// connect attempts. The socket stays closed until Launch is called.
	OnReconnectError func(error)
}

// Socket is the realtime connection manager. At most one connection is
// open at a time; a connection that drops without Close is re-established
// automatically.
type Socket struct {
	url    string
	cfg    SocketConfig
	creds  *Credentials
	dialer Dialer
	log    *slog.Logger
	ids    *frame.IDGen

	onFrame          FrameHandler
	onReconnectError func(error)

	mu          sync.Mutex
	state       State
	conn        Conn
	gen         uint64 // bumped by every launch and Close
	intentional bool
	stop        chan struct{}
	cancelDial  context.CancelFunc

	lastMu sync.RWMutex
	last   []byte

	// pendMu guards the reply waiters and the frames not yet handed to
	// onFrame, so a request sees every frame exactly once.
	pendMu   sync.Mutex
	waiters  map[*waiter]struct{}
	queue    [][]byte
	draining bool
}

// NewSocket creates a closed socket reading its identity from creds.
func NewSocket(creds *Credentials, opts SocketOptions) *Socket {
	if opts.URL == "" {
		opts.URL = DefaultSocketURL
	}
	cfg := opts.Config.withDefaults()
	if opts.Dialer == nil {
		opts.Dialer = WSDialer{Timeout: cfg.HandshakeTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Socket{
		url:              strings.TrimRight(opts.URL, "/"),
		cfg:              cfg,
		creds:            creds,
		dialer:           opts.Dialer,
		log:              opts.Logger,
		ids:              frame.NewIDGen(),
		onFrame:          opts.OnFrame,
		onReconnectError: opts.OnReconnectError,
		waiters:          make(map[*waiter]struct{}),
	}
}

// State returns the current state.
func (s *Socket) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Receive returns the most recent inbound frame, or nil.
func (s *Socket) Receive() []byte {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}

// Launch opens the connection and starts the read loop. It returns once the
// handshake succeeds or every connect attempt failed; it is a no-op while
// a connection is open or being opened.
func (s *Socket) Launch(ctx context.Context) error {
	s.mu.Lock()
	s.intentional = false
	s.mu.Unlock()
	return s.launch(ctx, false)
}

func (s *Socket) launch(ctx context.Context, reconnect bool) error {
	s.mu.Lock()
	if s.state == StateOpen || s.state == StateConnecting {
		s.mu.Unlock()
		return nil
	}
	if reconnect && s.intentional {
		s.mu.Unlock()
		return nil
	}
	if !s.creds.Authenticated() {
		s.mu.Unlock()
		return ErrAuthenticationRequired
	}
	s.gen++
	gen := s.gen
	dctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancelDial = cancel
	s.setState(StateConnecting)
	s.mu.Unlock()

	conn, err := s.dialWithRetry(dctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// Closed while connecting.
		if conn != nil {
			conn.Close()
		}
		return &TransportError{Op: "launch", Err: net.ErrClosed}
	}
	s.cancelDial = nil
	if err != nil {
		s.setState(StateClosed)
		return err
	}

	stop := make(chan struct{})
	s.conn = conn
	s.stop = stop
	s.setState(StateOpen)
	s.log.Info("socket: connected", "url", s.url)

	go s.readLoop(conn, gen)
	go s.keepAlive(conn, stop)
	return nil
}

func (s *Socket) dialWithRetry(ctx context.Context) (Conn, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.ConnectAttempts; attempt++ {
		conn, err := s.dial(ctx)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		s.log.Warn("socket: connect failed", "attempt", attempt, "error", err)
		if attempt == s.cfg.ConnectAttempts {
			break
		}

		wait := s.cfg.ConnectBackoff
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			wait = s.cfg.DNSBackoff
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, &TransportError{Op: "connect", Err: ctx.Err()}
		case <-t.C:
		}
	}
	return nil, &TransportError{Op: "connect", Err: lastErr}
}

func (s *Socket) dial(ctx context.Context) (Conn, error) {
	device := s.creds.DeviceID()
	body := signer.HandshakeBody(device, time.Now())

	// Set directly so the header names keep their case.
	header := http.Header{}
	header["NDCDEVICEID"] = []string{device}
	header["NDCAUTH"] = []string{s.creds.Auth()}
	header["NDC-MSG-SIG"] = []string{signer.Sign([]byte(body))}

	dctx, cancel := context.WithTimeout(ctx, s.cfg.HandshakeTimeout)
	defer cancel()
	return s.dialer.Dial(dctx, s.url+"/?signbody="+url.QueryEscape(body), header)
}

func (s *Socket) readLoop(conn Conn, gen uint64) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			s.handleDrop(conn, gen, err)
			return
		}

		s.lastMu.Lock()
		s.last = data
		s.lastMu.Unlock()

		s.deliver(data)
	}
}

// deliver passes data to every matching waiter and queues it for
// onFrame. A single drain goroutine runs while frames are pending, which
// keeps arrival order across reconnects.
func (s *Socket) deliver(data []byte) {
	s.pendMu.Lock()
	defer s.pendMu.Unlock()

	if len(s.waiters) > 0 {
		if f, err := frame.Decode(data); err == nil {
			for w := range s.waiters {
				if w.match(f) {
					w.ch <- data
					delete(s.waiters, w)
				}
			}
		}
	}

	if s.onFrame == nil {
		return
	}
	s.queue = append(s.queue, data)
	if !s.draining {
		s.draining = true
		go s.drain()
	}
}

func (s *Socket) drain() {
	for {
		s.pendMu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.queue = nil
			s.pendMu.Unlock()
			return
		}
		data := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.pendMu.Unlock()

		s.runFrameHandler(data)
	}
}

func (s *Socket) runFrameHandler(data []byte) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("socket: frame handler panic", "panic", p)
		}
	}()
	s.onFrame(data)
}

// handleDrop runs when the read loop of connection gen ends. A drop that
// Close did not cause reconnects.
func (s *Socket) handleDrop(conn Conn, gen uint64, cause error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.setState(StateClosed)
	reconnect := !s.intentional
	s.mu.Unlock()

	conn.Close()
	if !reconnect {
		return
	}

	s.log.Info("socket: connection dropped, reconnecting", "error", cause)
	if err := s.launch(context.Background(), true); err != nil {
		s.log.Error("socket: reconnect failed", "error", err)
		if s.onReconnectError != nil {
			s.onReconnectError(err)
		}
	}
}

func (s *Socket) keepAlive(conn Conn, stop <-chan struct{}) {
	ping := time.NewTicker(s.cfg.PingInterval)
	defer ping.Stop()

	var reboot <-chan time.Time
	if s.cfg.RebootInterval > 0 {
		t := time.NewTimer(s.cfg.RebootInterval)
		defer t.Stop()
		reboot = t.C
	}

	for {
		select {
		case <-stop:
			return
		case <-ping.C:
			if err := conn.Ping(); err != nil {
				s.log.Debug("socket: ping failed", "error", err)
			}
		case <-reboot:
			// The read loop sees the drop and reconnects with a fresh
			// handshake signature.
			s.log.Debug("socket: periodic reconnect")
			conn.Close()
			return
		}
	}
}

// Close shuts the connection down without reconnecting. It is idempotent
// and may be called from a frame handler.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.intentional = true
	if s.state == StateClosed && s.conn == nil {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	gen := s.gen
	conn := s.conn
	s.conn = nil
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	if s.cancelDial != nil {
		s.cancelDial()
		s.cancelDial = nil
	}
	s.setState(StateClosing)
	s.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}

	s.mu.Lock()
	if s.gen == gen {
		s.setState(StateClosed)
	}
	s.mu.Unlock()
	return err
}

// Send marshals v to JSON and writes it as one text message.
func (s *Socket) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return s.write(data)
}

// SendFrame sends payload under frame kind typ.
func (s *Socket) SendFrame(typ int, payload any) error {
	data, err := frame.Encode(typ, payload)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", typ, err)
	}
	return s.write(data)
}

func (s *Socket) write(data []byte) error {
	s.mu.Lock()
	conn, state := s.conn, s.state
	s.mu.Unlock()
	if state != StateOpen || conn == nil {
		return ErrNotConnected
	}
	if err := conn.WriteMessage(data); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	s.log.Debug("socket: sent", "bytes", len(data))
	return nil
}

// setState must be called with s.mu held.
func (s *Socket) setState(to State) {
	if s.state == to {
		return
	}
	s.log.Debug("socket: state", "from", s.state, "to", to)
	s.state = to
}

// --------------------------------------------------------------------------
// Correlated requests
// --------------------------------------------------------------------------

type waiter struct {
	match func(frame.Frame) bool
	ch    chan []byte
}

// Request sends payload under kind typ and waits for the first inbound
// frame accepted by match. Without a deadline on ctx it waits at most the
// configured request timeout. Replies are matched on the read goroutine,
// so Request may be called from a frame or event handler; a frame that was
// read but not yet handed to the handlers also counts as a reply.
func (s *Socket) Request(ctx context.Context, typ int, payload any, match func(frame.Frame) bool) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	w := &waiter{match: match, ch: make(chan []byte, 1)}
	s.pendMu.Lock()
	s.waiters[w] = struct{}{}
	s.pendMu.Unlock()
	defer func() {
		s.pendMu.Lock()
		delete(s.waiters, w)
		s.pendMu.Unlock()
	}()

	if err := s.SendFrame(typ, payload); err != nil {
		return nil, err
	}
	if data, ok := s.pendingReply(w); ok {
		return data, nil
	}
	select {
	case data := <-w.ch:
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// pendingReply checks the frames still waiting for onFrame. It claims w,
// so a reply racing in on the read goroutine is not delivered twice.
func (s *Socket) pendingReply(w *waiter) ([]byte, bool) {
	s.pendMu.Lock()
	defer s.pendMu.Unlock()
	if _, ok := s.waiters[w]; !ok {
		return nil, false
	}
	for _, data := range s.queue {
		f, err := frame.Decode(data)
		if err == nil && w.match(f) {
			delete(s.waiters, w)
			return data, true
		}
	}
	return nil, false
}

// nextID returns a fresh request id.
func (s *Socket) nextID() string { return s.ids.Next() }
