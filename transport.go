package amino

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Conn is one realtime connection. ReadMessage is called from a single
// goroutine; the write methods and Close are safe for concurrent use.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Ping() error
	Close() error
}

// Dialer opens realtime connections. The header is sent verbatim with the
// upgrade request.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Conn, error)
}

// WSDialer dials WebSocket connections with gobwas/ws.
type WSDialer struct {
	Timeout time.Duration
}

func (d WSDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	dialer := ws.Dialer{
		Header:  ws.HandshakeHeaderHTTP(header),
		Timeout: d.Timeout,
	}
	conn, br, _, err := dialer.Dial(ctx, url)
	if err != nil {
		return nil, err
	}

	c := &wsConn{conn: conn}
	var src io.Reader = conn
	if br != nil {
		// Frames the server sent along with the handshake response.
		src = io.MultiReader(br, conn)
	}
	c.rd = wsutil.Reader{
		Source:         src,
		State:          ws.StateClientSide,
		CheckUTF8:      true,
		OnIntermediate: c.handleControl,
	}
	return c, nil
}

type wsConn struct {
	conn    net.Conn
	rd      wsutil.Reader
	writeMu sync.Mutex
	once    sync.Once
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		hdr, err := c.rd.NextFrame()
		if err != nil {
			return nil, err
		}
		if hdr.OpCode.IsControl() {
			if err := c.handleControl(hdr, &c.rd); err != nil {
				return nil, err
			}
			continue
		}
		if hdr.OpCode != ws.OpText && hdr.OpCode != ws.OpBinary {
			if err := c.rd.Discard(); err != nil {
				return nil, err
			}
			continue
		}
		return io.ReadAll(&c.rd)
	}
}

// handleControl answers pings and close frames. Replies share the write
// lock with outbound messages.
func (c *wsConn) handleControl(h ws.Header, r io.Reader) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	handler := wsutil.ControlHandler{
		Src:   r,
		Dst:   c.conn,
		State: ws.StateClientSide,
	}
	return handler.Handle(h)
}

func (c *wsConn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.WriteClientText(c.conn, data)
}

func (c *wsConn) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.WriteClientMessage(c.conn, ws.OpPing, nil)
}

// Close sends a close frame when no write is in flight, then closes the
// network connection.
func (c *wsConn) Close() error {
	var err error
	c.once.Do(func() {
		if c.writeMu.TryLock() {
			c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "")
			_ = wsutil.WriteClientMessage(c.conn, ws.OpClose, body)
			c.writeMu.Unlock()
		}
		err = c.conn.Close()
	})
	return err
}
