package amino

import (
	"strings"
	"sync"
)

// Credentials is the session identity of one client. The login flow is the
// only writer; the socket and REST layers read it on every request.
type Credentials struct {
	mu       sync.RWMutex
	deviceID string
	sid      string
	uid      string
	secret   string
}

func newCredentials(deviceID string) *Credentials {
	return &Credentials{deviceID: deviceID}
}

// DeviceID returns the device id sent as NDCDEVICEID.
func (c *Credentials) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceID
}

// SessionID returns the bare session id, or "" when logged out.
func (c *Credentials) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sid
}

// UserID returns the logged-in user id, or "".
func (c *Credentials) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uid
}

// Secret returns the login secret returned by the last password login.
func (c *Credentials) Secret() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.secret
}

// Auth returns the NDCAUTH header value, or "" when logged out.
func (c *Credentials) Auth() string {
	sid := c.SessionID()
	if sid == "" {
		return ""
	}
	return "sid=" + sid
}

// Authenticated reports whether a session id is set.
func (c *Credentials) Authenticated() bool { return c.SessionID() != "" }

func (c *Credentials) set(sid, uid, secret string) {
	c.mu.Lock()
	c.sid = strings.TrimPrefix(sid, "sid=")
	c.uid = uid
	c.secret = secret
	c.mu.Unlock()
}

func (c *Credentials) clear() {
	c.set("", "", "")
}
