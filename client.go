// Package amino is a Go client for the Amino chat platform. It logs in over
// REST, keeps the realtime socket open, turns inbound frames into named
// events and, in bot mode, routes prefixed chat messages to commands.
package amino

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/k-amino/amino-go/bot"
	"github.com/k-amino/amino-go/events"
	"github.com/k-amino/amino-go/frame"
	"github.com/k-amino/amino-go/signer"
	"github.com/k-amino/amino-go/trace"
	"github.com/k-amino/amino-go/wire"
)

// Client owns one session: its credentials, the REST client, the realtime
// socket, the event registry and, in bot mode, the command set.
type Client struct {
	cfg   Config
	log   *slog.Logger
	creds *Credentials

	api        *APIClient
	socket     *Socket
	registry   *events.Registry
	dispatcher *events.Dispatcher
	commands   *bot.Commands

	subMu sync.Mutex
	subs  map[int]*SubClient
}

// New creates a logged-out client. A DeviceID in cfg is normalised with the
// current device key; an empty one is derived at random.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	device := signer.DeriveDeviceID(nil)
	if cfg.DeviceID != "" {
		d, err := signer.UpdateDevice(cfg.DeviceID)
		if err != nil {
			return nil, fmt.Errorf("%w: device id: %v", ErrValidation, err)
		}
		device = d
	}
	cfg.DeviceID = device

	log := cfg.Logger
	switch {
	case cfg.Trace:
		log = trace.NewLogger(os.Stderr, slog.LevelDebug)
	case log == nil:
		log = slog.Default()
	}

	c := &Client{
		cfg:      cfg,
		log:      log,
		creds:    newCredentials(device),
		registry: events.NewRegistry(log),
		commands: bot.New(bot.Config{Prefix: cfg.Prefix, StringOnly: cfg.StringOnly, Logger: log}),
		subs:     make(map[int]*SubClient),
	}
	c.api = newAPIClient(cfg, c.creds, log)

	opts := []events.DispatcherOption{
		events.WithLogger(log),
		events.WithDedup(frame.NewDedupWindow(cfg.Socket.DedupSize, cfg.Socket.DedupTTL)),
	}
	if cfg.Bot {
		opts = append(opts, events.WithMessageHook(c.runCommands))
	}
	c.dispatcher = events.NewDispatcher(c.registry, opts...)

	c.socket = NewSocket(c.creds, SocketOptions{
		URL:     cfg.SocketURL,
		Config:  cfg.Socket,
		Dialer:  cfg.Dialer,
		Logger:  log,
		OnFrame: func(data []byte) { c.dispatcher.Dispatch(data) },
		OnReconnectError: func(err error) {
			c.registry.Emit(events.ReconnectError, err)
		},
	})
	return c, nil
}

// runCommands offers every chat message to the commands registered for its
// event; plain commands answer text messages.
func (c *Client) runCommands(name string, ev *wire.Event) {
	c.commands.TriggerAs(name, ev, c.Community(ev.ComID))
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Credentials returns the session identity.
func (c *Client) Credentials() *Credentials { return c.creds }

// Socket returns the realtime connection manager.
func (c *Client) Socket() *Socket { return c.socket }

// API returns the REST client.
func (c *Client) API() *APIClient { return c.api }

// Events returns the event registry.
func (c *Client) Events() *events.Registry { return c.registry }

// Commands returns the command set used in bot mode.
func (c *Client) Commands() *bot.Commands { return c.commands }

// Community returns the REST surface of community comID. Clients are cached.
func (c *Client) Community(comID int) *SubClient {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	sub, ok := c.subs[comID]
	if !ok {
		sub = &SubClient{api: c.api, comID: comID}
		c.subs[comID] = sub
	}
	return sub
}

// --------------------------------------------------------------------------
// Registration
// --------------------------------------------------------------------------

// On registers h for event name and returns it.
func (c *Client) On(name string, h events.Handler) events.Handler {
	return c.registry.On(name, h)
}

// Command registers a bot command under names.
func (c *Client) Command(names []string, fn bot.Func, opts ...bot.CommandOption) bot.Func {
	return c.commands.Command(names, fn, opts...)
}

// --------------------------------------------------------------------------
// Session
// --------------------------------------------------------------------------

// Login signs in with email and password. In bot mode the socket is opened
// once the session is set.
func (c *Client) Login(ctx context.Context, email, password string) (*Login, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	res, err := c.api.login(ctx, email, "0 "+password)
	if err != nil {
		return nil, err
	}
	return res, c.startSession(ctx, res, res.Secret)
}

// LoginSecret signs in with a login secret instead of a password. An empty
// secret reuses the one kept from the last login of this client.
func (c *Client) LoginSecret(ctx context.Context, secret string) (*Login, error) {
	if secret == "" {
		secret = c.creds.Secret()
	}
	if secret == "" {
		return nil, ErrAuthenticationRequired
	}
	res, err := c.api.login(ctx, "", secret)
	if err != nil {
		return nil, err
	}
	return res, c.startSession(ctx, res, secret)
}

func (c *Client) startSession(ctx context.Context, res *Login, secret string) error {
	c.creds.set(res.SID, res.UserID, secret)
	c.log.Info("login: session established", "uid", res.UserID)
	if c.cfg.Bot {
		return c.socket.Launch(ctx)
	}
	return nil
}

// LoginSID resumes a session from a session id, with or without its
// "sid=" prefix. The user id is read from the sid itself; when the sid
// cannot be decoded the account is fetched instead.
func (c *Client) LoginSID(ctx context.Context, sid string) (*SessionInfo, error) {
	if sid == "" {
		return nil, ErrAuthenticationRequired
	}
	info, err := DecodeSID(sid)
	if err != nil {
		c.log.Debug("login: sid not decodable, fetching account", "error", err)
		c.creds.set(sid, "", "")
		acct, aerr := c.api.AccountInfo(ctx)
		if aerr != nil {
			c.creds.clear()
			return nil, aerr
		}
		info = &SessionInfo{UserID: acct.UserID}
	}
	c.creds.set(sid, info.UserID, "")
	c.log.Info("login: session resumed", "uid", info.UserID)

	if c.cfg.Bot {
		if err := c.socket.Launch(ctx); err != nil {
			return info, err
		}
	}
	return info, nil
}

// Logout ends the session and closes the socket. Credentials are cleared
// even when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.api.logout(ctx)
	c.creds.clear()
	if cerr := c.socket.Close(); err == nil {
		err = cerr
	}
	return err
}

// AccountInfo fetches the logged-in account.
func (c *Client) AccountInfo(ctx context.Context) (*Account, error) {
	return c.api.AccountInfo(ctx)
}

// Launch opens the realtime socket.
func (c *Client) Launch(ctx context.Context) error { return c.socket.Launch(ctx) }

// Close closes the realtime socket. The session stays valid.
func (c *Client) Close() error { return c.socket.Close() }
