// Package bot turns prefixed chat messages into command invocations.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/k-amino/amino-go/events"
	"github.com/k-amino/amino-go/wire"
)

// DefaultPrefix is used when Config.Prefix is empty.
const DefaultPrefix = "!"

var ErrNoCommunity = errors.New("bot: context has no community")

// Community is the community-scoped client a command replies through.
type Community interface {
	ID() int
	SendText(ctx context.Context, chatID, text string) error
	ReplyText(ctx context.Context, chatID, replyTo, text string) error
}

// Func runs a command.
type Func func(*Context) error

// Condition gates a command after it matched by name.
type Condition func(*Context) bool

// Config configures a command set.
type Config struct {
	Prefix string
	// StringOnly keeps every argument as text. When false, arguments that
	// parse as integers, floats or booleans are converted in Context.Values.
	StringOnly bool
	Logger     *slog.Logger
}

type command struct {
	names []string
	fn    Func
	cond  Condition
	kind  string
}

// Commands is a set of prefixed commands. Registration and triggering are
// safe for concurrent use.
type Commands struct {
	prefix     string
	stringOnly bool
	log        *slog.Logger

	mu     sync.RWMutex
	byName map[string]*command
}

// New creates an empty command set.
func New(cfg Config) *Commands {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Commands{
		prefix:     cfg.Prefix,
		stringOnly: cfg.StringOnly,
		log:        cfg.Logger,
		byName:     make(map[string]*command),
	}
}

// Prefix returns the command prefix.
func (c *Commands) Prefix() string { return c.prefix }

// CommandOption configures one command.
type CommandOption func(*command)

// WithCondition runs the command only when fn reports true.
func WithCondition(fn Condition) CommandOption {
	return func(cmd *command) { cmd.cond = fn }
}

// WithType binds the command to an event name other than text messages.
// It is then only reachable through TriggerAs with that name.
func WithType(eventName string) CommandOption {
	return func(cmd *command) { cmd.kind = eventName }
}

// Command registers fn under every name in names and returns fn. Names are
// matched case-insensitively; registering a name again replaces the
// previous command for that name.
func (c *Commands) Command(names []string, fn Func, opts ...CommandOption) Func {
	if fn == nil || len(names) == 0 {
		return fn
	}
	cmd := &command{fn: fn, kind: events.TextMessage}
	for _, opt := range opts {
		opt(cmd)
	}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			cmd.names = append(cmd.names, name)
		}
	}

	c.mu.Lock()
	for _, name := range cmd.names {
		c.byName[name] = cmd
	}
	c.mu.Unlock()
	return fn
}

// Len reports the number of registered names.
func (c *Commands) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName)
}

// Trigger runs the command named by a text message, if any, and reports
// whether one ran.
func (c *Commands) Trigger(ev *wire.Event, sub Community) bool {
	return c.TriggerAs(events.TextMessage, ev, sub)
}

// TriggerAs is Trigger for commands registered WithType(kind).
func (c *Commands) TriggerAs(kind string, ev *wire.Event, sub Community) bool {
	if ev == nil {
		return false
	}
	content := ev.Message.Content
	if !strings.HasPrefix(content, c.prefix) {
		return false
	}
	fields := strings.Fields(content[len(c.prefix):])
	if len(fields) == 0 {
		return false
	}
	name := strings.ToLower(fields[0])

	c.mu.RLock()
	cmd := c.byName[name]
	c.mu.RUnlock()
	if cmd == nil || cmd.kind != kind {
		return false
	}

	cctx := c.newContext(ev, sub, name, fields[1:])
	if cmd.cond != nil && !cmd.cond(cctx) {
		return false
	}
	if err := c.run(cmd, cctx); err != nil {
		c.log.Warn("bot: command failed", "command", name, "chat", cctx.ChatID, "error", err)
	}
	return true
}

func (c *Commands) run(cmd *command, cctx *Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("command panic: %v", p)
		}
	}()
	return cmd.fn(cctx)
}

// --------------------------------------------------------------------------
// Context
// --------------------------------------------------------------------------

// Context is passed to a running command.
type Context struct {
	Event     *wire.Event
	Community Community

	ComID      int
	ChatID     string
	MessageID  string
	AuthorID   string
	AuthorName string
	AuthorIcon string
	Level      int
	Reputation int
	Mentions   []string

	Content string
	Command string
	Args    []string
	// Values holds Args after type coercion, or Args as strings in
	// string-only mode.
	Values []any

	// Set when the message replies to another message.
	ReplyID  string
	ReplySrc string
	ReplyMsg string
}

func (c *Commands) newContext(ev *wire.Event, sub Community, name string, args []string) *Context {
	msg := &ev.Message
	cctx := &Context{
		Event:      ev,
		Community:  sub,
		ComID:      ev.ComID,
		ChatID:     msg.ThreadID,
		MessageID:  msg.MessageID,
		AuthorID:   msg.Author.UserID,
		AuthorName: msg.Author.Nickname,
		AuthorIcon: msg.Author.Icon,
		Level:      msg.Author.Level,
		Reputation: msg.Author.Reputation,
		Mentions:   msg.Mentions(),
		Content:    msg.Content,
		Command:    name,
		Args:       args,
		Values:     make([]any, len(args)),
	}
	if cctx.AuthorID == "" {
		cctx.AuthorID = msg.UserID
	}
	for i, a := range args {
		if c.stringOnly {
			cctx.Values[i] = a
		} else {
			cctx.Values[i] = coerce(a)
		}
	}
	if reply := msg.Extensions.ReplyMessage; reply != nil {
		if reply.MediaValue != "" {
			cctx.ReplySrc = strings.ReplaceAll(reply.MediaValue, "_00.", "_hq.")
			cctx.ReplyID = reply.MessageID
		}
		if reply.Content != "" {
			cctx.ReplyMsg = reply.Content
			cctx.ReplyID = reply.MessageID
		}
	}
	return cctx
}

func coerce(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// Send posts text to the chat the command came from.
func (c *Context) Send(ctx context.Context, text string) error {
	if c.Community == nil {
		return ErrNoCommunity
	}
	return c.Community.SendText(ctx, c.ChatID, text)
}

// Reply posts text as a reply to the command message.
func (c *Context) Reply(ctx context.Context, text string) error {
	if c.Community == nil {
		return ErrNoCommunity
	}
	return c.Community.ReplyText(ctx, c.ChatID, c.MessageID, text)
}
