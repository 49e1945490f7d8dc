package amino

import (
	"fmt"
	"sync"

	"github.com/k-amino/amino-go/frame"
	"github.com/k-amino/amino-go/wire"
)

// Presence ids the service expects on action frames.
const (
	browsingActionID = "363483"
	chattingActionID = "1715976"
)

// Thread types for Chatting.
const (
	ThreadPrivate = 0
	ThreadGroup   = 1
	ThreadPublic  = 2
)

// Action is a presence frame. Nothing is sent until Start.
type Action struct {
	sock *Socket

	mu  sync.Mutex
	out frame.Outbound
}

func newAction(sock *Socket, p wire.ActionPayload) *Action {
	return &Action{sock: sock, out: frame.Outbound{Type: frame.TypeAction, Payload: p}}
}

// Start sends the action.
func (a *Action) Start() error {
	a.mu.Lock()
	out := a.out
	a.mu.Unlock()
	return a.sock.Send(out)
}

// Stop switches the frame to the stop kind and sends it again, returning
// the presence to the previous screen.
func (a *Action) Stop() error {
	a.mu.Lock()
	a.out.Type = frame.TypeStopAction
	out := a.out
	a.mu.Unlock()
	return a.sock.Send(out)
}

// Frame returns the frame Start or Stop would send next.
func (a *Action) Frame() frame.Outbound {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.out
}

// Actions builds presence actions for one community and chat.
type Actions struct {
	sock   *Socket
	comID  int
	chatID string
}

// Actions returns a builder bound to a community and chat.
func (s *Socket) Actions(comID int, chatID string) *Actions {
	return &Actions{sock: s, comID: comID, chatID: chatID}
}

func (a *Actions) target(path string) string {
	return fmt.Sprintf("ndc://x%d/%s", a.comID, path)
}

// SetDefaultAction returns the neutral "browsing the community" action.
func (a *Actions) SetDefaultAction() *Action {
	return newAction(a.sock, wire.ActionPayload{
		Actions: []string{"Browsing"},
		Target:  a.target(""),
		ComID:   a.comID,
		Params:  map[string]any{"duration": 27605},
		ID:      browsingActionID,
	})
}

// reset sends the default action, which the service requires before any
// other presence change.
func (a *Actions) reset() error {
	if err := a.SetDefaultAction().Start(); err != nil {
		return fmt.Errorf("default action: %w", err)
	}
	return nil
}

// Browsing shows the user on the featured page, or on a blog when blogID
// is set. blogType defaults to 1 for blogs.
func (a *Actions) Browsing(blogID string, blogType int) (*Action, error) {
	target := a.target("featured")
	if blogID != "" {
		target = a.target("blog")
		if blogType == 0 {
			blogType = 1
		}
	}
	if err := a.reset(); err != nil {
		return nil, err
	}
	return newAction(a.sock, wire.ActionPayload{
		Actions: []string{"Browsing"},
		Target:  target,
		ComID:   a.comID,
		Params:  map[string]any{"blogType": blogType},
		ID:      browsingActionID,
	}), nil
}

// Chatting shows the user in the bound chat.
func (a *Actions) Chatting(threadType int) (*Action, error) {
	if err := a.reset(); err != nil {
		return nil, err
	}
	return newAction(a.sock, wire.ActionPayload{
		Actions: []string{"Chatting"},
		Target:  a.target("chat-thread/" + a.chatID),
		ComID:   a.comID,
		Params: map[string]any{
			"duration":         12800,
			"membershipStatus": 1,
			"threadType":       threadType,
			"threadId":         a.chatID,
		},
		ID: chattingActionID,
	}), nil
}

// PublicChats shows the user on the public chat list.
func (a *Actions) PublicChats() (*Action, error) {
	return a.browse("public-chats")
}

// LeaderBoards shows the user on the leaderboards.
func (a *Actions) LeaderBoards() (*Action, error) {
	return a.browse("leaderboards")
}

func (a *Actions) browse(path string) (*Action, error) {
	if err := a.reset(); err != nil {
		return nil, err
	}
	return newAction(a.sock, wire.ActionPayload{
		Actions: []string{"Browsing"},
		Target:  a.target(path),
		ComID:   a.comID,
		Params:  map[string]any{"duration": 859},
		ID:      browsingActionID,
	}), nil
}

// Custom builds an arbitrary action, e.g. target "ndc://x123/leaderboards".
func (a *Actions) Custom(actions []string, target string, params map[string]any) (*Action, error) {
	if err := a.reset(); err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	return newAction(a.sock, wire.ActionPayload{
		Actions: actions,
		Target:  target,
		ComID:   a.comID,
		Params:  params,
		ID:      browsingActionID,
	}), nil
}
