// Package wire defines the JSON payload types carried in the "o" field of
// Amino realtime frames. Inbound types are decoded by the event dispatcher;
// outbound types are built by the action and voice helpers.
package wire

import (
	"bytes"
	"encoding/json"
)

// Flex is a string that also accepts a bare JSON number. The service sends
// some discriminators (notifType, ids) as either.
type Flex string

func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = Flex(n.String())
	return nil
}

// --------------------------------------------------------------------------
// Inbound
// --------------------------------------------------------------------------

// Author is the compact user profile embedded in chat messages.
type Author struct {
	UserID     string `json:"uid"`
	Nickname   string `json:"nickname"`
	Icon       string `json:"icon"`
	Level      int    `json:"level"`
	Reputation int    `json:"reputation"`
	Role       int    `json:"role"`
}

// ReplyMessage is the quoted message attached to a reply.
type ReplyMessage struct {
	MessageID  string `json:"messageId"`
	Content    string `json:"content"`
	MediaValue string `json:"mediaValue"`
	Type       int    `json:"type"`
	MediaType  int    `json:"mediaType"`
	ThreadID   string `json:"threadId"`
	Author     Author `json:"author"`
}

// Mention is one entry of a message's mentionedArray.
type Mention struct {
	UserID string `json:"uid"`
}

// Extensions holds optional message attachments.
type Extensions struct {
	ReplyMessage   *ReplyMessage `json:"replyMessage,omitempty"`
	MentionedArray []Mention     `json:"mentionedArray,omitempty"`
	StickerID      string        `json:"stickerId,omitempty"`
	Duration       float64       `json:"duration,omitempty"`
}

// ChatMessage is the chatMessage object of a type 1000 frame.
type ChatMessage struct {
	MessageID   string     `json:"messageId"`
	ThreadID    string     `json:"threadId"`
	Content     string     `json:"content"`
	Type        int        `json:"type"`
	MediaType   int        `json:"mediaType"`
	MediaValue  string     `json:"mediaValue"`
	ClientRefID int        `json:"clientRefId"`
	CreatedTime string     `json:"createdTime"`
	UserID      string     `json:"uid"`
	IsHidden    bool       `json:"isHidden"`
	Author      Author     `json:"author"`
	Extensions  Extensions `json:"extensions"`
}

// Mentions returns the user ids mentioned in the message.
func (m *ChatMessage) Mentions() []string {
	if len(m.Extensions.MentionedArray) == 0 {
		return nil
	}
	out := make([]string, len(m.Extensions.MentionedArray))
	for i, mention := range m.Extensions.MentionedArray {
		out[i] = mention.UserID
	}
	return out
}

// Event is a chat or content event (frame kind 1000).
type Event struct {
	ComID            int             `json:"ndcId"`
	AlertOption      int             `json:"alertOption"`
	MembershipStatus int             `json:"membershipStatus"`
	Message          ChatMessage     `json:"chatMessage"`
	Raw              json.RawMessage `json:"-"`
}

// Payload is a push notification body (frame kinds 10 and 201): host
// transfers, alerts, channel fetches.
type Payload struct {
	NotifType Flex            `json:"notifType"`
	ComID     int             `json:"ndcId"`
	ThreadID  string          `json:"tid"`
	UserID    string          `json:"uid"`
	ID        Flex            `json:"id"`
	Exp       int64           `json:"exp"`
	Aps       Aps             `json:"aps"`
	Raw       json.RawMessage `json:"-"`
}

// Aps carries the user-visible alert text of a notification.
type Aps struct {
	Alert string `json:"alert"`
	Badge int    `json:"badge"`
	Sound string `json:"sound"`
}

// UserProfile is the compact profile listed in presence updates.
type UserProfile struct {
	UserID     string `json:"uid"`
	Nickname   string `json:"nickname"`
	Icon       string `json:"icon"`
	Level      int    `json:"level"`
	Reputation int    `json:"reputation"`
	Status     int    `json:"status"`
}

// UsersActions is a presence or typing update (frame kinds 304, 306, 400).
type UsersActions struct {
	Topic            string          `json:"topic"`
	ComID            int             `json:"ndcId"`
	ThreadID         string          `json:"threadId"`
	UserID           string          `json:"uid"`
	Actions          Actions         `json:"actions"`
	Target           string          `json:"target"`
	UserProfileCount int             `json:"userProfileCount"`
	UserProfileList  []UserProfile   `json:"userProfileList"`
	ID               Flex            `json:"id"`
	Raw              json.RawMessage `json:"-"`
}

// Actions is an action list that the service sends either as a single
// string or as an array of strings.
type Actions []string

func (a *Actions) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Actions{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*a = list
	return nil
}

// First returns the first action or "".
func (a Actions) First() string {
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

// --------------------------------------------------------------------------
// Outbound
// --------------------------------------------------------------------------

// ActionPayload is the body of a presence action frame (306 / 303).
type ActionPayload struct {
	Actions []string       `json:"actions"`
	Target  string         `json:"target"`
	ComID   int            `json:"ndcId"`
	Params  map[string]any `json:"params"`
	ID      string         `json:"id"`
}

// TopicPayload subscribes to a presence topic (frame kind 300).
type TopicPayload struct {
	ComID int    `json:"ndcId"`
	Topic string `json:"topic"`
	ID    string `json:"id"`
}

// VoiceRolePayload joins or leaves a live room in a role (frame kind 112).
type VoiceRolePayload struct {
	ComID    int    `json:"ndcId"`
	ThreadID string `json:"threadId"`
	JoinRole int    `json:"joinRole"`
	ID       string `json:"id"`
}

// ChannelPayload opens a media channel (frame kind 108).
type ChannelPayload struct {
	ComID       int    `json:"ndcId"`
	ThreadID    string `json:"threadId"`
	JoinRole    int    `json:"joinRole,omitempty"`
	ChannelType int    `json:"channelType"`
	ID          string `json:"id"`
}

// PlaylistItem is one media entry of a screening-room playlist.
type PlaylistItem struct {
	Author    any     `json:"author"`
	Duration  float64 `json:"duration"`
	IsDone    bool    `json:"isDone"`
	MediaList [][]any `json:"mediaList"`
	Title     string  `json:"title"`
	Type      int     `json:"type"`
	URL       string  `json:"url"`
}

// Playlist is the screening-room playlist state.
type Playlist struct {
	CurrentItemIndex  int            `json:"currentItemIndex"`
	CurrentItemStatus int            `json:"currentItemStatus"`
	Items             []PlaylistItem `json:"items"`
}

// PlaylistPayload updates the playlist of a screening room (frame kind 120).
type PlaylistPayload struct {
	ComID    int      `json:"ndcId"`
	ThreadID string   `json:"threadId"`
	Playlist Playlist `json:"playlist"`
	ID       string   `json:"id"`
}
