package amino

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Mention markers. Content written as "[@name@]" is rewritten to the
// directional marks the apps render as a mention.
var mentionReplacer = strings.NewReplacer("[@", "\u200e\u200f", "@]", "\u202c\u202d")

// SubClient is the REST surface of one community.
type SubClient struct {
	api   *APIClient
	comID int
}

// ID returns the community id.
func (s *SubClient) ID() int { return s.comID }

func (s *SubClient) threadPath(chatID string) string {
	return fmt.Sprintf("/x%d/s/chat/thread/%s", s.comID, chatID)
}

// MessageOptions tunes SendMessage.
type MessageOptions struct {
	Type     int      // MessageText when zero
	Mentions []string // user ids
	ReplyTo  string   // message id
}

// SendMessage posts content to a chat.
func (s *SubClient) SendMessage(ctx context.Context, chatID, content string, opts MessageOptions) (*SentMessage, error) {
	req := messageRequest{
		Type:        opts.Type,
		Content:     mentionReplacer.Replace(content),
		ClientRefID: clientRefID(time.Now()),
		Timestamp:   timestamp(),
	}
	for _, uid := range opts.Mentions {
		req.Extensions.MentionedArray = append(req.Extensions.MentionedArray, mention{UserID: uid})
	}
	req.ReplyMessageID = opts.ReplyTo

	var resp sentMessageResponse
	if err := s.api.doJSON(ctx, http.MethodPost, s.threadPath(chatID)+"/message", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Message, nil
}

// ReplyMessage posts content as a reply to messageID.
func (s *SubClient) ReplyMessage(ctx context.Context, chatID, messageID, content string, mentions ...string) (*SentMessage, error) {
	return s.SendMessage(ctx, chatID, content, MessageOptions{Mentions: mentions, ReplyTo: messageID})
}

// DeleteMessage removes one message.
func (s *SubClient) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	return s.api.doJSON(ctx, http.MethodDelete, s.threadPath(chatID)+"/message/"+messageID, nil, nil)
}

// JoinChat joins the logged-in user to a chat.
func (s *SubClient) JoinChat(ctx context.Context, chatID string) error {
	return s.api.doJSON(ctx, http.MethodPost, s.memberPath(chatID), nil, nil)
}

// LeaveChat removes the logged-in user from a chat.
func (s *SubClient) LeaveChat(ctx context.Context, chatID string) error {
	return s.api.doJSON(ctx, http.MethodDelete, s.memberPath(chatID), nil, nil)
}

func (s *SubClient) memberPath(chatID string) string {
	return s.threadPath(chatID) + "/member/" + s.api.creds.UserID()
}

// SendText and ReplyText let commands answer through the community.

func (s *SubClient) SendText(ctx context.Context, chatID, text string) error {
	_, err := s.SendMessage(ctx, chatID, text, MessageOptions{})
	return err
}

func (s *SubClient) ReplyText(ctx context.Context, chatID, replyTo, text string) error {
	_, err := s.ReplyMessage(ctx, chatID, replyTo, text)
	return err
}

func clientRefID(now time.Time) int64 {
	return (now.Unix() / 10) % 100000000
}
