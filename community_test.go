package amino

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestSendMessage(t *testing.T) {
	srv := newAPIServer(t, func(*http.Request, []byte) (int, string) {
		return 200, `{"api:statuscode":0,"message":{"messageId":"m1","threadId":"c1","content":"hi"}}`
	})
	creds := newCredentials(testDevice)
	creds.set("abc", "me", "")
	sub := &SubClient{api: newTestAPI(srv, creds), comID: 55}

	msg, err := sub.SendMessage(context.Background(), "c1", "hi [@bob@]", MessageOptions{Mentions: []string{"bob-uid"}})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.MessageID != "m1" {
		t.Errorf("message id: got %q", msg.MessageID)
	}

	r := srv.last(t)
	if r.method != http.MethodPost || r.path != "/x55/s/chat/thread/c1/message" {
		t.Errorf("request: %s %s", r.method, r.path)
	}
	var body struct {
		Type       int    `json:"type"`
		Content    string `json:"content"`
		Extensions struct {
			MentionedArray []struct {
				UID string `json:"uid"`
			} `json:"mentionedArray"`
		} `json:"extensions"`
		ClientRefID    int64   `json:"clientRefId"`
		ReplyMessageID *string `json:"replyMessageId"`
	}
	if err := json.Unmarshal(r.body, &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.Content != "hi \u200e\u200fbob\u202c\u202d" {
		t.Errorf("content: %q", body.Content)
	}
	if len(body.Extensions.MentionedArray) != 1 || body.Extensions.MentionedArray[0].UID != "bob-uid" {
		t.Errorf("mentions: %+v", body.Extensions.MentionedArray)
	}
	if body.ClientRefID <= 0 || body.ClientRefID >= 100000000 {
		t.Errorf("clientRefId out of range: %d", body.ClientRefID)
	}
	if body.ReplyMessageID != nil {
		t.Error("plain message carries replyMessageId")
	}
}

func TestReplyMessage(t *testing.T) {
	srv := newAPIServer(t, func(*http.Request, []byte) (int, string) { return 200, `{"message":{}}` })
	sub := &SubClient{api: newTestAPI(srv, newCredentials(testDevice)), comID: 1}

	if err := sub.ReplyText(context.Background(), "c1", "m9", "pong"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	var body map[string]any
	json.Unmarshal(srv.last(t).body, &body)
	if body["replyMessageId"] != "m9" || body["content"] != "pong" {
		t.Errorf("body: %v", body)
	}
}

func TestChatMembership(t *testing.T) {
	srv := newAPIServer(t, func(*http.Request, []byte) (int, string) { return 200, `{"api:statuscode":0}` })
	creds := newCredentials(testDevice)
	creds.set("abc", "me", "")
	sub := &SubClient{api: newTestAPI(srv, creds), comID: 8}
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
	}{
		{"join", func() error { return sub.JoinChat(ctx, "c1") }, http.MethodPost, "/x8/s/chat/thread/c1/member/me"},
		{"leave", func() error { return sub.LeaveChat(ctx, "c1") }, http.MethodDelete, "/x8/s/chat/thread/c1/member/me"},
		{"delete", func() error { return sub.DeleteMessage(ctx, "c1", "m1") }, http.MethodDelete, "/x8/s/chat/thread/c1/message/m1"},
	}
	for _, tt := range tests {
		if err := tt.call(); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		r := srv.last(t)
		if r.method != tt.method || r.path != tt.path {
			t.Errorf("%s: got %s %s, want %s %s", tt.name, r.method, r.path, tt.method, tt.path)
		}
	}
}

func TestClientRefID(t *testing.T) {
	now := time.Unix(1700000000, 0)
	if got := clientRefID(now); got != 70000000 {
		t.Errorf("clientRefID: got %d", got)
	}
}
