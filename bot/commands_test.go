package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/k-amino/amino-go/events"
	"github.com/k-amino/amino-go/wire"
)

type sent struct {
	chatID, replyTo, text string
}

type fakeCommunity struct {
	id   int
	sent []sent
}

func (f *fakeCommunity) ID() int { return f.id }

func (f *fakeCommunity) SendText(_ context.Context, chatID, text string) error {
	f.sent = append(f.sent, sent{chatID: chatID, text: text})
	return nil
}

func (f *fakeCommunity) ReplyText(_ context.Context, chatID, replyTo, text string) error {
	f.sent = append(f.sent, sent{chatID: chatID, replyTo: replyTo, text: text})
	return nil
}

func newCommands(stringOnly bool) *Commands {
	return New(Config{
		Prefix:     "!",
		StringOnly: stringOnly,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func textEvent(content string) *wire.Event {
	return &wire.Event{
		ComID: 42,
		Message: wire.ChatMessage{
			MessageID: "m1",
			ThreadID:  "chat-1",
			Content:   content,
			Author:    wire.Author{UserID: "u1", Nickname: "Ann", Level: 9, Reputation: 120},
		},
	}
}

func TestTriggerRunsCommand(t *testing.T) {
	cmds := newCommands(false)
	var got *Context
	cmds.Command([]string{"Ping", "P"}, func(c *Context) error {
		got = c
		return c.Reply(context.Background(), "pong")
	})

	sub := &fakeCommunity{id: 42}
	if !cmds.Trigger(textEvent("!PING 3 2.5 true hello"), sub) {
		t.Fatal("command did not run")
	}
	if got.Command != "ping" || got.ChatID != "chat-1" || got.AuthorID != "u1" || got.ComID != 42 {
		t.Errorf("context: %+v", got)
	}
	if got.AuthorName != "Ann" || got.Level != 9 || got.Reputation != 120 {
		t.Errorf("author fields: %+v", got)
	}
	want := []any{int64(3), 2.5, true, "hello"}
	if len(got.Values) != len(want) {
		t.Fatalf("values: %v", got.Values)
	}
	for i := range want {
		if got.Values[i] != want[i] {
			t.Errorf("value %d: got %#v, want %#v", i, got.Values[i], want[i])
		}
	}
	if len(sub.sent) != 1 || sub.sent[0].replyTo != "m1" || sub.sent[0].text != "pong" {
		t.Errorf("reply: %+v", sub.sent)
	}

	if !cmds.Trigger(textEvent("!p"), sub) {
		t.Error("alias did not match")
	}
}

func TestTriggerStringOnly(t *testing.T) {
	cmds := newCommands(true)
	var values []any
	cmds.Command([]string{"echo"}, func(c *Context) error {
		values = c.Values
		return nil
	})
	cmds.Trigger(textEvent("!echo 12 x"), nil)
	if len(values) != 2 || values[0] != "12" || values[1] != "x" {
		t.Errorf("values = %#v", values)
	}
}

func TestTriggerNoMatch(t *testing.T) {
	cmds := newCommands(false)
	ran := false
	cmds.Command([]string{"ping"}, func(*Context) error { ran = true; return nil })

	for _, content := range []string{"ping", "!", "!   ", "!pong", "?ping", ""} {
		if cmds.Trigger(textEvent(content), nil) {
			t.Errorf("%q should not trigger", content)
		}
	}
	if cmds.Trigger(nil, nil) {
		t.Error("nil event should not trigger")
	}
	if ran {
		t.Error("command ran on a non-matching message")
	}
}

func TestConditionAndType(t *testing.T) {
	cmds := newCommands(false)
	var admin, typed int
	cmds.Command([]string{"admin"}, func(*Context) error { admin++; return nil },
		WithCondition(func(c *Context) bool { return c.Level >= 10 }))
	cmds.Command([]string{"img"}, func(*Context) error { typed++; return nil },
		WithType(events.ImageMessage))

	if cmds.Trigger(textEvent("!admin"), nil) {
		t.Error("condition should block level 9 author")
	}
	ev := textEvent("!admin")
	ev.Message.Author.Level = 10
	if !cmds.Trigger(ev, nil) || admin != 1 {
		t.Error("condition should allow level 10 author")
	}

	if cmds.Trigger(textEvent("!img"), nil) {
		t.Error("typed command should not fire on text messages")
	}
	if !cmds.TriggerAs(events.ImageMessage, textEvent("!img"), nil) || typed != 1 {
		t.Error("typed command should fire for its event")
	}
}

func TestCommandFailureContained(t *testing.T) {
	cmds := newCommands(false)
	cmds.Command([]string{"boom"}, func(*Context) error { panic("boom") })
	cmds.Command([]string{"err"}, func(*Context) error { return errors.New("fail") })
	if !cmds.Trigger(textEvent("!boom"), nil) {
		t.Error("panicking command still counts as run")
	}
	if !cmds.Trigger(textEvent("!err"), nil) {
		t.Error("failing command still counts as run")
	}
}

func TestReplyFields(t *testing.T) {
	cmds := newCommands(false)
	var got *Context
	cmds.Command([]string{"q"}, func(c *Context) error { got = c; return nil })

	ev := textEvent("!q")
	ev.Message.Extensions.ReplyMessage = &wire.ReplyMessage{
		MessageID:  "r9",
		Content:    "quoted",
		MediaValue: "http://cdn/pic_00.jpg",
	}
	ev.Message.Extensions.MentionedArray = []wire.Mention{{UserID: "u2"}}
	cmds.Trigger(ev, nil)

	if got.ReplyID != "r9" || got.ReplyMsg != "quoted" || got.ReplySrc != "http://cdn/pic_hq.jpg" {
		t.Errorf("reply fields: id=%q msg=%q src=%q", got.ReplyID, got.ReplyMsg, got.ReplySrc)
	}
	if len(got.Mentions) != 1 || got.Mentions[0] != "u2" {
		t.Errorf("mentions: %v", got.Mentions)
	}
	if err := got.Send(context.Background(), "x"); !errors.Is(err, ErrNoCommunity) {
		t.Errorf("Send without community: %v", err)
	}
}

func TestDefaultPrefix(t *testing.T) {
	cmds := New(Config{})
	if cmds.Prefix() != DefaultPrefix {
		t.Errorf("prefix = %q", cmds.Prefix())
	}
	cmds.Command([]string{" A ", ""}, func(*Context) error { return nil })
	if cmds.Len() != 1 {
		t.Errorf("Len = %d, want 1", cmds.Len())
	}
}
