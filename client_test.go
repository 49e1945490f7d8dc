package amino

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/k-amino/amino-go/bot"
	"github.com/k-amino/amino-go/events"
	"github.com/k-amino/amino-go/signer"
	"github.com/k-amino/amino-go/wire"
)

func newTestClient(t *testing.T, srv *apiServer, d Dialer, botMode bool) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Logger = quietLogger()
	cfg.Dialer = d
	cfg.Bot = botMode
	cfg.Socket = testSocketConfig()
	if srv != nil {
		cfg.APIURL = srv.URL
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewDeviceID(t *testing.T) {
	c := newTestClient(t, nil, newFakeDialer(), false)
	if !signer.Verify(c.Credentials().DeviceID()) {
		t.Errorf("derived device id does not verify: %s", c.Credentials().DeviceID())
	}

	old := signer.DeriveDeviceID([]byte("01234567890123456789"))
	cfg := DefaultConfig()
	cfg.DeviceID = old
	c2, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c2.Credentials().DeviceID() != old {
		t.Errorf("valid device id rewritten: %s", c2.Credentials().DeviceID())
	}

	cfg.DeviceID = "not-hex"
	if _, err := New(cfg); !errors.Is(err, ErrValidation) {
		t.Errorf("bad device id: got %v", err)
	}
}

func TestLoginLaunchesInBotMode(t *testing.T) {
	srv := newAPIServer(t, func(r *http.Request, _ []byte) (int, string) {
		return 200, `{"api:statuscode":0,"auid":"u1","sid":"s1","secret":"x"}`
	})
	d := newFakeDialer()
	c := newTestClient(t, srv, d, true)

	if _, err := c.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.Credentials().Auth() != "sid=s1" || c.Credentials().UserID() != "u1" {
		t.Errorf("credentials: %q %q", c.Credentials().Auth(), c.Credentials().UserID())
	}
	if c.Socket().State() != StateOpen || d.count() != 1 {
		t.Errorf("socket %s after %d dials", c.Socket().State(), d.count())
	}
}

func TestLoginWithoutBotModeStaysOffline(t *testing.T) {
	srv := newAPIServer(t, func(*http.Request, []byte) (int, string) {
		return 200, `{"auid":"u1","sid":"s1"}`
	})
	d := newFakeDialer()
	c := newTestClient(t, srv, d, false)
	if _, err := c.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if d.count() != 0 {
		t.Errorf("dialed %d times", d.count())
	}
}

func TestLoginFailureKeepsLoggedOut(t *testing.T) {
	srv := newAPIServer(t, func(*http.Request, []byte) (int, string) {
		return 400, `{"api:statuscode":200,"api:message":"Invalid account or password"}`
	})
	c := newTestClient(t, srv, newFakeDialer(), true)
	_, err := c.Login(context.Background(), "a@b.c", "bad")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if c.Credentials().Authenticated() {
		t.Error("failed login left a session")
	}
}

func TestLoginSID(t *testing.T) {
	c := newTestClient(t, nil, newFakeDialer(), false)
	sid := makeSID(t, `{"2":"user-7"}`)
	info, err := c.LoginSID(context.Background(), "sid="+sid)
	if err != nil {
		t.Fatalf("login sid: %v", err)
	}
	if info.UserID != "user-7" || c.Credentials().UserID() != "user-7" {
		t.Errorf("uid: %q / %q", info.UserID, c.Credentials().UserID())
	}
	if c.Credentials().SessionID() != sid {
		t.Errorf("sid stored with prefix: %q", c.Credentials().SessionID())
	}
}

func TestLoginSIDFallsBackToAccount(t *testing.T) {
	srv := newAPIServer(t, func(*http.Request, []byte) (int, string) {
		return 200, `{"account":{"uid":"from-account"}}`
	})
	c := newTestClient(t, srv, newFakeDialer(), false)
	info, err := c.LoginSID(context.Background(), "opaque")
	if err != nil {
		t.Fatalf("login sid: %v", err)
	}
	if info.UserID != "from-account" {
		t.Errorf("uid: %q", info.UserID)
	}
	if got := srv.last(t).header.Get("NDCAUTH"); got != "sid=opaque" {
		t.Errorf("account fetched with NDCAUTH %q", got)
	}
}

func TestLogout(t *testing.T) {
	srv := newAPIServer(t, func(*http.Request, []byte) (int, string) { return 200, `{"api:statuscode":0}` })
	d := newFakeDialer()
	c := newTestClient(t, srv, d, true)
	if _, err := c.LoginSID(context.Background(), makeSID(t, `{"2":"u"}`)); err != nil {
		t.Fatalf("login: %v", err)
	}
	conn := d.conn(t)

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if srv.last(t).path != "/g/s/auth/logout" {
		t.Errorf("logout path: %s", srv.last(t).path)
	}
	if c.Credentials().Authenticated() {
		t.Error("session kept after logout")
	}
	if c.Socket().State() != StateClosed || !conn.isClosed() {
		t.Error("socket left open after logout")
	}
}

func TestClientDispatchesEvents(t *testing.T) {
	d := newFakeDialer()
	c := newTestClient(t, nil, d, false)

	got := make(chan string, 1)
	events.Subscribe(c.Events(), events.TextMessage, func(ev *wire.Event) error {
		got <- ev.Message.Content
		return nil
	})
	c.creds.set("abc", "u", "")
	if err := c.Launch(context.Background()); err != nil {
		t.Fatalf("launch: %v", err)
	}
	conn := d.conn(t)
	conn.in <- []byte(`{"t":1000,"o":{"ndcId":1,"chatMessage":{"type":0,"mediaType":0,"content":"hi","messageId":"m1"}}}`)

	select {
	case content := <-got:
		if content != "hi" {
			t.Errorf("content: %q", content)
		}
	case <-timeout():
		t.Fatal("event not dispatched")
	}
}

func TestBotModeRunsCommands(t *testing.T) {
	srv := newAPIServer(t, func(*http.Request, []byte) (int, string) { return 200, `{"message":{}}` })
	d := newFakeDialer()
	c := newTestClient(t, srv, d, true)

	var mu sync.Mutex
	var args []string
	done := make(chan struct{})
	c.Command([]string{"echo"}, func(ctx *bot.Context) error {
		mu.Lock()
		args = ctx.Args
		mu.Unlock()
		defer close(done)
		return ctx.Reply(context.Background(), "ok")
	})

	c.creds.set("abc", "me", "")
	if err := c.Launch(context.Background()); err != nil {
		t.Fatalf("launch: %v", err)
	}
	conn := d.conn(t)
	conn.in <- []byte(`{"t":1000,"o":{"ndcId":77,"chatMessage":{"type":0,"mediaType":0,"content":"!echo a b","messageId":"m5","threadId":"c3","uid":"other"}}}`)

	select {
	case <-done:
	case <-timeout():
		t.Fatal("command not run")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(args) != 2 || args[0] != "a" || args[1] != "b" {
		t.Errorf("args: %v", args)
	}
	r := srv.last(t)
	if r.path != "/x77/s/chat/thread/c3/message" {
		t.Errorf("reply path: %s", r.path)
	}
}

func TestCommunityCached(t *testing.T) {
	c := newTestClient(t, nil, newFakeDialer(), false)
	if c.Community(3) != c.Community(3) {
		t.Error("community client not cached")
	}
	if c.Community(3).ID() != 3 {
		t.Error("wrong community id")
	}
}

func timeout() <-chan time.Time { return time.After(2 * time.Second) }

func TestLoginSecret(t *testing.T) {
	srv := newAPIServer(t, func(*http.Request, []byte) (int, string) {
		return 200, `{"api:statuscode":0,"auid":"u1","sid":"s1","secret":"issued"}`
	})
	d := newFakeDialer()
	c := newTestClient(t, srv, d, true)
	ctx := context.Background()

	if _, err := c.LoginSecret(ctx, ""); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("empty secret without a stored one: %v", err)
	}

	if _, err := c.Login(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.Credentials().Secret() != "issued" {
		t.Errorf("secret kept: %q", c.Credentials().Secret())
	}

	if _, err := c.LoginSecret(ctx, ""); err != nil {
		t.Fatalf("login with stored secret: %v", err)
	}
	var body map[string]any
	json.Unmarshal(srv.last(t).body, &body)
	if body["email"] != "" || body["secret"] != "issued" {
		t.Errorf("stored secret body: %v", body)
	}

	if _, err := c.LoginSecret(ctx, "given"); err != nil {
		t.Fatalf("login with secret: %v", err)
	}
	json.Unmarshal(srv.last(t).body, &body)
	if body["secret"] != "given" {
		t.Errorf("given secret body: %v", body)
	}
	if c.Credentials().Secret() != "given" || c.Credentials().Auth() != "sid=s1" {
		t.Errorf("credentials: secret %q auth %q", c.Credentials().Secret(), c.Credentials().Auth())
	}
	if c.Socket().State() != StateOpen || d.count() != 1 {
		t.Errorf("socket %s after %d dials", c.Socket().State(), d.count())
	}
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	c := newTestClient(t, nil, newFakeDialer(), false)
	if _, err := c.Login(context.Background(), "a@b.c", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBotCommandQueriesPresence(t *testing.T) {
	d := newFakeDialer()
	c := newTestClient(t, nil, d, true)

	result := make(chan error, 1)
	c.Command([]string{"online"}, func(ctx *bot.Context) error {
		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		ua, err := c.Socket().GetUsersActions(rctx, ctx.Event.ComID, TopicOnlineMembers, "")
		if err == nil && ua.UserProfileCount != 3 {
			err = fmt.Errorf("profile count %d", ua.UserProfileCount)
		}
		result <- err
		return nil
	})

	c.creds.set("abc", "me", "")
	if err := c.Launch(context.Background()); err != nil {
		t.Fatalf("launch: %v", err)
	}
	conn := d.conn(t)
	conn.in <- []byte(`{"t":1000,"o":{"ndcId":12,"chatMessage":{"type":0,"mediaType":0,"content":"!online","messageId":"m8","threadId":"c1","uid":"other"}}}`)

	f := conn.next(t)
	id, _ := f.String("id")
	conn.in <- []byte(`{"t":400,"o":{"topic":"ndtopic:x12:online-members","ndcId":12,"userProfileCount":3,"id":"` + id + `"}}`)

	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("presence query from command: %v", err)
		}
	case <-timeout():
		t.Fatal("command never finished")
	}
}
