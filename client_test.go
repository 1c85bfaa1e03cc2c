package tmigo

import (
	"net"
	"testing"
	"time"
)

func TestNewClient_NilOptionsGetsDefaults(t *testing.T) {
	c := NewClient(nil)

	if c.state.server != "irc.chat.twitch.tv" {
		t.Errorf("server = %q, want irc.chat.twitch.tv", c.state.server)
	}
	if c.state.port != 6697 || !c.state.secure {
		t.Errorf("port/secure = %d/%v, want 6697/true", c.state.port, c.state.secure)
	}
	if !c.state.opts.Options.RequestTags || !c.state.opts.Options.RequestCommands || !c.state.opts.Options.RequestMembership {
		t.Error("all-zero Options should default RequestTags/Commands/Membership to true")
	}
	if !c.state.opts.Options.JoinExistingChannels {
		t.Error("all-zero Options should default JoinExistingChannels to true")
	}
	if !IsJustinfan(c.state.username) {
		t.Errorf("username = %q, want a justinfan identity when Identity.Username is empty", c.state.username)
	}
}

func TestNewClient_PartialRequestOptionsAreHonored(t *testing.T) {
	c := NewClient(&ClientOptions{
		Options: &Options{RequestTags: true},
	})

	if !c.state.opts.Options.RequestTags {
		t.Error("RequestTags should stay true")
	}
	if c.state.opts.Options.RequestCommands {
		t.Error("RequestCommands should stay false when at least one flag was explicitly set")
	}
	if c.state.opts.Options.RequestMembership {
		t.Error("RequestMembership should stay false when at least one flag was explicitly set")
	}
}

func TestNewClient_ExplicitUsernameIsKept(t *testing.T) {
	c := NewClient(&ClientOptions{
		Identity: &Identity{Username: "dory"},
	})
	if c.state.username != "dory" {
		t.Errorf("username = %q, want dory", c.state.username)
	}
}

func TestConnect_IdempotentWhenAlreadyConnected(t *testing.T) {
	c := NewClient(nil)

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	c.state.conn = client

	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() on an already-connected client returned %v, want nil", err)
	}
	if c.state.conn != client {
		t.Error("Connect() should not replace an existing connection")
	}
}

// TestHandleDisconnect_BackoffOrdering reproduces SPEC_FULL.md §8 scenario 6:
// the delay for a given reconnect attempt is computed from the timer BEFORE
// it grows, so with decay=2 and max=10 starting at 1s the sequence of
// post-call timer values is 2,4,8,16,32,64 (each value divided by decay,
// capped at max, is the delay that attempt used: 1,2,4,8,10,10).
func TestHandleDisconnect_BackoffOrdering(t *testing.T) {
	c := NewClient(nil)
	c.state.reconnect = true
	c.state.wasCloseCalled = false
	c.state.maxReconnectAttempts = 1000
	c.state.reconnectDecay = 2
	c.state.reconnectInterval = 1 * time.Second
	c.state.reconnectTimer = 1 * time.Second
	c.state.maxReconnectInterval = 10 * time.Second

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 32 * time.Second, 64 * time.Second}

	for i, w := range want {
		c.handleDisconnect("test disconnect")
		if c.state.reconnectTimer != w {
			t.Errorf("call %d: reconnectTimer = %v, want %v", i+1, c.state.reconnectTimer, w)
		}
	}
}

func TestHandleDisconnect_SuppressedWhenCloseWasCalled(t *testing.T) {
	c := NewClient(nil)
	c.state.wasCloseCalled = true
	c.state.reconnect = true
	c.state.reconnectTimer = 1 * time.Second

	c.handleDisconnect("explicit close")

	if c.state.reconnectTimer != 1*time.Second {
		t.Error("handleDisconnect should not grow the backoff timer when the disconnect was explicit")
	}
}

func TestHandleDisconnect_StopsAtMaxAttempts(t *testing.T) {
	c := NewClient(nil)
	c.state.reconnect = true
	c.state.maxReconnectAttempts = 0
	c.state.reconnections = 0

	fired := make(chan struct{}, 1)
	c.On("reconnect_failed", func(args ...any) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	c.handleDisconnect("no attempts left")

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected reconnect_failed to be emitted once max attempts is reached")
	}
}

func TestIsMod(t *testing.T) {
	c := NewClient(nil)
	c.state.moderators[Channel("#foo")] = []string{"alice", "bob"}

	if !c.IsMod("#foo", "alice") {
		t.Error("IsMod(#foo, alice) = false, want true")
	}
	if c.IsMod("#foo", "carol") {
		t.Error("IsMod(#foo, carol) = true, want false")
	}
	if c.IsMod("#bar", "alice") {
		t.Error("IsMod(#bar, alice) = true, want false (channel never joined)")
	}
}

func TestReadyState(t *testing.T) {
	c := NewClient(nil)
	if got := c.ReadyState(); got != "CLOSED" {
		t.Errorf("ReadyState() = %q, want CLOSED", got)
	}

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	c.state.conn = client

	if got := c.ReadyState(); got != "OPEN" {
		t.Errorf("ReadyState() = %q, want OPEN", got)
	}
}
