package tmigo

import (
	"testing"
)

func TestHandleNotice_TableDrivenSuccess(t *testing.T) {
	c := NewClient(nil)

	fired := make(chan []any, 1)
	c.On("_promiseMod", func(args ...any) { fired <- args })

	c.handleNotice("#chan", string(MsgIDModSuccess), "You have added alice as a moderator.")

	select {
	case args := <-fired:
		if len(args) != 1 || args[0] != nil {
			t.Errorf("_promiseMod args = %v, want [nil] on success", args)
		}
	default:
		t.Fatal("expected _promiseMod to be emitted synchronously")
	}
}

func TestHandleNotice_TableDrivenFailure(t *testing.T) {
	c := NewClient(nil)

	fired := make(chan []any, 1)
	c.On("_promiseBan", func(args ...any) { fired <- args })

	c.handleNotice("#chan", string(MsgIDAlreadyBanned), "alice is already banned.")

	select {
	case args := <-fired:
		if len(args) != 1 || args[0] != string(MsgIDAlreadyBanned) {
			t.Errorf("_promiseBan args = %v, want [%q]", args, MsgIDAlreadyBanned)
		}
	default:
		t.Fatal("expected _promiseBan to be emitted synchronously")
	}
}

func TestHandleNotice_SilentRuleSuppressesGenericNotice(t *testing.T) {
	c := NewClient(nil)

	noticeFired := false
	c.On("notice", func(args ...any) { noticeFired = true })
	promiseFired := make(chan []any, 1)
	c.On("_promiseSubscribers", func(args ...any) { promiseFired <- args })

	c.handleNotice("#chan", string(MsgIDSubsOn), "This room is now in subscribers-only mode.")

	select {
	case <-promiseFired:
	default:
		t.Fatal("expected _promiseSubscribers to fire even though the rule is silent")
	}
	if noticeFired {
		t.Error("a silent noticeRule should not also emit the generic \"notice\" event")
	}
}

func TestHandleNotice_AuthFailureStopsReconnectAndDisconnects(t *testing.T) {
	c := NewClient(nil)
	c.state.reconnect = true

	var authErr error
	c.On("error", func(args ...any) {
		if err, ok := args[0].(error); ok {
			authErr = err
		}
	})

	c.handleNotice("#chan", "", "Login authentication failed")

	if _, ok := authErr.(*AuthenticationError); !ok {
		t.Errorf("error event arg = %v (%T), want *AuthenticationError", authErr, authErr)
	}
	if c.state.reconnect {
		t.Error("an authentication failure should permanently disable reconnect")
	}
}

func TestHandleNotice_RoomModsParsesList(t *testing.T) {
	c := NewClient(nil)

	fired := make(chan []any, 1)
	c.On("mods", func(args ...any) { fired <- args })

	c.handleNotice("#chan", string(MsgIDRoomMods), "The moderators of this channel are: alice, Bob")

	select {
	case args := <-fired:
		mods, ok := args[1].([]string)
		if !ok || len(mods) != 2 || mods[0] != "alice" || mods[1] != "bob" {
			t.Errorf("mods list = %v, want [alice bob]", args[1])
		}
	default:
		t.Fatal("expected \"mods\" to be emitted")
	}
}

func TestHandleUserNotice_Raid(t *testing.T) {
	c := NewClient(nil)

	fired := make(chan []any, 1)
	c.On("raided", func(args ...any) { fired <- args })

	msg := &IRCMessage{Tags: map[string]any{
		"display-name":          "RaiderName",
		"msg-param-viewerCount": "42",
		"msg-param-displayName": "RaiderName",
	}}

	c.handleUserNotice(msg, "#chan", "RaiderName is raiding with 42 viewers!", "raid")

	select {
	case args := <-fired:
		if args[0] != "#chan" || args[1] != "RaiderName" || args[2] != 42 {
			t.Errorf("raided args = %v, want [#chan RaiderName 42 ...]", args)
		}
	default:
		t.Fatal("expected \"raided\" to be emitted")
	}
}

func TestHandleUserNotice_Resub(t *testing.T) {
	c := NewClient(nil)

	fired := make(chan []any, 1)
	c.On("resub", func(args ...any) { fired <- args })

	msg := &IRCMessage{Tags: map[string]any{
		"display-name":            "Regular",
		"msg-param-streak-months": "7",
	}}

	c.handleUserNotice(msg, "#chan", "Regular subscribed for 7 months in a row!", "resub")

	select {
	case args := <-fired:
		if args[1] != "Regular" || args[2] != 7 {
			t.Errorf("resub args = %v, want [#chan Regular 7 ...]", args)
		}
	default:
		t.Fatal("expected \"resub\" to be emitted")
	}

	if msg.Tags["message-type"] != "resub" {
		t.Error("handleUserNotice should tag message-type with the msg-id")
	}
}

func TestHandleUserNotice_UnknownMsgIDFallsThroughToGenericEvent(t *testing.T) {
	c := NewClient(nil)

	fired := make(chan []any, 1)
	c.On("usernotice", func(args ...any) { fired <- args })

	msg := &IRCMessage{Tags: map[string]any{}}
	c.handleUserNotice(msg, "#chan", "some message", "something_new")

	select {
	case args := <-fired:
		if args[0] != "something_new" || args[1] != "#chan" {
			t.Errorf("usernotice args = %v, want [something_new #chan ...]", args)
		}
	default:
		t.Fatal("expected a fallback \"usernotice\" event for an unrecognized msg-id")
	}
}
