package tmigo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Say sends a message to a channel. A ".me ", "/me " or "\me " prefix sends
// the rest as an action; other slash, dot and backslash commands are queued
// on the command queue without awaiting any acknowledgement; everything else
// goes to the chat path.
func (c *Client) Say(channel, message string, tags ...map[string]string) error {
	channel = Channel(channel)

	if (strings.HasPrefix(message, ".") && !strings.HasPrefix(message, "..")) || strings.HasPrefix(message, "/") || strings.HasPrefix(message, "\\") {
		if strings.HasPrefix(message, ".me ") || strings.HasPrefix(message, "/me ") || strings.HasPrefix(message, "\\me ") {
			return c.Action(channel, message[4:], tags...)
		}
		if !c.isConnected() {
			return ErrNotConnected
		}
		if IsJustinfan(c.GetUsername()) {
			return ErrAnonymousMessage
		}
		c.enqueueCommand(c.state.commandQueue, channel, message, tags...)
		return nil
	}

	return c.sendChatMessage(channel, message, "chat", tags...)
}

// Action sends a /me action message to a channel.
func (c *Client) Action(channel, message string, tags ...map[string]string) error {
	return c.sendChatMessage(channel, message, "action", tags...)
}

// Join joins a channel.
func (c *Client) Join(channel string) error {
	channel = Channel(channel)
	return c.sendCommandWithResponse(c.state.joinQueue, "", fmt.Sprintf("JOIN %s", channel), "_promiseJoin", c.getPromiseDelay())
}

// JoinMultiple joins one or more channels with a single JOIN frame.
func (c *Client) JoinMultiple(channels []string) error {
	if len(channels) == 0 {
		return nil
	}
	channels = ChannelAll(channels)
	return c.sendCommandWithResponse(c.state.joinQueue, "", fmt.Sprintf("JOIN %s", strings.Join(channels, ",")), "_promiseJoin", c.getPromiseDelay())
}

// Part leaves a channel.
func (c *Client) Part(channel string) error {
	channel = Channel(channel)
	return c.sendCommandWithResponse(c.state.joinQueue, "", fmt.Sprintf("PART %s", channel), "_promisePart", c.getPromiseDelay())
}

// Ban bans a user from a channel.
func (c *Client) Ban(channel, username, reason string) error {
	username = Username(username)
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/ban %s %s", username, reason), "_promiseBan", c.getPromiseDelay())
}

// Timeout times out a user in a channel.
func (c *Client) Timeout(channel, username string, seconds int, reason string) error {
	username = Username(username)
	if seconds == 0 {
		seconds = 300
	}
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/timeout %s %d %s", username, seconds, reason), "_promiseTimeout", c.getPromiseDelay())
}

// Unban unbans a user from a channel.
func (c *Client) Unban(channel, username string) error {
	username = Username(username)
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/unban %s", username), "_promiseUnban", c.getPromiseDelay())
}

// Clear clears chat in a channel.
func (c *Client) Clear(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/clear", "_promiseClear", c.getPromiseDelay())
}

// Color changes the client's username color.
func (c *Client) Color(newColor string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, c.state.globalDefaultChannel, fmt.Sprintf("/color %s", newColor), "_promiseColor", c.getPromiseDelay())
}

// Commercial runs a commercial on a channel.
func (c *Client) Commercial(channel string, seconds int) error {
	if seconds == 0 {
		seconds = 30
	}
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/commercial %d", seconds), "_promiseCommercial", c.getPromiseDelay())
}

// DeleteMessage deletes a specific message by its UUID.
func (c *Client) DeleteMessage(channel, messageUUID string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/delete %s", messageUUID), "_promiseDeletemessage", c.getPromiseDelay())
}

// EmoteOnly enables emote-only mode in a channel.
func (c *Client) EmoteOnly(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/emoteonly", "_promiseEmoteonly", c.getPromiseDelay())
}

// EmoteOnlyOff disables emote-only mode in a channel.
func (c *Client) EmoteOnlyOff(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/emoteonlyoff", "_promiseEmoteonlyoff", c.getPromiseDelay())
}

// FollowersOnly enables followers-only mode in a channel.
func (c *Client) FollowersOnly(channel string, minutes int) error {
	if minutes == 0 {
		minutes = 30
	}
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/followers %d", minutes), "_promiseFollowers", c.getPromiseDelay())
}

// FollowersOnlyOff disables followers-only mode in a channel.
func (c *Client) FollowersOnlyOff(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/followersoff", "_promiseFollowersoff", c.getPromiseDelay())
}

// Host hosts another channel.
func (c *Client) Host(channel, target string) error {
	target = Username(target)
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/host %s", target), "_promiseHost", 2*time.Second)
}

// Unhost stops hosting.
func (c *Client) Unhost(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/unhost", "_promiseUnhost", 2*time.Second)
}

// Mod gives mod status to a user.
func (c *Client) Mod(channel, username string) error {
	username = Username(username)
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/mod %s", username), "_promiseMod", c.getPromiseDelay())
}

// Unmod removes mod status from a user.
func (c *Client) Unmod(channel, username string) error {
	username = Username(username)
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/unmod %s", username), "_promiseUnmod", c.getPromiseDelay())
}

// Mods requests the list of moderators in a channel; the result arrives via
// the "mods" event.
func (c *Client) Mods(channel string) error {
	channel = Channel(channel)
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/mods", "_promiseMods", c.getPromiseDelay())
}

// VIP gives VIP status to a user.
func (c *Client) VIP(channel, username string) error {
	username = Username(username)
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/vip %s", username), "_promiseVip", c.getPromiseDelay())
}

// Unvip removes VIP status from a user.
func (c *Client) Unvip(channel, username string) error {
	username = Username(username)
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/unvip %s", username), "_promiseUnvip", c.getPromiseDelay())
}

// VIPs requests the list of VIPs in a channel; the result arrives via the
// "vips" event.
func (c *Client) VIPs(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/vips", "_promiseVips", c.getPromiseDelay())
}

// R9KBeta enables R9K (unique-chat) mode in a channel.
func (c *Client) R9KBeta(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/r9kbeta", "_promiseR9kbeta", c.getPromiseDelay())
}

// R9KBetaOff disables R9K mode in a channel.
func (c *Client) R9KBetaOff(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/r9kbetaoff", "_promiseR9kbetaoff", c.getPromiseDelay())
}

// Slow enables slow mode in a channel.
func (c *Client) Slow(channel string, seconds int) error {
	if seconds == 0 {
		seconds = 300
	}
	return c.sendCommandWithResponse(c.state.commandQueue, channel, fmt.Sprintf("/slow %d", seconds), "_promiseSlow", c.getPromiseDelay())
}

// SlowOff disables slow mode in a channel.
func (c *Client) SlowOff(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/slowoff", "_promiseSlowoff", c.getPromiseDelay())
}

// Subscribers enables subscribers-only mode in a channel.
func (c *Client) Subscribers(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/subscribers", "_promiseSubscribers", c.getPromiseDelay())
}

// SubscribersOff disables subscribers-only mode in a channel.
func (c *Client) SubscribersOff(channel string) error {
	return c.sendCommandWithResponse(c.state.commandQueue, channel, "/subscribersoff", "_promiseSubscribersoff", c.getPromiseDelay())
}

// Whisper sends a whisper to a user and synthesizes a local self-echo from
// the client's own global user state, since Twitch never reflects a sent
// whisper back over the wire (SPEC_FULL.md §4.H).
//
// Twitch only ever NOTICEs a whisper send on failure; a successful whisper is
// silent. So this is fire-and-forget: it queues the command, watches
// "_promiseWhisper" for a failure msg-id within the ack window, and surfaces
// a late failure via the "error" event rather than blocking the caller.
func (c *Client) Whisper(username, message string) error {
	username = Username(username)

	if username == c.GetUsername() {
		return ErrWhisperSelf
	}
	if !c.isConnected() {
		return ErrNotConnected
	}
	if IsJustinfan(c.GetUsername()) {
		return ErrAnonymousMessage
	}

	var handler EventHandler
	handler = func(args ...any) {
		c.Off("_promiseWhisper", handler)
		if len(args) > 0 && args[0] != nil {
			if msgid, ok := args[0].(string); ok {
				c.Emit("error", &CommandFailedError{Command: "whisper", Reason: msgid})
			}
		}
	}
	c.On("_promiseWhisper", handler)
	time.AfterFunc(c.getPromiseDelay(), func() { c.Off("_promiseWhisper", handler) })

	c.enqueueCommand(c.state.commandQueue, "", fmt.Sprintf("/w %s %s", username, message))

	selfTags := map[string]any{
		"username":     c.GetUsername(),
		"message-type": "whisper",
		"display-name": c.state.globalUserState.DisplayName,
		"color":        c.state.globalUserState.Color,
	}
	c.Emits([]string{"whisper", "message"}, [][]any{{username, selfTags, message, true}})

	return nil
}

// Ping sends an immediate heartbeat PING and awaits the matching PONG,
// independent of the periodic heartbeat the connection engine runs on its
// own schedule.
func (c *Client) Ping() error {
	if !c.isConnected() {
		return ErrNotConnected
	}

	ch := make(chan []any, 1)
	var handler EventHandler
	handler = func(args ...any) {
		select {
		case ch <- args:
		default:
		}
	}
	c.Once("_promisePing", handler)

	c.state.latency = time.Now()
	if err := c.writeRaw("PING :tmi.twitch.tv"); err != nil {
		c.Off("_promisePing", handler)
		return err
	}

	select {
	case <-ch:
		return nil
	case <-time.After(c.state.opts.Connection.Timeout):
		c.Off("_promisePing", handler)
		return &CommandTimedOutError{Event: "_promisePing"}
	}
}

// Raw sends a raw IRC command, bypassing the PRIVMSG-as-command framing.
// Fire-and-forget: the command is handed to the command queue and this
// returns as soon as it is accepted.
func (c *Client) Raw(command string, tags ...map[string]string) error {
	if !c.isConnected() {
		return ErrNotConnected
	}
	c.enqueueCommand(c.state.commandQueue, "", command, tags...)
	return nil
}

// Announce posts a highlighted announcement message in a channel.
// Fire-and-forget: Twitch has no NOTICE acknowledgement for /announce.
func (c *Client) Announce(channel, message string) error {
	if !c.isConnected() {
		return ErrNotConnected
	}
	c.enqueueCommand(c.state.commandQueue, channel, fmt.Sprintf("/announce %s", message))
	return nil
}

// Reply sends a message as a threaded reply to another message.
func (c *Client) Reply(channel, message, replyParentMsgID string, tags ...map[string]string) error {
	var tagMap map[string]string
	if len(tags) > 0 && tags[0] != nil {
		tagMap = tags[0]
	} else {
		tagMap = make(map[string]string)
	}

	if replyParentMsgID == "" {
		return fmt.Errorf("tmigo: replyParentMsgId is required")
	}

	tagMap["reply-parent-msg-id"] = replyParentMsgID
	return c.Say(channel, message, tagMap)
}

// sendChatMessage paginates message into wire-sized chunks, queues each chunk
// onto the message queue at the configured rate, and emits a self-view chat
// event for each chunk once it is actually written (SPEC_FULL.md §4.E, §4.H).
func (c *Client) sendChatMessage(channel, message, msgType string, tags ...map[string]string) error {
	if !c.isConnected() {
		return ErrNotConnected
	}
	if IsJustinfan(c.GetUsername()) {
		return ErrAnonymousMessage
	}

	channel = Channel(channel)

	tagMap := make(map[string]string)
	if len(tags) > 0 && tags[0] != nil {
		for k, v := range tags[0] {
			tagMap[k] = v
		}
	}
	if _, ok := tagMap["client-nonce"]; !ok {
		tagMap["client-nonce"] = uuid.NewString()
	}

	tagStr := FormTags(tagMap)
	if tagStr != "" {
		tagStr += " "
	}

	events := []string{"chat", "message"}
	if msgType == "action" {
		events = []string{"action", "message"}
	}

	for _, chunk := range PaginateMessage(message, 500) {
		chunk := chunk
		wire := chunk
		if msgType == "action" {
			wire = fmt.Sprintf("\x01ACTION %s\x01", chunk)
		}

		c.state.messageQueue.Add(func() {
			line := fmt.Sprintf("%sPRIVMSG %s :%s", tagStr, channel, wire)
			if err := c.writeRaw(line); err != nil {
				c.state.log.Error(fmt.Sprintf("Error sending message: %v", err))
				return
			}

			selfTags := map[string]any{
				"username":     c.GetUsername(),
				"message-type": msgType,
			}
			for k, v := range tagMap {
				selfTags[k] = v
			}
			c.Emits(events, [][]any{{channel, selfTags, chunk, true}})
		})
	}

	return nil
}

// enqueueCommand formats and queues a command frame, logging any write error
// since the call site has already returned by the time it executes.
func (c *Client) enqueueCommand(queue *Queue, channel, command string, tags ...map[string]string) {
	var tagMap map[string]string
	if len(tags) > 0 {
		tagMap = tags[0]
	}

	tagStr := ""
	if len(tagMap) > 0 {
		tagStr = FormTags(tagMap)
		if tagStr != "" {
			tagStr += " "
		}
	}

	queue.Add(func() {
		var line string
		if channel != "" {
			c.state.log.Info(fmt.Sprintf("[%s] Executing command: %s", channel, command))
			line = fmt.Sprintf("%sPRIVMSG %s :%s", tagStr, channel, command)
		} else {
			c.state.log.Info(fmt.Sprintf("Executing command: %s", command))
			line = fmt.Sprintf("%s%s", tagStr, command)
		}
		if err := c.writeRaw(line); err != nil {
			c.state.log.Error(fmt.Sprintf("Error sending command: %v", err))
		}
	})
}

// sendCommandWithResponse queues a command onto the given queue and awaits a
// single emission of responseEvent. The listener is registered before the
// command is queued so a fast server reply can never race ahead of it. A nil
// first argument on the event means success; a non-nil string argument is
// the failing msg-id, translated into CommandFailedError.
func (c *Client) sendCommandWithResponse(queue *Queue, channel, command, responseEvent string, timeout time.Duration, tags ...map[string]string) error {
	if !c.isConnected() {
		return ErrNotConnected
	}

	// Registered with On and removed by Off rather than Once, since Off
	// cannot match the wrapper closure Once registers.
	ch := make(chan []any, 1)
	var handler EventHandler
	handler = func(args ...any) {
		c.Off(responseEvent, handler)
		select {
		case ch <- args:
		default:
		}
	}
	c.On(responseEvent, handler)

	c.enqueueCommand(queue, channel, command, tags...)

	select {
	case args := <-ch:
		if len(args) == 0 || args[0] == nil {
			return nil
		}
		if msgid, ok := args[0].(string); ok {
			return &CommandFailedError{Command: command, Reason: msgid}
		}
		return nil
	case <-time.After(timeout):
		c.Off(responseEvent, handler)
		return &CommandTimedOutError{Event: responseEvent}
	}
}

// getPromiseDelay derives a command acknowledgement timeout from the last
// observed round-trip latency, matching client_base.py's adaptive delay.
func (c *Client) getPromiseDelay() time.Duration {
	minDelay := 600 * time.Millisecond
	latencyDelay := c.state.currentLatency + 100*time.Millisecond
	return max(latencyDelay, minDelay)
}

// Aliases matching tmi.js's command naming.

func (c *Client) FollowersMode(channel string, minutes int) error {
	return c.FollowersOnly(channel, minutes)
}

func (c *Client) FollowersModeOff(channel string) error {
	return c.FollowersOnlyOff(channel)
}

func (c *Client) Leave(channel string) error {
	return c.Part(channel)
}

func (c *Client) SlowMode(channel string, seconds int) error {
	return c.Slow(channel, seconds)
}

func (c *Client) SlowModeOff(channel string) error {
	return c.SlowOff(channel)
}

func (c *Client) R9KMode(channel string) error {
	return c.R9KBeta(channel)
}

func (c *Client) R9KModeOff(channel string) error {
	return c.R9KBetaOff(channel)
}

func (c *Client) UniqueChat(channel string) error {
	return c.R9KBeta(channel)
}

func (c *Client) UniqueChatOff(channel string) error {
	return c.R9KBetaOff(channel)
}
