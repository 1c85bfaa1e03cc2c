package tmigo

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// handleMessage processes a parsed IRC message: post-processes its tags and
// dispatches by prefix (SPEC_FULL.md §4.C, §4.G).
func (c *Client) handleMessage(message *IRCMessage) {
	if message == nil {
		return
	}

	if c.ListenerCount("raw_message") > 0 {
		c.Emit("raw_message", message)
	}

	channel := ""
	if len(message.Params) > 0 {
		channel = Channel(message.Params[0])
	}

	msg := ""
	if len(message.Params) > 1 {
		msg = message.Params[1]
	}

	msgid := ""
	if val, ok := message.Tags["msg-id"].(string); ok {
		msgid = val
	}

	message.Tags = ParseEmotes(ParseBadgeInfo(ParseBadges(message.Tags)))

	for key, value := range message.Tags {
		if key == "emote-sets" || key == "ban-duration" || key == "bits" {
			continue
		}

		switch v := value.(type) {
		case bool:
			if v {
				message.Tags[key] = nil
			}
		case string:
			switch v {
			case "1":
				message.Tags[key] = true
			case "0":
				message.Tags[key] = false
			default:
				message.Tags[key] = UnescapeIRC(v)
			}
		}
	}

	switch message.Prefix {
	case "":
		c.handleNoPrefixMessage(message)
	case "tmi.twitch.tv":
		c.handleTwitchMessage(message, channel, msg, msgid)
	case "jtv":
		c.handleJTVMessage(message, channel, msg)
	default:
		c.handleUserMessage(message, channel, msg)
	}
}

// handleNoPrefixMessage handles the PING/PONG fast path.
func (c *Client) handleNoPrefixMessage(message *IRCMessage) {
	switch message.Command {
	case "PING":
		_ = c.writeRaw("PONG :tmi.twitch.tv")
		c.Emit("pong")

	case "PONG":
		c.state.currentLatency = time.Since(c.state.latency)
		if c.state.pingTimeout != nil {
			c.state.pingTimeout.Stop()
		}
		c.Emits([]string{"pong", "_promisePing"}, [][]any{
			{c.state.currentLatency.Seconds()},
		})
	}
}

// handleTwitchMessage handles messages prefixed with tmi.twitch.tv.
func (c *Client) handleTwitchMessage(message *IRCMessage, channel, msg, msgid string) {
	switch message.Command {
	case "001":
		if len(message.Params) > 0 {
			c.state.username = message.Params[0]
		}

		c.state.log.Info("Connected to server.")
		c.state.userState[c.state.globalDefaultChannel] = UserState{}
		c.Emits([]string{"connected", "_promiseConnect"}, [][]any{
			{c.state.server, c.state.port},
			{nil},
		})
		c.state.reconnections = 0
		c.state.reconnectTimer = c.state.reconnectInterval

	case "376", "375", "372", "002", "003", "004":
		// Absorbed silently: 001 alone is the connected signal
		// (SPEC_FULL.md §4.G; client_base.py:440-441).

	case "NOTICE":
		c.handleNotice(channel, msgid, msg)

	case "USERNOTICE":
		c.handleUserNotice(message, channel, msg, msgid)

	case "HOSTTARGET":
		c.handleHostTarget(channel, msg)

	case "CLEARCHAT":
		c.handleClearChat(message, channel, msg)

	case "CLEARMSG":
		if len(message.Params) > 1 {
			deleted := convertToDeleteUserstate(message.Tags)
			message.Tags["message-type"] = "messagedeleted"
			c.state.log.Info(fmt.Sprintf("[%s] %s's message has been deleted.", channel, deleted.Login))
			c.Emit("messagedeleted", channel, deleted.Login, msg, message.Tags)
		}

	case "RECONNECT":
		c.state.log.Info("Received RECONNECT request from Twitch..")
		c.handleDisconnect("Server requested reconnect")

	case "USERSTATE":
		c.handleUserState(message, channel)

	case "GLOBALUSERSTATE":
		c.state.globalUserState = convertToGlobalUserState(message.Tags)
		c.Emit("globaluserstate", message.Tags)

		if emoteSets, ok := message.Tags["emote-sets"].(string); ok && emoteSets != c.state.emotes {
			c.state.emotes = emoteSets
			c.Emit("emotesets", c.state.emotes, nil)
		}

	case "ROOMSTATE":
		if c.state.lastJoined != "" && Channel(c.state.lastJoined) == channel {
			c.Emit("_promiseJoin", nil, channel)
		}

		message.Tags["channel"] = channel
		c.Emit("roomstate", channel, message.Tags)

		c.handleRoomState(message, channel)

	case "421":
		c.state.log.Warn(fmt.Sprintf("Unknown command: %s", msg))
	}
}

func (c *Client) handleUserState(message *IRCMessage, channel string) {
	message.Tags["username"] = c.state.username

	if userType, ok := message.Tags["user-type"].(string); ok && userType == "mod" {
		if c.state.moderators[channel] == nil {
			c.state.moderators[channel] = []string{}
		}
		if !slices.Contains(c.state.moderators[channel], c.state.username) {
			c.state.moderators[channel] = append(c.state.moderators[channel], c.state.username)
		}
	}

	if _, exists := c.state.userState[channel]; !exists && !IsJustinfan(c.GetUsername()) {
		userstate := convertToUserState(message.Tags)
		c.state.userState[channel] = userstate
		c.state.lastJoined = channel
		c.state.channels = append(c.state.channels, channel)
		if !slices.Contains(c.state.opts.Channels, channel) {
			c.state.opts.Channels = append(c.state.opts.Channels, channel)
		}
		c.state.log.Info(fmt.Sprintf("Joined %s", channel))
		c.Emit("join", channel, Username(c.GetUsername()), true)
	}

	if emoteSets, ok := message.Tags["emote-sets"].(string); ok && emoteSets != c.state.emotes {
		c.state.emotes = emoteSets
		c.Emit("emotesets", c.state.emotes, nil)
	}

	c.state.userState[channel] = convertToUserState(message.Tags)
	c.Emit("userstate", channel, message.Tags)
}

func convertToUserState(tags map[string]any) UserState {
	userstate := UserState{}

	if val, ok := tags["color"].(string); ok {
		userstate.Color = val
	}
	if val, ok := tags["display-name"].(string); ok {
		userstate.DisplayName = val
	}
	if val, ok := tags["mod"].(bool); ok {
		userstate.Mod = val
	}
	if val, ok := tags["subscriber"].(bool); ok {
		userstate.Subscriber = val
	}
	if val, ok := tags["username"].(string); ok {
		userstate.Username = val
	}

	return userstate
}

func convertToGlobalUserState(tags map[string]any) GlobalUserState {
	globalUserState := GlobalUserState{}

	if val, ok := tags["color"].(string); ok {
		globalUserState.Color = val
	}
	if val, ok := tags["display-name"].(string); ok {
		globalUserState.DisplayName = val
	}
	if val, ok := tags["emote-sets"].(string); ok {
		globalUserState.EmoteSets = val
	}
	if val, ok := tags["user-id"].(string); ok {
		globalUserState.UserID = val
	}

	return globalUserState
}

// handleJTVMessage handles messages prefixed with jtv (legacy MODE notices).
func (c *Client) handleJTVMessage(message *IRCMessage, channel, msg string) {
	if message.Command != "MODE" || len(message.Params) < 3 {
		return
	}

	username := message.Params[2]

	switch msg {
	case "+o":
		if c.state.moderators[channel] == nil {
			c.state.moderators[channel] = []string{}
		}
		if !slices.Contains(c.state.moderators[channel], username) {
			c.state.moderators[channel] = append(c.state.moderators[channel], username)
		}
		c.Emit("mod", channel, username)

	case "-o":
		if c.state.moderators[channel] != nil {
			newMods := make([]string, 0, len(c.state.moderators[channel]))
			for _, mod := range c.state.moderators[channel] {
				if mod != username {
					newMods = append(newMods, mod)
				}
			}
			c.state.moderators[channel] = newMods
		}
		c.Emit("unmod", channel, username)
	}
}

var hostingBodyRegex = regexp.MustCompile(`(?i)hosting you(?: for)?`)

// handleUserMessage handles messages from a real user prefix.
func (c *Client) handleUserMessage(message *IRCMessage, channel, msg string) {
	switch message.Command {
	case "JOIN":
		nick, _, _ := strings.Cut(message.Prefix, "!")
		matchesUsername := c.state.username == nick
		isSelfAnon := matchesUsername && IsJustinfan(c.GetUsername())

		if isSelfAnon {
			c.state.lastJoined = channel
			c.state.channels = append(c.state.channels, channel)
			c.state.log.Info(fmt.Sprintf("Joined %s", channel))
			c.Emit("join", channel, nick, true)
		} else if !matchesUsername {
			c.Emit("join", channel, nick, false)
		}

	case "PART":
		nick, _, _ := strings.Cut(message.Prefix, "!")
		isSelf := c.state.username == nick

		if isSelf {
			delete(c.state.userState, channel)

			newChannels := make([]string, 0, len(c.state.channels))
			for _, ch := range c.state.channels {
				if ch != channel {
					newChannels = append(newChannels, ch)
				}
			}
			c.state.channels = newChannels

			newOptsChannels := make([]string, 0, len(c.state.opts.Channels))
			for _, ch := range c.state.opts.Channels {
				if ch != channel {
					newOptsChannels = append(newOptsChannels, ch)
				}
			}
			c.state.opts.Channels = newOptsChannels

			c.state.log.Info(fmt.Sprintf("Left %s", channel))
			c.Emit("_promisePart", nil)
		}

		c.Emit("part", channel, nick, isSelf)

	case "WHISPER":
		nick, _, _ := strings.Cut(message.Prefix, "!")
		c.state.log.Info(fmt.Sprintf("[WHISPER] <%s>: %s", nick, msg))

		message.Tags["username"] = nick
		message.Tags["message-type"] = "whisper"

		c.Emits([]string{"whisper", "message"}, [][]any{
			{nick, message.Tags, msg, false},
		})

	case "PRIVMSG":
		c.handlePrivmsg(message, channel, msg)

	case "353":
		if len(message.Params) >= 4 {
			channel := Channel(message.Params[2])
			for _, name := range strings.Fields(message.Params[3]) {
				isMod := strings.HasPrefix(name, "@")
				clean := Username(strings.TrimPrefix(name, "@"))
				c.state.namesUsers[channel] = append(c.state.namesUsers[channel], clean)
				if isMod && !slices.Contains(c.state.namesMods[channel], clean) {
					c.state.namesMods[channel] = append(c.state.namesMods[channel], clean)
				}
			}
		}

	case "366":
		if len(message.Params) >= 2 {
			channel := Channel(message.Params[1])
			users := c.state.namesUsers[channel]
			mods := c.state.namesMods[channel]
			delete(c.state.namesUsers, channel)
			delete(c.state.namesMods, channel)

			if len(mods) > 0 {
				c.state.moderators[channel] = mods
			}

			c.Emit("_names", channel, users)
			c.Emit("names", channel)
		}
	}
}

func (c *Client) handlePrivmsg(message *IRCMessage, channel, msg string) {
	nick, _, _ := strings.Cut(message.Prefix, "!")
	message.Tags["username"] = nick

	if nick == "jtv" && hostingBodyRegex.MatchString(msg) {
		fields := strings.Fields(msg)
		hostName := ""
		viewers := 0
		for i, f := range fields {
			if i == 0 {
				hostName = f
			}
			if n, err := strconv.Atoi(f); err == nil {
				viewers = n
				break
			}
		}
		auto := strings.Contains(strings.ToLower(msg), "auto")
		c.Emit("hosted", channel, hostName, viewers, auto)
		return
	}

	isAction, actionMsg := IsActionMessage(msg)
	if isAction {
		message.Tags["message-type"] = "action"
		c.state.log.Info(fmt.Sprintf("[%s] *<%s>: %s", channel, message.Tags["username"], actionMsg))
		c.Emits([]string{"action", "message"}, [][]any{
			{channel, message.Tags, actionMsg, false},
		})
		return
	}

	message.Tags["message-type"] = "chat"
	chatter := convertToChatUserstate(message.Tags)

	if chatter.Bits != "" {
		c.Emit("cheer", channel, message.Tags, msg)
	} else {
		rewardID := ""
		if msgID, ok := message.Tags["msg-id"].(string); ok && (msgID == "highlighted-message" || msgID == "skip-subs-mode-message") {
			rewardID = msgID
		} else if id, ok := message.Tags["custom-reward-id"].(string); ok {
			rewardID = id
		}
		if rewardID != "" {
			c.Emit("redeem", channel, message.Tags["username"], rewardID, message.Tags, msg)
		}
	}

	c.state.log.Info(fmt.Sprintf("[%s] <%s>: %s", channel, chatter.Username, msg))
	c.Emits([]string{"chat", "message"}, [][]any{
		{channel, message.Tags, msg, false},
	})
}

// handleRoomState derives slow/followers-only mode-change events from a
// ROOMSTATE without a subs-only tag (a partial room-state update); a
// ROOMSTATE carrying subs-only produces no mode-change events.
func (c *Client) handleRoomState(message *IRCMessage, channel string) {
	if _, ok := message.Tags["subs-only"]; ok {
		return
	}
	room := convertToRoomState(message.Tags)

	if _, ok := message.Tags["slow"]; ok {
		if slowBool, isBool := message.Tags["slow"].(bool); isBool && !slowBool {
			c.state.log.Info(fmt.Sprintf("[%s] This room is no longer in slow mode.", channel))
			c.Emits([]string{"slow", "slowmode", "_promiseSlowoff"}, [][]any{
				{channel, false, 0},
				{channel, false, 0},
				{nil},
			})
		} else if room.Slow != "" {
			seconds := ParseInt(room.Slow)
			c.state.log.Info(fmt.Sprintf("[%s] This room is now in slow mode.", channel))
			c.Emits([]string{"slow", "slowmode", "_promiseSlow"}, [][]any{
				{channel, true, seconds},
				{channel, true, seconds},
				{nil},
			})
		}
	}

	if room.FollowersOnly != "" {
		if room.FollowersOnly == "-1" {
			c.state.log.Info(fmt.Sprintf("[%s] This room is no longer in followers-only mode.", channel))
			c.Emits([]string{"followersonly", "followersmode", "_promiseFollowersoff"}, [][]any{
				{channel, false, 0},
				{channel, false, 0},
				{nil},
			})
		} else {
			minutes := ParseInt(room.FollowersOnly)
			c.state.log.Info(fmt.Sprintf("[%s] This room is now in follower-only mode.", channel))
			c.Emits([]string{"followersonly", "followersmode", "_promiseFollowers"}, [][]any{
				{channel, true, minutes},
				{channel, true, minutes},
				{nil},
			})
		}
	}
}

// noticeRule is one row of the msg-id -> behavior table (SPEC_FULL.md §4.G/§9).
type noticeRule struct {
	// promise events to resolve with (nil,) on success, or (msgid,) on failure
	success []string
	failure []string
	// silent suppresses the generic notice emission (handled elsewhere, e.g. ROOMSTATE)
	silent bool
}

var noticeTable = map[MsgID]noticeRule{
	MsgIDSubsOn:  {success: []string{"_promiseSubscribers"}, silent: true},
	MsgIDSubsOff: {success: []string{"_promiseSubscribersoff"}, silent: true},
	MsgIDAlreadySubsOn:  {failure: []string{"_promiseSubscribers"}},
	MsgIDAlreadySubsOff: {failure: []string{"_promiseSubscribersoff"}},
	MsgIDUsageSubsOn:    {failure: []string{"_promiseSubscribers"}},
	MsgIDUsageSubsOff:   {failure: []string{"_promiseSubscribersoff"}},

	MsgIDEmoteOnlyOn:  {success: []string{"_promiseEmoteonly"}, silent: true},
	MsgIDEmoteOnlyOff: {success: []string{"_promiseEmoteonlyoff"}, silent: true},
	MsgIDAlreadyEmoteOnlyOn:  {failure: []string{"_promiseEmoteonly"}},
	MsgIDAlreadyEmoteOnlyOff: {failure: []string{"_promiseEmoteonlyoff"}},
	MsgIDUsageEmoteOnlyOn:    {failure: []string{"_promiseEmoteonly"}},
	MsgIDUsageEmoteOnlyOff:   {failure: []string{"_promiseEmoteonlyoff"}},

	MsgIDSlowOn:          {silent: true},
	MsgIDSlowOff:         {silent: true},
	MsgIDFollowersOnZero: {silent: true},
	MsgIDFollowersOn:     {silent: true},
	MsgIDFollowersOff:    {silent: true},
	MsgIDUsageSlowOn:     {failure: []string{"_promiseSlow"}},
	MsgIDUsageSlowOff:    {failure: []string{"_promiseSlowoff"}},

	MsgIDR9kOn:         {success: []string{"_promiseR9kbeta"}, silent: true},
	MsgIDR9kOff:        {success: []string{"_promiseR9kbetaoff"}, silent: true},
	MsgIDAlreadyR9kOn:  {failure: []string{"_promiseR9kbeta"}},
	MsgIDAlreadyR9kOff: {failure: []string{"_promiseR9kbetaoff"}},
	MsgIDUsageR9kOn:    {failure: []string{"_promiseR9kbeta"}},
	MsgIDUsageR9kOff:   {failure: []string{"_promiseR9kbetaoff"}},

	MsgIDAlreadyBanned:     {failure: []string{"_promiseBan"}},
	MsgIDBadBanAdmin:       {failure: []string{"_promiseBan"}},
	MsgIDBadBanAnon:        {failure: []string{"_promiseBan"}},
	MsgIDBadBanBroadcaster: {failure: []string{"_promiseBan"}},
	MsgIDBadBanGlobalMod:   {failure: []string{"_promiseBan"}},
	MsgIDBadBanMod:         {failure: []string{"_promiseBan"}},
	MsgIDBadBanSelf:        {failure: []string{"_promiseBan"}},
	MsgIDBadBanStaff:       {failure: []string{"_promiseBan"}},
	MsgIDUsageBan:          {failure: []string{"_promiseBan"}},
	MsgIDBanSuccess:        {success: []string{"_promiseBan"}},

	MsgIDUsageClear: {failure: []string{"_promiseClear"}},

	MsgIDModSuccess:   {success: []string{"_promiseMod"}},
	MsgIDUsageMod:     {failure: []string{"_promiseMod"}},
	MsgIDBadModBanned: {failure: []string{"_promiseMod"}},
	MsgIDBadModMod:    {failure: []string{"_promiseMod"}},
	MsgIDUsageMods:    {failure: []string{"_promiseMods"}},

	MsgIDUnmodSuccess: {success: []string{"_promiseUnmod"}},
	MsgIDUsageUnmod:   {failure: []string{"_promiseUnmod"}},
	MsgIDBadUnmodMod:  {failure: []string{"_promiseUnmod"}},

	MsgIDVipSuccess:                 {success: []string{"_promiseVip"}},
	MsgIDUsageVip:                   {failure: []string{"_promiseVip"}},
	MsgIDBadVipGranteeBanned:        {failure: []string{"_promiseVip"}},
	MsgIDBadVipGranteeAlreadyVip:    {failure: []string{"_promiseVip"}},
	MsgIDBadVipMaxVipsReached:       {failure: []string{"_promiseVip"}},
	MsgIDBadVipAchievementIncomplet: {failure: []string{"_promiseVip"}},
	MsgIDUsageVips:                  {failure: []string{"_promiseVips"}},

	MsgIDUnvipSuccess:          {success: []string{"_promiseUnvip"}},
	MsgIDUsageUnvip:            {failure: []string{"_promiseUnvip"}},
	MsgIDBadUnvipGranteeNotVip: {failure: []string{"_promiseUnvip"}},

	MsgIDColorChanged: {success: []string{"_promiseColor"}},
	MsgIDUsageColor:   {failure: []string{"_promiseColor"}},
	MsgIDTurboOnlyColor: {failure: []string{"_promiseColor"}},

	MsgIDCommercialSuccess: {success: []string{"_promiseCommercial"}},
	MsgIDUsageCommercial:   {failure: []string{"_promiseCommercial"}},
	MsgIDBadCommercialError: {failure: []string{"_promiseCommercial"}},

	MsgIDBadHostHosting:      {failure: []string{"_promiseHost"}},
	MsgIDBadHostRateExceeded: {failure: []string{"_promiseHost"}},
	MsgIDBadHostError:        {failure: []string{"_promiseHost"}},
	MsgIDUsageHost:           {failure: []string{"_promiseHost"}},

	MsgIDTimeoutSuccess:       {success: []string{"_promiseTimeout"}},
	MsgIDUsageTimeout:         {failure: []string{"_promiseTimeout"}},
	MsgIDBadTimeoutAdmin:      {failure: []string{"_promiseTimeout"}},
	MsgIDBadTimeoutAnon:       {failure: []string{"_promiseTimeout"}},
	MsgIDBadTimeoutBroadcaster: {failure: []string{"_promiseTimeout"}},
	MsgIDBadTimeoutDuration:   {failure: []string{"_promiseTimeout"}},
	MsgIDBadTimeoutGlobalMod:  {failure: []string{"_promiseTimeout"}},
	MsgIDBadTimeoutMod:        {failure: []string{"_promiseTimeout"}},
	MsgIDBadTimeoutSelf:       {failure: []string{"_promiseTimeout"}},
	MsgIDBadTimeoutStaff:      {failure: []string{"_promiseTimeout"}},

	MsgIDUntimeoutSuccess: {success: []string{"_promiseUnban"}},
	MsgIDUnbanSuccess:     {success: []string{"_promiseUnban"}},
	MsgIDUsageUnban:       {failure: []string{"_promiseUnban"}},
	MsgIDBadUnbanNoBan:    {failure: []string{"_promiseUnban"}},

	MsgIDDeleteMessageSuccess:        {success: []string{"_promiseDeletemessage"}},
	MsgIDUsageDelete:                 {failure: []string{"_promiseDeletemessage"}},
	MsgIDBadDeleteMessageError:       {failure: []string{"_promiseDeletemessage"}},
	MsgIDBadDeleteMessageBroadcaster: {failure: []string{"_promiseDeletemessage"}},
	MsgIDBadDeleteMessageMod:         {failure: []string{"_promiseDeletemessage"}},

	MsgIDUsageUnhost: {failure: []string{"_promiseUnhost"}},
	MsgIDNotHosting:  {failure: []string{"_promiseUnhost"}},

	MsgIDWhisperInvalidLogin:    {failure: []string{"_promiseWhisper"}},
	MsgIDWhisperInvalidSelf:     {failure: []string{"_promiseWhisper"}},
	MsgIDWhisperLimitPerMin:     {failure: []string{"_promiseWhisper"}},
	MsgIDWhisperLimitPerSec:     {failure: []string{"_promiseWhisper"}},
	MsgIDWhisperRestricted:      {failure: []string{"_promiseWhisper"}},
	MsgIDWhisperRestrictedRecip: {failure: []string{"_promiseWhisper"}},

	MsgIDHostOn:  {success: []string{"_promiseHost"}},
	MsgIDHostOff: {success: []string{"_promiseUnhost"}},
}

// fanoutMsgIDs are informational failures Twitch can return in place of a
// command-specific msg-id (e.g. the target channel is banned/suspended); the
// original fans these out to every family of pending command promise.
var fanoutMsgIDs = map[MsgID]bool{
	MsgIDNoPermission:        true,
	MsgIDMsgBanned:           true,
	MsgIDMsgRoomNotFound:     true,
	MsgIDMsgChannelSuspended: true,
	MsgIDTosBan:              true,
	MsgIDInvalidUser:         true,
}

var fanoutPromiseEvents = []string{
	"_promiseBan", "_promiseClear", "_promiseUnban", "_promiseTimeout", "_promiseDeletemessage",
	"_promiseMods", "_promiseMod", "_promiseUnmod", "_promiseVips", "_promiseVip", "_promiseUnvip",
	"_promiseCommercial", "_promiseHost", "_promiseUnhost", "_promiseJoin", "_promisePart",
	"_promiseR9kbeta", "_promiseR9kbetaoff", "_promiseSlow", "_promiseSlowoff",
	"_promiseFollowers", "_promiseFollowersoff", "_promiseSubscribers", "_promiseSubscribersoff",
	"_promiseEmoteonly", "_promiseEmoteonlyoff", "_promiseWhisper",
}

// plainNoticeMsgIDs only ever produce the generic notice event.
var plainNoticeMsgIDs = map[MsgID]bool{
	MsgIDCmdsAvailable:            true,
	MsgIDHostTargetWentOffline:    true,
	MsgIDMsgCensoredBroadcaster:   true,
	MsgIDMsgDuplicate:             true,
	MsgIDMsgEmoteonly:             true,
	MsgIDMsgVerifiedEmail:         true,
	MsgIDMsgRatelimit:             true,
	MsgIDMsgSubsonly:              true,
	MsgIDMsgTimedout:              true,
	MsgIDMsgBadCharacters:         true,
	MsgIDMsgChannelBlocked:        true,
	MsgIDMsgFacebook:              true,
	MsgIDMsgFollowersonly:         true,
	MsgIDMsgFollowersonlyFollowed: true,
	MsgIDMsgFollowersonlyZero:     true,
	MsgIDMsgSlowmode:              true,
	MsgIDMsgSuspended:             true,
	MsgIDNoHelp:                   true,
	MsgIDUsageDisconnect:          true,
	MsgIDUsageHelp:                true,
	MsgIDUsageMe:                  true,
	MsgIDUnavailableCmd:           true,
	MsgIDUnrecognizedCmd:          true,
}

var authFailurePatterns = []string{
	"Login unsuccessful",
	"Login authentication failed",
	"Error logging in",
	"Improperly formatted auth",
	"Invalid NICK",
}

// handleNotice is the acknowledgement hub: it drives the msg-id table,
// mods/vips list parsing, AutoMod, and fatal-auth detection
// (SPEC_FULL.md §4.G).
func (c *Client) handleNotice(channel, msgid, msg string) {
	id := MsgID(msgid)

	switch id {
	case MsgIDRoomMods, MsgIDNoMods:
		c.handleRoomMods(channel, msg, id == MsgIDNoMods)
		return
	case MsgIDVipsSuccess, MsgIDNoVips:
		c.handleVipsSuccess(channel, msg, id == MsgIDNoVips)
		return
	case MsgIDHostsRemaining:
		remaining := firstInt(msg)
		c.Emit("_promiseHost", nil, remaining)
		c.state.log.Info(fmt.Sprintf("[%s] %s", channel, msg))
		c.Emit("notice", channel, msgid, msg)
		return
	case MsgIDMsgRejected, MsgIDMsgRejectedMandatory:
		c.Emit("automod", channel, msgid, msg)
		return
	}

	noticeLog := withFields(c.state.log, map[string]any{"channel": channel, "msg_id": msgid, "event": "notice"})

	if fanoutMsgIDs[id] {
		noticeLog.Info(msg)
		c.Emit("notice", channel, msgid, msg)
		for _, ev := range fanoutPromiseEvents {
			c.Emit(ev, msgid, channel)
		}
		return
	}

	switch id {
	case MsgIDSubsOn, MsgIDSubsOff:
		c.Emits([]string{"subscriber", "subscribers"}, [][]any{{channel, id == MsgIDSubsOn}})
	case MsgIDEmoteOnlyOn, MsgIDEmoteOnlyOff:
		c.Emit("emoteonly", channel, id == MsgIDEmoteOnlyOn)
	case MsgIDR9kOn, MsgIDR9kOff:
		c.Emits([]string{"r9kmode", "r9kbeta"}, [][]any{{channel, id == MsgIDR9kOn}})
	}

	if rule, ok := noticeTable[id]; ok {
		for _, ev := range rule.success {
			c.Emit(ev, nil)
		}
		for _, ev := range rule.failure {
			c.Emit(ev, msgid)
		}
		if !rule.silent {
			noticeLog.Info(msg)
			c.Emit("notice", channel, msgid, msg)
		}
		return
	}

	if plainNoticeMsgIDs[id] {
		noticeLog.Info(msg)
		c.Emit("notice", channel, msgid, msg)
		return
	}

	for _, pattern := range authFailurePatterns {
		if strings.Contains(msg, pattern) {
			c.state.reconnect = false
			c.state.log.Error(fmt.Sprintf("Authentication failed: %s", msg))
			c.Emit("error", &AuthenticationError{Reason: msg})
			c.handleDisconnect(msg)
			return
		}
	}

	c.state.log.Warn(fmt.Sprintf("Unhandled NOTICE msg-id %q: %s", msgid, msg))
	c.Emit("notice", channel, msgid, msg)
}

func (c *Client) handleRoomMods(channel, msg string, empty bool) {
	if empty {
		c.Emit("_promiseMods", nil, []string{})
		c.Emit("mods", channel, []string{})
		return
	}

	_, list, _ := strings.Cut(msg, ": ")
	mods := splitModList(list)
	c.Emit("_promiseMods", nil, mods)
	c.Emit("mods", channel, mods)
}

func (c *Client) handleVipsSuccess(channel, msg string, empty bool) {
	if empty {
		c.Emit("_promiseVips", nil, []string{})
		c.Emit("vips", channel, []string{})
		return
	}

	trimmed := strings.TrimSuffix(strings.TrimSpace(msg), ".")
	_, list, found := strings.Cut(trimmed, ": ")
	if !found {
		list = trimmed
	}
	vips := splitModList(list)
	c.Emit("_promiseVips", nil, vips)
	c.Emit("vips", channel, vips)
}

func splitModList(list string) []string {
	parts := strings.Split(list, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func firstInt(s string) int {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start == -1 {
				start = i
			}
		} else if start != -1 {
			return ParseInt(s[start:i])
		}
	}
	if start != -1 {
		return ParseInt(s[start:])
	}
	return 0
}

// handleUserNotice processes USERNOTICE for subs, raids, announcements, etc.
// (SPEC_FULL.md §4.G).
func (c *Client) handleUserNotice(message *IRCMessage, channel, msg, msgid string) {
	username := ""
	if val, ok := message.Tags["display-name"].(string); ok {
		username = val
	} else if val, ok := message.Tags["login"].(string); ok {
		username = val
	}

	message.Tags["message-type"] = msgid
	withFields(c.state.log, map[string]any{"channel": channel, "msg_id": msgid, "event": "usernotice"}).Info(msg)

	switch msgid {
	case "sub":
		c.Emits([]string{"subscription", "sub"}, [][]any{
			{channel, username, convertToSubMethods(message.Tags), msg, message.Tags},
		})

	case "resub":
		sub := convertToSubUserstate(message.Tags)
		streakMonths := ParseInt(sub.MsgParamStreakMonths)
		c.Emits([]string{"resub", "subanniversary"}, [][]any{
			{channel, username, streakMonths, msg, message.Tags, convertToSubMethods(message.Tags)},
		})

	case "subgift":
		gift := convertToSubGiftUserstate(message.Tags)
		streakMonths := ParseInt(gift.MsgParamMonths)
		c.Emit("subgift", channel, username, streakMonths, gift.MsgParamRecipientDisplayName, convertToSubMethods(message.Tags), message.Tags)

	case "anonsubgift":
		gift := convertToAnonSubGiftUserstate(message.Tags)
		streakMonths := ParseInt(gift.MsgParamMonths)
		c.Emit("anonsubgift", channel, streakMonths, gift.MsgParamRecipientDisplayName, convertToSubMethods(message.Tags), message.Tags)

	case "submysterygift":
		gift := convertToSubMysteryGiftUserstate(message.Tags)
		giftCount := ParseInt(gift.MsgParamSenderCount)
		c.Emit("submysterygift", channel, username, giftCount, convertToSubMethods(message.Tags), message.Tags)

	case "anonsubmysterygift":
		gift := convertToAnonSubMysteryGiftUserstate(message.Tags)
		giftCount := ParseInt(gift.MsgParamSenderCount)
		c.Emit("anonsubmysterygift", channel, giftCount, convertToSubMethods(message.Tags), message.Tags)

	case "primepaidupgrade":
		prime := convertToPrimeUpgradeUserstate(message.Tags)
		c.Emit("primepaidupgrade", channel, username, convertToSubMethods(message.Tags), prime.SystemMsg, message.Tags)

	case "giftpaidupgrade":
		upgrade := convertToSubGiftUpgradeUserstate(message.Tags)
		sender := upgrade.MsgParamSenderName
		if sender == "" {
			sender = upgrade.MsgParamSenderLogin
		}
		c.Emit("giftpaidupgrade", channel, username, sender, message.Tags)

	case "anongiftpaidupgrade":
		anonUpgrade := convertToAnonSubGiftUpgradeUserstate(message.Tags)
		c.Emit("anongiftpaidupgrade", channel, username, anonUpgrade.SystemMsg, message.Tags)

	case "raid":
		raid := convertToRaidUserstate(message.Tags)
		viewers := ParseInt(raid.MsgParamViewerCount)
		c.Emit("raided", channel, username, viewers, message.Tags)

	case "ritual":
		ritual := convertToRitualUserstate(message.Tags)
		if ritual.MsgParamRitualName == "new_chatter" {
			c.Emit("newchatter", channel, message.Tags, msg)
		}
		c.Emit("ritual", channel, ritual.MsgParamRitualName, message.Tags, msg)

	case "announcement":
		color := ""
		if val, ok := message.Tags["msg-param-color"].(string); ok {
			color = val
		}
		c.Emit("announcement", channel, message.Tags, msg, false, color)

	default:
		c.Emit("usernotice", msgid, channel, message.Tags, msg)
	}
}

// handleHostTarget processes host/unhost HOSTTARGET frames.
func (c *Client) handleHostTarget(channel, msg string) {
	parts := strings.Split(msg, " ")
	if len(parts) < 1 {
		return
	}

	viewers := 0
	if len(parts) > 1 {
		viewers = ParseInt(parts[1])
	}

	if parts[0] == "-" {
		c.state.log.Info(fmt.Sprintf("[%s] Exited host mode.", channel))
		c.Emits([]string{"unhost", "_promiseUnhost"}, [][]any{
			{channel, viewers},
			{nil},
		})
	} else {
		c.state.log.Info(fmt.Sprintf("[%s] Now hosting %s for %d viewer(s).", channel, parts[0], viewers))
		c.Emit("hosting", channel, parts[0], viewers)
	}
}

// handleClearChat processes ban/timeout/clearchat CLEARCHAT frames.
func (c *Client) handleClearChat(message *IRCMessage, channel, msg string) {
	if len(message.Params) > 1 {
		timeout := convertToTimeoutUserstate(message.Tags)
		username := Username(msg)

		var reason any
		if val, ok := message.Tags["ban-reason"].(string); ok {
			reason = val
		}

		if timeout.BanDuration == "" {
			c.state.log.Info(fmt.Sprintf("[%s] %s has been banned.", channel, username))
			c.Emit("ban", channel, username, reason, message.Tags)
		} else {
			durationInt := ParseInt(timeout.BanDuration)
			c.state.log.Info(fmt.Sprintf("[%s] %s has been timed out for %d seconds.", channel, username, durationInt))
			c.Emit("timeout", channel, username, reason, durationInt, message.Tags)
		}
	} else {
		c.state.log.Info(fmt.Sprintf("[%s] Chat was cleared by a moderator.", channel))
		c.Emits([]string{"clearchat", "_promiseClear"}, [][]any{
			{channel},
			{nil},
		})
	}
}
