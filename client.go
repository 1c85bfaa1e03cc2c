package tmigo

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"slices"
	"sync"
	"time"
)

// Client represents a Twitch IRC client.
type Client struct {
	*EventEmitter
	state  *clientState
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
}

// NewClient creates a new Twitch IRC client.
func NewClient(opts *ClientOptions) *Client {
	if opts == nil {
		opts = &ClientOptions{}
	}

	if opts.Options == nil {
		opts.Options = &Options{}
	}
	if opts.Connection == nil {
		opts.Connection = &Connection{}
	}
	if opts.Identity == nil {
		opts.Identity = &Identity{}
	}
	if opts.Channels == nil {
		opts.Channels = []string{}
	}

	// Apply behavior defaults (options.py ClientOptions).
	if opts.Options.GlobalDefaultChannel == "" {
		opts.Options.GlobalDefaultChannel = "#tmijs"
	}
	if opts.Options.JoinInterval == 0 {
		opts.Options.JoinInterval = 2000
	}
	if opts.Options.MessagesLogLevel == "" {
		opts.Options.MessagesLogLevel = "info"
	}

	// request_membership/request_commands/request_tags default true, but the
	// zero value of a bool is false, so an explicit false cannot be told
	// apart from an unset field. An Options with all three false (the common
	// case of passing &Options{}) is treated as "use the defaults": all three
	// and JoinExistingChannels are set to true. A caller who wants fewer
	// capabilities sets at least one of the three to true; the others then
	// stay as given. SkipMembership separately suppresses membership.
	if !opts.Options.RequestTags && !opts.Options.RequestCommands && !opts.Options.RequestMembership {
		opts.Options.RequestTags = true
		opts.Options.RequestCommands = true
		opts.Options.RequestMembership = true
		opts.Options.JoinExistingChannels = true
	}

	// Apply connection defaults (options.py ConnectionOptions).
	if opts.Connection.Server == "" {
		opts.Connection.Server = "irc.chat.twitch.tv"
	}
	if opts.Connection.Port == 0 {
		opts.Connection.Port = 6697
		opts.Connection.Secure = true
	}
	if opts.Connection.ReconnectInterval == 0 {
		opts.Connection.ReconnectInterval = 1 * time.Second
	}
	if opts.Connection.ReconnectDecay == 0 {
		opts.Connection.ReconnectDecay = 1.5
	}
	if opts.Connection.MaxReconnectInterval == 0 {
		opts.Connection.MaxReconnectInterval = 30 * time.Second
	}
	if opts.Connection.MaxReconnectAttempts == 0 {
		opts.Connection.MaxReconnectAttempts = 999999 // effectively unbounded
	}
	if opts.Connection.Timeout == 0 {
		opts.Connection.Timeout = 9999 * time.Millisecond
	}
	if opts.Connection.PingInterval == 0 {
		opts.Connection.PingInterval = 240 * time.Second
	}
	if opts.Connection.JoinRateLimit == 0 {
		opts.Connection.JoinRateLimit = 1600 * time.Millisecond
	}
	if opts.Connection.CommandRateLimit == 0 {
		opts.Connection.CommandRateLimit = 1600 * time.Millisecond
	}
	if opts.Connection.MessageRateLimit == 0 {
		opts.Connection.MessageRateLimit = 1 * time.Second
	}
	opts.Connection.Reconnect = true

	logger := opts.Logger
	if logger == nil {
		logger = NewLogger()
	}
	if opts.Options.Debug {
		logger.SetLevel("info")
	} else {
		logger.SetLevel("error")
	}

	for i, ch := range opts.Channels {
		opts.Channels[i] = Channel(ch)
	}

	ctx, cancel := context.WithCancel(context.Background())

	state := &clientState{
		opts:                 opts,
		globalDefaultChannel: Channel(opts.Options.GlobalDefaultChannel),
		skipMembership:       opts.Options.SkipMembership,
		server:               opts.Connection.Server,
		port:                 opts.Connection.Port,
		secure:               opts.Connection.Secure,
		reconnect:            opts.Connection.Reconnect,
		reconnectDecay:       opts.Connection.ReconnectDecay,
		reconnectInterval:    opts.Connection.ReconnectInterval,
		maxReconnectInterval: opts.Connection.MaxReconnectInterval,
		maxReconnectAttempts: opts.Connection.MaxReconnectAttempts,
		reconnectTimer:       opts.Connection.ReconnectInterval,
		reconnecting:         false,
		reconnections:        0,
		username:             Username(opts.Identity.Username),
		channels:             []string{},
		emotes:               "",
		emotesets:            make(map[string]any),
		globalUserState:      GlobalUserState{},
		userState:            make(map[string]UserState),
		moderators:           make(map[string][]string),
		namesUsers:           make(map[string][]string),
		namesMods:            make(map[string][]string),
		log:                  logger,
		currentLatency:       0,
		latency:              time.Now(),
		wasCloseCalled:       false,
	}

	state.messageQueue = NewQueue(opts.Connection.MessageRateLimit)
	state.commandQueue = NewQueue(opts.Connection.CommandRateLimit)
	state.joinQueue = NewQueue(opts.Connection.JoinRateLimit)

	if state.username == "" {
		state.username = Justinfan()
	}

	client := &Client{
		EventEmitter: NewEventEmitter(),
		state:        state,
		ctx:          ctx,
		cancel:       cancel,
	}

	client.SetMaxListeners(0)

	return client
}

// Connect establishes a connection to the Twitch IRC server. It is
// idempotent: calling Connect while already connected is a no-op, matching
// the original client_base.py's connect().
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isConnectedLocked() {
		return nil
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.state.wasCloseCalled = false

	return c.establishConnection()
}

// establishConnection dials the server, starts the reader and PING
// goroutines, authenticates, starts the send queues, and rejoins any
// previously configured channels. The reconnect backoff delay itself is
// computed by the caller (handleDisconnect) before this is invoked again;
// establishConnection never grows the backoff timer itself, so the first
// connect is never penalized (SPEC_FULL.md §4.F, §8 scenario 6).
func (c *Client) establishConnection() error {
	c.state.log.Info(fmt.Sprintf("Connecting to %s on port %d..", c.state.server, c.state.port))
	c.Emit("connecting", c.state.server, c.state.port)

	addr := fmt.Sprintf("%s:%d", c.state.server, c.state.port)
	dialer := &net.Dialer{Timeout: c.state.opts.Connection.Timeout}

	var conn net.Conn
	var err error
	if c.state.secure {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		c.state.log.Error(fmt.Sprintf("Connection error: %v", err))
		return &ConnectionError{Op: "dial", Err: err}
	}

	c.state.conn = conn
	c.state.reader = bufio.NewReader(conn)

	c.state.messageQueue.Start()
	c.state.commandQueue.Start()
	c.state.joinQueue.Start()

	go c.readLoop()
	go c.pingLoop()

	if err := c.authenticate(); err != nil {
		return err
	}

	if c.state.opts.Options.JoinExistingChannels {
		for _, ch := range c.state.opts.Channels {
			ch := ch
			c.state.joinQueue.Add(func() {
				_ = c.Join(ch)
			})
		}
	}

	return nil
}

// authenticate sends PASS/NICK/CAP REQ on the immediate (non-queued) path.
func (c *Client) authenticate() error {
	c.state.log.Info("Sending authentication to server..")
	c.Emit("logon")

	var caps []string
	if c.state.opts.Options.RequestTags {
		caps = append(caps, "twitch.tv/tags")
	}
	if c.state.opts.Options.RequestCommands {
		caps = append(caps, "twitch.tv/commands")
	}
	if c.state.opts.Options.RequestMembership && !c.state.skipMembership {
		caps = append(caps, "twitch.tv/membership")
	}

	password := c.state.opts.Identity.Password
	if password != "" {
		if err := c.writeRaw(fmt.Sprintf("PASS %s", Password(password))); err != nil {
			return err
		}
	}

	if err := c.writeRaw(fmt.Sprintf("NICK %s", c.state.username)); err != nil {
		return err
	}

	if len(caps) > 0 {
		joined := caps[0]
		for _, cp := range caps[1:] {
			joined += " " + cp
		}
		if err := c.writeRaw(fmt.Sprintf("CAP REQ :%s", joined)); err != nil {
			return err
		}
	}

	return nil
}

// readLoop reads CRLF-delimited lines from the connection and dispatches
// each parsed frame. It mirrors _reader_loop in client_base.py: any read
// error (including EOF) drives the disconnect handler.
func (c *Client) readLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		line, err := c.state.reader.ReadString('\n')
		if line != "" {
			trimmed := trimCRLF(line)
			if trimmed != "" {
				if msg := ParseMessage(trimmed); msg != nil {
					c.handleMessage(msg)
				}
			}
		}
		if err != nil {
			c.Emit("error", err)
			c.handleDisconnect(fmt.Sprintf("Connection closed: %v", err))
			return
		}
	}
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// pingLoop sends a heartbeat PING at max(30s, ping_interval) and optionally
// arms a deadline enforcing the configured PingTimeout (SPEC_FULL.md §9 Open
// Questions decision).
func (c *Client) pingLoop() {
	interval := max(30*time.Second, c.state.opts.Connection.PingInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if !c.isConnected() {
				continue
			}
			c.state.latency = time.Now()
			if err := c.writeRaw("PING :tmi.twitch.tv"); err != nil {
				continue
			}
			c.Emit("ping")

			if timeout := c.state.opts.Connection.PingTimeout; timeout > 0 {
				c.armPingTimeout(timeout)
			}
		}
	}
}

func (c *Client) armPingTimeout(timeout time.Duration) {
	if c.state.pingTimeout != nil {
		c.state.pingTimeout.Stop()
	}
	c.state.pingTimeout = time.AfterFunc(timeout, func() {
		c.state.log.Error("Ping timeout.")
		c.handleDisconnect("Ping timeout")
	})
}

// writeRaw writes a single line to the socket, bypassing all rate-limited
// queues. Used for PASS/NICK/CAP/PING/PONG per SPEC_FULL.md §4.F.
func (c *Client) writeRaw(line string) error {
	c.state.writeMu.Lock()
	defer c.state.writeMu.Unlock()

	if c.state.conn == nil {
		return ErrNotConnected
	}

	_, err := c.state.conn.Write([]byte(line + "\r\n"))
	return err
}

// handleDisconnect is the single entry point for tearing down a connection,
// mirroring _handle_disconnect in client_base.py exactly, including the
// backoff ordering: compute the delay from the current timer, THEN grow the
// timer by reconnect_decay, so the sequence for decay=2/max=10 starting at 1
// is 1,2,4,8,10,10,... (SPEC_FULL.md §8 scenario 6).
func (c *Client) handleDisconnect(reason string) {
	c.mu.Lock()
	wasCloseCalled := c.state.wasCloseCalled
	c.mu.Unlock()

	c.closeConnection()

	if wasCloseCalled {
		return
	}

	c.Emit("disconnected", reason)

	if !c.state.reconnect {
		c.Emit("reconnect_failed", reason)
		return
	}

	if c.state.reconnections >= c.state.maxReconnectAttempts {
		c.Emit("reconnect_failed", reason)
		c.state.log.Error("Maximum reconnection attempts reached.")
		return
	}

	c.state.reconnecting = true
	c.state.reconnections++

	delay := min(c.state.reconnectTimer, c.state.maxReconnectInterval)
	c.state.reconnectTimer = time.Duration(float64(c.state.reconnectTimer) * c.state.reconnectDecay)

	c.state.log.Warn(fmt.Sprintf("Reconnecting in %v..", delay))
	c.Emit("reconnect")

	time.AfterFunc(delay, func() {
		if err := c.Connect(); err != nil {
			c.Emit("error", err)
			return
		}
		c.state.reconnecting = false
		c.state.reconnectTimer = c.state.reconnectInterval
		c.state.reconnections = 0
		c.Emit("reconnected", c.state.server, c.state.port)
	})
}

// closeConnection cancels the reader/ping goroutines, stops the send
// queues, and closes the socket. Safe to call multiple times.
func (c *Client) closeConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	c.state.messageQueue.Stop()
	c.state.commandQueue.Stop()
	c.state.joinQueue.Stop()

	if c.state.pingTimeout != nil {
		c.state.pingTimeout.Stop()
		c.state.pingTimeout = nil
	}

	if c.state.conn != nil {
		c.state.conn.Close()
		c.state.conn = nil
	}
	c.state.reader = nil

	c.state.moderators = make(map[string][]string)
	c.state.userState = make(map[string]UserState)
	c.state.globalUserState = GlobalUserState{}
}

// Disconnect closes the connection to the server and suppresses any
// automatic reconnect.
func (c *Client) Disconnect() error {
	c.mu.RLock()
	connected := c.state.conn != nil
	c.mu.RUnlock()

	if !connected {
		return ErrNotConnected
	}

	c.mu.Lock()
	c.state.wasCloseCalled = true
	c.mu.Unlock()

	c.state.log.Info("Disconnecting from server..")
	c.closeConnection()
	c.Emit("disconnected", "Connection closed.")

	return nil
}

// GetUsername returns the current username.
func (c *Client) GetUsername() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.username
}

// GetChannels returns the list of joined channels.
func (c *Client) GetChannels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	channels := make([]string, len(c.state.channels))
	copy(channels, c.state.channels)
	return channels
}

// IsMod checks if a username is a moderator in a channel.
func (c *Client) IsMod(channel, username string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ch := Channel(channel)
	mods, exists := c.state.moderators[ch]
	if !exists {
		return false
	}

	user := Username(username)
	return slices.Contains(mods, user)
}

// ReadyState returns the current connection state: CLOSED or OPEN.
func (c *Client) ReadyState() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state.conn == nil {
		return "CLOSED"
	}
	return "OPEN"
}

// isConnected reports whether the socket is present.
func (c *Client) isConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnectedLocked()
}

func (c *Client) isConnectedLocked() bool {
	return c.state.conn != nil
}
