package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gotmi/tmigo"
)

// A second example: a moderation-oriented bot demonstrating the command
// layer's await-ack/fire-and-forget split and the structured error types
// returned at that boundary. Run with TMI_EXAMPLE=mod to use this instead of
// the bot in main.go.
func runModerationExample() {
	client := tmigo.NewClient(&tmigo.ClientOptions{
		Options: &tmigo.Options{Debug: true},
		Identity: &tmigo.Identity{
			Username: os.Getenv("TMI_USERNAME"),
			Password: os.Getenv("TMI_PASSWORD"),
		},
		Channels: []string{os.Getenv("TMI_CHANNEL")},
	})

	client.On("connected", func(args ...any) {
		log.Printf("Connected to %s:%d", args[0], args[1])
	})

	client.On("message", func(args ...any) {
		channel := args[0].(string)
		tags := args[1].(map[string]any)
		message := args[2].(string)
		self := args[3].(bool)
		if self {
			return
		}

		mod, _ := tags["mod"].(bool)
		username, _ := tags["username"].(string)
		if !mod || !strings.HasPrefix(message, "!") {
			return
		}

		handleModCommand(client, channel, username, message)
	})

	client.On("timeout", func(args ...any) {
		channel := args[0].(string)
		username := args[1].(string)
		duration := args[3].(int)
		log.Printf("[TIMEOUT] %s -> %s for %ds", channel, username, duration)
	})

	if err := client.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	client.Disconnect()
}

func handleModCommand(client *tmigo.Client, channel, invoker, message string) {
	parts := strings.Fields(message)
	if len(parts) < 2 {
		return
	}

	target := strings.TrimPrefix(parts[1], "@")

	switch strings.ToLower(parts[0]) {
	case "!timeout":
		reportAck("Timeout", client.Timeout(channel, target, 600, "requested by "+invoker))

	case "!ban":
		reportAck("Ban", client.Ban(channel, target, "requested by "+invoker))

	case "!vip":
		reportAck("VIP", client.VIP(channel, target))

	case "!slow":
		seconds := 30
		if len(parts) >= 3 {
			if n := tmigo.ParseInt(parts[2]); n > 0 {
				seconds = n
			}
		}
		reportAck("Slow", client.Slow(channel, seconds))

	case "!reply":
		// /announce, generic "/"-prefixed commands and Reply never wait for an
		// ack: Reply goes through Say's chat send path, fire-and-forget.
		if err := client.Reply(channel, "noted.", parts[1]); err != nil {
			log.Printf("Reply failed: %v", err)
		}
	}
}

// reportAck shows how callers distinguish the three outcomes a
// sendCommandWithResponse call can produce.
func reportAck(label string, err error) {
	var failed *tmigo.CommandFailedError
	var timedOut *tmigo.CommandTimedOutError

	switch {
	case err == nil:
		log.Printf("%s: acknowledged", label)
	case errors.As(err, &failed):
		log.Printf("%s: rejected (%s)", label, failed.Reason)
	case errors.As(err, &timedOut):
		log.Printf("%s: no response within the ack window", label)
	case errors.Is(err, tmigo.ErrNotConnected):
		log.Printf("%s: not connected", label)
	default:
		log.Printf("%s: %v", label, err)
	}
}
