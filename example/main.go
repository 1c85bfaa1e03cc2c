package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gotmi/tmigo"
)

// A minimal chat bot: connects anonymously or with credentials from the
// environment, logs activity, and answers a handful of "!" commands.
func main() {
	if os.Getenv("TMI_EXAMPLE") == "mod" {
		runModerationExample()
		return
	}

	username := os.Getenv("TMI_USERNAME")
	password := os.Getenv("TMI_PASSWORD")
	channel := os.Getenv("TMI_CHANNEL")
	if channel == "" {
		channel = "twitchdev"
	}

	client := tmigo.NewClient(&tmigo.ClientOptions{
		Options: &tmigo.Options{
			Debug: os.Getenv("TMI_DEBUG") != "",
		},
		Identity: &tmigo.Identity{
			Username: username,
			Password: password,
		},
		Channels: []string{channel},
	})

	setupEventHandlers(client)

	log.Println("Connecting to Twitch...")
	if err := client.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	client.Disconnect()
}

func setupEventHandlers(client *tmigo.Client) {
	client.On("connected", func(args ...any) {
		server := args[0].(string)
		port := args[1].(int)
		log.Printf("Connected to %s:%d", server, port)
	})

	client.On("disconnected", func(args ...any) {
		reason := args[0].(string)
		log.Printf("Disconnected: %s", reason)
	})

	client.On("reconnect", func(args ...any) {
		log.Println("Reconnecting...")
	})

	client.On("join", func(args ...any) {
		channel := args[0].(string)
		username := args[1].(string)
		self := args[2].(bool)

		if self {
			log.Printf("Joined channel: %s", channel)
		} else {
			log.Printf("%s joined %s", username, channel)
		}
	})

	client.On("message", func(args ...any) {
		channel := args[0].(string)
		tags := args[1].(map[string]any)
		message := args[2].(string)
		self := args[3].(bool)

		if self {
			return
		}

		username, _ := tags["username"].(string)
		log.Printf("[%s] %s: %s", channel, username, message)

		handleCommands(client, channel, tags, message)
	})

	client.On("subscription", func(args ...any) {
		channel := args[0].(string)
		username := args[1].(string)
		log.Printf("[SUB] %s subscribed to %s", username, channel)
		client.Say(channel, fmt.Sprintf("Thanks for subscribing, @%s!", username))
	})

	client.On("raided", func(args ...any) {
		channel := args[0].(string)
		username := args[1].(string)
		viewers := args[2].(int)
		log.Printf("[RAID] %s raided %s with %d viewers", username, channel, viewers)
		client.Say(channel, fmt.Sprintf("Welcome raiders from @%s!", username))
	})

	client.On("cheer", func(args ...any) {
		channel := args[0].(string)
		tags := args[1].(map[string]any)
		bits, _ := tags["bits"].(string)
		username, _ := tags["username"].(string)
		log.Printf("[CHEER] %s cheered %s bits in %s", username, bits, channel)
	})

	client.On("ban", func(args ...any) {
		channel := args[0].(string)
		username := args[1].(string)
		log.Printf("[BAN] %s was banned from %s", username, channel)
	})

	client.On("timeout", func(args ...any) {
		channel := args[0].(string)
		username := args[1].(string)
		duration := args[3].(int)
		log.Printf("[TIMEOUT] %s was timed out in %s for %ds", username, channel, duration)
	})

	client.On("error", func(args ...any) {
		log.Printf("[ERROR] %v", args[0])
	})
}

func handleCommands(client *tmigo.Client, channel string, tags map[string]any, message string) {
	if !strings.HasPrefix(message, "!") {
		return
	}

	username, _ := tags["username"].(string)
	parts := strings.Fields(message)
	if len(parts) == 0 {
		return
	}

	switch strings.ToLower(parts[0]) {
	case "!hello":
		client.Say(channel, fmt.Sprintf("@%s, hello!", username))

	case "!dice":
		client.Action(channel, "rolls a die...")

	case "!so":
		if len(parts) < 2 {
			return
		}
		target := strings.TrimPrefix(parts[1], "@")
		client.Say(channel, fmt.Sprintf("Go check out @%s!", target))

	case "!mods":
		if err := client.Mods(channel); err != nil {
			log.Printf("Mods() failed: %v", err)
		}
	}
}
