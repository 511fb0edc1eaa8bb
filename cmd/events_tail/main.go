package main

import (
	"context"
	"log"

	"temple-sessions-be/internal/config"
	"temple-sessions-be/pkg/events"
	pktNats "temple-sessions-be/pkg/nats"
)

// Tails the metric event stream. Handy for checking that session flows emit
// what the analytics pipeline expects without spinning up the full stack.
func main() {
	cfg := config.Load()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe("events.>", "events_tail", func(ctx context.Context, event events.Event) error {
		log.Printf("[%s] %v", event.EventType(), event.Payload())
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	select {}
}
