package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/infrastructure/event"
	"github.com/scholarly/backcontent/internal/infrastructure/messaging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// tailedEvent is one line of `events tail` output
type tailedEvent struct {
	Subject string             `json:"subject"`
	Type    string             `json:"type"`
	ID      string             `json:"id"`
	Event   shared.DomainEvent `json:"event"`
}

func newEventsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect forwarded domain events",
	}
	cmd.AddCommand(newEventsTailCommand(ctx))
	return cmd
}

func newEventsTailCommand(ctx *commandContext) *cobra.Command {
	var eventType string
	var count int

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print domain events from NATS as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			nc, err := messaging.Connect(cfg.Messaging, ctx.logger())
			if err != nil {
				return err
			}
			defer nc.Close()

			subject := messaging.Subject(cfg.Messaging.SubjectPrefix, ">")
			if eventType != "" {
				subject = messaging.Subject(cfg.Messaging.SubjectPrefix, eventType)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return tailEvents(runCtx, cmd, nc, subject, count, ctx.logger())
		},
	}

	cmd.Flags().StringVarP(&eventType, "type", "t", "", "Only this event type, e.g. article.published")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Exit after n events (0 = until interrupted)")
	return cmd
}

func tailEvents(ctx context.Context, cmd *cobra.Command, nc *nats.Conn, subject string, count int, log *zap.Logger) error {
	msgs := make(chan *nats.Msg, 64)
	sub, err := nc.ChanSubscribe(subject, msgs)
	if err != nil {
		return err
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	serializer := event.NewDefaultSerializer()
	seen := 0
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case msg := <-msgs:
			e, err := messaging.Decode(serializer, msg)
			if err != nil {
				log.Warn("Skipping undecodable message", zap.String("subject", msg.Subject), zap.Error(err))
				continue
			}
			if err := writeJSON(cmd, tailedEvent{
				Subject: msg.Subject,
				Type:    e.EventType(),
				ID:      e.EventID().String(),
				Event:   e,
			}); err != nil {
				return err
			}
			seen++
			if count > 0 && seen >= count {
				return nil
			}
		}
	}
}
