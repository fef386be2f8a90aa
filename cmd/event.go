package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/identity-api/internal/core/events"
	"github.com/frahmantamala/identity-api/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the identity event bus: publish lifecycle events through the audit handlers`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a test event",
	Long:      `Publish a test event to the event bus for testing and debugging`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: events.AuditedEventTypes,
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var eventUserID string

func publishTestEvent(eventType string) {
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	subscribeAudit(eventBus, lg)

	var event events.BaseEvent
	switch eventType {
	case events.EventTypeUserRegistered:
		event = events.NewUserRegisteredEvent(eventUserID, "cli@example.com", "")
	case events.EventTypeUserEmailVerified:
		event = events.NewUserEmailVerifiedEvent(eventUserID, "")
	case events.EventTypeUserPasswordReset:
		event = events.NewUserPasswordResetEvent(eventUserID, "")
	case events.EventTypeUserUpgraded:
		event = events.NewUserUpgradedEvent(eventUserID, "", "")
	default:
		event = events.BaseEvent{
			ID:        fmt.Sprintf("test-%d", time.Now().Unix()),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"user_id": eventUserID, "source": "cli-command"},
		}
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.ID)

	if err := eventBus.Publish(context.Background(), event); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}
	eventBus.Wait()
	lg.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventUserID, "user", "cli-user", "user id carried by the event")

	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
