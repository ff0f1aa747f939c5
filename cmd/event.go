package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/frahmantamala/tradedesk/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus debugging commands",
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long: `Publish a test event on a local bus. With --dispatch the notification
dispatcher is registered too, so known event types send real notifications.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var (
	eventData     string
	eventDispatch bool
)

func publishTestEvent(eventType string) error {
	lg := logger.LoggerWrapper()

	bus := events.NewEventBus(lg)
	if eventDispatch {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		lg = logger.LoggerWrapper()
		bus = newEventBus(cfg, lg)
	}

	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	testEvent := events.BaseEvent{
		ID:        fmt.Sprintf("test-%d", time.Now().UnixNano()),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)
	if err := bus.Publish(context.Background(), testEvent); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	bus.Wait()

	lg.Info("test event handled")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "message placed in the event payload")
	publishEventCmd.Flags().BoolVar(&eventDispatch, "dispatch", false, "also register the notification dispatcher (reads config)")

	eventCmd.AddCommand(publishEventCmd)
}
