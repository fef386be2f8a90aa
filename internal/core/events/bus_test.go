package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/frahmantamala/identity-api/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("delivers published events to every subscriber of the type", func() {
		var (
			mu  sync.Mutex
			got []string
		)
		record := func(name string) events.Handler {
			return func(_ context.Context, e events.Event) error {
				mu.Lock()
				defer mu.Unlock()
				got = append(got, name+":"+e.EventType())
				return nil
			}
		}
		bus.Subscribe(events.EventTypeUserUpgraded, record("a"))
		bus.Subscribe(events.EventTypeUserUpgraded, record("b"))
		bus.Subscribe(events.EventTypeUserRegistered, record("c"))

		Expect(bus.Publish(context.Background(), events.NewUserUpgradedEvent("u-1", "o-1", "supplier:editor"))).To(Succeed())
		bus.Wait()

		Expect(got).To(ConsistOf("a:user.upgraded", "b:user.upgraded"))
	})

	It("keeps handler failures away from the publisher", func() {
		bus.Subscribe(events.EventTypeUserRegistered, func(context.Context, events.Event) error {
			return errors.New("audit sink down")
		})
		Expect(bus.Publish(context.Background(), events.NewUserRegisteredEvent("u-1", "a@example.com", "o-1"))).To(Succeed())
		bus.Wait()
	})

	It("hands handlers a context that outlives the request", func() {
		ctx, cancel := context.WithCancel(context.Background())
		seen := make(chan error, 1)
		bus.Subscribe(events.EventTypeUserPasswordReset, func(hctx context.Context, _ events.Event) error {
			seen <- hctx.Err()
			return nil
		})

		Expect(bus.Publish(ctx, events.NewUserPasswordResetEvent("u-1", "t-1"))).To(Succeed())
		cancel()
		bus.Wait()
		Expect(<-seen).NotTo(HaveOccurred())
	})

	It("joins handler errors in PublishSync", func() {
		bus.Subscribe(events.EventTypeUserEmailVerified, func(context.Context, events.Event) error {
			return errors.New("first")
		})
		bus.Subscribe(events.EventTypeUserEmailVerified, func(context.Context, events.Event) error {
			return nil
		})

		err := bus.PublishSync(context.Background(), events.NewUserEmailVerifiedEvent("u-1", "v-1"))
		Expect(err).To(MatchError(ContainSubstring("first")))
	})

	It("builds events with ids and payloads", func() {
		e := events.NewUserUpgradedEvent("u-1", "o-1", "supplier:editor")
		Expect(e.EventID()).NotTo(BeEmpty())
		Expect(e.OccurredAt()).NotTo(BeZero())
		Expect(e.Payload()).To(HaveKeyWithValue("organization_id", "o-1"))
	})
})
