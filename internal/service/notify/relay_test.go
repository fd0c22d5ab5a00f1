package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/memory"
)

type stubSink struct {
	mu        sync.Mutex
	err       error
	published []domain.Notification
}

func (s *stubSink) Publish(n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, n)
	return nil
}

func (s *stubSink) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

func seedNotification(t *testing.T, store *memory.Store, id string) {
	t.Helper()

	err := store.Notifications().Append(domain.Notification{
		ID:         id,
		CustomerID: "cust-1",
		OrderID:    "order-1",
		Type:       domain.NotificationOrderStatus,
		Message:    "Ваш заказ отправлен.",
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed notification: %v", err)
	}
}

func TestRelay_ProcessOnce_MarksPublished(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedNotification(t, store, "ntf-1")
	sink := &stubSink{}

	relay := NewRelay(store, sink, WithRetryBaseDelay(0), WithMaxAttempts(3))
	relay.ProcessOnce(context.Background())

	if got := sink.calls(); got != 1 {
		t.Fatalf("expected 1 publish call, got %d", got)
	}
	if sink.published[0].ID != "ntf-1" {
		t.Fatalf("expected ntf-1 published, got %s", sink.published[0].ID)
	}

	pending, err := store.Notifications().PullUnpublished(10)
	if err != nil {
		t.Fatalf("pull unpublished: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no unpublished notifications, got %d", len(pending))
	}
}

func TestRelay_ProcessOnce_KeepsUnpublishedOnSinkError(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedNotification(t, store, "ntf-2")
	sink := &stubSink{err: errors.New("broker unavailable")}

	relay := NewRelay(store, sink, WithRetryBaseDelay(0), WithMaxAttempts(2))
	relay.ProcessOnce(context.Background())

	pending, err := store.Notifications().PullUnpublished(10)
	if err != nil {
		t.Fatalf("pull unpublished: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected notification to stay unpublished, got %d pending", len(pending))
	}
}

func TestRelay_ProcessOnce_OrderPreserved(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedNotification(t, store, "ntf-a")
	seedNotification(t, store, "ntf-b")
	sink := &stubSink{}

	relay := NewRelay(store, sink, WithRetryBaseDelay(0))
	relay.ProcessOnce(context.Background())

	if got := sink.calls(); got != 2 {
		t.Fatalf("expected 2 publish calls, got %d", got)
	}
	if sink.published[0].ID != "ntf-a" || sink.published[1].ID != "ntf-b" {
		t.Fatalf("expected oldest-first publish order, got %s then %s",
			sink.published[0].ID, sink.published[1].ID)
	}
}

func TestRelay_Run_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	sink := &stubSink{}
	relay := NewRelay(store, sink, WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after context cancel")
	}
}
