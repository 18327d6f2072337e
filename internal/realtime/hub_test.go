package realtime

import (
	"context"
	"testing"
	"time"

	"therapy-booking-server/internal/models"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHub_PublishToTopic(t *testing.T) {
	hub := NewHub(4)
	a := hub.Subscribe(ChatTopic("A1"))
	b := hub.Subscribe(ChatTopic("A2"))
	defer a.Close()
	defer b.Close()

	hub.Publish(context.Background(), Event{Type: EventInsert, Topic: ChatTopic("A1"), RecordID: "m1"})

	if ev := receive(t, a); ev.RecordID != "m1" || ev.At.IsZero() {
		t.Fatalf("unexpected event %+v", ev)
	}
	select {
	case ev := <-b.C:
		t.Fatalf("A2 subscriber received %+v", ev)
	default:
	}
}

func TestHub_CloseUnsubscribes(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe("t")
	if hub.TopicCount("t") != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.TopicCount("t"))
	}
	sub.Close()
	sub.Close()
	if hub.TopicCount("t") != 0 {
		t.Fatalf("expected 0 subscribers, got %d", hub.TopicCount("t"))
	}
	if _, ok := <-sub.C; ok {
		t.Fatal("channel should be closed")
	}
	// publishing to an empty topic is a no-op
	if err := hub.Publish(context.Background(), Event{Topic: "t"}); err != nil {
		t.Fatal(err)
	}
}

func TestHub_FullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe("t")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.Publish(context.Background(), Event{Topic: "t"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestChatInsertEvents(t *testing.T) {
	sent := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	single := chatInsertEvents(&models.ChatMessage{ID: "m1", AppointmentID: "A1", SentAt: sent})
	if len(single) != 1 || single[0].Topic != "chat_messages:A1" || single[0].Type != EventInsert || !single[0].At.Equal(sent) {
		t.Fatalf("unexpected events %+v", single)
	}

	batch := []models.ChatMessage{{ID: "m1", AppointmentID: "A1"}, {ID: "m2", AppointmentID: "A2"}, {ID: "m3"}}
	if got := chatInsertEvents(&batch); len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got := chatInsertEvents(&models.Appointment{}); len(got) != 0 {
		t.Fatalf("non-chat rows must not emit, got %d", len(got))
	}
}
