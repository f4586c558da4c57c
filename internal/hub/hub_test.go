package hub

import (
	"testing"

	"github.com/ridglejessica55-prog/seren/internal/events"
	"github.com/ridglejessica55-prog/seren/internal/models"
)

func makeEvent(id string) events.Event {
	return events.PostCreated{Post: models.Post{ID: id}}
}

func TestHub_PublishFansOut(t *testing.T) {
	h := New(nil)

	subs := []*Subscriber{h.Subscribe(), h.Subscribe(), h.Subscribe()}
	if h.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", h.Count())
	}

	h.Publish(makeEvent("p1"))

	for i, sub := range subs {
		select {
		case e := <-sub.C:
			pc, ok := e.(events.PostCreated)
			if !ok || pc.Post.ID != "p1" {
				t.Errorf("subscriber %d got %+v, want PostCreated p1", i, e)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	h := New(nil)

	sub := h.Subscribe()
	other := h.Subscribe()

	h.Unsubscribe(sub)
	if h.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", h.Count())
	}

	// Channel is closed so consumer loops terminate
	if _, ok := <-sub.C; ok {
		t.Error("unsubscribed channel still open")
	}

	// Idempotent
	h.Unsubscribe(sub)
	h.Unsubscribe(sub)

	// Remaining subscriber still receives
	h.Publish(makeEvent("p1"))
	select {
	case <-other.C:
	default:
		t.Error("remaining subscriber received nothing")
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := New(nil)

	slow := h.Subscribe()
	healthy := h.Subscribe()

	// Overfill the slow subscriber's buffer; nobody is draining it. If
	// Publish blocked on a full channel this test would never finish.
	for i := 0; i <= DefaultSubscriberBuffer; i++ {
		h.Publish(makeEvent("p1"))
	}

	if got := len(slow.C); got != DefaultSubscriberBuffer {
		t.Errorf("slow subscriber has %d buffered events, want %d", got, DefaultSubscriberBuffer)
	}

	// The healthy subscriber can drain its full buffer and keep receiving.
	for i := 0; i < DefaultSubscriberBuffer; i++ {
		<-healthy.C
	}
	h.Publish(makeEvent("p2"))
	select {
	case e := <-healthy.C:
		if pc, ok := e.(events.PostCreated); !ok || pc.Post.ID != "p2" {
			t.Errorf("healthy subscriber got %+v, want PostCreated p2", e)
		}
	default:
		t.Error("healthy subscriber stopped receiving after peer overflow")
	}
}

func TestHub_NoBacklogForNewSubscribers(t *testing.T) {
	h := New(nil)

	h.Publish(makeEvent("old"))

	sub := h.Subscribe()
	select {
	case e := <-sub.C:
		t.Errorf("new subscriber got backlog event %+v", e)
	default:
	}
}

func TestHub_Close(t *testing.T) {
	h := New(nil)

	a := h.Subscribe()
	b := h.Subscribe()

	h.Close()
	if h.Count() != 0 {
		t.Fatalf("Count() after Close = %d, want 0", h.Count())
	}
	if _, ok := <-a.C; ok {
		t.Error("subscriber a channel still open after Close")
	}
	if _, ok := <-b.C; ok {
		t.Error("subscriber b channel still open after Close")
	}
}
