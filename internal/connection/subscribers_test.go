package connection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/rickgao/vio-data/internal/model"
)

type namedSubscriber struct{ name string }

func (namedSubscriber) OnUpdate(context.Context, *model.MarketInstance) error { return nil }

func TestRegistry_Subscribe(t *testing.T) {
	r := NewRegistry()

	id, err := r.Subscribe(&recorder{})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		t.Errorf("id %q is not a UUID: %v", id, err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_InvalidSubscriber(t *testing.T) {
	r := NewRegistry()

	var nilRecorder *recorder
	var nilFunc SubscriberFunc

	for name, s := range map[string]Subscriber{
		"nil interface": nil,
		"nil pointer":   nilRecorder,
		"nil func":      nilFunc,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := r.Subscribe(s); !errors.Is(err, ErrInvalidSubscriber) {
				t.Errorf("Subscribe() error = %v, want ErrInvalidSubscriber", err)
			}
		})
	}

	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistry_DuplicateIsNoop(t *testing.T) {
	r := NewRegistry()

	rec := &recorder{}
	id1, _ := r.Subscribe(rec)
	id2, _ := r.Subscribe(rec)
	if id1 != id2 {
		t.Errorf("duplicate ids differ: %s vs %s", id1, id2)
	}

	// Equal values are the same subscriber.
	a, _ := r.Subscribe(namedSubscriber{"a"})
	b, _ := r.Subscribe(namedSubscriber{"a"})
	if a != b {
		t.Error("equal value subscribers should share a registration")
	}
	r.Subscribe(namedSubscriber{"b"})

	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

func TestRegistry_FuncsAreDistinct(t *testing.T) {
	r := NewRegistry()
	f := SubscriberFunc(func(context.Context, *model.MarketInstance) error { return nil })

	id1, _ := r.Subscribe(f)
	id2, _ := r.Subscribe(f)
	if id1 == id2 {
		t.Error("function subscribers should get separate registrations")
	}
}

func TestRegistry_Unsubscribe(t *testing.T) {
	r := NewRegistry()
	first := &recorder{}
	second := &recorder{}

	id, _ := r.Subscribe(first)
	r.Subscribe(second)

	snap := r.Snapshot()

	if !r.Unsubscribe(id) {
		t.Error("Unsubscribe() = false, want true")
	}
	if r.Unsubscribe(id) {
		t.Error("second Unsubscribe() = true, want false")
	}

	got := r.Snapshot()
	if len(got) != 1 || got[0] != second {
		t.Errorf("Snapshot() after Unsubscribe = %v", got)
	}

	// Earlier snapshots are unaffected.
	if len(snap) != 2 || snap[0] != first {
		t.Error("earlier snapshot changed")
	}

	// Re-subscribing gets a new id.
	id2, _ := r.Subscribe(first)
	if id2 == id {
		t.Error("re-subscribe reused the removed id")
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := r.Subscribe(&recorder{})
			r.Snapshot()
			if i%2 == 0 {
				r.Unsubscribe(id)
			}
		}()
	}
	wg.Wait()

	if r.Len() != 10 {
		t.Errorf("Len() = %d, want 10", r.Len())
	}
}
