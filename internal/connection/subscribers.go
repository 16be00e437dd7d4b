package connection

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/rickgao/vio-data/internal/model"
)

// Subscriber receives every snapshot update.
type Subscriber interface {
	OnUpdate(ctx context.Context, m *model.MarketInstance) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, m *model.MarketInstance) error

// OnUpdate calls f.
func (f SubscriberFunc) OnUpdate(ctx context.Context, m *model.MarketInstance) error {
	return f(ctx, m)
}

// SubscriptionID identifies a registration.
type SubscriptionID string

type subscription struct {
	id  SubscriptionID
	sub Subscriber
}

// Registry is the set of subscribers. It may be changed at any time,
// including during a dispatch.
type Registry struct {
	mu   sync.RWMutex
	subs []subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers s. A comparable subscriber that is already present
// keeps its registration and its id is returned again. Function adapters are
// not comparable, so each call registers a new entry.
func (r *Registry) Subscribe(s Subscriber) (SubscriptionID, error) {
	if isNil(s) {
		return "", ErrInvalidSubscriber
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if reflect.TypeOf(s).Comparable() {
		for _, e := range r.subs {
			if reflect.TypeOf(e.sub) == reflect.TypeOf(s) && e.sub == s {
				return e.id, nil
			}
		}
	}

	id := SubscriptionID(uuid.NewString())
	r.subs = append(r.subs, subscription{id: id, sub: s})
	return id, nil
}

// Unsubscribe removes a registration. It reports whether id was present.
func (r *Registry) Unsubscribe(id SubscriptionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.subs {
		if e.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns the current subscribers in registration order.
func (r *Registry) Snapshot() []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subscriber, len(r.subs))
	for i, e := range r.subs {
		out[i] = e.sub
	}
	return out
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

func isNil(s Subscriber) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Chan, reflect.Interface, reflect.Slice:
		return v.IsNil()
	}
	return false
}
