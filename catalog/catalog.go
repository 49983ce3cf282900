// Package catalog is the in-memory store of fetched datasets. The quicklook
// server refreshes it in the background and renders figures from whatever is
// currently held; subscribers learn about updates without polling.
package catalog

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/helioplot/model"
)

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventDatasetUpdated EventType = iota
	EventDatasetRemoved
)

// Event is emitted to subscribers when a dataset slot changes.
type Event struct {
	Type EventType
	Key  model.Key
}

// Catalog is a thread-safe map from (spacecraft, instrument) to the most
// recently fetched dataset.
type Catalog struct {
	mu       sync.RWMutex
	datasets map[model.Key]*model.Dataset
	subs     map[int]func(Event)
	nextSub  int
}

// New constructs an empty catalog.
func New() *Catalog {
	return &Catalog{
		datasets: make(map[model.Key]*model.Dataset),
		subs:     make(map[int]func(Event)),
	}
}

// Put stores or replaces the dataset for its (spacecraft, instrument) slot
// and notifies subscribers. The dataset must carry a known spacecraft and a
// non-empty instrument.
func (c *Catalog) Put(d *model.Dataset) error {
	if d == nil {
		return fmt.Errorf("nil dataset")
	}
	if d.Spacecraft == model.SpacecraftUnknown {
		return fmt.Errorf("dataset for instrument %q has no spacecraft", d.Instrument)
	}
	if d.Instrument == "" {
		return fmt.Errorf("dataset for %s has no instrument", d.Spacecraft)
	}

	key := model.Key{Spacecraft: d.Spacecraft, Instrument: d.Instrument}
	c.mu.Lock()
	c.datasets[key] = d
	subs := c.snapshotSubsLocked()
	c.mu.Unlock()

	// Notify outside the lock so a subscriber can read the catalog.
	for _, sub := range subs {
		sub(Event{Type: EventDatasetUpdated, Key: key})
	}
	return nil
}

// Get returns the dataset for the key, or nil when the slot is empty.
func (c *Catalog) Get(key model.Key) *model.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.datasets[key]
}

// Remove clears a slot and notifies subscribers if something was held.
func (c *Catalog) Remove(key model.Key) {
	c.mu.Lock()
	_, existed := c.datasets[key]
	delete(c.datasets, key)
	subs := c.snapshotSubsLocked()
	c.mu.Unlock()

	if !existed {
		return
	}
	for _, sub := range subs {
		sub(Event{Type: EventDatasetRemoved, Key: key})
	}
}

// Keys returns a snapshot of the occupied slots.
func (c *Catalog) Keys() []model.Key {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]model.Key, 0, len(c.datasets))
	for k := range c.datasets {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of occupied slots.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.datasets)
}

// Subscribe registers a callback for catalog events and returns an
// unsubscribe function. Unsubscribing is idempotent and does not affect
// other subscribers.
func (c *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Catalog) snapshotSubsLocked() []func(Event) {
	subs := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}
