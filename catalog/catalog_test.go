package catalog

import (
	"testing"
	"time"

	"github.com/signalsfoundry/helioplot/model"
	"github.com/signalsfoundry/helioplot/series"
)

func magDataset(t *testing.T) *model.Dataset {
	t.Helper()
	f := series.New([]time.Time{time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)})
	if err := f.AddColumn("b", []float64{5.1}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	return &model.Dataset{
		Spacecraft: model.SpacecraftSolO,
		Instrument: model.InstrumentMag,
		Frame:      f,
	}
}

func TestPutAndGet(t *testing.T) {
	c := New()
	if err := c.Put(magDataset(t)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	key := model.Key{Spacecraft: model.SpacecraftSolO, Instrument: model.InstrumentMag}
	got := c.Get(key)
	if got == nil || got.Frame.Column("b")[0] != 5.1 {
		t.Fatalf("Get returned %#v", got)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestPutValidation(t *testing.T) {
	c := New()
	if err := c.Put(nil); err == nil {
		t.Fatalf("expected error for nil dataset")
	}
	if err := c.Put(&model.Dataset{Instrument: model.InstrumentMag}); err == nil {
		t.Fatalf("expected error for missing spacecraft")
	}
	if err := c.Put(&model.Dataset{Spacecraft: model.SpacecraftPSP}); err == nil {
		t.Fatalf("expected error for missing instrument")
	}
}

func TestPutReplacesSlot(t *testing.T) {
	c := New()
	if err := c.Put(magDataset(t)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	d := magDataset(t)
	d.Frame.Column("b")[0] = 7.7
	if err := c.Put(d); err != nil {
		t.Fatalf("replacing Put: %v", err)
	}

	key := model.Key{Spacecraft: model.SpacecraftSolO, Instrument: model.InstrumentMag}
	if got := c.Get(key).Frame.Column("b")[0]; got != 7.7 {
		t.Fatalf("slot not replaced, b = %v", got)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	c := New()

	var events []Event
	unsub := c.Subscribe(func(e Event) { events = append(events, e) })

	if err := c.Put(magDataset(t)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(events) != 1 || events[0].Type != EventDatasetUpdated {
		t.Fatalf("events after Put = %#v", events)
	}

	key := model.Key{Spacecraft: model.SpacecraftSolO, Instrument: model.InstrumentMag}
	c.Remove(key)
	if len(events) != 2 || events[1].Type != EventDatasetRemoved {
		t.Fatalf("events after Remove = %#v", events)
	}

	// Removing an empty slot emits nothing.
	c.Remove(key)
	if len(events) != 2 {
		t.Fatalf("empty Remove emitted an event")
	}

	unsub()
	if err := c.Put(magDataset(t)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("subscriber fired after unsubscribe")
	}
}

func TestUnsubscribeLeavesOthersAttached(t *testing.T) {
	c := New()

	var fired [3]int
	unsubs := make([]func(), 3)
	for i := range unsubs {
		i := i
		unsubs[i] = c.Subscribe(func(Event) { fired[i]++ })
	}

	// Dropping an earlier subscriber must not shift who a later
	// unsubscribe removes.
	unsubs[0]()
	unsubs[2]()

	if err := c.Put(magDataset(t)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if fired[0] != 0 || fired[2] != 0 {
		t.Fatalf("unsubscribed callbacks fired: %v", fired)
	}
	if fired[1] != 1 {
		t.Fatalf("remaining subscriber fired %d times, want 1", fired[1])
	}

	// A second call is a no-op.
	unsubs[2]()
	if err := c.Put(magDataset(t)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if fired[1] != 2 {
		t.Fatalf("remaining subscriber fired %d times, want 2", fired[1])
	}
}
