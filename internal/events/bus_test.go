package events

import (
	"errors"
	"testing"
)

func TestRegisterDuplicateHandler(t *testing.T) {
	bus := NewBus()

	if err := bus.Register(KindAddFileRecord, func(Event) error { return nil }); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}

	err := bus.Register(KindAddFileRecord, func(Event) error { return nil })
	if !errors.Is(err, ErrDuplicateHandler) {
		t.Errorf("second Register() = %v, want ErrDuplicateHandler", err)
	}
}

func TestEnqueueWithoutHandler(t *testing.T) {
	bus := NewBus()

	if bus.Enqueue(New(KindAddFileRecord, nil)) {
		t.Error("Enqueue() = true for a kind with no handler")
	}
	if bus.Len() != 0 {
		t.Errorf("queue length = %d after rejected enqueue, want 0", bus.Len())
	}
}

func TestProcessNextFIFOOrder(t *testing.T) {
	bus := NewBus()

	var handled []Kind
	record := func(e Event) error {
		handled = append(handled, e.Kind)
		return nil
	}

	if err := bus.Register(KindAddFileRecord, record); err != nil {
		t.Fatal(err)
	}
	if err := bus.Register(KindUpdateFileRecord, record); err != nil {
		t.Fatal(err)
	}

	if !bus.Enqueue(New(KindAddFileRecord, nil)) {
		t.Fatal("enqueue A failed")
	}
	if !bus.Enqueue(New(KindUpdateFileRecord, nil)) {
		t.Fatal("enqueue B failed")
	}

	if err := bus.ProcessNext(); err != nil {
		t.Fatal(err)
	}
	if err := bus.ProcessNext(); err != nil {
		t.Fatal(err)
	}

	if len(handled) != 2 || handled[0] != KindAddFileRecord || handled[1] != KindUpdateFileRecord {
		t.Errorf("handled order = %v, want [add, update]", handled)
	}
}

func TestProcessNextEmptyQueue(t *testing.T) {
	bus := NewBus()

	if err := bus.ProcessNext(); err != nil {
		t.Errorf("ProcessNext() on empty queue = %v, want nil", err)
	}
}

func TestProcessNextPropagatesHandlerError(t *testing.T) {
	bus := NewBus()

	boom := errors.New("handler failure")
	if err := bus.Register(KindAddFileRecord, func(Event) error { return boom }); err != nil {
		t.Fatal(err)
	}

	bus.Enqueue(New(KindAddFileRecord, nil))

	if err := bus.ProcessNext(); !errors.Is(err, boom) {
		t.Errorf("ProcessNext() = %v, want handler error", err)
	}

	// The event is discarded even though the handler failed.
	if bus.Len() != 0 {
		t.Errorf("queue length = %d after failed handling, want 0", bus.Len())
	}
}

func TestEnqueueFromHandlerDoesNotDeadlock(t *testing.T) {
	bus := NewBus()

	var updates int
	if err := bus.Register(KindUpdateFileRecord, func(Event) error {
		updates++
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := bus.Register(KindAddFileRecord, func(Event) error {
		if !bus.Enqueue(New(KindUpdateFileRecord, nil)) {
			t.Error("enqueue from handler failed")
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	bus.Enqueue(New(KindAddFileRecord, nil))

	if err := bus.ProcessAll(); err != nil {
		t.Fatal(err)
	}

	if updates != 1 {
		t.Errorf("update handler ran %d times, want 1", updates)
	}
}

func TestDuplicateEventsBothExecute(t *testing.T) {
	bus := NewBus()

	var adds int
	if err := bus.Register(KindAddFileRecord, func(Event) error {
		adds++
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	payload := FileChange{BasePathID: 1, Subdir: "2024", Filename: "img1.jpg", ModTime: 1000}
	bus.Enqueue(New(KindAddFileRecord, payload))
	bus.Enqueue(New(KindAddFileRecord, payload))

	if err := bus.ProcessAll(); err != nil {
		t.Fatal(err)
	}

	// No coalescing: both events run, handlers must be idempotent-safe.
	if adds != 2 {
		t.Errorf("add handler ran %d times, want 2", adds)
	}
}

func TestClear(t *testing.T) {
	bus := NewBus()

	if err := bus.Register(KindAddFileRecord, func(Event) error { return nil }); err != nil {
		t.Fatal(err)
	}

	bus.Enqueue(New(KindAddFileRecord, nil))
	bus.Enqueue(New(KindAddFileRecord, nil))
	bus.Clear()

	if bus.Len() != 0 {
		t.Errorf("queue length = %d after Clear(), want 0", bus.Len())
	}
}
