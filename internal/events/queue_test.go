package events

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// slowSink records events, sleeping longer on some types.
type slowSink struct {
	mu     sync.Mutex
	got    []Type
	delays map[Type]time.Duration
	block  chan struct{}
}

func (s *slowSink) Notify(_ context.Context, ev Event) error {
	if s.block != nil {
		<-s.block
	}
	time.Sleep(s.delays[ev.Type])
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, ev.Type)
	return nil
}

func (s *slowSink) types() []Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Type(nil), s.got...)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestQueuePreservesOrder(t *testing.T) {
	sink := &slowSink{delays: map[Type]time.Duration{TypeLevelAdvanced: 30 * time.Millisecond}}
	q := NewQueue(sink, quietLogger(), 8, time.Second)

	want := []Type{TypeStarted, TypeLevelAdvanced, TypeFinished, TypeRestarted}
	for _, typ := range want {
		if err := q.Notify(context.Background(), Event{Type: typ}); err != nil {
			t.Fatalf("Notify(%s) failed: %v", typ, err)
		}
	}
	q.Close()

	got := sink.types()
	if len(got) != len(want) {
		t.Fatalf("delivered %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivered %v, expected %v", got, want)
		}
	}
}

func TestQueueFullDoesNotBlock(t *testing.T) {
	sink := &slowSink{block: make(chan struct{})}
	q := NewQueue(sink, quietLogger(), 1, time.Second)

	// The first event is taken by the delivery goroutine, which then waits
	// on block. Keep sending until the buffer overflows.
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = q.Notify(context.Background(), Event{Type: TypeSteer})
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Notify error = %v, expected ErrQueueFull", err)
	}

	close(sink.block)
	q.Close()
}

func TestQueueClosed(t *testing.T) {
	sink := &slowSink{}
	q := NewQueue(sink, quietLogger(), 0, 0)
	q.Close()
	q.Close()

	if err := q.Notify(context.Background(), Event{Type: TypeStarted}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Notify after Close = %v, expected ErrQueueClosed", err)
	}
	if len(sink.types()) != 0 {
		t.Errorf("closed queue delivered %v", sink.types())
	}
}
