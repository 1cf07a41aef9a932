package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryRoundTrip(t *testing.T) {
	q := NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	want := Message{Type: "attendance.marked", Body: []byte(`{"record_id":"r1"}`)}
	if err := q.Publish(ctx, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-msgs:
		if got.Type != want.Type || string(got.Body) != string(want.Body) {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishHonorsCancel(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	// fill the buffer, then cancel; the second publish must not block forever
	if err := q.Publish(ctx, Message{Type: "x"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	cancel()
	if err := q.Publish(ctx, Message{Type: "y"}); err == nil {
		t.Fatal("publish into a full queue with cancelled context must fail")
	}
}
