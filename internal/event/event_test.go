package event

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBus(t *testing.T) {
	bus := NewBus()
	first, unsubFirst := bus.Subscribe()
	second, unsubSecond := bus.Subscribe()
	defer unsubSecond()

	bus.Publish(New(TypeOrderCreated, "u1", OrderCreated{OrderID: "o1"}))

	for _, ch := range []<-chan Event{first, second} {
		select {
		case e := <-ch:
			assert.Equal(t, TypeOrderCreated, e.Type)
			assert.Equal(t, "u1", e.ActorID)
			assert.NotEmpty(t, e.ID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	unsubFirst()
	_, open := <-first
	assert.False(t, open)

	// publishing after an unsubscribe must not panic on the closed channel
	bus.Publish(New(TypeOrderCreated, "u1", nil))
	assert.Len(t, second, 1)
}

func TestInMemoryBus_DropsWhenFull(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for range 150 {
		bus.Publish(New(TypeProductUpdated, "", nil))
	}

	assert.Len(t, ch, 100)
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.msgs)
}

func TestKafkaSink(t *testing.T) {
	bus := NewBus()
	writer := &fakeWriter{}
	sink := &KafkaSink{writer: writer, writeTimeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sink.Run(ctx, bus)
		close(done)
	}()

	require.Eventually(t, func() bool {
		bus.Publish(New(TypeAnswerAdded, "u2", AnswerAdded{CourseID: "c1"}))
		return writer.count() > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	writer.mu.Lock()
	defer writer.mu.Unlock()
	msg := writer.msgs[0]
	assert.Equal(t, "answer.added", string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "answer.added", decoded["type"])
	assert.Equal(t, "c1", decoded["payload"].(map[string]any)["course_id"])
}
