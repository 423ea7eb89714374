package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *memReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		m := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *memReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *memReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *memReader) commits() []kafka.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]kafka.Message{}, r.committed...)
}

func msg(partition int, offset int64) kafka.Message {
	return kafka.Message{Topic: "payment.confirmed", Partition: partition, Offset: offset}
}

func TestConsumerRetriesFailedMessageBeforeCommittingLaterOffsets(t *testing.T) {
	r := &memReader{pending: []kafka.Message{msg(0, 10), msg(0, 11), msg(1, 5)}}
	c := newConsumer(r, 2, zap.NewNop())
	c.retryBase, c.retryLimit = time.Millisecond, 5*time.Millisecond

	var (
		mu    sync.Mutex
		tries = map[int64]int{}
		order []int64
	)
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		tries[m.Offset]++
		if m.Offset == 10 && tries[10] < 3 {
			return errors.New("db down")
		}
		if m.Partition == 0 {
			order = append(order, m.Offset)
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()

	require.Eventually(t, func() bool { return len(r.commits()) == 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	var p0 []int64
	for _, m := range r.commits() {
		if m.Partition == 0 {
			p0 = append(p0, m.Offset)
		}
	}
	assert.Equal(t, []int64{10, 11}, p0)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, tries[10])
	assert.Equal(t, []int64{10, 11}, order)
	assert.True(t, r.closed)
}

func TestConsumerStopsWhileEverythingFails(t *testing.T) {
	pending := make([]kafka.Message, 0, 500)
	for i := 0; i < 500; i++ {
		pending = append(pending, msg(i%3, int64(i)))
	}
	r := &memReader{pending: pending}
	c := newConsumer(r, 2, zap.NewNop())
	c.retryBase, c.retryLimit = time.Millisecond, 2*time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, func(context.Context, kafka.Message) error { return errors.New("always") })
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
	assert.Empty(t, r.commits())
}
