package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadpool/internal/platform/logger"
	"nomadpool/pkg/requestcontext"
)

type captureSink struct {
	got chan Event
}

func (s *captureSink) Publish(_ context.Context, event Event) error {
	s.got <- event
	return nil
}

func TestEmitFillsIdentityAndPersists(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, logger.New())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	require.NoError(t, pub.Emit(ctx, Event{Kind: KindPolicyCreated, Principal: "nomad-1", PolicyID: 1, Amount: 1500}))

	listed, err := pub.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.NotEmpty(t, listed[0].ID)
	assert.Equal(t, now, listed[0].Timestamp)
	assert.Equal(t, KindPolicyCreated, listed[0].Kind)
}

func TestWorkerForwardsToSink(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, logger.New())
	sink := &captureSink{got: make(chan Event, 1)}
	worker := NewWorker(sink, pub.Inbox(), logger.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	require.NoError(t, pub.Emit(ctx, Event{Kind: KindClaimSubmitted, Principal: "nomad-2", ClaimID: 7}))

	select {
	case event := <-sink.got:
		assert.Equal(t, KindClaimSubmitted, event.Kind)
		assert.Equal(t, "nomad-2", event.Principal.String())
	case <-time.After(2 * time.Second):
		t.Fatal("sink did not receive event")
	}
}
