package mq

import (
	"context"
	"sync"
	"testing"

	"chat_server/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelPublisherDeliversInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []EventType
	p := NewChannelPublisher(8, func(_ context.Context, evt Event) {
		mu.Lock()
		got = append(got, evt.Type)
		mu.Unlock()
	})

	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, NewEvent(EventContactRequested, "U1", "U2", "C1")))
	require.NoError(t, p.Publish(ctx, NewEvent(EventContactAccepted, "U2", "U1", "C1")))
	require.NoError(t, p.Close())

	assert.Equal(t, []EventType{EventContactRequested, EventContactAccepted}, got)
	assert.ErrorIs(t, p.Publish(ctx, NewEvent(EventMessageSent, "U1", "U2", "M1")), ErrPublisherClosed)
}

func TestChannelPublisherSurvivesHandlerPanic(t *testing.T) {
	count := 0
	p := NewChannelPublisher(4,
		func(context.Context, Event) { panic("boom") },
		func(context.Context, Event) { count++ },
	)
	require.NoError(t, p.Publish(context.Background(), NewEvent(EventGroupCreated, "U1", "", "G1")))
	require.NoError(t, p.Close())
	assert.Equal(t, 1, count)
}

func TestNewSelectsByMode(t *testing.T) {
	p, err := New(&config.KafkaConfig{MessageMode: "none"})
	require.NoError(t, err)
	assert.IsType(t, nopPublisher{}, p)

	p, err = New(&config.KafkaConfig{MessageMode: "channel"})
	require.NoError(t, err)
	assert.IsType(t, &channelPublisher{}, p)
	require.NoError(t, p.Close())

	_, err = New(&config.KafkaConfig{MessageMode: "carrier-pigeon"})
	assert.Error(t, err)
}
