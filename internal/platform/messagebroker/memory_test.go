package messagebroker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker_QueueGroupReceivesOnce(t *testing.T) {
	b := NewMemoryBroker()

	var first, second int
	_, err := b.Subscribe(context.Background(), "test.subject", "workers", func(m Message) { first++ })
	require.NoError(t, err)
	_, err = b.Subscribe(context.Background(), "test.subject", "workers", func(m Message) { second++ })
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "test.subject", []byte("payload")))

	assert.Equal(t, 1, first+second)
}

func TestMemoryBroker_UngroupedSubscribersAllReceive(t *testing.T) {
	b := NewMemoryBroker()

	var got []string
	_, err := b.Subscribe(context.Background(), "test.subject", "", func(m Message) {
		got = append(got, string(m.Data()))
	})
	require.NoError(t, err)
	_, err = b.Subscribe(context.Background(), "test.subject", "", func(m Message) {
		got = append(got, string(m.Data()))
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "test.subject", []byte("payload")))

	assert.Equal(t, []string{"payload", "payload"}, got)
}

func TestMemoryBroker_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewMemoryBroker()

	var count int
	sub, err := b.Subscribe(context.Background(), "test.subject", "", func(m Message) { count++ })
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "test.subject", nil))
	require.NoError(t, sub.Unsubscribe())
	require.NoError(t, b.Publish(context.Background(), "test.subject", nil))

	assert.Equal(t, 1, count)
}

func TestMemoryBroker_SubjectIsolation(t *testing.T) {
	b := NewMemoryBroker()

	var count int
	_, err := b.Subscribe(context.Background(), "subject.a", "", func(m Message) { count++ })
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "subject.b", nil))

	assert.Zero(t, count)
}
