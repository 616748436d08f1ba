package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pitapat/internal/pkg/config"
	"pitapat/pkg/constants"
)

func receive(t *testing.T, ch <-chan []byte) *Message {
	t.Helper()
	select {
	case payload := <-ch:
		var msg Message
		require.NoError(t, json.Unmarshal(payload, &msg))
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestMessageJSONShape(t *testing.T) {
	buildID := int64(9)
	payload, err := (&Message{ProjectID: 1, Status: constants.ProjectStatusBuildSucceeded, CurrentBuildID: &buildID}).Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"projectId":1,"status":2,"currentBuildId":9,"currentDeployId":null}`, string(payload))
}

func TestHubDeliversToUser(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	mine, cancel, err := hub.Subscribe(ctx, 1)
	require.NoError(t, err)
	defer cancel()
	other, cancelOther, err := hub.Subscribe(ctx, 2)
	require.NoError(t, err)
	defer cancelOther()

	require.NoError(t, hub.Publish(ctx, 1, &Message{ProjectID: 7, Status: constants.ProjectStatusDeploying}))

	msg := receive(t, mine)
	assert.EqualValues(t, 7, msg.ProjectID)
	assert.Equal(t, constants.ProjectStatusDeploying, msg.Status)
	assert.Len(t, other, 0)
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	_, cancel, err := hub.Subscribe(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Subscribers(1))

	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers(1))
	assert.NoError(t, hub.Publish(context.Background(), 1, &Message{ProjectID: 1}))
}

func TestRedisBrokerRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	broker := NewRedisBroker(client, "pitapat:sse:", zap.NewNop())
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	ch, cancel, err := broker.Subscribe(ctx, 3)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, broker.Publish(ctx, 3, &Message{ProjectID: 5, Status: constants.ProjectStatusBuilding}))

	msg := receive(t, ch)
	assert.EqualValues(t, 5, msg.ProjectID)
	assert.Equal(t, constants.ProjectStatusBuilding, msg.Status)
}

func TestRedisBrokerPublishError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	broker := NewRedisBroker(client, "p:", zap.NewNop())
	assert.Error(t, broker.Publish(context.Background(), 1, &Message{ProjectID: 1}))
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, int64, *Message) error {
	return assert.AnError
}

func TestMultiNotifierContinuesAfterFailure(t *testing.T) {
	hub := NewHub()
	ch, cancel, err := hub.Subscribe(context.Background(), 1)
	require.NoError(t, err)
	defer cancel()

	multi := NewMultiNotifier(zap.NewNop(), failingPublisher{}, hub, NewLogNotifier(zap.NewNop()))
	err = multi.Publish(context.Background(), 1, &Message{ProjectID: 2})
	assert.ErrorIs(t, err, assert.AnError)
	assert.EqualValues(t, 2, receive(t, ch).ProjectID)
}
