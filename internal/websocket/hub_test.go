package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"lumen-service/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitForPayload(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pushed event")
		return nil
	}
}

func TestHubDeliversToConnectedUser(t *testing.T) {
	h := NewHub(nil, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := NewClient(h, nil, 1, zap.NewNop())
	h.Register <- c

	other := NewClient(h, nil, 2, zap.NewNop())
	h.Register <- other

	h.PushNotification(1, &notification.Notification{
		ID:      10,
		UserID:  1,
		Type:    notification.TypeSubscription,
		Title:   "Plan upgraded",
		Message: "You are now on the Premium Fiber plan.",
	})

	payload := waitForPayload(t, c)

	var ev struct {
		Type string                    `json:"type"`
		Data notification.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &ev))
	assert.Equal(t, "notification", ev.Type)
	assert.Equal(t, int64(10), ev.Data.ID)
	assert.Equal(t, "Plan upgraded", ev.Data.Title)

	// The other user's connection sees nothing.
	select {
	case <-other.send:
		t.Fatal("event leaked to another user")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFansOutToAllConnections(t *testing.T) {
	h := NewHub(nil, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	first := NewClient(h, nil, 1, zap.NewNop())
	second := NewClient(h, nil, 1, zap.NewNop())
	h.Register <- first
	h.Register <- second

	h.PushNotification(1, &notification.Notification{ID: 1, UserID: 1, Title: "hi"})

	waitForPayload(t, first)
	waitForPayload(t, second)
}

func TestHubShutdownClosesClients(t *testing.T) {
	h := NewHub(nil, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := NewClient(h, nil, 1, zap.NewNop())
	h.Register <- c

	cancel()

	select {
	case _, ok := <-c.send:
		assert.False(t, ok, "send channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
}
