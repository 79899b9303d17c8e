package nats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultScope/internal/model"
)

func runServer(t *testing.T) string {
	t.Helper()
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	s := natsserver.RunServer(&opts)
	t.Cleanup(s.Shutdown)
	return s.ClientURL()
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New("", "", nil)
	require.Error(t, err)
}

func TestNilConnection(t *testing.T) {
	c := &Client{}
	assert.False(t, c.Ready())
	assert.Equal(t, nats.DISCONNECTED, c.Status())
	assert.NoError(t, c.Close())
	assert.Error(t, c.Health(context.Background()))
}

func TestPublishRecords(t *testing.T) {
	url := runServer(t)

	client, err := New(url, "test", nil)
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Health(context.Background()))

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()
	msgs := make(chan *nats.Msg, 4)
	_, err = sub.ChanSubscribe("test.>", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	swap := &model.Swap{ID: "0xaa4", PoolID: "0xpool", ValueUSD: decimal.NewFromInt(99)}
	price := &model.TokenPrice{ID: "0xpool-0xa-0xb-1", Price: decimal.NewFromInt(2)}
	require.NoError(t, client.Publish(context.Background(), []model.Entity{swap, price}))

	subjects := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-msgs:
			subjects[msg.Subject] = true
			if msg.Subject == "test.swap" {
				var got model.Swap
				require.NoError(t, json.Unmarshal(msg.Data, &got))
				assert.Equal(t, "0xaa4", got.ID)
				assert.True(t, got.ValueUSD.Equal(decimal.NewFromInt(99)))
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
	assert.True(t, subjects["test.swap"])
	assert.True(t, subjects["test.tokenprice"])
}

func TestCloseIsIdempotent(t *testing.T) {
	url := runServer(t)
	client, err := New(url, "", nil)
	require.NoError(t, err)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.Equal(t, nats.CLOSED, client.Status())
}
