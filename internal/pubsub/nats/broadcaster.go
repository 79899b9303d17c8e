package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"vaultScope/internal/model"
)

// Client publishes records as JSON on prefix.<kind> subjects.
type Client struct {
	nc     *nats.Conn
	prefix string
	log    *zap.Logger
}

func New(url, prefix string, log *zap.Logger) (*Client, error) {
	if url == "" {
		return nil, errors.New("nats url is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if prefix == "" {
		prefix = "vaultscope"
	}

	opts := []nats.Option{
		nats.Name("vaultscope"),
		nats.Timeout(5 * time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	log.Info("connected to nats", zap.String("url", url))
	return &Client{nc: nc, prefix: prefix, log: log}, nil
}

// Subject returns the subject records of kind are published on.
func (c *Client) Subject(kind string) string {
	return c.prefix + "." + strings.ToLower(kind)
}

func (c *Client) Publish(ctx context.Context, records []model.Entity) error {
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", r.EntityKind(), r.EntityID(), err)
		}
		if err := c.nc.Publish(c.Subject(r.EntityKind()), data); err != nil {
			return fmt.Errorf("publish %s: %w", r.EntityID(), err)
		}
	}
	return nil
}

func (c *Client) Health(_ context.Context) error {
	if !c.Ready() {
		return fmt.Errorf("nats status %s", c.Status())
	}
	return nil
}

func (c *Client) Ready() bool {
	if c.nc == nil {
		return false
	}
	return c.nc.Status() == nats.CONNECTED
}

func (c *Client) Status() nats.Status {
	if c.nc == nil {
		return nats.DISCONNECTED
	}
	return c.nc.Status()
}

func (c *Client) Close() error {
	if c.nc == nil || c.nc.Status() == nats.CLOSED {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		c.log.Error("drain nats connection", zap.Error(err))
		c.nc.Close()
		return fmt.Errorf("drain nats: %w", err)
	}
	c.nc.Close()
	return nil
}
