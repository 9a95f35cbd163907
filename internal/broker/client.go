// Package broker connects the game to an MQTT broker. Events are published
// as JSON and remote start/reset commands are received on a control topic.
//
// A Client is constructed explicitly from Config and passed to whoever
// needs it; the underlying MQTT connection is created lazily.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/vovakirdan/mazehack/internal/events"
)

// DefaultURL is the broker address used when none is configured.
const DefaultURL = "tcp://192.168.1.100:1883"

// Config configures the broker connection.
type Config struct {
	Enabled     bool          `yaml:"enabled"`
	URL         string        `yaml:"url"`
	ClientID    string        `yaml:"client_id"`    // empty generates mazehack-<uuid>
	TopicPrefix string        `yaml:"topic_prefix"` // e.g. "mazehack" -> mazehack/events
	Timeout     time.Duration `yaml:"timeout"`

	// SkipStatus stops Notify from updating the retained status topic.
	// Set it when several games share one client, since one retained
	// status cannot describe them all.
	SkipStatus bool `yaml:"-"`
}

// DefaultConfig returns a disabled broker pointing at DefaultURL.
func DefaultConfig() Config {
	return Config{
		URL:         DefaultURL,
		TopicPrefix: "mazehack",
		Timeout:     5 * time.Second,
	}
}

// ErrDisabled is returned by Connect when the broker is not enabled.
var ErrDisabled = errors.New("broker: disabled")

// Client wraps an MQTT client bound to one broker address.
type Client struct {
	cfg    Config
	logger *log.Logger

	once   sync.Once
	client mqtt.Client
}

// New creates a client for cfg. No connection is made until Connect.
func New(cfg Config, logger *log.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	cfg.URL = normalizeURL(cfg.URL)
	if cfg.ClientID == "" {
		cfg.ClientID = "mazehack-" + uuid.NewString()
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "mazehack"
	}
	cfg.TopicPrefix = strings.TrimSuffix(cfg.TopicPrefix, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{cfg: cfg, logger: logger.WithPrefix("broker")}
}

// normalizeURL maps http:// addresses, as written in older configs, to the
// tcp:// scheme the MQTT client expects.
func normalizeURL(u string) string {
	switch {
	case strings.HasPrefix(u, "http://"):
		return "tcp://" + strings.TrimPrefix(u, "http://")
	case !strings.Contains(u, "://"):
		return "tcp://" + u
	}
	return u
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Client returns the underlying MQTT client, creating it on first use.
func (c *Client) Client() mqtt.Client {
	c.once.Do(func() {
		opts := mqtt.NewClientOptions().
			AddBroker(c.cfg.URL).
			SetClientID(c.cfg.ClientID).
			SetConnectTimeout(c.cfg.Timeout).
			SetAutoReconnect(true).
			SetConnectionLostHandler(func(_ mqtt.Client, err error) {
				c.logger.Warn("connection lost", "err", err)
			}).
			SetOnConnectHandler(func(mqtt.Client) {
				c.logger.Info("connected", "url", c.cfg.URL)
			})
		c.client = mqtt.NewClient(opts)
	})
	return c.client
}

// Topic returns prefix/name.
func (c *Client) Topic(name string) string {
	return c.cfg.TopicPrefix + "/" + name
}

// Connect dials the broker.
func (c *Client) Connect(ctx context.Context) error {
	if !c.cfg.Enabled {
		return ErrDisabled
	}
	if err := wait(ctx, c.Client().Connect()); err != nil {
		return fmt.Errorf("broker: connect %s: %w", c.cfg.URL, err)
	}
	return nil
}

// Connected reports whether the client currently holds a connection.
func (c *Client) Connected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Notify publishes ev as JSON to prefix/events.
func (c *Client) Notify(ctx context.Context, ev events.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("broker: encode event: %w", err)
	}
	if err := c.publish(ctx, c.Topic("events"), payload); err != nil {
		return err
	}
	if status, ok := c.statusFor(ev.Type); ok {
		return c.PublishStatus(ctx, status)
	}
	return nil
}

// statusFor maps run lifecycle events to the retained status.
func (c *Client) statusFor(t events.Type) (string, bool) {
	if c.cfg.SkipStatus {
		return "", false
	}
	switch t {
	case events.TypeStarted:
		return StatusRunning, true
	case events.TypeFinished:
		return StatusCompleted, true
	case events.TypeRestarted:
		return StatusIdle, true
	}
	return "", false
}

// Status values published to prefix/status.
const (
	StatusIdle      = "idle"
	StatusRunning   = "running"
	StatusCompleted = "completed"
)

// PublishStatus publishes {"status": status} to prefix/status as a retained
// message, so late subscribers see the current state.
func (c *Client) PublishStatus(ctx context.Context, status string) error {
	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("broker: encode status: %w", err)
	}
	if !c.Connected() {
		return fmt.Errorf("broker: publish status: %w", mqtt.ErrNotConnected)
	}
	if err := wait(ctx, c.client.Publish(c.Topic("status"), 1, true, payload)); err != nil {
		return fmt.Errorf("broker: publish status: %w", err)
	}
	return nil
}

func (c *Client) publish(ctx context.Context, topic string, payload []byte) error {
	if !c.Connected() {
		return fmt.Errorf("broker: publish %s: %w", topic, mqtt.ErrNotConnected)
	}
	if err := wait(ctx, c.client.Publish(topic, 0, false, payload)); err != nil {
		return fmt.Errorf("broker: publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects, allowing 250ms for in-flight work.
func (c *Client) Close() {
	if c.Connected() {
		c.client.Disconnect(250)
	}
}

func wait(ctx context.Context, t mqtt.Token) error {
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ events.Notifier = (*Client)(nil)
