package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Command is a remote control instruction.
type Command string

const (
	CommandStart Command = "start"
	CommandReset Command = "reset"
)

// ParseCommand decodes a control payload of the form {"command": "start"}.
// Command names are case-insensitive.
func ParseCommand(payload []byte) (Command, error) {
	var msg struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return "", fmt.Errorf("broker: decode control: %w", err)
	}

	switch cmd := Command(strings.ToLower(strings.TrimSpace(msg.Command))); cmd {
	case CommandStart, CommandReset:
		return cmd, nil
	default:
		return "", fmt.Errorf("broker: unknown command %q", msg.Command)
	}
}

// SubscribeControl delivers commands received on prefix/control to handler.
// Invalid payloads are logged and dropped. The handler runs on the MQTT
// client's goroutine and must not block.
func (c *Client) SubscribeControl(ctx context.Context, handler func(Command)) error {
	if !c.Connected() {
		return fmt.Errorf("broker: subscribe: %w", mqtt.ErrNotConnected)
	}

	topic := c.Topic("control")
	tok := c.client.Subscribe(topic, 1, func(_ mqtt.Client, m mqtt.Message) {
		cmd, err := ParseCommand(m.Payload())
		if err != nil {
			c.logger.Warn("ignoring control message", "topic", m.Topic(), "err", err)
			return
		}
		c.logger.Info("control command", "command", cmd)
		handler(cmd)
	})
	if err := wait(ctx, tok); err != nil {
		return fmt.Errorf("broker: subscribe %s: %w", topic, err)
	}
	return nil
}
