package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mazehack/internal/broker"
)

const controlBufferSize = 16

// Sender is the part of tea.Program that ForwardControl needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ForwardControl returns a control handler that never blocks its caller.
// Commands are buffered and handed to p as ControlMsg, in arrival order,
// until ctx is done. Commands arriving while the buffer is full are
// dropped.
func ForwardControl(ctx context.Context, p Sender, logger *log.Logger) func(broker.Command) {
	if logger == nil {
		logger = log.Default()
	}
	ch := make(chan broker.Command, controlBufferSize)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case cmd := <-ch:
				p.Send(ControlMsg{Command: cmd})
			}
		}
	}()

	return func(cmd broker.Command) {
		select {
		case ch <- cmd:
		default:
			logger.Warn("control command dropped", "command", cmd)
		}
	}
}
