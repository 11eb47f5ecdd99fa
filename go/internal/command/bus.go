package command

import "github.com/rs/zerolog/log"

// Bus queues UI commands for the session loop. Each queued command is paired
// with the latest AppState at the moment it is drained, not at enqueue time.
type Bus struct {
	ch chan Command
}

// NewBus returns a Bus with the given queue capacity.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan Command, buffer)}
}

// Dispatch enqueues cmd without blocking. A full queue drops the command with
// a warning; UI intents are not worth stalling the emitter for.
func (b *Bus) Dispatch(cmd Command) {
	select {
	case b.ch <- cmd:
	default:
		log.Warn().Msgf("command queue full, dropping %T", cmd)
	}
}

// Commands exposes the queue for the session loop to drain.
func (b *Bus) Commands() <-chan Command {
	return b.ch
}
