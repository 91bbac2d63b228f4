package monitor

import (
	"github.com/charmbracelet/log"

	"github.com/plumeworks/plume/internal/logging"
)

// LogListener writes every event to a structured logger.
type LogListener struct {
	logger *log.Logger
}

// NewLogListener creates a listener logging with the given logger, or the
// default pipeline component logger when nil.
func NewLogListener(logger *log.Logger) *LogListener {
	if logger == nil {
		logger = logging.New("pipeline")
	}
	return &LogListener{logger: logger}
}

var _ Listener = (*LogListener)(nil)

// OnEvent logs the event at a level matching its weight.
func (l *LogListener) OnEvent(ev Event) {
	fields := []any{"document", ev.DocumentID}
	if ev.PageName != "" {
		fields = append(fields, "page", ev.PageName)
	}
	if ev.State != "" {
		fields = append(fields, "state", ev.State)
	}
	if ev.Role != "" {
		fields = append(fields, "role", ev.Role)
	}
	if ev.Duration > 0 {
		fields = append(fields, "duration", ev.Duration)
	}
	if ev.InputTokens > 0 || ev.OutputTokens > 0 {
		fields = append(fields, "input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens)
	}
	if ev.Message != "" {
		fields = append(fields, "detail", ev.Message)
	}

	switch ev.Type {
	case EventRunFailed:
		l.logger.Error(string(ev.Type), fields...)
	case EventRunStarted, EventDocumentPublished:
		l.logger.Info(string(ev.Type), fields...)
	default:
		l.logger.Debug(string(ev.Type), fields...)
	}
}

// ChannelListener forwards events into a buffered channel. When the buffer
// is full the event is dropped rather than blocking the pipeline.
type ChannelListener struct {
	ch chan Event
}

// NewChannelListener creates a listener with the given buffer size.
func NewChannelListener(buffer int) *ChannelListener {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelListener{ch: make(chan Event, buffer)}
}

var _ Listener = (*ChannelListener)(nil)

// OnEvent performs a non-blocking send.
func (c *ChannelListener) OnEvent(ev Event) {
	select {
	case c.ch <- ev:
	default:
		// Consumer fell behind; drop rather than stall the run.
	}
}

// Events returns the receive side of the channel.
func (c *ChannelListener) Events() <-chan Event {
	return c.ch
}

// Close closes the channel. Call only after the producing monitor is done.
func (c *ChannelListener) Close() {
	close(c.ch)
}
