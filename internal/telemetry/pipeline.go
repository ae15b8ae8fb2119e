// ABOUTME: Pipeline composes formatter, sink and relay into one explicit logger.
// ABOUTME: Constructed once at startup and passed to every component that logs.

package telemetry

import (
	"errors"
	"log/slog"
	"time"
)

// Pipeline filters events by level, formats them, appends them to the
// sink and then relays them. It implements Emitter.
type Pipeline struct {
	sink     *Sink
	relay    *Relay
	minLevel Level
	now      func() time.Time
	logger   *slog.Logger
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Sink     *Sink
	Relay    *Relay // optional
	MinLevel Level  // zero means LevelDebug
	Now      func() time.Time
	Logger   *slog.Logger // diagnostics for sink failures; must not write back into the pipeline
}

// NewPipeline returns a Pipeline writing to cfg.Sink.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Sink == nil {
		return nil, errors.New("sink is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	relay := cfg.Relay
	if relay == nil {
		relay = NewRelay(RelayConfig{Logger: logger})
	}

	return &Pipeline{
		sink:     cfg.Sink,
		relay:    relay,
		minLevel: cfg.MinLevel,
		now:      now,
		logger:   logger,
	}, nil
}

// Sink returns the pipeline's sink.
func (p *Pipeline) Sink() *Sink { return p.sink }

// Enabled reports whether events at level would be written.
func (p *Pipeline) Enabled(level Level) bool {
	return level >= p.minLevel
}

// Emit writes ev. The relay runs after the sink append has released its
// lock, and regardless of whether the append succeeded.
func (p *Pipeline) Emit(ev Event) {
	if !p.Enabled(ev.Level) {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = p.now()
	}

	line := Format(ev)

	if err := p.sink.Append(line); errors.Is(err, ErrPrune) {
		p.logger.Warn("log retention pruning failed", "error", err)
	} else if err != nil {
		p.logger.Warn("log sink append failed", "error", err)
	}
	p.relay.Deliver(line)
}

// Info emits an INFO event.
func (p *Pipeline) Info(logger, message string, extra map[string]any) {
	p.Emit(Event{Level: LevelInfo, Logger: logger, Message: message, Extra: extra})
}

// Close closes the sink.
func (p *Pipeline) Close() error {
	return p.sink.Close()
}
