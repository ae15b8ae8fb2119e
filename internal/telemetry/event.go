// ABOUTME: Log event and severity types shared by the telemetry pipeline.
// ABOUTME: Levels mirror the five named severities written to requests.jsonl.

package telemetry

import (
	"strings"
	"time"
)

// Level is the severity of an event. Higher is more severe.
type Level int

const (
	LevelDebug    Level = 10
	LevelInfo     Level = 20
	LevelWarning  Level = 30
	LevelError    Level = 40
	LevelCritical Level = 50
)

// String returns the level name as written to the log.
func (l Level) String() string {
	switch {
	case l >= LevelCritical:
		return "CRITICAL"
	case l >= LevelError:
		return "ERROR"
	case l >= LevelWarning:
		return "WARNING"
	case l >= LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive
// and "WARN" is accepted for WARNING. Unknown names report ok=false and
// return LevelInfo.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARNING", "WARN":
		return LevelWarning, true
	case "ERROR":
		return LevelError, true
	case "CRITICAL", "FATAL":
		return LevelCritical, true
	default:
		return LevelInfo, false
	}
}

// Event is one structured log record before serialization.
//
// Extra keys are spread into the top level of the serialized object. A key
// that collides with timestamp, level, logger or message replaces the
// reserved value; callers are expected to avoid that.
type Event struct {
	Time    time.Time
	Level   Level
	Logger  string
	Message string
	ExcInfo string
	Extra   map[string]any
}

// Emitter accepts events. Implementations must not panic or block for
// longer than their own bounded I/O.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Event)

// Emit calls f(ev).
func (f EmitterFunc) Emit(ev Event) { f(ev) }

// Discard is an Emitter that drops every event.
var Discard Emitter = EmitterFunc(func(Event) {})
