// ABOUTME: Call-instrumentation middleware emitting tool_call / tool_result / tool_error events.
// ABOUTME: Logging failures are contained; tool errors and panics pass through unchanged.

package tools

import (
	"context"
	"reflect"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/2389/hiring-router/internal/telemetry"
)

// LoggerName is the logger field carried by every call record.
const LoggerName = "hiring_router"

// Event names of a call record.
const (
	EventCall   = "tool_call"
	EventResult = "tool_result"
	EventError  = "tool_error"
)

// GoexitInfo is the exc_info of a call whose goroutine exited before the
// tool returned.
const GoexitInfo = "runtime.Goexit: tool did not return"

// Instrument returns middleware that records every invocation as one
// tool_call event followed by exactly one tool_result or tool_error event,
// all sharing a fresh request_id. Argument values are never recorded.
// An empty clientID is logged as null.
func Instrument(em telemetry.Emitter, clientID string) Middleware {
	if em == nil {
		em = telemetry.Discard
	}
	var client any
	if clientID != "" {
		client = clientID
	}

	return func(name string, next Handler) Handler {
		return func(ctx context.Context, args map[string]any) (result any, err error) {
			requestID := uuid.New().String()

			safeEmit(em, telemetry.LevelInfo, EventCall, "", map[string]any{
				"event":      EventCall,
				"request_id": requestID,
				"client_id":  client,
				"tool":       name,
				"arg_keys":   argKeys(args),
			})

			start := time.Now()
			finished := false
			defer func() {
				if finished {
					return
				}
				// A nil recover here means runtime.Goexit; let it unwind.
				v := recover()
				excInfo := GoexitInfo
				if v != nil {
					excInfo = telemetry.FormatPanic(v, debug.Stack())
				}
				safeEmit(em, telemetry.LevelError, EventError, excInfo, map[string]any{
					"event":       EventError,
					"request_id":  requestID,
					"client_id":   client,
					"tool":        name,
					"duration_ms": time.Since(start).Milliseconds(),
				})
				if v != nil {
					panic(v)
				}
			}()

			result, err = next(ctx, args)
			finished = true
			elapsed := time.Since(start).Milliseconds()

			if err != nil {
				safeEmit(em, telemetry.LevelError, EventError, telemetry.FormatError(err), map[string]any{
					"event":       EventError,
					"request_id":  requestID,
					"client_id":   client,
					"tool":        name,
					"duration_ms": elapsed,
				})
				return result, err
			}

			safeEmit(em, telemetry.LevelInfo, EventResult, "", map[string]any{
				"event":       EventResult,
				"request_id":  requestID,
				"client_id":   client,
				"tool":        name,
				"duration_ms": elapsed,
				"result_type": resultType(result),
			})
			return result, nil
		}
	}
}

// safeEmit hands one event to em and swallows anything it panics with.
func safeEmit(em telemetry.Emitter, level telemetry.Level, message, excInfo string, extra map[string]any) {
	defer func() { _ = recover() }()
	em.Emit(telemetry.Event{
		Level:   level,
		Logger:  LoggerName,
		Message: message,
		ExcInfo: excInfo,
		Extra:   extra,
	})
}

func argKeys(args map[string]any) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// resultType names the dynamic type of v: the declared name for named
// types, the kind (map, slice, ...) otherwise. Pointers are dereferenced.
func resultType(v any) string {
	if v == nil {
		return "nil"
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.Kind().String()
}
