// ABOUTME: Tests for the call-instrumentation middleware.
// ABOUTME: Checks the call/terminal event pair, error identity, panics and emitter failures.

package tools

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/hiring-router/internal/telemetry"
)

type recorder struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (r *recorder) Emit(ev telemetry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []telemetry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]telemetry.Event(nil), r.events...)
}

type jobPost struct {
	Title string
}

func instrumentedRegistry(t *testing.T, em telemetry.Emitter, clientID string, tools ...*Tool) *Registry {
	t.Helper()
	r := NewRegistry(quietLogger(), Instrument(em, clientID))
	require.NoError(t, r.Register(&Pack{ID: "test", Tools: tools}))
	return r
}

func TestInstrument_SuccessEmitsCallThenResult(t *testing.T) {
	rec := &recorder{}
	r := instrumentedRegistry(t, rec, "acme", &Tool{
		Name: "generate_job_post",
		Handler: func(context.Context, map[string]any) (any, error) {
			return &jobPost{Title: "SRE"}, nil
		},
	})

	out, err := r.Call(context.Background(), "generate_job_post", map[string]any{"role": "SRE", "level": "senior", "company": "secret"})
	require.NoError(t, err)
	assert.Equal(t, "SRE", out.(*jobPost).Title)

	events := rec.all()
	require.Len(t, events, 2)
	call, result := events[0], events[1]

	assert.Equal(t, EventCall, call.Extra["event"])
	assert.Equal(t, telemetry.LevelInfo, call.Level)
	assert.Equal(t, LoggerName, call.Logger)
	assert.Equal(t, "generate_job_post", call.Extra["tool"])
	assert.Equal(t, "acme", call.Extra["client_id"])
	assert.Equal(t, []string{"company", "level", "role"}, call.Extra["arg_keys"])

	id, ok := call.Extra["request_id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	assert.Equal(t, EventResult, result.Extra["event"])
	assert.Equal(t, id, result.Extra["request_id"])
	assert.Equal(t, "jobPost", result.Extra["result_type"])
	assert.GreaterOrEqual(t, result.Extra["duration_ms"].(int64), int64(0))

	for _, ev := range events {
		for _, v := range ev.Extra {
			assert.NotEqual(t, "secret", v, "argument values must never be logged")
		}
	}
}

func TestInstrument_ErrorIsLoggedAndReturnedUnchanged(t *testing.T) {
	rec := &recorder{}
	sentinel := errors.New("quota exceeded")
	r := instrumentedRegistry(t, rec, "", &Tool{
		Name: "market_research",
		Handler: func(context.Context, map[string]any) (any, error) {
			return nil, sentinel
		},
	})

	_, err := r.Call(context.Background(), "market_research", nil)
	assert.Same(t, sentinel, err)

	events := rec.all()
	require.Len(t, events, 2)
	assert.Nil(t, events[0].Extra["client_id"])
	assert.Equal(t, EventError, events[1].Extra["event"])
	assert.Equal(t, telemetry.LevelError, events[1].Level)
	assert.Equal(t, events[0].Extra["request_id"], events[1].Extra["request_id"])
	assert.Contains(t, events[1].ExcInfo, "quota exceeded")
	_, hasType := events[1].Extra["result_type"]
	assert.False(t, hasType)
}

func TestInstrument_PanicIsLoggedAndRepanicked(t *testing.T) {
	rec := &recorder{}
	r := instrumentedRegistry(t, rec, "", &Tool{
		Name: "generate_quiz",
		Handler: func(context.Context, map[string]any) (any, error) {
			panic("template exploded")
		},
	})

	assert.PanicsWithValue(t, "template exploded", func() {
		_, _ = r.Call(context.Background(), "generate_quiz", nil)
	})

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, EventError, events[1].Extra["event"])
	assert.Contains(t, events[1].ExcInfo, "panic: template exploded")
	assert.Contains(t, events[1].ExcInfo, "goroutine")
}

func TestInstrument_GoexitIsLoggedWithoutPanicking(t *testing.T) {
	rec := &recorder{}
	r := instrumentedRegistry(t, rec, "", &Tool{
		Name: "interview_prep",
		Handler: func(context.Context, map[string]any) (any, error) {
			runtime.Goexit()
			return nil, nil
		},
	})

	returned := false
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Call(context.Background(), "interview_prep", nil)
		returned = true
	}()
	<-done

	assert.False(t, returned)
	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, EventError, events[1].Extra["event"])
	assert.Equal(t, GoexitInfo, events[1].ExcInfo)
	assert.Equal(t, events[0].Extra["request_id"], events[1].Extra["request_id"])
}

func TestInstrument_ValidationFailureStillYieldsPair(t *testing.T) {
	rec := &recorder{}
	called := false
	r := instrumentedRegistry(t, rec, "", &Tool{
		Name:        "generate_homework",
		InputSchema: `{"type":"object","properties":{"role":{"type":"string"}}}`,
		Handler: func(context.Context, map[string]any) (any, error) {
			called = true
			return nil, nil
		},
	})

	_, err := r.Call(context.Background(), "generate_homework", map[string]any{"role": 7})
	assert.ErrorIs(t, err, ErrInvalidArguments)
	assert.False(t, called)

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, EventCall, events[0].Extra["event"])
	assert.Equal(t, EventError, events[1].Extra["event"])
}

func TestInstrument_PanickingEmitterDoesNotChangeOutcome(t *testing.T) {
	boom := telemetry.EmitterFunc(func(telemetry.Event) { panic("disk on fire") })
	sentinel := errors.New("tool failed")

	r := instrumentedRegistry(t, boom, "",
		&Tool{Name: "ok", Handler: func(context.Context, map[string]any) (any, error) { return "fine", nil }},
		&Tool{Name: "bad", Handler: func(context.Context, map[string]any) (any, error) { return nil, sentinel }},
	)

	out, err := r.Call(context.Background(), "ok", nil)
	require.NoError(t, err)
	assert.Equal(t, "fine", out)

	_, err = r.Call(context.Background(), "bad", nil)
	assert.Same(t, sentinel, err)
}

func TestInstrument_RequestIDsAreUniquePerInvocation(t *testing.T) {
	rec := &recorder{}
	r := instrumentedRegistry(t, rec, "", echoTool("x", ""))

	for i := 0; i < 5; i++ {
		_, err := r.Call(context.Background(), "x", nil)
		require.NoError(t, err)
	}

	seen := map[any]int{}
	for _, ev := range rec.all() {
		seen[ev.Extra["request_id"]]++
	}
	assert.Len(t, seen, 5)
	for id, n := range seen {
		assert.Equal(t, 2, n, "request %v", id)
	}
}

func TestResultType(t *testing.T) {
	assert.Equal(t, "nil", resultType(nil))
	assert.Equal(t, "map", resultType(map[string]any{}))
	assert.Equal(t, "slice", resultType([]string{}))
	assert.Equal(t, "string", resultType("x"))
	assert.Equal(t, "jobPost", resultType(jobPost{}))
	assert.Equal(t, "jobPost", resultType(&jobPost{}))
}
