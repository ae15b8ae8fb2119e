// ABOUTME: Tests for the JSON line formatter.
// ABOUTME: Covers required keys, timestamp shape, extra spreading and the fallback line.

package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var obj map[string]any
	require.NoError(t, json.Unmarshal(line, &obj), "line: %s", line)
	return obj
}

func TestFormat_RequiredKeys(t *testing.T) {
	events := []Event{
		{Level: LevelInfo, Logger: "hiring_router", Message: "tool_call"},
		{Level: LevelDebug, Message: ""},
		{Level: LevelCritical, Logger: "x", Message: "multi\nline\nmessage"},
		{Level: LevelError, Logger: "x", Message: "boom", ExcInfo: "first\nsecond"},
		{Level: LevelWarning, Logger: "x", Message: "привет <b>&</b>", Extra: map[string]any{"n": 1}},
	}

	for i, ev := range events {
		t.Run(fmt.Sprintf("event-%d", i), func(t *testing.T) {
			line := Format(ev)
			assert.NotContains(t, string(line), "\n")

			obj := decodeLine(t, line)
			for _, key := range []string{"timestamp", "level", "logger", "message"} {
				assert.Contains(t, obj, key)
			}
			ts, ok := obj["timestamp"].(string)
			require.True(t, ok)
			assert.True(t, strings.HasSuffix(ts, "Z"), "timestamp %q must end with Z", ts)
		})
	}
}

func TestFormat_TimestampIsEventInstantInUTC(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	ev := Event{
		Time:    time.Date(2026, 3, 1, 2, 30, 0, 123456000, loc),
		Level:   LevelInfo,
		Message: "m",
	}

	obj := decodeLine(t, Format(ev))
	assert.Equal(t, "2026-02-28T23:30:00.123456Z", obj["timestamp"])
	assert.Equal(t, "INFO", obj["level"])
}

func TestFormat_ExcInfoOnlyWhenPresent(t *testing.T) {
	obj := decodeLine(t, Format(Event{Level: LevelInfo, Message: "m"}))
	assert.NotContains(t, obj, "exc_info")

	exc := FormatError(fmt.Errorf("outer: %w", errors.New("inner")))
	obj = decodeLine(t, Format(Event{Level: LevelError, Message: "m", ExcInfo: exc}))
	assert.Equal(t, exc, obj["exc_info"])
	assert.Contains(t, obj["exc_info"], "\n")
}

func TestFormat_ExtraSpreadsAndOverridesReservedKeys(t *testing.T) {
	ev := Event{
		Level:   LevelInfo,
		Logger:  "original",
		Message: "m",
		Extra: map[string]any{
			"event":    "tool_call",
			"arg_keys": []string{"a", "b"},
			"logger":   "overridden",
		},
	}

	obj := decodeLine(t, Format(ev))
	assert.Equal(t, "tool_call", obj["event"])
	assert.Equal(t, []any{"a", "b"}, obj["arg_keys"])
	assert.Equal(t, "overridden", obj["logger"])
}

func TestFormat_NonASCIIAndHTMLAreNotEscaped(t *testing.T) {
	line := Format(Event{Level: LevelInfo, Message: "Python разработчик <dev>"})
	assert.Contains(t, string(line), "Python разработчик <dev>")
}

type explodingMarshaler struct{}

func (explodingMarshaler) MarshalJSON() ([]byte, error) { panic("kaboom") }

func TestFormat_FallsBackToMinimalLine(t *testing.T) {
	cases := map[string]any{
		"unsupported value": math.NaN(),
		"channel":           make(chan int),
		"panicking marshal": explodingMarshaler{},
	}

	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			ev := Event{Level: LevelError, Logger: "l", Message: "still here", Extra: map[string]any{"bad": bad}}

			obj := decodeLine(t, Format(ev))
			assert.Equal(t, "still here", obj["message"])
			assert.Equal(t, "ERROR", obj["level"])
			assert.Contains(t, obj, "timestamp")
			assert.NotContains(t, obj, "bad")
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"Warning", LevelWarning, true},
		{"warn", LevelWarning, true},
		{"error", LevelError, true},
		{"CRITICAL", LevelCritical, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestFormatError_Chain(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("writing report: %w", base)

	out := FormatError(err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "writing report: disk full")
	assert.Contains(t, lines[1], "caused by *errors.errorString: disk full")
	assert.Empty(t, FormatError(nil))
}

func TestFormatPanic_IncludesStack(t *testing.T) {
	out := FormatPanic("bad state", []byte("goroutine 1 [running]:\nmain.main()\n"))
	assert.True(t, strings.HasPrefix(out, "panic: bad state"))
	assert.Contains(t, out, "goroutine 1 [running]:")
}
