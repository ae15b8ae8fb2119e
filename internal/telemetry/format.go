// ABOUTME: Serializes an Event into one canonical single-line JSON object.
// ABOUTME: Never fails: a marshal error degrades to a minimal line.

package telemetry

import (
	"bytes"
	"encoding/json"
	"time"
)

// TimestampLayout renders UTC instants as ISO-8601 with microseconds and a Z suffix.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Format renders ev as a single JSON line without the trailing newline.
func Format(ev Event) (line []byte) {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	data := make(map[string]any, 5+len(ev.Extra))
	data["timestamp"] = ts.UTC().Format(TimestampLayout)
	data["level"] = ev.Level.String()
	data["logger"] = ev.Logger
	data["message"] = ev.Message
	if ev.ExcInfo != "" {
		data["exc_info"] = ev.ExcInfo
	}
	for k, v := range ev.Extra {
		data[k] = v
	}

	defer func() {
		if recover() != nil {
			line = minimalLine(ts, ev)
		}
	}()

	out, err := encodeLine(data)
	if err != nil {
		return minimalLine(ts, ev)
	}
	return out
}

// minimalLine is the fallback used when the full object cannot be encoded.
func minimalLine(ts time.Time, ev Event) []byte {
	out, err := encodeLine(map[string]any{
		"timestamp": ts.UTC().Format(TimestampLayout),
		"level":     ev.Level.String(),
		"logger":    ev.Logger,
		"message":   ev.Message,
	})
	if err != nil {
		// Only strings remain, so this cannot happen in practice.
		return []byte(`{"level":"ERROR","message":"unformattable event"}`)
	}
	return out
}

func encodeLine(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
