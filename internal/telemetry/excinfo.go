// ABOUTME: Renders errors and recovered panics as multi-line exc_info text.

package telemetry

import (
	"errors"
	"fmt"
	"strings"
)

// FormatError renders err and every error it wraps, outermost first, one
// per line, each prefixed with its dynamic type.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	writeChain(&b, err, 0)
	return strings.TrimRight(b.String(), "\n")
}

func writeChain(b *strings.Builder, err error, depth int) {
	indent := strings.Repeat("  ", depth)
	if depth == 0 {
		fmt.Fprintf(b, "%T: %s\n", err, err.Error())
	} else {
		fmt.Fprintf(b, "%scaused by %T: %s\n", indent, err, err.Error())
	}

	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if inner != nil {
				writeChain(b, inner, depth+1)
			}
		}
	default:
		if inner := errors.Unwrap(err); inner != nil {
			writeChain(b, inner, depth+1)
		}
	}
}

// FormatPanic renders a recovered panic value with the goroutine stack.
func FormatPanic(v any, stack []byte) string {
	head := fmt.Sprintf("panic: %v", v)
	if err, ok := v.(error); ok {
		head = "panic: " + FormatError(err)
	}
	if len(stack) == 0 {
		return head
	}
	return head + "\n\n" + strings.TrimRight(string(stack), "\n")
}
