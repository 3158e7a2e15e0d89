package sse

import (
	"fmt"
	"io"
	"strings"
)

// Event names written by Serve.
const (
	EventConnected = "connected"
	EventMessage   = "message"
)

// WriteEvent writes one event. Multi-line data is split across data: lines.
func WriteEvent(w io.Writer, event string, data []byte) error {
	var b strings.Builder
	if event != "" && event != EventMessage {
		fmt.Fprintf(&b, "event: %s\n", event)
	}
	for _, line := range strings.Split(string(data), "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteComment writes a comment line, used as keep-alive.
func WriteComment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}
