package console

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/kiosk/pkg/domain"
)

// JSONHandler implements the Handler interface for JSON-lines communication.
// Every state change emits one frame object; input lines are read as JSON
// strings with a plain-text fallback.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// Frame is one emitted JSON line.
type Frame struct {
	Event    string           `json:"event"` // "intro", "snapshot" or "notice"
	Intro    string           `json:"intro,omitempty"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Intro(ctx context.Context, markdown string) error {
	return h.Encoder.Encode(Frame{Event: "intro", Intro: markdown})
}

func (h *JSONHandler) Render(ctx context.Context, snap domain.Snapshot) error {
	return h.Encoder.Encode(Frame{Event: "snapshot", Snapshot: &snap})
}

func (h *JSONHandler) ReadLine(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && text == "" {
		return "", err
	}

	text = strings.TrimSpace(text)

	// Unquote JSON strings; fall back to the raw text for plain lines.
	var val string
	if jsonErr := json.Unmarshal([]byte(text), &val); jsonErr == nil {
		return val, nil
	}
	return text, nil
}

func (h *JSONHandler) Notify(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Frame{Event: "notice", Message: msg})
}
