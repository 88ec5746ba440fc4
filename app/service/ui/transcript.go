package ui

import (
	"io"
	"strings"
)

const (
	userPrefix      = "You: "
	assistantPrefix = "Assistant: "
)

// Transcript is the chat display. Like the face it belongs to the UI goroutine.
type Transcript struct {
	out  io.Writer
	text strings.Builder
}

func NewTranscript(out io.Writer) *Transcript {
	return &Transcript{out: out}
}

func (t *Transcript) UserMessage(text string) {
	t.write(userPrefix + text + "\n")
}

func (t *Transcript) AssistantStart() {
	t.write(assistantPrefix)
}

func (t *Transcript) AssistantAppend(fragment string) {
	t.write(fragment)
}

func (t *Transcript) AssistantEnd() {
	t.write("\n")
}

func (t *Transcript) Text() string {
	return t.text.String()
}

func (t *Transcript) write(s string) {
	t.text.WriteString(s)

	if t.out != nil {
		_, _ = io.WriteString(t.out, s)
	}
}
