package chat

import "strings"

// Chunker cuts streamed text into pieces for the voice.
// The buffer is handed out whole as soon as it holds a space or a newline.
type Chunker struct {
	buf strings.Builder
}

func (c *Chunker) Write(fragment string) (string, bool) {
	c.buf.WriteString(fragment)

	if !strings.ContainsAny(c.buf.String(), " \n") {
		return "", false
	}

	chunk := c.buf.String()
	c.buf.Reset()

	return chunk, true
}

// Remainder is the text not handed out yet.
func (c *Chunker) Remainder() string {
	return c.buf.String()
}
