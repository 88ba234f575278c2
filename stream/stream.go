// Package stream provides a streaming API for HTML parsing.
package stream

import (
	"bufio"
	"io"
	"strings"

	"github.com/itsvic-dev/browser/encoding"
	"github.com/itsvic-dev/browser/tokenizer"
)

// EventType represents the type of streaming event.
type EventType int

// Event types for the streaming API.
const (
	StartTagEvent EventType = iota
	EndTagEvent
	TextEvent
	CommentEvent
	DoctypeEvent
)

// String returns the name of the event type.
func (e EventType) String() string {
	names := [...]string{"StartTag", "EndTag", "Text", "Comment", "Doctype"}
	if int(e) < len(names) {
		return names[e]
	}
	return "Unknown"
}

// Event represents a parsing event in the stream.
type Event struct {
	// Type is the event type.
	Type EventType

	// Name is the tag name (for start/end tags) or DOCTYPE name.
	Name string

	// Attrs contains attributes (for start tags only).
	Attrs map[string]string

	// Data is the text content (for text/comment events).
	Data string

	// For DOCTYPE events
	PublicID string
	SystemID string
}

// chunkRunes bounds how many runes a single Feed call hands the tokenizer,
// which in turn bounds how far the reader goroutine can run ahead of the
// goroutine draining tokens off the channel below.
const chunkRunes = 4096

// Stream returns a channel of parsing events, tokenizing html incrementally
// through StreamReader rather than handing the whole string to the
// tokenizer at once. The channel is closed when parsing is complete.
func Stream(html string, opts ...Option) <-chan Event {
	return StreamReader(strings.NewReader(html), opts...)
}

// StreamBytes returns a channel of parsing events from byte input, sniffing
// its encoding per the HTML5 encoding-detection algorithm before handing
// the decoded text to StreamReader.
func StreamBytes(html []byte, opts ...Option) <-chan Event {
	cfg := newConfig(opts...)
	decoded, _, err := encoding.Decode(html, cfg.encoding)
	if err != nil {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	return Stream(decoded, opts...)
}

// StreamReader returns a channel of parsing events, reading and tokenizing
// r in bounded chunks rather than buffering the entire input. A producer
// goroutine pulls runes off r and feeds the tokenizer; a second goroutine
// drains tokens as they become available and publishes them as Events.
func StreamReader(r io.Reader, opts ...Option) <-chan Event {
	_ = newConfig(opts...) // encoding only matters for the byte-sniffing entry point above

	tok := tokenizer.NewStreaming(tokenizer.Options{DiscardBOM: true})
	go feedReader(r, tok)

	ch := make(chan Event)
	go func() {
		defer close(ch)
		drainTokens(tok, ch)
	}()
	return ch
}

// feedReader pulls whole runes off r (so a multi-byte character never
// splits across a Feed call) and pushes them to tok in bounded batches.
func feedReader(r io.Reader, tok *tokenizer.Tokenizer) {
	defer tok.CloseInput()

	br := bufio.NewReader(r)
	batch := make([]rune, 0, chunkRunes)
	for {
		ru, _, err := br.ReadRune()
		if err == nil {
			batch = append(batch, ru)
			if len(batch) >= chunkRunes {
				tok.Feed(string(batch))
				batch = batch[:0]
			}
			continue
		}
		if len(batch) > 0 {
			tok.Feed(string(batch))
		}
		return
	}
}

func ptrToString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func drainTokens(tok *tokenizer.Tokenizer, ch chan<- Event) {
	for {
		token := tok.Next()

		switch token.Type {
		case tokenizer.StartTag:
			ch <- Event{
				Type:  StartTagEvent,
				Name:  token.Name,
				Attrs: tokenizer.AttrsToMap(token.Attrs),
			}

		case tokenizer.EndTag:
			ch <- Event{
				Type: EndTagEvent,
				Name: token.Name,
			}

		case tokenizer.Character:
			ch <- Event{
				Type: TextEvent,
				Data: token.Data,
			}

		case tokenizer.Comment:
			ch <- Event{
				Type: CommentEvent,
				Data: token.Data,
			}

		case tokenizer.DOCTYPE:
			ch <- Event{
				Type:     DoctypeEvent,
				Name:     token.Name,
				PublicID: ptrToString(token.PublicID),
				SystemID: ptrToString(token.SystemID),
			}

		case tokenizer.EOF:
			return

		case tokenizer.Error:
			// Continue on errors (per HTML5 spec)
			continue
		}
	}
}
