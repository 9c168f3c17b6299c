package remote

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Tag prefixes. DOWN tags travel referee-to-player, UP tags the other way;
// replies echo the tag under the REPLY prefix.
const (
	DownPrefix  = "DOWN."
	UpPrefix    = "UP."
	ReplyPrefix = "REPLY."
)

// Envelope is a call frame: a JSON array [tag, method, args...].
type Envelope struct {
	Tag    string
	Method string
	Args   []json.RawMessage
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	arr := make([]any, 0, 2+len(e.Args))
	arr = append(arr, e.Tag, e.Method)
	for _, a := range e.Args {
		arr = append(arr, a)
	}
	return json.Marshal(arr)
}

// ParseEnvelope reads a call frame out of a raw JSON array.
func ParseEnvelope(frame []json.RawMessage) (Envelope, error) {
	if len(frame) < 2 {
		return Envelope{}, fmt.Errorf("call frame needs at least [tag, method], got %d elements", len(frame))
	}
	var e Envelope
	if err := json.Unmarshal(frame[0], &e.Tag); err != nil {
		return Envelope{}, fmt.Errorf("call tag: %w", err)
	}
	if err := json.Unmarshal(frame[1], &e.Method); err != nil {
		return Envelope{}, fmt.Errorf("call method: %w", err)
	}
	e.Args = frame[2:]
	return e, nil
}

// Reply is a response frame: ["REPLY.<tag>", result].
type Reply struct {
	Tag    string
	Result json.RawMessage
}

func (r Reply) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{ReplyPrefix + r.Tag, r.Result})
}

// ParseReply reads a response frame out of a raw JSON array. The returned
// tag has the REPLY prefix stripped.
func ParseReply(frame []json.RawMessage) (Reply, error) {
	if len(frame) != 2 {
		return Reply{}, fmt.Errorf("reply frame needs exactly [tag, result], got %d elements", len(frame))
	}
	var tagged string
	if err := json.Unmarshal(frame[0], &tagged); err != nil {
		return Reply{}, fmt.Errorf("reply tag: %w", err)
	}
	if !strings.HasPrefix(tagged, ReplyPrefix) {
		return Reply{}, fmt.Errorf("reply tag %q lacks the %q prefix", tagged, ReplyPrefix)
	}
	return Reply{Tag: strings.TrimPrefix(tagged, ReplyPrefix), Result: frame[1]}, nil
}

// IsReply reports whether a raw frame looks like a response.
func IsReply(frame []json.RawMessage) bool {
	if len(frame) == 0 {
		return false
	}
	var tag string
	if err := json.Unmarshal(frame[0], &tag); err != nil {
		return false
	}
	return strings.HasPrefix(tag, ReplyPrefix)
}

// Conn frames JSON values over a byte stream. Tags issued through NextTag
// are monotonic per connection and never reused.
type Conn struct {
	rwc     io.ReadWriteCloser
	dec     *json.Decoder
	writeMu sync.Mutex
	nextID  atomic.Uint64
	closed  atomic.Bool
}

// NewConn wraps a stream.
func NewConn(rwc io.ReadWriteCloser) *Conn {
	return &Conn{rwc: rwc, dec: json.NewDecoder(rwc)}
}

// NextTag issues a fresh tag under the given prefix.
func (c *Conn) NextTag(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, c.nextID.Add(1))
}

// WriteFrame sends one JSON value.
func (c *Conn) WriteFrame(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = c.rwc.Write(append(data, '\n'))
	return err
}

// ReadFrame reads the next JSON array off the stream.
func (c *Conn) ReadFrame() ([]json.RawMessage, error) {
	var frame []json.RawMessage
	if err := c.dec.Decode(&frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// ReadJSON reads the next JSON value of any shape off the stream. Used
// during signup, before the envelope protocol starts.
func (c *Conn) ReadJSON(v any) error {
	return c.dec.Decode(v)
}

// SetReadDeadline bounds the next read when the underlying stream supports
// deadlines.
func (c *Conn) SetReadDeadline(t time.Time) error {
	if d, ok := c.rwc.(interface{ SetReadDeadline(time.Time) error }); ok {
		return d.SetReadDeadline(t)
	}
	return nil
}

// Close shuts the underlying stream. Safe to call more than once.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.rwc.Close()
}
