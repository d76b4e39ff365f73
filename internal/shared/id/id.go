// Package id provides centralized ID generation for the backend.
//
// ULIDs are used everywhere: lexicographically sortable, prefixed per
// domain so logs stay readable (msg_*, wgt_*, res_*, frm_*), and
// guaranteed unique across services without coordination.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MessageID identifies one correlated protocol message.
type MessageID string

// WidgetID identifies a widget.
type WidgetID string

// ResourceID identifies a UI widget resource.
type ResourceID string

// FrameID identifies a hosted frame.
type FrameID string

const (
	MessagePrefix  = "msg"
	WidgetPrefix   = "wgt"
	ResourcePrefix = "res"
	FramePrefix    = "frm"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator backed by crypto/rand.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator with the given entropy source.
// Deterministic sources are useful in tests.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewMessageID generates a correlation id for an outgoing protocol message.
func NewMessageID() MessageID {
	return MessageID(Default().GenerateWithPrefix(MessagePrefix))
}

// NewWidgetID generates a widget id.
func NewWidgetID() WidgetID {
	return WidgetID(Default().GenerateWithPrefix(WidgetPrefix))
}

// NewResourceID generates a UI widget resource id.
func NewResourceID() ResourceID {
	return ResourceID(Default().GenerateWithPrefix(ResourcePrefix))
}

// NewFrameID generates a frame id.
func NewFrameID() FrameID {
	return FrameID(Default().GenerateWithPrefix(FramePrefix))
}

func (id MessageID) String() string  { return string(id) }
func (id WidgetID) String() string   { return string(id) }
func (id ResourceID) String() string { return string(id) }
func (id FrameID) String() string    { return string(id) }

// IsValid checks whether the part after the prefix parses as a ULID.
func IsValid(raw string) bool {
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i] == '_' {
			raw = raw[i+1:]
			break
		}
	}
	_, err := ulid.Parse(raw)
	return err == nil
}
