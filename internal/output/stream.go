// Package output renders traversal event streams into the supported formats.
package output

import (
	"github.com/ptashenko/dirtree/internal/services/stream"
)

// StreamRenderer consumes traversal events and writes formatted output.
// Handle is called once per event in display order; Flush runs after the
// final event and completes any buffered output.
type StreamRenderer interface {
	Handle(event stream.Event) error
	Flush() error
}
