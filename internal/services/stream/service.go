// Package stream adapts the synchronous traversal into channel-delivered events.
package stream

import (
	"context"
	"fmt"
	"strings"

	"github.com/ptashenko/dirtree/internal/commands"
)

// TreeOptions configures one streamed traversal.
type TreeOptions struct {
	Root         string
	MaxDepth     int
	IgnoreGlobs  []string
	IgnorePaths  []string
	IncludeFiles bool
}

type emitter struct {
	ctx context.Context
	out chan<- Event
}

func newEmitter(ctx context.Context, out chan<- Event) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return fmt.Errorf("stream: event channel is nil")
	}
	event.Version = SchemaVersion
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

func (e *emitter) warn(path, message string) {
	trimmed := strings.TrimRight(message, "\n")
	if trimmed == "" {
		return
	}
	_ = e.send(Event{
		Kind:    EventKindWarning,
		Path:    path,
		Message: &LogEvent{Level: "warning", Message: trimmed},
	})
}

// StreamTree runs a sequential depth-first traversal of opts.Root and sends
// one event per entry on out, framed by start and done events. The walk is
// single-pass; cancellation of ctx aborts delivery between events.
func StreamTree(ctx context.Context, opts TreeOptions, out chan<- Event) error {
	if opts.Root == "" {
		return fmt.Errorf("stream: tree root path is empty")
	}

	emitter := newEmitter(ctx, out)
	if err := emitter.send(Event{Kind: EventKindStart, Path: opts.Root}); err != nil {
		return err
	}

	streamOptions := commands.TreeStreamOptions{
		Root:         opts.Root,
		MaxDepth:     opts.MaxDepth,
		IgnoreGlobs:  opts.IgnoreGlobs,
		IgnorePaths:  opts.IgnorePaths,
		IncludeFiles: opts.IncludeFiles,
		Warn: func(message string) {
			emitter.warn(opts.Root, message)
		},
	}

	handler := func(evt commands.TreeEvent) error {
		entry := evt.Entry
		switch evt.Kind {
		case commands.TreeEventEnterDir, commands.TreeEventLeaveDir:
			phase := DirectoryEnter
			if evt.Kind == commands.TreeEventLeaveDir {
				phase = DirectoryLeave
			}
			return emitter.send(Event{
				Kind: EventKindDirectory,
				Path: entry.Path,
				Directory: &DirectoryEvent{
					Phase:           phase,
					Path:            entry.Path,
					Name:            entry.Name,
					Depth:           entry.Depth,
					HasMoreSiblings: entry.HasMoreSiblings,
				},
			})
		case commands.TreeEventFile:
			return emitter.send(Event{
				Kind: EventKindFile,
				Path: entry.Path,
				File: &FileEvent{
					Path:            entry.Path,
					Name:            entry.Name,
					Depth:           entry.Depth,
					HasMoreSiblings: entry.HasMoreSiblings,
				},
			})
		default:
			return nil
		}
	}

	if err := commands.StreamTree(streamOptions, handler); err != nil {
		_ = emitter.send(Event{Kind: EventKindError, Path: opts.Root, Err: &ErrorEvent{Message: err.Error()}})
		return err
	}

	return emitter.send(Event{Kind: EventKindDone, Path: opts.Root})
}
