// Package dirtree renders a readable visual representation of a directory's
// contents, either as a box-drawing text diagram or as a Markdown document of
// nested collapsible sections. It is the embeddable surface of the dirtree
// command.
package dirtree

import (
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ptashenko/dirtree/internal/commands"
	"github.com/ptashenko/dirtree/internal/output"
	"github.com/ptashenko/dirtree/internal/services/stream"
	"github.com/ptashenko/dirtree/internal/types"
	"github.com/ptashenko/dirtree/internal/utils"
)

// Root-level traversal failures, surfaced unchanged from the walker.
var (
	ErrRootNotFound      = commands.ErrRootNotFound
	ErrRootNotADirectory = commands.ErrRootNotADirectory
)

// Options configures a rendering call. The zero value renders only the root
// line; use DefaultOptions for the conventional two-level tree.
type Options struct {
	// MaxDepth bounds traversal; the root is depth 0, its children depth 1.
	MaxDepth int
	// IgnoreGlobs are glob patterns (doublestar syntax, ** supported)
	// matched against entry names and root-relative paths.
	IgnoreGlobs []string
	// IgnorePaths are literal paths, absolute or root-relative, to exclude.
	IgnorePaths []string
	// DirsOnly omits files from the output.
	DirsOnly bool
	// ErrorWriter receives warnings about unreadable subtrees. Defaults to
	// os.Stderr.
	ErrorWriter io.Writer
}

// DefaultOptions returns the options used when the caller has no preference:
// depth two, files included, default ignore set only.
func DefaultOptions() Options {
	return Options{MaxDepth: types.DefaultMaxDepth}
}

// PrintTree writes a box-drawing text tree for root to writer.
func PrintTree(writer io.Writer, root string, options Options) error {
	renderer := output.NewTextStreamRenderer(writer, errorWriter(options))
	return render(root, options, renderer)
}

// PrintTreeMarkdown writes a Markdown document of collapsible sections for
// root to writer.
func PrintTreeMarkdown(writer io.Writer, root string, options Options) error {
	renderer := output.NewMarkdownStreamRenderer(writer, errorWriter(options))
	return render(root, options, renderer)
}

// Version reports the dirtree version. It never fails; when no build or git
// metadata is available it falls back to a hardcoded constant.
func Version() string {
	return utils.GetApplicationVersion()
}

func errorWriter(options Options) io.Writer {
	if options.ErrorWriter != nil {
		return options.ErrorWriter
	}
	return os.Stderr
}

// render dispatches the sequential traversal producer to the renderer
// consumer and flushes the renderer once the stream completes.
func render(root string, options Options, renderer output.StreamRenderer) (err error) {
	defer func() {
		if flushErr := renderer.Flush(); flushErr != nil && err == nil {
			err = flushErr
		}
	}()

	treeOptions := stream.TreeOptions{
		Root:         root,
		MaxDepth:     options.MaxDepth,
		IgnoreGlobs:  options.IgnoreGlobs,
		IgnorePaths:  options.IgnorePaths,
		IncludeFiles: !options.DirsOnly,
	}

	group, streamCtx := errgroup.WithContext(context.Background())
	events := make(chan stream.Event)

	group.Go(func() error {
		defer close(events)
		return stream.StreamTree(streamCtx, treeOptions, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if handleErr := renderer.Handle(event); handleErr != nil {
					return handleErr
				}
			}
		}
	})

	if waitErr := group.Wait(); waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return waitErr
	}
	return nil
}
