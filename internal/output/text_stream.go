package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ptashenko/dirtree/internal/services/stream"
)

const (
	branchGlyph     = "├── "
	lastBranchGlyph = "└── "
	ancestorGlyph   = "│   "
	ancestorSpacer  = "    "
	directorySuffix = "/"
)

// textStreamRenderer draws the classic box-drawing tree. It tracks one
// has-more-siblings flag per open ancestor directory; the flags form the
// prefix for every line beneath that ancestor.
type textStreamRenderer struct {
	stdout    io.Writer
	stderr    io.Writer
	ancestors []bool
}

// NewTextStreamRenderer returns a renderer producing box-drawing text lines.
func NewTextStreamRenderer(stdout, stderr io.Writer) StreamRenderer {
	return &textStreamRenderer{stdout: stdout, stderr: stderr}
}

func (renderer *textStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindWarning:
		if event.Message != nil && renderer.stderr != nil {
			fmt.Fprintln(renderer.stderr, event.Message.Message)
		}
	case stream.EventKindError:
		if event.Err != nil && renderer.stderr != nil {
			fmt.Fprintln(renderer.stderr, event.Err.Message)
		}
	case stream.EventKindDirectory:
		return renderer.handleDirectory(event.Directory)
	case stream.EventKindFile:
		return renderer.handleFile(event.File)
	}
	return nil
}

func (renderer *textStreamRenderer) Flush() error {
	return nil
}

func (renderer *textStreamRenderer) handleDirectory(directory *stream.DirectoryEvent) error {
	if directory == nil {
		return nil
	}
	if directory.Phase == stream.DirectoryLeave {
		if len(renderer.ancestors) > 0 {
			renderer.ancestors = renderer.ancestors[:len(renderer.ancestors)-1]
		}
		return nil
	}
	if err := renderer.printLine(directory.Depth, directory.HasMoreSiblings, directory.Name+directorySuffix); err != nil {
		return err
	}
	renderer.ancestors = append(renderer.ancestors, directory.HasMoreSiblings)
	return nil
}

func (renderer *textStreamRenderer) handleFile(file *stream.FileEvent) error {
	if file == nil {
		return nil
	}
	return renderer.printLine(file.Depth, file.HasMoreSiblings, file.Name)
}

// printLine writes one tree line: ancestor bars, the entry's branch glyph,
// then the display name. The root line carries no prefix at all.
func (renderer *textStreamRenderer) printLine(depth int, hasMoreSiblings bool, displayName string) error {
	if renderer.stdout == nil {
		return nil
	}
	if depth == 0 {
		_, err := fmt.Fprintln(renderer.stdout, displayName)
		return err
	}

	ancestors := renderer.ancestors
	if len(ancestors) > 0 {
		// ancestors[0] is the root, which never contributes a bar.
		ancestors = ancestors[1:]
	}
	var prefix strings.Builder
	for _, ancestorHasMore := range ancestors {
		if ancestorHasMore {
			prefix.WriteString(ancestorGlyph)
		} else {
			prefix.WriteString(ancestorSpacer)
		}
	}
	glyph := lastBranchGlyph
	if hasMoreSiblings {
		glyph = branchGlyph
	}
	_, err := fmt.Fprintln(renderer.stdout, prefix.String()+glyph+displayName)
	return err
}
