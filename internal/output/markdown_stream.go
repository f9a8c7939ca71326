package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ptashenko/dirtree/internal/services/stream"
)

const (
	detailsOpenTag  = "<details>"
	detailsCloseTag = "</details>"
	summaryFormat   = "<summary>%s/</summary>"
	fileLineFormat  = "- %s"
	markdownIndent  = "  "
)

// markdownStreamRenderer emits one collapsible <details> block per directory
// and a list line per file. Blocks close in exact reverse order of opening;
// the openDepths stack enforces that discipline.
type markdownStreamRenderer struct {
	stdout     io.Writer
	stderr     io.Writer
	openDepths []int
}

// NewMarkdownStreamRenderer returns a renderer producing a Markdown document
// of nested collapsible sections.
func NewMarkdownStreamRenderer(stdout, stderr io.Writer) StreamRenderer {
	return &markdownStreamRenderer{stdout: stdout, stderr: stderr}
}

func (renderer *markdownStreamRenderer) Handle(event stream.Event) error {
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

func (renderer *markdownStreamRenderer) Flush() error {
	if len(renderer.openDepths) != 0 {
		return fmt.Errorf("markdown renderer finished with %d unclosed blocks", len(renderer.openDepths))
	}
	return nil
}

func (renderer *markdownStreamRenderer) handleDirectory(directory *stream.DirectoryEvent) error {
	if directory == nil {
		return nil
	}
	if directory.Phase == stream.DirectoryLeave {
		if len(renderer.openDepths) == 0 {
			return fmt.Errorf("markdown renderer: close without matching open for %s", directory.Path)
		}
		closeDepth := renderer.openDepths[len(renderer.openDepths)-1]
		renderer.openDepths = renderer.openDepths[:len(renderer.openDepths)-1]
		return renderer.printLine(closeDepth, detailsCloseTag)
	}

	if err := renderer.printLine(directory.Depth, detailsOpenTag); err != nil {
		return err
	}
	if err := renderer.printLine(directory.Depth, fmt.Sprintf(summaryFormat, directory.Name)); err != nil {
		return err
	}
	if err := renderer.printBlank(); err != nil {
		return err
	}
	renderer.openDepths = append(renderer.openDepths, directory.Depth)
	return nil
}

func (renderer *markdownStreamRenderer) handleFile(file *stream.FileEvent) error {
	if file == nil {
		return nil
	}
	return renderer.printLine(file.Depth, fmt.Sprintf(fileLineFormat, file.Name))
}

func (renderer *markdownStreamRenderer) printLine(depth int, line string) error {
	if renderer.stdout == nil {
		return nil
	}
	_, err := fmt.Fprintln(renderer.stdout, strings.Repeat(markdownIndent, depth)+line)
	return err
}

func (renderer *markdownStreamRenderer) printBlank() error {
	if renderer.stdout == nil {
		return nil
	}
	_, err := fmt.Fprintln(renderer.stdout)
	return err
}
