package stream

const SchemaVersion = 1

type EventKind string

const (
	EventKindStart     EventKind = "start"
	EventKindDirectory EventKind = "directory"
	EventKindFile      EventKind = "file"
	EventKindWarning   EventKind = "warning"
	EventKindError     EventKind = "error"
	EventKindDone      EventKind = "done"
)

type DirectoryPhase string

const (
	DirectoryEnter DirectoryPhase = "enter"
	DirectoryLeave DirectoryPhase = "leave"
)

// Event is the envelope delivered to stream renderers. Exactly one of the
// payload pointers is populated per kind.
type Event struct {
	Version int
	Kind    EventKind
	Path    string

	Directory *DirectoryEvent
	File      *FileEvent
	Message   *LogEvent
	Err       *ErrorEvent
}

// DirectoryEvent describes entering or leaving one directory in display order.
type DirectoryEvent struct {
	Phase           DirectoryPhase
	Path            string
	Name            string
	Depth           int
	HasMoreSiblings bool
}

// FileEvent describes one file entry in display order.
type FileEvent struct {
	Path            string
	Name            string
	Depth           int
	HasMoreSiblings bool
}

type LogEvent struct {
	Level   string
	Message string
}

type ErrorEvent struct {
	Message string
}
