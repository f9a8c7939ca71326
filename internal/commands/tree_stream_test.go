package commands_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ptashenko/dirtree/internal/commands"
)

// collectEvents runs a traversal and returns every delivered event.
func collectEvents(t *testing.T, options commands.TreeStreamOptions) []commands.TreeEvent {
	t.Helper()
	var events []commands.TreeEvent
	if err := commands.StreamTree(options, func(event commands.TreeEvent) error {
		events = append(events, event)
		return nil
	}); err != nil {
		t.Fatalf("stream tree: %v", err)
	}
	return events
}

// displayOrder flattens events into the entry names in emission order,
// skipping leave events.
func displayOrder(events []commands.TreeEvent) []string {
	var names []string
	for _, event := range events {
		if event.Kind == commands.TreeEventLeaveDir {
			continue
		}
		names = append(names, event.Entry.Name)
	}
	return names
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// chdir changes the working directory for the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	previous, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(previous); err != nil {
			t.Fatalf("restore wd %s: %v", previous, err)
		}
	})
}

func TestStreamTreeOrdersDirectoriesBeforeFiles(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "zebra.txt"))
	mustWriteFile(t, filepath.Join(root, "alpha.txt"))
	mustMkdir(t, filepath.Join(root, "zoo"))
	mustMkdir(t, filepath.Join(root, "bar"))

	events := collectEvents(t, commands.TreeStreamOptions{Root: root, MaxDepth: 1, IncludeFiles: true})
	names := displayOrder(events)

	expected := []string{filepath.Base(root), "bar", "zoo", "alpha.txt", "zebra.txt"}
	if len(names) != len(expected) {
		t.Fatalf("expected %d entries, got %d: %v", len(expected), len(names), names)
	}
	for index, name := range expected {
		if names[index] != name {
			t.Fatalf("expected %s at position %d, got %s", name, index, names[index])
		}
	}
}

func TestStreamTreeHonorsMaxDepth(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	mustMkdir(t, nested)
	mustWriteFile(t, filepath.Join(nested, "deep.txt"))

	events := collectEvents(t, commands.TreeStreamOptions{Root: root, MaxDepth: 2, IncludeFiles: true})

	for _, event := range events {
		if event.Entry.Depth > 2 {
			t.Fatalf("entry %s exceeds max depth: %d", event.Entry.Path, event.Entry.Depth)
		}
		if event.Entry.Name == "c" || event.Entry.Name == "deep.txt" {
			t.Fatalf("entry %s beyond max depth was emitted", event.Entry.Name)
		}
	}

	// The directory sitting exactly at the depth bound is still emitted.
	names := displayOrder(events)
	sawBoundary := false
	for _, name := range names {
		if name == "b" {
			sawBoundary = true
		}
	}
	if !sawBoundary {
		t.Fatalf("directory at max depth missing from output: %v", names)
	}
}

func TestStreamTreeResolvesRelativeRoot(t *testing.T) {
	parent := t.TempDir()
	projectDirectory := filepath.Join(parent, "myproject")
	mustMkdir(t, projectDirectory)
	mustWriteFile(t, filepath.Join(projectDirectory, "main.go"))
	chdir(t, projectDirectory)

	events := collectEvents(t, commands.TreeStreamOptions{Root: ".", MaxDepth: 1, IncludeFiles: true})
	if len(events) == 0 {
		t.Fatalf("expected events for relative root")
	}
	if rootName := events[0].Entry.Name; rootName != "myproject" {
		t.Fatalf("expected resolved root name myproject, got %s", rootName)
	}
	if !filepath.IsAbs(events[0].Entry.Path) {
		t.Fatalf("expected absolute root path, got %s", events[0].Entry.Path)
	}
}

func TestStreamTreeWarnsOnUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	root := t.TempDir()
	lockedPath := filepath.Join(root, "locked")
	mustMkdir(t, lockedPath)
	mustWriteFile(t, filepath.Join(lockedPath, "hidden.txt"))
	mustMkdir(t, filepath.Join(root, "open"))
	mustWriteFile(t, filepath.Join(root, "open", "visible.txt"))
	if err := os.Chmod(lockedPath, 0o000); err != nil {
		t.Fatalf("chmod %s: %v", lockedPath, err)
	}
	t.Cleanup(func() { _ = os.Chmod(lockedPath, 0o755) })

	var warnings []string
	events := collectEvents(t, commands.TreeStreamOptions{
		Root:         root,
		MaxDepth:     3,
		IncludeFiles: true,
		Warn:         func(message string) { warnings = append(warnings, message) },
	})

	names := displayOrder(events)
	expected := []string{filepath.Base(root), "locked", "open", "visible.txt"}
	if len(names) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, names)
	}
	for index, name := range expected {
		if names[index] != name {
			t.Fatalf("expected %s at position %d, got %s", name, index, names[index])
		}
	}
	// The unreadable directory renders as an empty enter/leave pair.
	for eventIndex, event := range events {
		if event.Entry.Name == "locked" && event.Kind == commands.TreeEventEnterDir {
			if next := events[eventIndex+1]; next.Kind != commands.TreeEventLeaveDir || next.Entry.Name != "locked" {
				t.Fatalf("expected immediate leave after unreadable directory, got %v %s", next.Kind, next.Entry.Name)
			}
		}
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "Warning: skipping contents of") || !strings.Contains(warnings[0], lockedPath) {
		t.Fatalf("unexpected warning text: %s", warnings[0])
	}
}

func TestStreamTreeMaxDepthZeroEmitsOnlyRoot(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "child"))
	mustWriteFile(t, filepath.Join(root, "file.txt"))

	events := collectEvents(t, commands.TreeStreamOptions{Root: root, MaxDepth: 0, IncludeFiles: true})
	if len(events) != 2 {
		t.Fatalf("expected root enter and leave only, got %d events", len(events))
	}
	if events[0].Kind != commands.TreeEventEnterDir || events[1].Kind != commands.TreeEventLeaveDir {
		t.Fatalf("expected enter/leave pair for root, got %v %v", events[0].Kind, events[1].Kind)
	}
	if events[0].Entry.Depth != 0 {
		t.Fatalf("root depth must be zero, got %d", events[0].Entry.Depth)
	}
}

func TestStreamTreeAppliesDefaultIgnoreNames(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, ".git", "objects"))
	mustMkdir(t, filepath.Join(root, "__pycache__"))
	mustMkdir(t, filepath.Join(root, "kept"))

	events := collectEvents(t, commands.TreeStreamOptions{Root: root, MaxDepth: 3, IncludeFiles: true})
	for _, name := range displayOrder(events) {
		if name == ".git" || name == "__pycache__" || name == "objects" {
			t.Fatalf("ignored entry %s was emitted", name)
		}
	}
}

func TestStreamTreeAppliesIgnoreGlobsAndPaths(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "keep.txt"))
	mustWriteFile(t, filepath.Join(root, "drop.log"))
	mustMkdir(t, filepath.Join(root, "vendor", "lib"))
	mustMkdir(t, filepath.Join(root, "src"))
	mustWriteFile(t, filepath.Join(root, "src", "trace.log"))

	events := collectEvents(t, commands.TreeStreamOptions{
		Root:         root,
		MaxDepth:     3,
		IgnoreGlobs:  []string{"**/*.log"},
		IgnorePaths:  []string{"vendor"},
		IncludeFiles: true,
	})

	names := displayOrder(events)
	for _, name := range names {
		switch name {
		case "drop.log", "trace.log", "vendor", "lib":
			t.Fatalf("ignored entry %s was emitted", name)
		}
	}
	sawKept := false
	for _, name := range names {
		if name == "keep.txt" {
			sawKept = true
		}
	}
	if !sawKept {
		t.Fatalf("expected keep.txt in output: %v", names)
	}
}

func TestStreamTreeExcludesFilesWhenRequested(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "file.txt"))
	mustMkdir(t, filepath.Join(root, "dir"))

	events := collectEvents(t, commands.TreeStreamOptions{Root: root, MaxDepth: 1, IncludeFiles: false})
	for _, event := range events {
		if event.Kind == commands.TreeEventFile {
			t.Fatalf("file event emitted in directories-only mode: %s", event.Entry.Path)
		}
	}
}

func TestStreamTreeRootNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	err := commands.StreamTree(commands.TreeStreamOptions{Root: missing, MaxDepth: 1, IncludeFiles: true}, func(commands.TreeEvent) error {
		t.Fatalf("no events expected for a missing root")
		return nil
	})
	if !errors.Is(err, commands.ErrRootNotFound) {
		t.Fatalf("expected ErrRootNotFound, got %v", err)
	}
}

func TestStreamTreeRootNotADirectory(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "plain.txt")
	mustWriteFile(t, filePath)

	err := commands.StreamTree(commands.TreeStreamOptions{Root: filePath, MaxDepth: 1, IncludeFiles: true}, func(commands.TreeEvent) error {
		t.Fatalf("no events expected for a file root")
		return nil
	})
	if !errors.Is(err, commands.ErrRootNotADirectory) {
		t.Fatalf("expected ErrRootNotADirectory, got %v", err)
	}
}

func TestStreamTreeDoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	mustMkdir(t, target)
	mustWriteFile(t, filepath.Join(target, "inside.txt"))
	linkPath := filepath.Join(root, "link")
	if err := os.Symlink(target, linkPath); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	events := collectEvents(t, commands.TreeStreamOptions{Root: root, MaxDepth: 4, IncludeFiles: true})

	insideCount := 0
	var linkEntry *commands.TreeEntryEvent
	for _, event := range events {
		if event.Entry.Name == "inside.txt" {
			insideCount++
		}
		if event.Entry.Name == "link" && event.Kind == commands.TreeEventEnterDir && linkEntry == nil {
			linkEntry = event.Entry
		}
	}
	if linkEntry == nil {
		t.Fatalf("symlinked directory missing from output")
	}
	if !linkEntry.IsDirectory {
		t.Fatalf("symlinked directory should render as a directory entry")
	}
	if insideCount != 1 {
		t.Fatalf("symlink target contents emitted %d times, expected once via the real directory", insideCount)
	}
}

func TestStreamTreeSiblingFlags(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"))
	mustWriteFile(t, filepath.Join(root, "b.txt"))

	events := collectEvents(t, commands.TreeStreamOptions{Root: root, MaxDepth: 1, IncludeFiles: true})

	var flags []bool
	for _, event := range events {
		if event.Kind == commands.TreeEventFile {
			flags = append(flags, event.Entry.HasMoreSiblings)
		}
	}
	if len(flags) != 2 {
		t.Fatalf("expected two file events, got %d", len(flags))
	}
	if !flags[0] || flags[1] {
		t.Fatalf("expected first sibling flagged, last unflagged: %v", flags)
	}
}
