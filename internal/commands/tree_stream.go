// Package commands contains the core traversal logic for the dirtree tool.
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ptashenko/dirtree/internal/types"
	"github.com/ptashenko/dirtree/internal/utils"
)

// Root-level failures. Only these abort an invocation; everything below the
// root degrades to a warning so partial output stays useful.
var (
	// ErrRootNotFound indicates the supplied root path does not exist.
	ErrRootNotFound = errors.New("root path does not exist")
	// ErrRootNotADirectory indicates the supplied root is not a directory.
	ErrRootNotADirectory = errors.New("root path is not a directory")
)

const (
	// errorNilHandlerMessage is returned when StreamTree receives no handler.
	errorNilHandlerMessage = "tree stream handler is nil"
	// errorStatRootFormat reports a failure to stat the root path.
	errorStatRootFormat = "stat root %s: %w"
	// warningReadDirectoryFormat is used when a directory cannot be listed.
	warningReadDirectoryFormat = "Warning: skipping contents of %s: %v"
)

// TreeEventKind identifies the traversal phase an event belongs to.
type TreeEventKind int

const (
	TreeEventEnterDir TreeEventKind = iota
	TreeEventFile
	TreeEventLeaveDir
)

// TreeEntryEvent describes one file-system entry in display order.
type TreeEntryEvent struct {
	Path            string
	Name            string
	Depth           int
	IsDirectory     bool
	HasMoreSiblings bool
}

// TreeEvent is a single traversal event delivered to the stream handler.
type TreeEvent struct {
	Kind  TreeEventKind
	Entry *TreeEntryEvent
}

// TreeStreamOptions configures a single traversal.
type TreeStreamOptions struct {
	Root         string
	MaxDepth     int
	IgnoreGlobs  []string
	IgnorePaths  []string
	IncludeFiles bool
	Warn         func(message string)
}

type treeStreamContext struct {
	options TreeStreamOptions
	rules   utils.IgnoreRules
	handler func(TreeEvent) error
}

// childRecord holds the attributes needed to order and emit one surviving child.
type childRecord struct {
	path        string
	name        string
	isDirectory bool
	canRecurse  bool
}

// StreamTree walks the directory rooted at options.Root in a single
// depth-first pre-order pass, delivering one event per surviving entry.
// Directories are emitted before files at each level, each group sorted by
// name byte-wise. A directory sitting exactly at MaxDepth is emitted but not
// expanded. Symbolic links are never followed; a symlink resolving to a
// directory is emitted as a non-expandable directory entry.
func StreamTree(options TreeStreamOptions, handler func(TreeEvent) error) error {
	if handler == nil {
		return errors.New(errorNilHandlerMessage)
	}

	rootInfo, statError := os.Stat(options.Root)
	if statError != nil {
		if os.IsNotExist(statError) {
			return fmt.Errorf("%w: %s", ErrRootNotFound, options.Root)
		}
		return fmt.Errorf(errorStatRootFormat, options.Root, statError)
	}
	if !rootInfo.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotADirectory, options.Root)
	}

	// Resolve the root before emitting its name so a relative root such as
	// "." reports the directory's real name.
	if absoluteRootPath, absoluteRootError := filepath.Abs(options.Root); absoluteRootError == nil {
		options.Root = filepath.Clean(absoluteRootPath)
	}

	streamContext := &treeStreamContext{
		options: options,
		rules:   utils.NewIgnoreRules(types.DefaultIgnoreNames, options.IgnoreGlobs, options.IgnorePaths, options.Root),
		handler: handler,
	}
	if streamContext.options.Warn == nil {
		streamContext.options.Warn = func(string) {}
	}

	rootEntry := TreeEntryEvent{
		Path:        options.Root,
		Name:        filepath.Base(options.Root),
		Depth:       0,
		IsDirectory: true,
	}
	if err := handler(TreeEvent{Kind: TreeEventEnterDir, Entry: &rootEntry}); err != nil {
		return err
	}
	if options.MaxDepth > 0 {
		if err := streamContext.walkDirectory(options.Root, 1); err != nil {
			return err
		}
	}
	return handler(TreeEvent{Kind: TreeEventLeaveDir, Entry: &rootEntry})
}

// walkDirectory emits events for the surviving children of path, recursing
// into real subdirectories while depth stays within the configured bound.
func (streamContext *treeStreamContext) walkDirectory(path string, depth int) error {
	directoryEntries, readDirectoryError := os.ReadDir(path)
	if readDirectoryError != nil {
		streamContext.options.Warn(fmt.Sprintf(warningReadDirectoryFormat, path, readDirectoryError))
		return nil
	}

	children := streamContext.collectChildren(path, directoryEntries)

	for childIndex, child := range children {
		entry := TreeEntryEvent{
			Path:            child.path,
			Name:            child.name,
			Depth:           depth,
			IsDirectory:     child.isDirectory,
			HasMoreSiblings: childIndex < len(children)-1,
		}

		if !child.isDirectory {
			if err := streamContext.handler(TreeEvent{Kind: TreeEventFile, Entry: &entry}); err != nil {
				return err
			}
			continue
		}

		if err := streamContext.handler(TreeEvent{Kind: TreeEventEnterDir, Entry: &entry}); err != nil {
			return err
		}
		if child.canRecurse && depth < streamContext.options.MaxDepth {
			if err := streamContext.walkDirectory(child.path, depth+1); err != nil {
				return err
			}
		}
		if err := streamContext.handler(TreeEvent{Kind: TreeEventLeaveDir, Entry: &entry}); err != nil {
			return err
		}
	}

	return nil
}

// collectChildren filters, classifies, and orders the immediate children of
// a directory. Filtering happens before any recursion so ignored directories
// are never descended into.
func (streamContext *treeStreamContext) collectChildren(path string, directoryEntries []os.DirEntry) []childRecord {
	children := make([]childRecord, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(path, directoryEntry.Name())
		relativeChildPath := utils.RelativePathOrSelf(childPath, streamContext.options.Root)
		if streamContext.rules.Matches(relativeChildPath) {
			continue
		}

		record := childRecord{
			path:        childPath,
			name:        directoryEntry.Name(),
			isDirectory: directoryEntry.IsDir(),
			canRecurse:  directoryEntry.IsDir(),
		}
		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			if targetInfo, targetStatError := os.Stat(childPath); targetStatError == nil && targetInfo.IsDir() {
				record.isDirectory = true
			}
		}
		if !streamContext.options.IncludeFiles && !record.isDirectory {
			continue
		}
		children = append(children, record)
	}

	sort.Slice(children, func(leftIndex, rightIndex int) bool {
		left, right := children[leftIndex], children[rightIndex]
		if left.isDirectory != right.isDirectory {
			return left.isDirectory
		}
		return left.name < right.name
	})

	return children
}
