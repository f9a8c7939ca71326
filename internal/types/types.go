// Package types defines every cross‑package data structure used by the dirtree CLI.
package types

// Recognized values for the configuration file's format field.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// DefaultMaxDepth bounds traversal when the caller supplies no depth.
const DefaultMaxDepth = 2

// DefaultIgnoreNames lists entry names excluded from every traversal in
// addition to caller-supplied ignore rules.
var DefaultIgnoreNames = []string{
	".git",
	"__pycache__",
	".mypy_cache",
	".pytest_cache",
}

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}
