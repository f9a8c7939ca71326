package utils

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreRules captures every exclusion rule applied during traversal:
// exact entry names, glob patterns, and literal root-relative paths.
type IgnoreRules struct {
	names map[string]struct{}
	globs []string
	paths map[string]struct{}
}

// NewIgnoreRules builds the rule set from default names, glob patterns, and
// literal paths. Absolute literal paths are rebased onto rootDirectoryPath so
// both absolute and root-relative forms match walker output.
func NewIgnoreRules(defaultNames []string, ignoreGlobs []string, ignorePaths []string, rootDirectoryPath string) IgnoreRules {
	nameSet := make(map[string]struct{}, len(defaultNames))
	for _, entryName := range defaultNames {
		nameSet[entryName] = struct{}{}
	}

	pathSet := make(map[string]struct{}, len(ignorePaths))
	for _, ignorePath := range ignorePaths {
		candidatePath := ignorePath
		if filepath.IsAbs(candidatePath) {
			candidatePath = RelativePathOrSelf(candidatePath, rootDirectoryPath)
		}
		pathSet[NormalizeRelativePath(candidatePath)] = struct{}{}
	}

	// Ignore-file patterns may carry a trailing slash to mark directories;
	// filtering already prevents descent, so matching the name is enough.
	normalizedGlobs := make([]string, 0, len(ignoreGlobs))
	for _, globPattern := range ignoreGlobs {
		normalizedGlobs = append(normalizedGlobs, strings.TrimSuffix(globPattern, pathSegmentSeparator))
	}

	return IgnoreRules{
		names: nameSet,
		globs: DeduplicatePatterns(normalizedGlobs),
		paths: pathSet,
	}
}

// Matches reports whether the entry identified by its root-relative path
// should be excluded from traversal and output. Glob patterns are evaluated
// against both the entry name and the relative path, matching either.
func (rules IgnoreRules) Matches(relativePath string) bool {
	normalizedPath := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	entryName := LastPathSegment(normalizedPath)

	if _, isIgnoredName := rules.names[entryName]; isIgnoredName {
		return true
	}
	if _, isIgnoredPath := rules.paths[normalizedPath]; isIgnoredPath {
		return true
	}

	for _, patternValue := range rules.globs {
		if isMatched, matchError := doublestar.Match(patternValue, entryName); matchError == nil && isMatched {
			return true
		}
		if isMatched, matchError := doublestar.Match(patternValue, normalizedPath); matchError == nil && isMatched {
			return true
		}
	}

	return false
}
