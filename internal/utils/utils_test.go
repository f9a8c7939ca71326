package utils_test

import (
	"path/filepath"
	"testing"

	"github.com/ptashenko/dirtree/internal/utils"
)

func TestDeduplicatePatternsPreservesOrder(t *testing.T) {
	input := []string{"b", "a", "b", "c", "a"}
	expected := []string{"b", "a", "c"}
	actual := utils.DeduplicatePatterns(input)
	if len(actual) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
	for index := range expected {
		if actual[index] != expected[index] {
			t.Fatalf("expected %v, got %v", expected, actual)
		}
	}
}

func TestRelativePathOrSelf(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "sub", "file.txt")
	if got := utils.RelativePathOrSelf(child, root); got != "sub/file.txt" {
		t.Fatalf("expected sub/file.txt, got %s", got)
	}
	if got := utils.RelativePathOrSelf(root, root); got != "." {
		t.Fatalf("expected . for identical paths, got %s", got)
	}
}

func TestIgnoreRulesMatchesNames(t *testing.T) {
	rules := utils.NewIgnoreRules([]string{".git", "__pycache__"}, nil, nil, "/tmp/project")
	if !rules.Matches(".git") {
		t.Fatalf(".git should match by name")
	}
	if !rules.Matches("pkg/__pycache__") {
		t.Fatalf("nested __pycache__ should match by name")
	}
	if rules.Matches("src/main.go") {
		t.Fatalf("src/main.go should not match")
	}
}

func TestIgnoreRulesMatchesGlobs(t *testing.T) {
	rules := utils.NewIgnoreRules(nil, []string{"*.log", "build/**"}, nil, "/tmp/project")
	if !rules.Matches("trace.log") {
		t.Fatalf("basename glob should match")
	}
	if !rules.Matches("deep/nested/trace.log") {
		t.Fatalf("basename glob should match at any depth")
	}
	if !rules.Matches("build/out/app") {
		t.Fatalf("doublestar path glob should match")
	}
	if rules.Matches("src/app.go") {
		t.Fatalf("src/app.go should not match")
	}
}

func TestIgnoreRulesTrimsDirectoryMarkers(t *testing.T) {
	rules := utils.NewIgnoreRules(nil, []string{"vendor/"}, nil, "/tmp/project")
	if !rules.Matches("vendor") {
		t.Fatalf("trailing-slash pattern should match the directory name")
	}
}

func TestIgnoreRulesMatchesLiteralPaths(t *testing.T) {
	root := t.TempDir()
	rules := utils.NewIgnoreRules(nil, nil, []string{"vendor", filepath.Join(root, "dist")}, root)
	if !rules.Matches("vendor") {
		t.Fatalf("relative literal path should match")
	}
	if !rules.Matches("dist") {
		t.Fatalf("absolute literal path should be rebased onto the root and match")
	}
	if rules.Matches("vendor2") {
		t.Fatalf("vendor2 should not match")
	}
}

func TestGetApplicationVersionNeverEmpty(t *testing.T) {
	if version := utils.GetApplicationVersion(); version == "" {
		t.Fatalf("version lookup must always produce a value")
	}
}
