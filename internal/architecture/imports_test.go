package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// layers maps a source prefix to the internal packages it must not import.
// Lower layers never reach up into the pipeline or the HTTP surface.
var layers = []struct {
	prefix string
	banned []string
}{
	{"internal/platform/", []string{"design", "docx", "templates", "pipeline", "export", "http", "app", "cli"}},
	{"internal/prompts/", []string{"design", "docx", "templates", "pipeline", "export", "http", "app", "cli"}},
	{"internal/design/", []string{"docx", "templates", "pipeline", "export", "http", "app", "cli"}},
	{"internal/docx/", []string{"design", "templates", "pipeline", "export", "http", "app", "cli"}},
	{"internal/templates/", []string{"pipeline", "export", "http", "app", "cli"}},
	{"internal/pipeline/", []string{"export", "http", "app", "cli"}},
	{"internal/export/", []string{"http", "app", "cli"}},
	{"internal/http/", []string{"app", "cli"}},
	{"internal/app/", []string{"cli"}},
}

func bannedFor(modulePath, rel string) []string {
	for _, l := range layers {
		if !strings.HasPrefix(rel, l.prefix) {
			continue
		}
		out := make([]string, 0, len(l.banned))
		for _, b := range l.banned {
			out = append(out, modulePath+"/internal/"+b)
		}
		return out
	}
	return nil
}

func TestImportBoundaries(t *testing.T) {
	root := moduleRoot(t)
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	fset := token.NewFileSet()
	var violations []string
	walkErr := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		banned := bannedFor(modulePath, rel)
		if len(banned) == 0 {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			for _, bad := range banned {
				if imp == bad || strings.HasPrefix(imp, bad+"/") {
					violations = append(violations, fmt.Sprintf("- %s imports %q", rel, imp))
					break
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n%s", strings.Join(violations, "\n"))
	}
}

func TestBoundaryRulesMatchPrefixes(t *testing.T) {
	const mod = "example.com/m"
	if got := bannedFor(mod, "internal/pipeline/orchestrator.go"); len(got) == 0 || got[0] != mod+"/internal/export" {
		t.Fatalf("pipeline rules = %v", got)
	}
	if got := bannedFor(mod, "cmd/mindm/main.go"); got != nil {
		t.Fatalf("cmd should be unrestricted, got %v", got)
	}
}

func moduleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	start := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if mp, ok := strings.CutPrefix(line, "module "); ok {
			if mp = strings.TrimSpace(mp); mp != "" {
				return mp, nil
			}
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
