package internalcheck

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const rawLayerDir = "pkg/jscsys"

// moduleRoot is the repository root relative to this package.
const moduleRoot = "../../.."

// TestOnlyRawLayerImportsC parses every Go file regardless of build tags, so
// files compiled only with cgo on a given OS are covered too.
func TestOnlyRawLayerImportsC(t *testing.T) {
	fset := token.NewFileSet()
	var findings []string

	err := filepath.WalkDir(moduleRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != moduleRoot && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(moduleRoot, path)
		if err != nil {
			return err
		}
		for _, imp := range file.Imports {
			p, err := strconv.Unquote(imp.Path.Value)
			if err != nil || p != "C" {
				continue
			}
			if filepath.ToSlash(filepath.Dir(rel)) != rawLayerDir {
				findings = append(findings, fset.Position(imp.Pos()).String()+`: import "C" outside `+rawLayerDir)
			}
		}
		return nil
	})
	require.NoError(t, err)

	if len(findings) > 0 {
		t.Fatalf("cgo isolation violation:\n%s", strings.Join(findings, "\n"))
	}
}
