package core_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coreImports returns the imports of every non-test file in pkg/core, keyed
// by file name.
func coreImports(t *testing.T) map[string][]string {
	t.Helper()
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	fset := token.NewFileSet()
	imports := make(map[string][]string)
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		require.NoError(t, err, name)
		for _, imp := range f.Imports {
			imports[name] = append(imports[name], strings.Trim(imp.Path.Value, `"`))
		}
	}
	require.NotEmpty(t, imports)
	return imports
}

// pkg/core may import only the standard library.
func TestCoreImportsOnlyStdlib(t *testing.T) {
	for name, paths := range coreImports(t) {
		for _, p := range paths {
			first, _, _ := strings.Cut(p, "/")
			assert.NotContains(t, first, ".", "%s imports non-stdlib package %s", name, p)
			assert.NotContains(t, p, "/internal/", "%s imports internal package %s", name, p)
		}
	}
}
