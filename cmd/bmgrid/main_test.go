package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmgrid/internal/storage"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

const exportFile = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 PERSONAL_TOOLBAR_FOLDER="true">Bookmarks Bar</H3>
    <DL><p>
        <DT><A HREF="https://go.dev" ADD_DATE="1700000000">Go</A>
        <DT><H3>Tools</H3>
        <DL><p>
            <DT><A HREF="https://github.com">GitHub</A>
        </DL><p>
    </DL><p>
    <DT><H3>Other Bookmarks</H3>
    <DL><p>
        <DT><A HREF="https://example.com">Example</A>
    </DL><p>
</DL><p>
`

// execute runs the CLI with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	storePath, settingsPath, logFile, printOnly = "", "", "", false
	logLevel = "info"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// importFixture imports exportFile into a fresh store and returns its path.
func importFixture(t *testing.T, ext string) (dir, store string) {
	t.Helper()
	dir = t.TempDir()
	store = filepath.Join(dir, "bookmarks"+ext)
	src := filepath.Join(dir, "export.html")
	assert.NilError(t, os.WriteFile(src, []byte(exportFile), 0o644))

	out, err := execute(t, "import", src,
		"--store", store,
		"--settings", filepath.Join(dir, "settings.json"),
		"--log-level", "error",
	)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Imported 3 bookmarks (2 into Bookmarks Bar, 1 into Other Bookmarks)"))
	return dir, store
}

func TestImport(t *testing.T) {
	for _, ext := range []string{".json", ".db"} {
		t.Run(ext, func(t *testing.T) {
			_, path := importFixture(t, ext)

			store, err := storage.Open(path)
			assert.NilError(t, err)
			defer store.Close()

			root, err := store.GetTree(context.Background())
			assert.NilError(t, err)

			bar, ok := tree.FindByID(root, storage.BarID)
			assert.Assert(t, ok)
			assert.Assert(t, is.Len(bar.Children, 2))
			assert.Equal(t, bar.Children[0].Title, "Go")
			assert.Equal(t, bar.Children[1].Title, "Tools")
			assert.Equal(t, bar.Children[1].Children[0].Link(), "https://github.com")

			other, ok := tree.FindByID(root, storage.OtherID)
			assert.Assert(t, ok)
			assert.Assert(t, is.Len(other.Children, 1))
			assert.Equal(t, other.Children[0].Title, "Example")
		})
	}
}

func TestImport_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "import", filepath.Join(dir, "missing.html"),
		"--store", filepath.Join(dir, "bookmarks.json"),
		"--settings", filepath.Join(dir, "settings.json"),
		"--log-level", "error",
	)
	assert.ErrorContains(t, err, "open file")
}

func TestExport(t *testing.T) {
	dir, store := importFixture(t, ".json")
	target := filepath.Join(dir, "out", "bookmarks.html")

	out, err := execute(t, "export", target, "--store", store, "--log-level", "error")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Exported 3 bookmarks to "+target))

	data, err := os.ReadFile(target)
	assert.NilError(t, err)
	html := string(data)
	assert.Assert(t, is.Contains(html, `PERSONAL_TOOLBAR_FOLDER="true">Bookmarks Bar</H3>`))
	assert.Assert(t, is.Contains(html, `HREF="https://github.com"`))
	assert.Assert(t, is.Contains(html, "Other Bookmarks"))
}

func TestFind(t *testing.T) {
	_, store := importFixture(t, ".json")

	out, err := execute(t, "find", "git", "--print", "--store", store, "--log-level", "error")
	assert.NilError(t, err)
	assert.Equal(t, out, "https://github.com\n")

	out, err = execute(t, "find", "zzz", "--store", store, "--log-level", "error")
	assert.NilError(t, err)
	assert.Equal(t, out, "No bookmarks found for 'zzz'\n")
}

func TestInvalidLogLevel(t *testing.T) {
	_, store := importFixture(t, ".json")

	_, err := execute(t, "find", "go", "--store", store, "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid --log-level")
}

func TestLogFile(t *testing.T) {
	dir, store := importFixture(t, ".json")
	logPath := filepath.Join(dir, "bmgrid.log")

	_, err := execute(t, "export", filepath.Join(dir, "out.html"),
		"--store", store,
		"--log-file", logPath,
		"--log-level", "debug",
	)
	assert.NilError(t, err)

	_, err = os.Stat(logPath)
	assert.NilError(t, err)
}
