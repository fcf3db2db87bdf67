package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/matzehuels/chatstack/pkg/dataset"
	"github.com/matzehuels/chatstack/pkg/numeric"
)

func sampleDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Dates:  []string{"2014-01-12", "2014-01-26", "2014-02-09", "2014-02-23"},
		Names:  []string{"alice", "bob", "carol"},
		Counts: numeric.Matrix{{4, 8, 2, 0}, {10, 12, 9, 11}, {1, 0, 0, 3}},
	}
}

// writeSample writes the sample dataset into a fresh temp dir, points the
// cache there too and returns the dataset path.
func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	path := filepath.Join(dir, "chats.json")
	if err := sampleDataset().WriteFile(path); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the CLI with args and returns the log output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs bytes.Buffer
	root := New(&logs, LogDebug).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.Execute()
	return logs.String(), err
}
