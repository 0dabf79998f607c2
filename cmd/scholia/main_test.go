package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runApp runs the CLI against a throwaway database with the mock provider
// and returns what the command printed to stdout.
func runApp(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SCHOLIA_AI_PROVIDER", "mock")
	t.Setenv("SCHOLIA_DB_PATH", dbPath)

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"scholia", "--owner", "alice"}, args...))
	return stdout.String(), err
}

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %s not found", name)
	return nil
}

func TestReembedCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "reembed")

	defaults := map[string]int{"batch-size": 100, "report-interval": 100, "max-retries": 3}
	for _, flag := range cmd.Flags {
		switch f := flag.(type) {
		case *cli.IntFlag:
			want, ok := defaults[f.Name]
			require.True(t, ok, "unexpected flag %s", f.Name)
			assert.Equal(t, want, f.Value, f.Name)
			delete(defaults, f.Name)
		case *cli.DurationFlag:
			assert.Equal(t, "retry-delay", f.Name)
			assert.Equal(t, time.Second, f.Value)
		}
	}
	assert.Empty(t, defaults)
}

func TestOwnerFlag(t *testing.T) {
	app := newApp()
	var owner *cli.StringFlag
	for _, flag := range app.Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == "owner" {
			owner = f
		}
	}
	require.NotNil(t, owner)
	assert.NotEmpty(t, owner.Value)
	assert.Equal(t, []string{"SCHOLIA_OWNER"}, owner.EnvVars)
}

func TestSetupLogger(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		_, err := runApp(t, t.TempDir(), "--config", filepath.Join(t.TempDir(), "missing.toml"), "status")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("config file is applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scholia.toml")
		require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\nformat = \"json\"\n"), 0o600))
		_, err := runApp(t, t.TempDir(), "--config", path, "status")
		require.NoError(t, err)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		t.Setenv("SCHOLIA_SERVER_PORT", "not-a-port")
		_, err := runApp(t, t.TempDir(), "status")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SCHOLIA_SERVER_PORT")
	})
}

func TestIngestAndQuery(t *testing.T) {
	dbPath := t.TempDir()

	out, err := runApp(t, dbPath, "ingest", "--name", "paris", "--text", "Paris is the capital of France.")
	require.NoError(t, err)
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "paris")
	docID := strings.Fields(out)[0]

	out, err = runApp(t, dbPath, "status")
	require.NoError(t, err)
	assert.Contains(t, out, docID+"\ttext\tready\tparis")

	out, err = runApp(t, dbPath, "search", "capital of France")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 hits")
	assert.Contains(t, out, "Paris is the capital of France.")

	out, err = runApp(t, dbPath, "notebook", "Geography")
	require.NoError(t, err)
	notebookID := strings.Fields(out)[0]

	out, err = runApp(t, dbPath, "ask", notebookID, "What is the capital of France?")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated: ")

	out, err = runApp(t, dbPath, "generate", "--type", "faq", "--doc", docID, notebookID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# "))

	_, err = runApp(t, dbPath, "reembed", "--batch-size", "10")
	require.NoError(t, err)
}

func TestIngestFile(t *testing.T) {
	dbPath := t.TempDir()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Berlin is the capital of Germany."), 0o600))

	out, err := runApp(t, dbPath, "ingest", path)
	require.NoError(t, err)
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "ready")
}

func TestIngestFailure(t *testing.T) {
	dbPath := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	out, err := runApp(t, dbPath, "ingest", missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion failed")
	assert.Contains(t, out, "failed")

	docID := strings.Fields(out)[0]
	out, err = runApp(t, dbPath, "retry", docID)
	require.NoError(t, err)
	assert.Contains(t, out, "failed")
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"ingest without source", []string{"ingest"}, "--text or --url"},
		{"retry without id", []string{"retry"}, "document id is required"},
		{"retry with bad id", []string{"retry", "abc"}, "invalid document id"},
		{"ask without notebook", []string{"ask"}, "notebook id is required"},
		{"zero batch size", []string{"reembed", "--batch-size", "0"}, "batch-size must be greater than 0"},
		{"zero max retries", []string{"reembed", "--max-retries", "0"}, "max-retries must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, t.TempDir(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTypeForPath(t *testing.T) {
	assert.Equal(t, "pdf", string(typeForPath("/a/b.PDF")))
	assert.Equal(t, "word", string(typeForPath("report.docx")))
	assert.Equal(t, "url", string(typeForPath("page.html")))
	assert.Equal(t, "text", string(typeForPath("notes.md")))
}
