package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/isogap/pkg/cli"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "config.toml", `
[[likelihood]]
id = "low"
name = "Low"
score = 1

[[impact]]
id = "minor"
name = "Minor"
score = 2

[[risk]]
id = "r-1"
name = "Lost laptop"
likelihood = "low"
impact = "minor"
`)

	err := cli.Run(context.Background(), []string{"isogap", "validate", "--config", configPath}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_DefaultConfig(t *testing.T) {
	err := cli.Run(context.Background(), []string{"isogap", "validate"}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "config.toml", `
[[likelihood]]
id = "INVALID_ID"
name = "Bad"
score = 1
`)

	err := cli.Run(context.Background(), []string{"isogap", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nonexistent.toml")

	err := cli.Run(context.Background(), []string{"isogap", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_CheckDB(t *testing.T) {
	t.Run("empty file repository passes", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"isogap", "validate",
			"--check-db",
			"--repository-backend", "file",
			"--data-dir", t.TempDir(),
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("well formed history passes", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "leadershipRecords.json", `[{"id":"1","domain":"leadership","submittedAt":"2026-01-01T00:00:00Z","sections":{}}]`)

		err := cli.Run(context.Background(), []string{
			"isogap", "validate",
			"--check-db",
			"--repository-backend", "file",
			"--data-dir", dir,
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("malformed history fails", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "leadershipRecords.json", "{broken")

		err := cli.Run(context.Background(), []string{
			"isogap", "validate",
			"--check-db",
			"--repository-backend", "file",
			"--data-dir", dir,
		}, "test")
		gt.Value(t, err).NotNil()
	})
}
