package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/isogap/pkg/cli/config"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
)

func TestLoggerConfigure(t *testing.T) {
	prev := logging.Default()
	t.Cleanup(func() { logging.SetDefault(prev) })

	t.Run("json output to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "isogap.log")
		cfg := config.NewLoggerForTest("debug", "json", path)

		closer, err := cfg.Configure()
		gt.NoError(t, err).Required()
		logging.Default().Debug("written to file", "key", "value")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Contains("written to file")
		gt.String(t, string(data)).Contains(`"key":"value"`)
	})

	t.Run("level filters records", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "isogap.log")
		cfg := config.NewLoggerForTest("warn", "json", path)

		closer, err := cfg.Configure()
		gt.NoError(t, err).Required()
		logging.Default().Info("dropped")
		logging.Default().Warn("kept")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).NotContains("dropped")
		gt.String(t, string(data)).Contains("kept")
	})

	t.Run("secret fields are masked", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "isogap.log")
		cfg := config.NewLoggerForTest("info", "json", path)

		closer, err := cfg.Configure()
		gt.NoError(t, err).Required()
		logging.Default().Info("token", "token", "xoxb-hunter2")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).NotContains("xoxb-hunter2")
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := config.NewLoggerForTest("loud", "json", "stdout")
		_, err := cfg.Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid format", func(t *testing.T) {
		cfg := config.NewLoggerForTest("info", "xml", "stdout")
		_, err := cfg.Configure()
		gt.Value(t, err).NotNil()
	})
}
