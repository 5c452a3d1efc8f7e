package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdsul/grace"
	"github.com/bdsul/grace/generator"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 0, c.Mapper.MaxWrapEvents)
	assert.Equal(t, "grow", c.Generator.Method)
	assert.Equal(t, uint(255), c.Generator.CodonMax)
}

func TestLoadMissingFile(t *testing.T) {
	c, e := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, e)
	assert.Equal(t, Default(), c)

	c, e = Load("")
	require.NoError(t, e)
	assert.Equal(t, Default(), c)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "grace.yaml", `
mapper:
  max_wrap_events: 3
generator:
  method: full
  min_length: 5
  max_length: 8
  seed: 42
log:
  format: json
`)

	c, e := Load(path)
	require.NoError(t, e)
	assert.Equal(t, 3, c.Mapper.MaxWrapEvents)
	assert.Equal(t, "full", c.Generator.Method)
	assert.Equal(t, 5, c.Generator.MinLength)
	assert.Equal(t, 8, c.Generator.MaxLength)
	assert.Equal(t, uint64(42), c.Generator.Seed)
	assert.Equal(t, 10, c.Generator.MaxDepth, "unset values keep defaults")
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "grace.json", `{"decode": {"workers": 4}, "mapper": {"max_depth": 12}}`)

	c, e := Load(path)
	require.NoError(t, e)
	assert.Equal(t, 4, c.Decode.Workers)
	assert.Equal(t, 12, c.Mapper.MaxDepth)
}

func TestLoadMalformed(t *testing.T) {
	path := writeFile(t, "bad.yaml", "mapper: [1, 2\n")

	_, e := Load(path)
	require.Error(t, e)
	assert.Equal(t, ConfigReadError, grace.ErrorCode(e))
	assert.Contains(t, e.Error(), "load config file")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvMaxWrapEvents, "7")
	t.Setenv(EnvMaxDepth, "15")
	t.Setenv(EnvGeneratorMethod, "RANDOM")
	t.Setenv(EnvSeed, "99")
	t.Setenv(EnvWorkers, "2")
	t.Setenv(EnvLogLevel, "debug")
	path := writeFile(t, "grace.yaml", "mapper:\n  max_wrap_events: 3\n")

	c, e := Load(path)
	require.NoError(t, e)
	assert.Equal(t, 7, c.Mapper.MaxWrapEvents)
	assert.Equal(t, 15, c.Generator.MaxDepth)
	assert.Equal(t, "random", c.Generator.Method)
	assert.Equal(t, uint64(99), c.Generator.Seed)
	assert.Equal(t, 2, c.Decode.Workers)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestEnvErrors(t *testing.T) {
	samples := map[string]string{
		EnvMaxWrapEvents: "many",
		EnvSeed:          "-1",
		EnvWorkers:       "1.5",
	}
	for name, value := range samples {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			_, e := Load("")
			require.Error(t, e)
			assert.Equal(t, InvalidConfigError, grace.ErrorCode(e))
			assert.Contains(t, e.Error(), name)
		})
	}
}

func TestValidate(t *testing.T) {
	samples := []struct {
		name    string
		modify  func(c *Config)
		message string
	}{
		{"negative wraps", func(c *Config) { c.Mapper.MaxWrapEvents = -1 }, "Mapper.MaxWrapEvents"},
		{"method", func(c *Config) { c.Generator.Method = "ramped" }, "Generator.Method must be one of"},
		{"lengths", func(c *Config) { c.Generator.MinLength = 50; c.Generator.MaxLength = 10 }, "Generator.MaxLength must not be less than MinLength"},
		{"depth", func(c *Config) { c.Generator.MaxDepth = 0 }, "Generator.MaxDepth"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "Log.Format"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "Log.Level"},
	}

	for _, s := range samples {
		t.Run(s.name, func(t *testing.T) {
			c := Default()
			s.modify(&c)
			e := c.Validate()
			require.Error(t, e)
			assert.Equal(t, InvalidConfigError, grace.ErrorCode(e))
			assert.Contains(t, e.Error(), s.message)
		})
	}

	c := Default()
	c.Log.Format = "xml"
	c.Decode.Workers = -2
	e := c.Validate()
	require.Error(t, e)
	assert.Contains(t, e.Error(), "Decode.Workers")
	assert.Contains(t, e.Error(), "Log.Format")
}

func TestNewGenerator(t *testing.T) {
	c := Default()
	c.Generator.Method = "full"
	c.Generator.CodonMax = 9

	g, mode, e := c.NewGenerator(nil)
	require.NoError(t, e)
	assert.Equal(t, generator.Full, mode)
	assert.Equal(t, uint(9), g.CodonMax())

	c.Generator.Method = "bogus"
	_, _, e = c.NewGenerator(nil)
	assert.Equal(t, InvalidConfigError, grace.ErrorCode(e))
}

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := LogConfig{Level: "warn", Format: "json"}.Logger(buf)
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
