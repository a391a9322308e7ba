package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/lockc-project/lockc"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newTestFlags(t *testing.T, g *globalOptions, args ...string) (*pflag.FlagSet, *string) {
	t.Helper()
	fs := pflag.NewFlagSet("lockc", pflag.ContinueOnError)
	g.define(fs)
	pinPath := fs.String("pin-path", "", "")
	require.NoError(t, fs.Parse(args))
	return fs, pinPath
}

func TestApplyConfig_Environment(t *testing.T) {
	t.Setenv("LOCKC_PIN_PATH", "/run/lockc")
	t.Setenv("LOCKC_LOG_LEVEL", "DEBUG")

	g := &globalOptions{level: zapcore.InfoLevel}
	fs, pinPath := newTestFlags(t, g)

	require.NoError(t, applyConfig(fs, ""))
	assert.Equal(t, "/run/lockc", *pinPath)
	assert.Equal(t, zapcore.DebugLevel, g.level)
}

func TestApplyConfig_FlagWins(t *testing.T) {
	t.Setenv("LOCKC_PIN_PATH", "/run/lockc")

	fs, pinPath := newTestFlags(t, &globalOptions{}, "--pin-path", "/sys/fs/bpf/custom")

	require.NoError(t, applyConfig(fs, ""))
	assert.Equal(t, "/sys/fs/bpf/custom", *pinPath)
}

func TestApplyConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pin-path: /srv/lockc\nlog-format: console\n"), 0644))

	g := &globalOptions{}
	fs, pinPath := newTestFlags(t, g)

	require.NoError(t, applyConfig(fs, path))
	assert.Equal(t, "/srv/lockc", *pinPath)
	assert.Equal(t, formatConsole, g.format)
}

func TestApplyConfig_InvalidValue(t *testing.T) {
	t.Setenv("LOCKC_LOG_LEVEL", "chatty")

	fs, _ := newTestFlags(t, &globalOptions{})

	err := applyConfig(fs, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log-level")
}

func TestApplyConfig_MissingFile(t *testing.T) {
	fs, _ := newTestFlags(t, &globalOptions{})
	assert.Error(t, applyConfig(fs, filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestNewLogger(t *testing.T) {
	g := &globalOptions{level: zapcore.WarnLevel, format: formatConsole}
	logger, err := g.newLogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestProgramRows(t *testing.T) {
	rows, err := programRows(lockc.Object())
	require.NoError(t, err)

	programs := lockc.Programs()
	require.Len(t, rows, len(programs))
	for i, r := range rows {
		assert.Equal(t, programs[i].Name, r.Name)
		assert.True(t, r.Embedded, "%s missing from embedded object", r.Name)
		assert.Equal(t, r.Hook+"/"+r.Name, r.Section)
	}

	_, err = programRows([]byte("garbage"))
	assert.Error(t, err)
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestProgramsCmd_JSON(t *testing.T) {
	out := execute(t, "programs", "--json")

	var rows []programRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	require.Len(t, rows, 9)
	assert.Equal(t, "sb_mount", rows[4].Name)
	assert.False(t, rows[4].Required)
}

func TestVersionCmd(t *testing.T) {
	release, err := lockc.KernelRelease()
	require.NoError(t, err)

	out := execute(t, "version")
	assert.Contains(t, out, "lockc (dev)")
	assert.Contains(t, out, "Bytecode: "+lockc.Profile())
	assert.Contains(t, out, "Kernel: "+release)
}
