//go:build linux

package lockc

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	input := `#
# Automatically generated file; DO NOT EDIT.
# Linux/x86 6.1.0 Kernel Configuration
#
CONFIG_CC_IS_GCC=y
CONFIG_GCC_VERSION=120300
CONFIG_LOCALVERSION=""
CONFIG_BPF=y
CONFIG_BPF_SYSCALL=y
CONFIG_BPF_LSM=y
CONFIG_DEBUG_INFO_BTF=y
CONFIG_SECURITY=y
CONFIG_BTRFS_FS=m
# CONFIG_SECURITY_SELINUX is not set
`

	kc, err := parseConfig(strings.NewReader(input))
	require.NoError(t, err)

	tests := []struct {
		key  string
		want ConfigValue
	}{
		{"BPF", ConfigBuiltin},
		{"BPF_SYSCALL", ConfigBuiltin},
		{"BPF_LSM", ConfigBuiltin},
		{"DEBUG_INFO_BTF", ConfigBuiltin},
		{"SECURITY", ConfigBuiltin},
		{"BTRFS_FS", ConfigModule},
		{"CC_IS_GCC", ConfigBuiltin},
		{"GCC_VERSION", ConfigNotSet},  // numeric value, ignored
		{"LOCALVERSION", ConfigNotSet}, // string value, ignored
		{"SECURITY_SELINUX", ConfigNotSet},
		{"NONEXISTENT", ConfigNotSet},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, kc.Get(tt.key))
		})
	}

	assert.Equal(t, ConfigBuiltin, kc.BPFLSM)
	assert.Equal(t, ConfigBuiltin, kc.BTF)
	assert.Equal(t, ConfigBuiltin, kc.BPFSyscall)
}

func TestParseConfig_Empty(t *testing.T) {
	kc, err := parseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, kc.BPFLSM.IsEnabled())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}

func TestParseConfig_ReadError(t *testing.T) {
	_, err := parseConfig(failingReader{})
	assert.Error(t, err)
}

func TestParseConfigFrom(t *testing.T) {
	dir := t.TempDir()
	content := "CONFIG_BPF_LSM=y\nCONFIG_DEBUG_INFO_BTF=m\n"

	plain := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(plain, []byte(content), 0644))

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	compressed := filepath.Join(dir, "config.gz")
	require.NoError(t, os.WriteFile(compressed, buf.Bytes(), 0644))

	for _, src := range []configSource{
		{path: plain},
		{path: compressed, compressed: true},
	} {
		t.Run(filepath.Base(src.path), func(t *testing.T) {
			kc, err := parseConfigFrom(src)
			require.NoError(t, err)
			assert.Equal(t, ConfigBuiltin, kc.BPFLSM)
			assert.Equal(t, ConfigModule, kc.BTF)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := parseConfigFrom(configSource{path: filepath.Join(dir, "missing")})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("not gzip", func(t *testing.T) {
		_, err := parseConfigFrom(configSource{path: plain, compressed: true})
		assert.Error(t, err)
	})
}
