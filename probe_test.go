//go:build linux

package lockc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cilium/ebpf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProbeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadActiveLSMsFrom(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"standard LSM list", "lockdown,capability,yama,apparmor,bpf\n", []string{"lockdown", "capability", "yama", "apparmor", "bpf"}},
		{"empty file", "", nil},
		{"with trailing whitespace", "  lockdown,bpf  \n", []string{"lockdown", "bpf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lsms, err := readActiveLSMsFrom(writeProbeFile(t, "lsm", tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, lsms)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := readActiveLSMsFrom("/nonexistent/path")
		assert.Error(t, err)
	})
}

func TestKernelRelease(t *testing.T) {
	release, err := KernelRelease()
	require.NoError(t, err)
	assert.NotEmpty(t, release)
	assert.Equal(t, release, probeKernelVersion())
}

func TestPreflight_WithPaths(t *testing.T) {
	r, err := Preflight(
		WithLSMPath(writeProbeFile(t, "lsm", "lockdown,capability,bpf\n")),
		WithMountInfoPath(writeProbeFile(t, "mountinfo", "25 30 0:5 / / rw,relatime shared:1 - btrfs /dev/sda1 rw\n")),
		WithKernelTypesPath(writeProbeFile(t, "vmlinux", "")),
	)
	require.NoError(t, err)

	assert.True(t, r.BPFLSMEnabled.Supported, "bpf is in the LSM list")
	assert.Len(t, r.ActiveLSMs, 3)
	assert.True(t, r.BTF.Supported, "types file exists")
	assert.Equal(t, "btrfs", r.RootFilesystem)
	assert.True(t, r.MountPolicy.Supported)

	// Without a bundle both hook kinds are probed.
	assert.Len(t, r.ProgramTypes, 2)
}

func TestPreflight_Unmet(t *testing.T) {
	r, err := Preflight(
		WithLSMPath(writeProbeFile(t, "lsm", "lockdown,capability,apparmor\n")),
		WithMountInfoPath(writeProbeFile(t, "mountinfo", "25 30 0:5 / / rw - ext4 /dev/sda1 rw\n")),
		WithKernelTypesPath(filepath.Join(t.TempDir(), "missing")),
	)
	require.NoError(t, err)

	assert.False(t, r.BPFLSMEnabled.Supported)
	assert.False(t, r.BTF.Supported)
	assert.NoError(t, r.BTF.Error)
	assert.Equal(t, "ext4", r.RootFilesystem)
	assert.False(t, r.MountPolicy.Supported)

	var re *RequirementError
	require.ErrorAs(t, r.Err(), &re)
	assert.Equal(t, "BTF", re.Requirement)
}

func TestPreflight_MissingFiles(t *testing.T) {
	r, err := Preflight(
		WithLSMPath(filepath.Join(t.TempDir(), "missing")),
		WithMountInfoPath(filepath.Join(t.TempDir(), "missing")),
	)
	require.NoError(t, err)

	assert.False(t, r.BPFLSMEnabled.Supported)
	assert.Error(t, r.BPFLSMEnabled.Error)
	assert.False(t, r.MountPolicy.Supported)
	assert.Error(t, r.MountPolicy.Error)
}

func TestPreflight_WithBundle(t *testing.T) {
	b := newBundle(&ebpf.CollectionSpec{
		Programs: map[string]*ebpf.ProgramSpec{
			"syslog": {Type: ebpf.LSM},
		},
	}, t.TempDir())

	r, err := Preflight(WithBundle(b), WithLSMPath(writeProbeFile(t, "lsm", "bpf")))
	require.NoError(t, err)
	require.Len(t, r.ProgramTypes, 1)
	assert.Equal(t, ebpf.LSM, r.ProgramTypes[0].Type)

	bad := newBundle(&ebpf.CollectionSpec{
		Programs: map[string]*ebpf.ProgramSpec{
			"broken": {Type: ebpf.UnspecifiedProgram},
		},
	}, t.TempDir())
	_, err = Preflight(WithBundle(bad))
	assert.Error(t, err, "unspecified program type must not be probed")
}

func TestReadiness_String(t *testing.T) {
	r := &Readiness{
		KernelRelease:  "6.8.0-lockc",
		BTF:            ProbeResult{Supported: true},
		BPFLSMEnabled:  ProbeResult{Supported: true},
		ActiveLSMs:     []string{"lockdown", "bpf"},
		ProgramTypes:   []ProgramTypeResult{{Type: ebpf.LSM, ProbeResult: ProbeResult{Supported: true}}},
		HasCapBPF:      ProbeResult{Supported: true},
		HasCapSysAdmin: ProbeResult{Supported: false, Error: errors.New("prctl failed")},
		RootFilesystem: "ext4",
		MountPolicy:    ProbeResult{Supported: false},
		KernelConfig:   NewKernelConfig(map[string]ConfigValue{"BPF_LSM": ConfigBuiltin}),
	}

	out := r.String()
	for _, want := range []string{
		"Kernel: 6.8.0-lockc",
		"  BTF: yes",
		"  Active LSMs: lockdown, bpf",
		"Program Types:",
		"  LSM: yes",
		"  CAP_SYS_ADMIN: no (error: prctl failed)",
		"  Root filesystem: ext4",
		"  Supported: no",
		"  CONFIG_BPF_LSM: y",
		"  CONFIG_DEBUG_INFO_BTF: not set",
	} {
		assert.Contains(t, out, want)
	}
}
