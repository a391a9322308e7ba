//go:build linux

package lockc

import (
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/features"
	"golang.org/x/sys/unix"
)

// Preflight probes the running kernel for everything [Attach] relies on.
// The returned error is non-nil only if probing itself could not proceed;
// unmet requirements are reported by [Readiness.Err].
//
// Program types are taken from the bundle given with [WithBundle], or from
// the hook kinds of [Programs] when no bundle is given.
func Preflight(opts ...Option) (*Readiness, error) {
	s := newSettings(opts)

	r := &Readiness{
		KernelRelease: probeKernelVersion(),
	}

	r.KernelConfig, _ = readKernelConfig()

	path := s.kernelTypesPath
	if path == "" {
		path = btfPath
	}
	r.BTF = probeFile(path)

	lsms, err := readActiveLSMsFrom(s.lsmPath)
	if err != nil {
		r.BPFLSMEnabled = ProbeResult{Supported: false, Error: err}
	} else {
		r.ActiveLSMs = lsms
		r.BPFLSMEnabled = ProbeResult{Supported: slices.Contains(lsms, "bpf")}
	}

	types, err := programTypesFor(s.bundle)
	if err != nil {
		return nil, err
	}
	for _, pt := range types {
		r.ProgramTypes = append(r.ProgramTypes, ProgramTypeResult{Type: pt, ProbeResult: probeProgramType(pt)})
	}

	r.HasCapBPF = probeCapability(capBPF)
	r.HasCapSysAdmin = probeCapability(capSysAdmin)

	if fsType, err := RootFilesystemType(s.mountInfoPath); err != nil {
		r.MountPolicy = ProbeResult{Supported: false, Error: err}
	} else {
		r.RootFilesystem = fsType
		r.MountPolicy = ProbeResult{Supported: fsType == mountPolicyFilesystem}
	}

	return r, nil
}

// probeProgramType checks if a BPF program type is supported.
func probeProgramType(pt ebpf.ProgramType) ProbeResult {
	err := features.HaveProgramType(pt)
	if err == nil {
		return ProbeResult{Supported: true}
	}
	if errors.Is(err, ebpf.ErrNotSupported) {
		return ProbeResult{Supported: false}
	}
	return ProbeResult{Supported: false, Error: err}
}

// probeFile reports whether path exists.
func probeFile(path string) ProbeResult {
	_, err := os.Stat(path)
	if err == nil {
		return ProbeResult{Supported: true}
	}
	if os.IsNotExist(err) {
		return ProbeResult{Supported: false}
	}
	return ProbeResult{Supported: false, Error: err}
}

// readActiveLSMsFrom reads the list of active LSMs from the specified path.
func readActiveLSMsFrom(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, ","), nil
}

// probeKernelVersion returns the kernel release string (e.g., "6.1.0-generic").
func probeKernelVersion() string {
	release, err := KernelRelease()
	if err != nil {
		return ""
	}
	return release
}

// KernelRelease returns the running kernel's release string (e.g.,
// "6.17.0-1005-aws"), as reported by uname(2).
func KernelRelease() (string, error) {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(uname.Release[:]), nil
}
