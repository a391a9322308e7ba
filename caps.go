//go:build linux

package lockc

import "golang.org/x/sys/unix"

// Linux capability constants, as in <linux/capability.h>.
const (
	capSysAdmin = 21 // CAP_SYS_ADMIN
	capBPF      = 39 // CAP_BPF (kernel 5.8+)
)

// probeCapability checks the capability bounding set with prctl(PR_CAPBSET_READ).
func probeCapability(cap uintptr) ProbeResult {
	ret, err := unix.PrctlRetInt(unix.PR_CAPBSET_READ, cap, 0, 0, 0)
	if err != nil {
		return ProbeResult{Supported: false, Error: err}
	}
	return ProbeResult{Supported: ret == 1}
}
