//go:build linux

package lockc

import "fmt"

// Err returns a *[RequirementError] for the first unmet requirement, or nil
// when every program can be expected to load. An unsupported root
// filesystem is not an error: it only means sb_mount will be skipped.
func (r *Readiness) Err() error {
	if !r.BTF.Supported {
		return &RequirementError{Requirement: "BTF", Reason: r.diagnose("BTF"), Err: r.BTF.Error}
	}
	if !r.BPFLSMEnabled.Supported {
		return &RequirementError{Requirement: "BPF LSM", Reason: r.diagnose("BPF LSM"), Err: r.BPFLSMEnabled.Error}
	}
	for _, pt := range r.ProgramTypes {
		if pt.Supported {
			continue
		}
		reason := fmt.Sprintf("program type %s not supported by running kernel", pt.Type)
		if pt.Error != nil {
			reason = fmt.Sprintf("failed to probe program type %s", pt.Type)
		}
		return &RequirementError{
			Requirement: fmt.Sprintf("program type %s", pt.Type),
			Reason:      reason,
			Err:         pt.Error,
		}
	}
	if !r.HasCapBPF.Supported && !r.HasCapSysAdmin.Supported {
		return &RequirementError{Requirement: "CAP_BPF", Reason: r.diagnose("CAP_BPF"), Err: r.HasCapBPF.Error}
	}
	return nil
}

// diagnose explains why a requirement is unmet and what the operator can do.
func (r *Readiness) diagnose(requirement string) string {
	kc := r.KernelConfig // may be nil

	switch requirement {
	case "BTF":
		if kc != nil && !kc.BTF.IsEnabled() {
			return "CONFIG_DEBUG_INFO_BTF not set; rebuild kernel with CONFIG_DEBUG_INFO_BTF=y"
		}
		if r.BTF.Error == nil {
			return "kernel BTF not found; provide a vmlinux BTF blob with --btf"
		}
	case "BPF LSM":
		if kc != nil && !kc.BPFLSM.IsEnabled() {
			return "CONFIG_BPF_LSM not set; rebuild kernel with CONFIG_BPF_LSM=y"
		}
		if r.BPFLSMEnabled.Error == nil {
			return "'bpf' not in active LSM list; add lsm=...,bpf to kernel boot params"
		}
		return "cannot read active LSM list; is securityfs mounted?"
	case "CAP_BPF":
		return "missing CAP_BPF and CAP_SYS_ADMIN; run with CAP_BPF or as root"
	}
	return "not supported"
}
