package lockc

import (
	"fmt"
	"strings"
)

// String returns a human-readable summary of all probe results.
func (r *Readiness) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Kernel: %s\n", r.KernelRelease)
	b.WriteString("\n")

	b.WriteString("Core:\n")
	writeResult(&b, "  BTF", r.BTF)
	writeResult(&b, "  BPF LSM enabled", r.BPFLSMEnabled)
	if len(r.ActiveLSMs) > 0 {
		fmt.Fprintf(&b, "  Active LSMs: %s\n", strings.Join(r.ActiveLSMs, ", "))
	}
	b.WriteString("\n")

	if len(r.ProgramTypes) > 0 {
		b.WriteString("Program Types:\n")
		for _, pt := range r.ProgramTypes {
			writeResult(&b, "  "+pt.Type.String(), pt.ProbeResult)
		}
		b.WriteString("\n")
	}

	b.WriteString("Capabilities:\n")
	writeResult(&b, "  CAP_BPF", r.HasCapBPF)
	writeResult(&b, "  CAP_SYS_ADMIN", r.HasCapSysAdmin)
	b.WriteString("\n")

	b.WriteString("Mount Policies:\n")
	if r.RootFilesystem != "" {
		fmt.Fprintf(&b, "  Root filesystem: %s\n", r.RootFilesystem)
	}
	writeResult(&b, "  Supported", r.MountPolicy)

	if r.KernelConfig != nil {
		b.WriteString("\n")
		b.WriteString("Kernel Config:\n")
		writeConfig(&b, "  CONFIG_BPF_LSM", r.KernelConfig.BPFLSM)
		writeConfig(&b, "  CONFIG_DEBUG_INFO_BTF", r.KernelConfig.BTF)
		writeConfig(&b, "  CONFIG_BPF_SYSCALL", r.KernelConfig.BPFSyscall)
	}

	return b.String()
}

func writeResult(b *strings.Builder, name string, r ProbeResult) {
	status := "no"
	if r.Supported {
		status = "yes"
	}
	if r.Error != nil {
		fmt.Fprintf(b, "%s: %s (error: %v)\n", name, status, r.Error)
	} else {
		fmt.Fprintf(b, "%s: %s\n", name, status)
	}
}

func writeConfig(b *strings.Builder, name string, v ConfigValue) {
	fmt.Fprintf(b, "%s: %s\n", name, v)
}
