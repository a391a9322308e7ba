package lockc

import (
	"fmt"
	"slices"

	"github.com/cilium/ebpf"
)

// HookKind identifies the kernel attachment point family of a program.
type HookKind int

const (
	// HookTracepoint is a BTF-enabled raw tracepoint (tp_btf).
	HookTracepoint HookKind = iota + 1
	// HookLSM is a BPF LSM hook (lsm).
	HookLSM
)

func (h HookKind) String() string {
	switch h {
	case HookTracepoint:
		return "tp_btf"
	case HookLSM:
		return "lsm"
	default:
		return fmt.Sprintf("HookKind(%d)", h)
	}
}

// ProgramType returns the eBPF program type programs of this hook kind have.
func (h HookKind) ProgramType() ebpf.ProgramType {
	switch h {
	case HookTracepoint:
		return ebpf.Tracing
	case HookLSM:
		return ebpf.LSM
	default:
		return ebpf.UnspecifiedProgram
	}
}

func (h HookKind) attachType() ebpf.AttachType {
	switch h {
	case HookTracepoint:
		return ebpf.AttachTraceRawTp
	case HookLSM:
		return ebpf.AttachLSMMac
	default:
		return ebpf.AttachNone
	}
}

// compatible reports whether spec was compiled for this hook kind.
func (h HookKind) compatible(spec *ebpf.ProgramSpec) error {
	if spec.Type != h.ProgramType() || spec.AttachType != h.attachType() {
		return fmt.Errorf("section %q (%s/%s) cannot be attached as %s",
			spec.SectionName, spec.Type, spec.AttachType, h)
	}
	return nil
}

// Program describes one entry of the fixed attach sequence.
type Program struct {
	Name     string
	Hook     HookKind
	Required bool
	// SkipReason is logged and recorded when an optional program's
	// precondition does not hold.
	SkipReason string
}

// mountProgram is the only optional program.
const mountProgram = "sb_mount"

var programTable = []Program{
	{Name: "sched_process_fork", Hook: HookTracepoint, Required: true},
	{Name: "sched_process_exec", Hook: HookTracepoint, Required: true},
	{Name: "sched_process_exit", Hook: HookTracepoint, Required: true},
	{Name: "syslog", Hook: HookLSM, Required: true},
	{Name: mountProgram, Hook: HookLSM, Required: false,
		SkipReason: "root filesystem is not " + mountPolicyFilesystem + ", skipping mount policies"},
	{Name: "task_fix_setuid", Hook: HookLSM, Required: true},
	{Name: "file_open", Hook: HookLSM, Required: true},
	{Name: "socket_sendmsg", Hook: HookLSM, Required: true},
	{Name: "socket_recvmsg", Hook: HookLSM, Required: true},
}

// Programs returns the attach sequence in order.
func Programs() []Program {
	return slices.Clone(programTable)
}

// State is the lifecycle position of a program within a bundle.
type State int

const (
	StateNotLoaded State = iota
	StateLoaded
	StateAttached
	StateSkipped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotLoaded:
		return "not loaded"
	case StateLoaded:
		return "loaded"
	case StateAttached:
		return "attached"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Outcome is the attachment result of a single program.
type Outcome struct {
	Program string
	Hook    HookKind
	State   State
	// Reason is set for skipped programs.
	Reason string
	// Err is set for failed programs.
	Err error
}

func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s (%s): %s: %v", o.Program, o.Hook, o.State, o.Err)
	case o.Reason != "":
		return fmt.Sprintf("%s (%s): %s: %s", o.Program, o.Hook, o.State, o.Reason)
	default:
		return fmt.Sprintf("%s (%s): %s", o.Program, o.Hook, o.State)
	}
}

// ProbeResult represents the outcome of a kernel readiness probe.
type ProbeResult struct {
	// Supported indicates whether the feature is available.
	Supported bool
	// Error is non-nil if the probe itself failed (not just unsupported).
	Error error
}

// ProgramTypeResult is the probe result for one program type a bundle needs.
type ProgramTypeResult struct {
	Type ebpf.ProgramType
	ProbeResult
}

// Readiness holds what [Preflight] learned about the running kernel.
type Readiness struct {
	KernelRelease string

	// BTF is the availability of the kernel type-layout blob.
	BTF ProbeResult

	// BPFLSMEnabled is true only if "bpf" is in the active LSM list.
	BPFLSMEnabled ProbeResult
	ActiveLSMs    []string

	// ProgramTypes covers every program type the bundle contains.
	ProgramTypes []ProgramTypeResult

	HasCapBPF      ProbeResult // CAP_BPF (kernel 5.8+)
	HasCapSysAdmin ProbeResult // CAP_SYS_ADMIN (fallback for pre-5.8 kernels)

	// RootFilesystem is the fstype of the root mount, empty if unknown.
	// MountPolicy is informational: an unsupported root only disables sb_mount.
	RootFilesystem string
	MountPolicy    ProbeResult

	// Kernel config (may be nil if no config source was readable)
	KernelConfig *KernelConfig
}

// ConfigValue represents a kernel configuration option's state.
type ConfigValue int

const (
	// ConfigNotSet means the option is not set or not found.
	ConfigNotSet ConfigValue = iota
	// ConfigModule means the option is set to =m (module).
	ConfigModule
	// ConfigBuiltin means the option is set to =y (built-in).
	ConfigBuiltin
)

// IsEnabled returns true if the config option is set (either =m or =y).
func (v ConfigValue) IsEnabled() bool {
	return v == ConfigModule || v == ConfigBuiltin
}

func (v ConfigValue) String() string {
	switch v {
	case ConfigNotSet:
		return "not set"
	case ConfigModule:
		return "m"
	case ConfigBuiltin:
		return "y"
	default:
		return fmt.Sprintf("ConfigValue(%d)", v)
	}
}

// KernelConfig holds the kernel configuration options relevant to lockc.
type KernelConfig struct {
	raw map[string]ConfigValue

	BPFLSM     ConfigValue // CONFIG_BPF_LSM
	BTF        ConfigValue // CONFIG_DEBUG_INFO_BTF
	BPFSyscall ConfigValue // CONFIG_BPF_SYSCALL
}

// Get returns the ConfigValue for a kernel config key without the CONFIG_ prefix.
func (kc *KernelConfig) Get(key string) ConfigValue {
	if kc == nil || kc.raw == nil {
		return ConfigNotSet
	}
	return kc.raw[key]
}

// NewKernelConfig creates a KernelConfig from a raw config map.
// The map is copied.
func NewKernelConfig(raw map[string]ConfigValue) *KernelConfig {
	copied := make(map[string]ConfigValue, len(raw))
	for k, v := range raw {
		copied[k] = v
	}
	return &KernelConfig{
		raw:        copied,
		BPFLSM:     copied["BPF_LSM"],
		BTF:        copied["DEBUG_INFO_BTF"],
		BPFSyscall: copied["BPF_SYSCALL"],
	}
}
