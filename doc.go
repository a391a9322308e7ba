// Package lockc loads the lockc enforcement programs into the running kernel.
//
// The bytecode object embedded at build time holds three BTF-enabled
// scheduler tracepoints, which follow process fork, exec and exit, and six
// BPF LSM hooks, which mediate syslog, mount, setuid, file open and socket
// send and receive. This package does not interpret policy. It loads the
// object, verifies each program against the kernel's BTF and attaches it.
//
// # Loading and attaching
//
//	b, err := lockc.Load("/sys/fs/bpf/lockc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	if err := lockc.Attach(b, lockc.WithLogger(logger)); err != nil {
//	    var ae *lockc.AttachError
//	    if errors.As(err, &ae) {
//	        log.Fatalf("%s: %s", ae.Program, ae.Kind)
//	    }
//	    log.Fatal(err)
//	}
//
// [Attach] walks [Programs] in order and stops at the first failure without
// detaching what it already attached. The only optional program is
// sb_mount, which needs a btrfs root filesystem; on any other root it is
// skipped with a single warning. Both [Load] and [Attach] errors are meant
// to be fatal to the caller's startup.
//
// # Errors
//
// [Load] returns *[LoadError] (IOFailure, BytecodeRejected) and [Attach]
// returns *[AttachError] (TypeInfoUnavailable, ProgramNotFound,
// ProgramOperationFailed). Both wrap the underlying cause.
//
// # Preflight
//
// [Preflight] collects the kernel facts attachment depends on (BTF, BPF LSM
// activation, program type support, capabilities, root filesystem) and
// [Readiness.Err] turns the first gap into an actionable
// *[RequirementError].
package lockc
