package lockc

import (
	"io"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/btf"
	"go.uber.org/zap"
)

// programKernel performs the kernel side of loading a program.
type programKernel interface {
	Load(p Program, spec *ebpf.ProgramSpec, types *btf.Spec) (kernelProgram, error)
}

// kernelProgram is a program accepted by the verifier but not yet attached.
type kernelProgram interface {
	Attach() (io.Closer, error)
	Close() error
}

const defaultLSMPath = "/sys/kernel/security/lsm"

type settings struct {
	logger          *zap.Logger
	object          []byte
	kernelTypesPath string
	mountInfoPath   string
	lsmPath         string
	bundle          *Bundle
	preconditions   map[string]func() bool

	kernel       programKernel
	resolveTypes func() (*btf.Spec, error)
}

// Option configures [Load], [Attach], [NewAttacher] and [Preflight].
// Options that do not apply to an operation are ignored by it.
type Option func(*settings)

func newSettings(opts []Option) *settings {
	s := &settings{
		logger:        zap.NewNop(),
		mountInfoPath: DefaultMountInfoPath,
		lsmPath:       defaultLSMPath,
		preconditions: map[string]func() bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObject replaces the embedded bytecode object passed to [Load].
func WithObject(object []byte) Option {
	return func(s *settings) {
		s.object = object
	}
}

// WithKernelTypesPath reads kernel BTF from path instead of
// /sys/kernel/btf/vmlinux.
func WithKernelTypesPath(path string) Option {
	return func(s *settings) {
		s.kernelTypesPath = path
	}
}

// WithMountInfoPath sets the mountinfo file inspected for the root
// filesystem. The default is /proc/1/mountinfo.
func WithMountInfoPath(path string) Option {
	return func(s *settings) {
		s.mountInfoPath = path
	}
}

// WithLSMPath sets a custom path for the active LSM list.
// This is primarily for testing; production code uses /sys/kernel/security/lsm.
func WithLSMPath(path string) Option {
	return func(s *settings) {
		s.lsmPath = path
	}
}

// WithBundle makes [Preflight] probe the program types the bundle contains.
func WithBundle(b *Bundle) Option {
	return func(s *settings) {
		s.bundle = b
	}
}

// WithPrecondition overrides the predicate deciding whether the optional
// program name is attached. It has no effect on required programs.
func WithPrecondition(name string, fn func() bool) Option {
	return func(s *settings) {
		s.preconditions[name] = fn
	}
}

// WithMountPolicyProbe overrides the root filesystem check guarding sb_mount.
func WithMountPolicyProbe(fn func() bool) Option {
	return WithPrecondition(mountProgram, fn)
}

func withKernel(k programKernel) Option {
	return func(s *settings) {
		s.kernel = k
	}
}

func withKernelTypes(fn func() (*btf.Spec, error)) Option {
	return func(s *settings) {
		s.resolveTypes = fn
	}
}
