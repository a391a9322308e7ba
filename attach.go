//go:build linux

package lockc

import (
	"errors"
	"fmt"
	"io"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/btf"
	"github.com/cilium/ebpf/link"
	"go.uber.org/zap"
)

// Attacher drives the fixed program sequence through load and attach.
type Attacher struct {
	logger        *zap.Logger
	kernel        programKernel
	resolveTypes  func() (*btf.Spec, error)
	preconditions map[string]func() bool
}

// NewAttacher returns an Attacher configured by opts.
func NewAttacher(opts ...Option) *Attacher {
	s := newSettings(opts)

	a := &Attacher{
		logger:        s.logger,
		kernel:        s.kernel,
		resolveTypes:  s.resolveTypes,
		preconditions: s.preconditions,
	}
	if a.kernel == nil {
		a.kernel = sysKernel{}
	}
	if a.resolveTypes == nil {
		path := s.kernelTypesPath
		a.resolveTypes = func() (*btf.Spec, error) {
			return ResolveKernelTypes(path)
		}
	}
	if _, ok := a.preconditions[mountProgram]; !ok {
		path := s.mountInfoPath
		a.preconditions[mountProgram] = func() bool {
			return IsMountPolicySupported(path)
		}
	}
	return a
}

// Attach loads and attaches every program of b in the order given by
// [Programs], using kernel BTF resolved once for the whole call.
//
// sb_mount is attached only when the root filesystem supports mount
// policies; otherwise a single warning is logged and it is recorded as
// skipped. Any other failure stops the sequence and is returned as an
// *[AttachError]. Programs attached before the failure stay attached.
//
// Programs already attached by an earlier call are left alone, so Attach
// may be retried on the same bundle after a partial failure.
func Attach(b *Bundle, opts ...Option) error {
	return NewAttacher(opts...).Attach(b)
}

// Attach is the method form of the package level [Attach].
func (a *Attacher) Attach(b *Bundle) error {
	if b == nil {
		return &AttachError{Kind: ProgramNotFound, Err: errors.New("nil bundle")}
	}

	types, err := a.resolveTypes()
	if err != nil {
		var ae *AttachError
		if errors.As(err, &ae) {
			return err
		}
		return &AttachError{Kind: TypeInfoUnavailable, Err: err}
	}

	var attached, skipped int
	for _, p := range programTable {
		state, err := a.attach(b, p, types)
		if err != nil {
			return err
		}
		switch state {
		case StateAttached:
			attached++
		case StateSkipped:
			skipped++
		}
	}

	a.logger.Info("enforcement programs attached",
		zap.String("kernel", probeKernelVersion()),
		zap.Int("attached", attached),
		zap.Int("skipped", skipped))
	return nil
}

func (a *Attacher) attach(b *Bundle, p Program, types *btf.Spec) (State, error) {
	// An attached program stays attached whatever its precondition says now.
	if h, ok := b.handles[p.Name]; ok && h.state == StateAttached {
		a.logger.Debug("program already attached", zap.String("program", p.Name))
		return StateAttached, nil
	}

	if !p.Required {
		if check, ok := a.preconditions[p.Name]; ok && !check() {
			a.logger.Warn(p.SkipReason, zap.String("program", p.Name))
			b.skip(p, p.SkipReason)
			return StateSkipped, nil
		}
	}

	h, ok := b.handle(p)
	if !ok {
		return a.fail(h, ProgramNotFound, nil)
	}
	if err := p.Hook.compatible(h.spec); err != nil {
		return a.fail(h, ProgramOperationFailed, err)
	}

	if h.prog == nil {
		prog, err := a.kernel.Load(p, h.spec, types)
		if err != nil {
			kind := ProgramOperationFailed
			if errors.Is(err, btf.ErrNotFound) {
				kind = TypeInfoUnavailable
			}
			var ve *ebpf.VerifierError
			if errors.As(err, &ve) {
				a.logger.Debug("verifier rejected program",
					zap.String("program", p.Name),
					zap.String("log", fmt.Sprintf("%+v", ve)))
			}
			return a.fail(h, kind, fmt.Errorf("load: %w", err))
		}
		h.prog = prog
		h.state = StateLoaded
		a.logger.Debug("program loaded", zap.String("program", p.Name), zap.Stringer("hook", p.Hook))
	}

	lnk, err := h.prog.Attach()
	if err != nil {
		return a.fail(h, ProgramOperationFailed, fmt.Errorf("attach: %w", err))
	}
	h.link = lnk
	h.state = StateAttached
	h.reason, h.err = "", nil
	a.logger.Debug("program attached", zap.String("program", p.Name), zap.Stringer("hook", p.Hook))
	return StateAttached, nil
}

func (a *Attacher) fail(h *programHandle, kind AttachErrorKind, err error) (State, error) {
	ae := &AttachError{Kind: kind, Program: h.program.Name, Err: err}
	h.state = StateFailed
	h.err = ae
	return StateFailed, ae
}

// skip records p as skipped. A program skipped by an earlier call that has
// since been loaded is left as it is.
func (b *Bundle) skip(p Program, reason string) {
	h, _ := b.handle(p)
	if h.prog != nil {
		return
	}
	h.state = StateSkipped
	h.reason = reason
}

// sysKernel loads programs with the bpf() syscall.
type sysKernel struct{}

func (sysKernel) Load(p Program, spec *ebpf.ProgramSpec, types *btf.Spec) (kernelProgram, error) {
	spec = spec.Copy()
	spec.AttachTo = p.Name

	prog, err := ebpf.NewProgramWithOptions(spec, ebpf.ProgramOptions{
		KernelTypes: types,
	})
	if err != nil {
		return nil, err
	}
	return &sysProgram{prog: prog, hook: p.Hook}, nil
}

type sysProgram struct {
	prog *ebpf.Program
	hook HookKind
}

func (p *sysProgram) Attach() (io.Closer, error) {
	var (
		lnk link.Link
		err error
	)
	switch p.hook {
	case HookTracepoint:
		lnk, err = link.AttachTracing(link.TracingOptions{Program: p.prog})
	case HookLSM:
		lnk, err = link.AttachLSM(link.LSMOptions{Program: p.prog})
	default:
		return nil, fmt.Errorf("unsupported hook kind %s", p.hook)
	}
	if err != nil {
		return nil, err
	}
	return lnk, nil
}

func (p *sysProgram) Close() error {
	return p.prog.Close()
}
