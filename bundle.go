package lockc

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/cilium/ebpf"
	"go.uber.org/multierr"
)

// Bundle is a parsed bytecode object together with the kernel handles of
// the programs attached from it. A Bundle is not safe for concurrent use;
// callers serialize Attach and Close.
type Bundle struct {
	spec    *ebpf.CollectionSpec
	pinPath string
	onBPFFS bool

	handles map[string]*programHandle
	// order is the sequence in which programs were first touched by Attach.
	order []string
}

type programHandle struct {
	program Program
	spec    *ebpf.ProgramSpec
	state   State
	reason  string
	err     error

	prog kernelProgram
	link io.Closer
}

func newBundle(spec *ebpf.CollectionSpec, pinPath string) *Bundle {
	return &Bundle{
		spec:    spec,
		pinPath: pinPath,
		handles: make(map[string]*programHandle),
	}
}

// PinPath returns the directory the bundle was loaded for.
func (b *Bundle) PinPath() string {
	return b.pinPath
}

// PinnedOnBPFFS reports whether the pin directory is on a bpf filesystem.
func (b *Bundle) PinnedOnBPFFS() bool {
	return b.onBPFFS
}

// ProgramNames returns the names of all programs in the object, sorted.
func (b *Bundle) ProgramNames() []string {
	names := make([]string, 0, len(b.spec.Programs))
	for name := range b.spec.Programs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ProgramSpec returns the unloaded definition of the named program.
func (b *Bundle) ProgramSpec(name string) (*ebpf.ProgramSpec, bool) {
	spec, ok := b.spec.Programs[name]
	if !ok || spec == nil {
		return nil, false
	}
	return spec, true
}

// Outcome returns the current outcome of the named program.
func (b *Bundle) Outcome(name string) Outcome {
	h, ok := b.handles[name]
	if !ok {
		o := Outcome{Program: name, State: StateNotLoaded}
		for _, p := range programTable {
			if p.Name == name {
				o.Hook = p.Hook
			}
		}
		return o
	}
	return h.outcome()
}

// Outcomes returns the outcome of every program Attach has touched, in
// attach order.
func (b *Bundle) Outcomes() []Outcome {
	out := make([]Outcome, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.handles[name].outcome())
	}
	return out
}

// Close detaches and unloads every program, most recently attached first.
// Program state in the kernel is released only when no other reference
// (such as a pin) remains.
func (b *Bundle) Close() error {
	var err error
	for i := len(b.order) - 1; i >= 0; i-- {
		h := b.handles[b.order[i]]
		if h.link != nil {
			if cerr := h.link.Close(); cerr != nil {
				err = multierr.Append(err, fmt.Errorf("detach %s: %w", h.program.Name, cerr))
			}
			h.link = nil
		}
		if h.prog != nil {
			if cerr := h.prog.Close(); cerr != nil {
				err = multierr.Append(err, fmt.Errorf("unload %s: %w", h.program.Name, cerr))
			}
			h.prog = nil
		}
	}
	clear(b.handles)
	b.order = nil
	return err
}

func (b *Bundle) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Bundle %s (%d programs)\n", b.pinPath, len(b.spec.Programs))
	for _, o := range b.Outcomes() {
		fmt.Fprintf(&sb, "  %s\n", o)
	}
	return sb.String()
}

// handle returns the record for p, creating it on first use. The second
// value is false when the object has no program named p.Name.
func (b *Bundle) handle(p Program) (*programHandle, bool) {
	h, ok := b.handles[p.Name]
	if !ok {
		h = &programHandle{program: p}
		b.handles[p.Name] = h
		b.order = append(b.order, p.Name)
	}
	if h.spec == nil {
		h.spec, _ = b.ProgramSpec(p.Name)
	}
	return h, h.spec != nil
}

func (h *programHandle) outcome() Outcome {
	return Outcome{
		Program: h.program.Name,
		Hook:    h.program.Hook,
		State:   h.state,
		Reason:  h.reason,
		Err:     h.err,
	}
}
