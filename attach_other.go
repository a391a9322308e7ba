//go:build !linux

package lockc

import "github.com/cilium/ebpf/btf"

// Attacher drives the fixed program sequence through load and attach.
// On non-Linux platforms it never attaches anything.
type Attacher struct{}

func NewAttacher(_ ...Option) *Attacher { return &Attacher{} }

func Attach(_ *Bundle, _ ...Option) error { return ErrUnsupportedPlatform }

func (a *Attacher) Attach(_ *Bundle) error { return ErrUnsupportedPlatform }

func ResolveKernelTypes(_ string) (*btf.Spec, error) { return nil, ErrUnsupportedPlatform }
