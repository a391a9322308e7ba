package lockc

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is returned by every kernel-facing operation on
// platforms other than Linux.
var ErrUnsupportedPlatform = errors.New("lockc: unsupported platform (requires Linux)")

// LoadErrorKind classifies a [LoadError].
type LoadErrorKind int

const (
	// IOFailure means the pin directory could not be created.
	IOFailure LoadErrorKind = iota + 1
	// BytecodeRejected means the bytecode object is malformed or unusable.
	BytecodeRejected
)

func (k LoadErrorKind) String() string {
	switch k {
	case IOFailure:
		return "io failure"
	case BytecodeRejected:
		return "bytecode rejected"
	default:
		return fmt.Sprintf("LoadErrorKind(%d)", k)
	}
}

// LoadError is returned by [Load].
type LoadError struct {
	Kind LoadErrorKind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("load: %s: %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// AttachErrorKind classifies an [AttachError].
type AttachErrorKind int

const (
	// TypeInfoUnavailable means kernel BTF could not be read, or a program's
	// attach target is missing from it.
	TypeInfoUnavailable AttachErrorKind = iota + 1
	// ProgramNotFound means the bundle has no program with the expected name.
	ProgramNotFound
	// ProgramOperationFailed means the kernel refused to load or attach a program.
	ProgramOperationFailed
)

func (k AttachErrorKind) String() string {
	switch k {
	case TypeInfoUnavailable:
		return "kernel type info unavailable"
	case ProgramNotFound:
		return "program not found"
	case ProgramOperationFailed:
		return "program operation failed"
	default:
		return fmt.Sprintf("AttachErrorKind(%d)", k)
	}
}

// AttachError is returned by [Attach]. Program is empty when the failure
// happened before any program was touched (e.g. reading kernel BTF).
type AttachError struct {
	Kind    AttachErrorKind
	Program string
	Err     error
}

func (e *AttachError) Error() string {
	if e.Program == "" {
		return fmt.Sprintf("attach: %s: %v", e.Kind, e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("attach %s: %s", e.Program, e.Kind)
	}
	return fmt.Sprintf("attach %s: %s: %v", e.Program, e.Kind, e.Err)
}

func (e *AttachError) Unwrap() error {
	return e.Err
}

// RequirementError reports a kernel requirement that [Readiness] found unmet.
type RequirementError struct {
	Requirement string
	Reason      string
	Err         error
}

func (e *RequirementError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("requirement %s: %s: %v", e.Requirement, e.Reason, e.Err)
	}
	return fmt.Sprintf("requirement %s: %s", e.Requirement, e.Reason)
}

func (e *RequirementError) Unwrap() error {
	return e.Err
}
