//go:build !linux

package lockc

// Preflight probes the running kernel for everything [Attach] relies on.
// On non-Linux platforms it always returns [ErrUnsupportedPlatform].
func Preflight(_ ...Option) (*Readiness, error) {
	return nil, ErrUnsupportedPlatform
}

// KernelRelease returns the running kernel's release string.
// On non-Linux platforms it always returns [ErrUnsupportedPlatform].
func KernelRelease() (string, error) {
	return "", ErrUnsupportedPlatform
}
