//go:build !linux

package lockc

// Err reports the first unmet requirement.
// On non-Linux platforms, the answer is always the same.
func (r *Readiness) Err() error {
	return ErrUnsupportedPlatform
}
