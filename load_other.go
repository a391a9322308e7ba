//go:build !linux

package lockc

// Load ensures the pin directory exists and parses the bytecode object.
// On non-Linux platforms it always returns [ErrUnsupportedPlatform].
func Load(_ string, _ ...Option) (*Bundle, error) {
	return nil, ErrUnsupportedPlatform
}
