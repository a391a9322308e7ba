//go:build !linux

package lockc

// RootFilesystemType returns the filesystem type of the "/" mount point.
// On non-Linux platforms it always returns [ErrUnsupportedPlatform].
func RootFilesystemType(_ string) (string, error) {
	return "", ErrUnsupportedPlatform
}
