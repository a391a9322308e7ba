package lockc

import "errors"

const (
	// DefaultMountInfoPath is the mount table of the init process.
	DefaultMountInfoPath = "/proc/1/mountinfo"

	// mountPolicyFilesystem is the only root filesystem sb_mount
	// enforcement works with.
	mountPolicyFilesystem = "btrfs"
)

var errNoRootMount = errors.New("no root mount entry")

// IsMountPolicySupported reports whether the root filesystem described by
// mountInfoPath supports mount policy enforcement. It never fails: a
// missing, unreadable or malformed file, or one without a root entry,
// reports false.
func IsMountPolicySupported(mountInfoPath string) bool {
	fsType, err := RootFilesystemType(mountInfoPath)
	if err != nil {
		return false
	}
	return fsType == mountPolicyFilesystem
}
